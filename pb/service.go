// Package pb describes the blockfall gRPC service.
//
// The service is written by hand and its messages are protobuf well-known
// types, so there is no generated code:
//
//	service Blockfall {
//	  rpc Play(stream google.protobuf.StringValue) returns (stream google.protobuf.Struct);
//	  rpc Sessions(google.protobuf.Empty) returns (google.protobuf.Struct);
//	}
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "blockfall.Blockfall"

	PlayFullMethodName     = "/" + ServiceName + "/Play"
	SessionsFullMethodName = "/" + ServiceName + "/Sessions"

	// PlayerNameKey is the metadata key carrying the player name on Play.
	PlayerNameKey = "x-player-name"
)

type (
	Blockfall_PlayServer = grpc.BidiStreamingServer[wrapperspb.StringValue, structpb.Struct]
	Blockfall_PlayClient = grpc.BidiStreamingClient[wrapperspb.StringValue, structpb.Struct]
)

// BlockfallServer is the server API for the Blockfall service.
type BlockfallServer interface {
	// Play runs one game. The client sends actions and receives a
	// snapshot of the board after every change.
	Play(Blockfall_PlayServer) error
	// Sessions lists the games being played.
	Sessions(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// BlockfallClient is the client API for the Blockfall service.
type BlockfallClient interface {
	Play(ctx context.Context, opts ...grpc.CallOption) (Blockfall_PlayClient, error)
	Sessions(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type blockfallClient struct {
	cc grpc.ClientConnInterface
}

func NewBlockfallClient(cc grpc.ClientConnInterface) BlockfallClient {
	return &blockfallClient{cc}
}

func (c *blockfallClient) Play(ctx context.Context, opts ...grpc.CallOption) (Blockfall_PlayClient, error) {
	stream, err := c.cc.NewStream(ctx, &Blockfall_ServiceDesc.Streams[0], PlayFullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}, nil
}

func (c *blockfallClient) Sessions(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SessionsFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterBlockfallServer(s grpc.ServiceRegistrar, srv BlockfallServer) {
	s.RegisterService(&Blockfall_ServiceDesc, srv)
}

func _Blockfall_Play_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(BlockfallServer).Play(&grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

func _Blockfall_Sessions_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BlockfallServer).Sessions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SessionsFullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BlockfallServer).Sessions(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Blockfall_ServiceDesc is the grpc.ServiceDesc for the Blockfall service.
var Blockfall_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BlockfallServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Sessions",
			Handler:    _Blockfall_Sessions_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Play",
			Handler:       _Blockfall_Play_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "blockfall.proto",
}
