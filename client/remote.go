package client

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"blockfall/pb"
	"blockfall/tetris"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// remoteGame is a game simulated by a blockfall server.
type remoteGame struct {
	addr     string
	name     string
	logger   *slog.Logger
	dialOpts []grpc.DialOption

	updateCh chan *tetris.Snapshot
	actionCh chan tetris.Action
	ctx      context.Context
	cancel   context.CancelFunc
}

func newRemoteGame(addr, name string, l *slog.Logger, opts ...grpc.DialOption) *remoteGame {
	ctx, cancel := context.WithCancel(context.Background())
	return &remoteGame{
		addr:     addr,
		name:     name,
		logger:   l,
		dialOpts: append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...),
		updateCh: make(chan *tetris.Snapshot),
		actionCh: make(chan tetris.Action),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (r *remoteGame) Start() { go r.run() }

func (r *remoteGame) Stop() { r.cancel() }

func (r *remoteGame) Updates() <-chan *tetris.Snapshot { return r.updateCh }

func (r *remoteGame) Action(a tetris.Action) {
	select {
	case r.actionCh <- a:
	case <-r.ctx.Done():
	}
}

func (r *remoteGame) run() {
	defer func() {
		r.cancel()
		close(r.updateCh)
	}()

	conn, err := grpc.NewClient(r.addr, r.dialOpts...)
	if err != nil {
		r.logger.Error("unable to create gRPC client", slog.String("error", err.Error()))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			r.logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
		}
	}()

	ctx := metadata.AppendToOutgoingContext(r.ctx, pb.PlayerNameKey, r.name)
	stream, err := pb.NewBlockfallClient(conn).Play(ctx)
	if err != nil {
		r.logger.Error("unable to create gRPC Play stream", slog.String("error", err.Error()))
		return
	}

	// send the player actions
	go func() {
		for {
			select {
			case a := <-r.actionCh:
				if err := stream.Send(pb.ActionToProto(a)); err != nil {
					r.logger.Debug("send() stopped", slog.String("msg", err.Error()))
					return
				}
			case <-r.ctx.Done():
				return
			}
		}
	}()

	for {
		rcv, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.logger.Debug("stream.Recv() closed with EOF")
				return
			}
			st, ok := status.FromError(err)
			switch {
			case ok && st.Code() == codes.Canceled:
				r.logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
			case ok && st.Code() == codes.DeadlineExceeded:
				r.logger.Debug("stream.Recv() closed with DeadlineExceeded", slog.String("msg", st.Message()))
			default:
				r.logger.Error("stream.Recv() unable to receive message", slog.String("error", err.Error()))
			}
			return
		}
		s, err := pb.SnapshotFromProto(rcv)
		if err != nil {
			r.logger.Error("unable to decode snapshot", slog.String("error", err.Error()))
			return
		}
		select {
		case r.updateCh <- s:
		case <-r.ctx.Done():
			return
		}
	}
}
