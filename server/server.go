package server

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"blockfall/pb"
	"blockfall/tetris"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const anonymous = "anonymous"

type session struct {
	name     string
	score    int
	lines    int
	gameOver bool
}

type blockfallServer struct {
	config   tetris.Config
	logger   *slog.Logger
	newGame  func(tetris.Config, *slog.Logger) *tetris.Game
	sessions map[string]*session
	mu       sync.Mutex
}

type Options struct {
	Config tetris.Config
	Logger *slog.Logger
	// NewGame builds the game of every session. Defaults to tetris.NewGame.
	NewGame func(tetris.Config, *slog.Logger) *tetris.Game
}

func New(o *Options) pb.BlockfallServer {
	s := &blockfallServer{
		config:   o.Config,
		logger:   o.Logger,
		newGame:  o.NewGame,
		sessions: make(map[string]*session),
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.newGame == nil {
		s.newGame = func(c tetris.Config, l *slog.Logger) *tetris.Game { return tetris.NewGame(c, nil, l) }
	}
	return s
}

func (s *blockfallServer) Play(stream pb.Blockfall_PlayServer) error {
	ctx := stream.Context()
	id := uuid.New().String()
	name := playerName(ctx)
	logger := s.logger.With(slog.String("session", id), slog.String("name", name))

	s.mu.Lock()
	s.sessions[id] = &session{name: name}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	}()

	game := s.newGame(s.config, logger)
	game.Start()
	defer game.Stop()
	logger.Info("session started")

	// receive actions from the player
	errCh := make(chan error, 1)
	go func() {
		for {
			rcv, err := stream.Recv()
			if err != nil {
				errCh <- err
				return
			}
			a, err := pb.ActionFromProto(rcv)
			if err != nil {
				errCh <- status.Error(codes.InvalidArgument, err.Error())
				return
			}
			game.Action(a)
		}
	}()

	for {
		select {
		case u, ok := <-game.Updates():
			if !ok {
				return nil
			}
			s.record(id, u)
			msg, err := pb.SnapshotToProto(u)
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.Send(msg); err != nil {
				return fmt.Errorf("failed to send snapshot: %w", err)
			}
			if u.GameOver {
				logger.Info("game over", slog.Int("score", u.Score), slog.Int("lines", u.Lines))
				return nil
			}
		case err := <-errCh:
			if errors.Is(err, io.EOF) {
				logger.Info("player left")
				return nil
			}
			if st, ok := status.FromError(err); ok && st.Code() == codes.Canceled {
				logger.Debug("stream canceled", slog.String("msg", st.Message()))
				return nil
			}
			logger.Error("failed to receive action", slog.String("error", err.Error()))
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *blockfallServer) Sessions(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	type entry struct {
		id string
		session
	}
	s.mu.Lock()
	entries := make([]entry, 0, len(s.sessions))
	for id, ss := range s.sessions {
		entries = append(entries, entry{id: id, session: *ss})
	}
	s.mu.Unlock()

	// highest score first.
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	list := make([]any, len(entries))
	for i, e := range entries {
		list[i] = map[string]any{
			"id":        e.id,
			"name":      e.name,
			"score":     e.score,
			"lines":     e.lines,
			"game_over": e.gameOver,
		}
	}
	st, err := structpb.NewStruct(map[string]any{"sessions": list})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

func (s *blockfallServer) record(id string, u *tetris.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[id]
	if !ok {
		return
	}
	ss.score, ss.lines, ss.gameOver = u.Score, u.Lines, u.GameOver
}

func playerName(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return anonymous
	}
	if v := md.Get(pb.PlayerNameKey); len(v) > 0 && v[0] != "" {
		return v[0]
	}
	return anonymous
}
