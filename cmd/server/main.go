package main

import (
	"flag"
	"log"
	"log/slog"
	"net"
	"os"

	"blockfall/pb"
	"blockfall/server"
	"blockfall/tetris"

	"google.golang.org/grpc"
)

func main() {
	c := tetris.DefaultConfig()
	addr := flag.String("addr", ":9000", "address to listen on")
	debug := flag.Bool("debug", false, "enable debug logs")
	flag.IntVar(&c.Width, "width", c.Width, "grid width")
	flag.IntVar(&c.Height, "height", c.Height, "grid height")
	flag.DurationVar(&c.Speed, "speed", c.Speed, "time between two ticks")
	flag.Parse()

	if err := c.Validate(); err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	defer lis.Close()
	s := grpc.NewServer()
	defer s.Stop()
	pb.RegisterBlockfallServer(s, server.New(&server.Options{Config: c, Logger: logger}))

	logger.Info("starting server", slog.String("addr", lis.Addr().String()))
	if err := s.Serve(lis); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
