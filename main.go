package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"blockfall/client"
	"blockfall/terminal"
	"blockfall/tetris"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[24;0H\n\r\033[?25h"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	c := tetris.DefaultConfig()
	ui := flag.String("ui", "ansi", "frontend to play with: ansi or tcell")
	addr := flag.String("addr", "", "blockfall server address, enables online play in the ansi frontend")
	name := flag.String("name", os.Getenv("USER"), "player name shown online")
	logFile := flag.String("log", "", "file to write JSON logs to")
	debug := flag.Bool("debug", false, "enable debug logs")
	noColor := flag.Bool("nocolor", false, "draw blocks without colours")
	flag.IntVar(&c.Width, "width", c.Width, "grid width")
	flag.IntVar(&c.Height, "height", c.Height, "grid height")
	flag.DurationVar(&c.Speed, "speed", c.Speed, "time between two ticks")
	flag.Uint64Var(&c.Seed, "seed", 0, "seed of the piece sequence, random when 0")
	flag.Parse()

	if err := c.Validate(); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("blockfall needs an interactive terminal")
	}

	logger, closeLog, err := newLogger(*logFile, *debug)
	if err != nil {
		return err
	}
	defer closeLog()

	switch *ui {
	case "ansi":
		return runANSI(logger, &client.Options{
			Address: *addr,
			Name:    *name,
			Config:  c,
			NoColor: *noColor,
		})
	case "tcell":
		if *addr != "" {
			return errors.New("online play is only available in the ansi frontend")
		}
		return runTcell(logger, c)
	default:
		return fmt.Errorf("unknown frontend %q", *ui)
	}
}

func newLogger(file string, debug bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if file == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})), func() { f.Close() }, nil
}

func runANSI(l *slog.Logger, o *client.Options) error {
	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)

	cl, err := client.New(l, o)
	if err != nil {
		return err
	}
	defer func() {
		if err := cl.Close(); err != nil {
			l.Error("unable to close the keyboard", slog.String("error", err.Error()))
		}
	}()
	cl.Start()
	return nil
}

func runTcell(l *slog.Logger, c tetris.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("unable to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("unable to init screen: %w", err)
	}
	s := terminal.New(screen, c, l).Run()
	screen.Fini()

	if s != nil {
		fmt.Printf("Score: %d  Lines: %d\n", s.Score, s.Lines)
	}
	return nil
}
