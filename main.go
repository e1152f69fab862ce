package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sprites"
	"github.com/pthm-cable/flock/tui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	terminal := flag.Bool("tui", false, "Render in the terminal instead of a window")
	spectateAddr := flag.String("spectate", "", "Serve websocket spectators on this address (e.g. :8080)")
	play := flag.Bool("play", false, "Replay the best stored champion instead of training")
	resume := flag.Bool("resume", false, "Seed the population with stored champions (from -db, else -champion)")
	champion := flag.String("champion", "", "hall_of_fame.json to replay or resume from (default: <output-dir>/hall_of_fame.json)")
	dbPath := flag.String("db", "", "SQLite database for runs, generations and champions")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 0, "Override evolution.generations (0 = use config)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logStats := flag.Bool("log-stats", false, "Log generation stats and bookmarks")

	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}
	// JSON to stdout, except in terminal mode where the screen owns stdout
	logOut := os.Stdout
	if *terminal {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *generations > 0 {
		cfg.Evolution.Generations = *generations
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	a := &app{
		cfg:          cfg,
		sheet:        sprites.DefaultSheet(),
		seed:         rngSeed,
		play:         *play,
		resume:       *resume,
		champion:     *champion,
		dbPath:       *dbPath,
		outputDir:    *outputDir,
		spectateAddr: *spectateAddr,
		logStats:     *logStats,
		log:          logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case *headless:
		err = a.runHeadless(ctx)
	case *terminal:
		err = a.runTerminal(ctx)
	default:
		err = a.runWindow(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, tui.ErrQuit) {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}
