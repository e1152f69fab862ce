package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/evolve"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/neural"
	"github.com/pthm-cable/flock/spectate"
	"github.com/pthm-cable/flock/sprites"
	"github.com/pthm-cable/flock/storage"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/tui"
	"github.com/pthm-cable/flock/ui"
	"github.com/pthm-cable/flock/viewer"
)

const title = "Flock"

// app holds what every mode needs.
type app struct {
	cfg          *config.Config
	sheet        *sprites.Sheet
	seed         int64
	play         bool
	resume       bool
	champion     string
	dbPath       string
	outputDir    string
	spectateAddr string
	logStats     bool
	log          *slog.Logger
}

// hooks are the per-mode collaborators handed to training or replay.
type hooks struct {
	observer game.Observer
	progress *viewer.Progress
	perf     *telemetry.PerfCollector
	status   func(string) // short progress text, e.g. for the terminal status line
}

// work trains or replays depending on -play.
func (a *app) work(ctx context.Context, h hooks) error {
	if a.play {
		return a.replay(ctx, h)
	}
	return a.train(ctx, h)
}

func (a *app) runHeadless(ctx context.Context) error {
	obs, closeSpectate := a.spectate(ctx)
	defer closeSpectate()
	return a.work(ctx, hooks{observer: obs, perf: telemetry.NewPerfCollector(600)})
}

func (a *app) runTerminal(ctx context.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := tui.New(screen, a.cfg, a.sheet)
	obs, closeSpectate := a.spectate(ctx)
	defer closeSpectate()

	errc := make(chan error, 1)
	go func() {
		errc <- a.work(ctx, hooks{
			observer: game.Observers(term.Observer(), obs),
			status:   term.SetStatus,
		})
	}()

	// The terminal loop ends on quit; training ends on its own
	uiErr := make(chan error, 1)
	go func() { uiErr <- term.Run(ctx) }()

	select {
	case err := <-errc:
		cancel()
		<-uiErr
		return err
	case err := <-uiErr:
		cancel()
		if werr := <-errc; werr != nil && !errors.Is(werr, context.Canceled) {
			return werr
		}
		return err
	}
}

func (a *app) runWindow(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(a.cfg.Screen.Width+viewer.PanelWidth), int32(a.cfg.Screen.Height), title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(a.cfg.Screen.TargetFPS))

	pacer := ui.NewPacer(ctx)
	progress := &viewer.Progress{}
	perf := telemetry.NewPerfCollector(120)

	v := viewer.New(a.cfg, a.sheet, title, pacer, progress, perf)
	defer v.Unload()

	obs, closeSpectate := a.spectate(ctx)
	defer closeSpectate()

	errc := make(chan error, 1)
	go func() {
		errc <- a.work(ctx, hooks{
			observer: game.Observers(pacer.Observer(), obs),
			progress: progress,
			perf:     perf,
		})
		progress.Finish()
	}()

	// Keep the window open after training ends so the last frame stays up
	var workErr error
	finished := false
	for !rl.WindowShouldClose() && ctx.Err() == nil {
		v.Update()
		v.Draw()
		if !finished {
			select {
			case workErr = <-errc:
				finished = true
			default:
			}
		}
	}

	cancel()
	if !finished {
		workErr = <-errc
	}
	return workErr
}

// spectate starts the websocket hub when -spectate is set. The returned
// observer is nil otherwise.
func (a *app) spectate(ctx context.Context) (game.Observer, func()) {
	if a.spectateAddr == "" {
		return nil, func() {}
	}

	hub := spectate.NewHub(a.cfg, a.log)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: a.spectateAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.log.Info("spectator server listening", "addr", a.spectateAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("spectator server failed", "error", err)
		}
	}()

	return hub.Observer(), func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("spectator server shutdown", "error", err)
		}
	}
}

// openStore opens the SQLite store when -db is set.
func (a *app) openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	if a.dbPath == "" {
		return nil, nil
	}
	store := storage.NewSQLiteStore(a.dbPath)
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store, nil
}

func (a *app) train(ctx context.Context, h hooks) error {
	opts := evolve.Options{
		Observer: h.observer,
		Perf:     h.perf,
		Logger:   a.log,
		LogStats: a.logStats,
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	var seedWeights []neural.BrainWeights
	if a.resume {
		if seedWeights, err = a.resumeWeights(ctx, store); err != nil {
			return fmt.Errorf("resuming: %w", err)
		}
	}

	if store != nil {
		run, err := store.StartRun(ctx, a.cfg, a.seed)
		if err != nil {
			return err
		}
		opts.Store = store
		opts.RunID = run.ID
	}

	if a.outputDir != "" {
		out, err := telemetry.NewOutputManager(a.outputDir)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := out.WriteConfig(a.cfg); err != nil {
			return err
		}
		opts.Output = out
		a.log.Info("writing output", "dir", out.Dir())
	}

	start := time.Now()
	var ticks int64
	opts.GenerationEnd = func(stats telemetry.GenerationStats) {
		ticks += int64(stats.Ticks)
		if h.progress != nil {
			h.progress.GenerationEnd(stats)
		}
		a.log.Info("generation done",
			"generation", stats.Generation,
			"best_fitness", stats.BestFitness,
			"score", stats.Score,
			"ticks", humanize.Comma(int64(stats.Ticks)),
			"total_ticks", humanize.Comma(ticks),
		)
	}
	opts.GenerationStart = func(gen int, nets []*neural.FFNN) {
		if h.progress != nil {
			h.progress.GenerationStart(gen, nets)
		}
		if h.status != nil {
			h.status(fmt.Sprintf("gen %d", gen))
		}
	}

	trainer, err := evolve.NewTrainer(a.cfg, a.sheet, a.seed, opts)
	if err != nil {
		return err
	}
	if len(seedWeights) > 0 {
		if err := trainer.Seed(seedWeights); err != nil {
			return fmt.Errorf("resuming: %w", err)
		}
		a.log.Info("seeded population", "champions", len(seedWeights))
	}

	a.log.Info("starting training",
		"run_id", opts.RunID,
		"seed", a.seed,
		"population", a.cfg.Evolution.Population,
		"generations", a.cfg.Evolution.Generations,
	)

	sum, err := trainer.Run(ctx)
	a.log.Info("training finished",
		"generations", sum.Generations,
		"reason", sum.Reason,
		"champion_fitness", sum.Champion.Fitness,
		"champion_score", sum.Champion.Score,
		"total_ticks", humanize.Comma(ticks),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return err
}

// hallOfFamePath is -champion, or hall_of_fame.json in the output directory.
func (a *app) hallOfFamePath() string {
	if a.champion != "" {
		return a.champion
	}
	return filepath.Join(a.outputDir, "hall_of_fame.json")
}

// resumeWeights returns champions to seed a new population with: the best
// stored champion when a store is open, otherwise every hall of fame entry
// that fits the population.
func (a *app) resumeWeights(ctx context.Context, store *storage.SQLiteStore) ([]neural.BrainWeights, error) {
	if store != nil {
		champ, err := store.BestChampion(ctx, "")
		if err != nil {
			return nil, err
		}
		return []neural.BrainWeights{champ.Weights}, nil
	}

	hof, err := telemetry.LoadHallOfFameFromFile(a.hallOfFamePath(), rand.New(rand.NewSource(a.seed)))
	if err != nil {
		return nil, err
	}
	entries := hof.Entries()
	weights := make([]neural.BrainWeights, 0, min(len(entries), a.cfg.Evolution.Population))
	for _, e := range entries[:cap(weights)] {
		weights = append(weights, e.Weights)
	}
	return weights, nil
}

// loadChampion finds the best network: from the store when one is open,
// otherwise from a hall of fame file.
func (a *app) loadChampion(ctx context.Context, store *storage.SQLiteStore) (storage.Champion, error) {
	if store != nil {
		return store.BestChampion(ctx, "")
	}

	hof, err := telemetry.LoadHallOfFameFromFile(a.hallOfFamePath(), rand.New(rand.NewSource(a.seed)))
	if err != nil {
		return storage.Champion{}, err
	}
	best, err := hof.Best()
	if err != nil {
		return storage.Champion{}, err
	}
	return storage.Champion{HallEntry: best}, nil
}

// runHistory reports the run a champion came from and returns its
// generation stats.
func (a *app) runHistory(ctx context.Context, store *storage.SQLiteStore, runID string) ([]telemetry.GenerationStats, error) {
	run, ok, err := store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run %q not found", runID)
	}

	gens, err := store.Generations(ctx, runID)
	if err != nil {
		return nil, err
	}

	attrs := []any{
		"run_id", run.ID,
		"seed", run.Seed,
		"started", humanize.Time(run.StartedAt),
		"generations", len(gens),
	}
	if len(gens) > 0 {
		attrs = append(attrs,
			"first_best", gens[0].BestFitness,
			"last_best", gens[len(gens)-1].BestFitness,
		)
	}
	a.log.Info("champion run", attrs...)
	return gens, nil
}

func (a *app) replay(ctx context.Context, h hooks) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	champ, err := a.loadChampion(ctx, store)
	if err != nil {
		return fmt.Errorf("loading champion: %w", err)
	}

	if store != nil {
		gens, err := a.runHistory(ctx, store, champ.RunID)
		if err != nil {
			return fmt.Errorf("loading run history: %w", err)
		}
		if h.progress != nil {
			for _, g := range gens {
				h.progress.GenerationEnd(g)
			}
		}
	}

	if h.progress != nil {
		nn := neural.NewFFNN(rand.New(rand.NewSource(a.seed)))
		if err := nn.UnmarshalWeights(champ.Weights); err != nil {
			return fmt.Errorf("loading champion: %w", err)
		}
		h.progress.GenerationStart(champ.Generation, []*neural.FFNN{nn})
	}
	if h.status != nil {
		h.status(fmt.Sprintf("champion of gen %d", champ.Generation))
	}

	a.log.Info("replaying champion",
		"generation", champ.Generation,
		"fitness", champ.Fitness,
		"score", champ.Score,
		"seed", a.seed,
	)

	res, err := evolve.Replay(ctx, a.cfg, a.sheet, champ.Weights, a.seed, game.Options{
		Observer: h.observer,
		Perf:     h.perf,
		Logger:   a.log,
	})
	if err != nil {
		return err
	}
	a.log.Info("replay finished",
		"state", res.State.String(),
		"score", res.Score,
		"ticks", humanize.Comma(int64(res.Ticks)),
		"fitness", res.Fitness[0],
	)
	return nil
}
