package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/milk9111/horde/logging"
	"github.com/milk9111/horde/prefabs"
	"github.com/milk9111/horde/sim"
	"github.com/milk9111/horde/trace"
)

// App runs one world to completion.
type App struct {
	cfg   Config
	log   *zap.Logger
	world *sim.World
	rec   *trace.Recorder
}

func provideLogger(cfg Config) (*zap.Logger, error) {
	return logging.New(cfg.LogLevel, cfg.LogFormat)
}

// provideRecorder opens the trace file. The recorder is nil when no trace
// was requested.
func provideRecorder(cfg Config) (*trace.Recorder, func(), error) {
	if cfg.TracePath == "" {
		return nil, func() {}, nil
	}
	f, err := os.Create(cfg.TracePath)
	if err != nil {
		return nil, nil, fmt.Errorf("trace: %w", err)
	}
	rec, err := trace.NewRecorder(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return rec, func() {
		_ = rec.Close()
		_ = f.Close()
	}, nil
}

func provideWorld(cfg Config, logger *zap.Logger, rec *trace.Recorder) (*sim.World, error) {
	spec, err := prefabs.LoadWorld(cfg.World)
	if err != nil {
		return nil, err
	}
	return sim.New(spec, sim.Options{
		Logger:   logger,
		Seed:     cfg.Seed,
		Recorder: rec,
	})
}

func newApp(cfg Config, logger *zap.Logger, world *sim.World, rec *trace.Recorder) *App {
	return &App{cfg: cfg, log: logger.Named("horde"), world: world, rec: rec}
}

// Run steps the world until the configured duration has been simulated or
// ctx is cancelled. Profile edits picked up by the watcher are applied
// between frames.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	changes := make(chan prefabs.Change, 16)

	if a.cfg.Watch {
		w, err := prefabs.NewWatcher(100*time.Millisecond, prefabs.Dir)
		if err != nil {
			a.log.Warn("watch disabled", zap.String("dir", prefabs.Dir), zap.Error(err))
		} else {
			g.Go(func() error {
				defer w.Close()
				for {
					select {
					case <-ctx.Done():
						return nil
					case c, ok := <-w.Events:
						if !ok {
							return nil
						}
						select {
						case changes <- c:
						case <-ctx.Done():
							return nil
						}
					case err, ok := <-w.Errors:
						if ok {
							a.log.Warn("watch", zap.Error(err))
						}
					}
				}
			})
		}
	}

	g.Go(func() error {
		defer cancel()
		return a.loop(ctx, changes)
	})

	err := g.Wait()
	a.summary()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) loop(ctx context.Context, changes <-chan prefabs.Change) error {
	frames := int(math.Round(a.cfg.Duration.Seconds() / a.cfg.Step))
	a.log.Info("running",
		zap.String("world", a.world.Name),
		zap.Int("frames", frames),
		zap.Float64("dt", a.cfg.Step),
	)

	var ticker *time.Ticker
	if a.cfg.Realtime {
		ticker = time.NewTicker(time.Duration(a.cfg.Step * float64(time.Second)))
		defer ticker.Stop()
	}

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		a.applyChanges(changes)
		a.world.Step(a.cfg.Step)
		for _, t := range a.world.Transitions() {
			a.log.Debug("transition",
				zap.String("agent", t.Agent),
				zap.String("from", t.From),
				zap.String("to", t.To),
				zap.Float64("t", a.world.Now()),
			)
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	}
	return nil
}

func (a *App) applyChanges(changes <-chan prefabs.Change) {
	for {
		select {
		case c := <-changes:
			a.apply(c)
		default:
			return
		}
	}
}

func (a *App) apply(c prefabs.Change) {
	switch c.Kind {
	case prefabs.ChangeScript:
		a.log.Warn("script changed; restart to apply", zap.String("script", c.Name))
	case prefabs.ChangeSpec:
		if !a.world.UsesProfile(c.Name) {
			return
		}
		p, err := prefabs.LoadProfile(c.Name)
		if err != nil {
			a.log.Warn("profile reload rejected", zap.String("profile", c.Name), zap.Error(err))
			return
		}
		n, err := a.world.ReloadProfile(c.Name, p)
		if err != nil {
			a.log.Warn("profile reload failed", zap.String("profile", c.Name), zap.Error(err))
			return
		}
		a.log.Info("profile reloaded", zap.String("profile", c.Name), zap.Int("agents", n))
	}
}

func (a *App) summary() {
	counts := make(map[string]int)
	for _, ag := range a.world.Agents() {
		counts[ag.Machine.FSM().CurrentKind().String()]++
	}
	states := make([]string, 0, len(counts))
	for s := range counts {
		states = append(states, s)
	}
	slices.Sort(states)
	fields := []zap.Field{
		zap.Uint64("ticks", a.world.Tick()),
		zap.Float64("time", a.world.Now()),
	}
	for _, s := range states {
		fields = append(fields, zap.Int(s, counts[s]))
	}
	if a.rec != nil {
		fields = append(fields, zap.Int("trace_entries", a.rec.Len()))
	}
	a.log.Info("done", fields...)
}
