package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Config is the parsed command line.
type Config struct {
	World     string
	Duration  time.Duration
	Step      float64
	TracePath string
	Watch     bool
	Realtime  bool
	Seed      uint64
	LogLevel  string
	LogFormat string
}

func main() {
	world := flag.String("world", "world.yaml", "world prefab (embedded or under prefabs/)")
	duration := flag.Duration("duration", 60*time.Second, "simulated time to run")
	step := flag.String("dt", "1/50", "frame step in seconds, as a decimal or a fraction")
	tracePath := flag.String("trace", "", "write a zstd JSONL trace to this file")
	watch := flag.Bool("watch", false, "hot reload profiles from prefabs/ while running")
	realtime := flag.Bool("realtime", false, "pace frames at wall clock speed")
	seed := flag.Uint64("seed", 0, "override the world seed")
	logLevel := flag.String("log-level", "info", "log level")
	logFormat := flag.String("log-format", "console", "log format: json or console")
	flag.Parse()

	dt, err := parseStep(*step)
	if err != nil {
		log.Fatal(err)
	}
	cfg := Config{
		World:     *world,
		Duration:  *duration,
		Step:      dt,
		TracePath: *tracePath,
		Watch:     *watch,
		Realtime:  *realtime,
		Seed:      *seed,
		LogLevel:  *logLevel,
		LogFormat: *logFormat,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := initApp(cfg)
	if err != nil {
		log.Fatal(err)
	}
	err = app.Run(ctx)
	cleanup()
	if err != nil {
		log.Fatal(err)
	}
}

// parseStep accepts "0.02" or "1/50".
func parseStep(s string) (float64, error) {
	s = strings.TrimSpace(s)
	var v float64
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, fmt.Errorf("dt %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil {
			return 0, fmt.Errorf("dt %q: %w", s, err)
		}
		if d == 0 {
			return 0, fmt.Errorf("dt %q: zero denominator", s)
		}
		v = n / d
	} else {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("dt %q: %w", s, err)
		}
		v = f
	}
	if v <= 0 {
		return 0, fmt.Errorf("dt %q must be positive", s)
	}
	return v, nil
}
