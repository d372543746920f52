package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nstehr/vimy/vimy-combat/ipc"
	"github.com/nstehr/vimy/vimy-combat/sim"
	"github.com/nstehr/vimy/vimy-combat/strategy"
)

const banner = `
██╗   ██╗██╗███╗   ███╗██╗   ██╗
██║   ██║██║████╗ ████║╚██╗ ██╔╝
██║   ██║██║██╔████╔██║ ╚████╔╝
╚██╗ ██╔╝██║██║╚██╔╝██║  ╚██╔╝
 ╚████╔╝ ██║██║ ╚═╝ ██║   ██║
  ╚═══╝  ╚═╝╚═╝     ╚═╝   ╚═╝

Headless Combat Coordination`

const frameTime = time.Second / 60

func main() {
	var (
		frames    = flag.Int("frames", 3600, "number of frames to simulate (60 per simulated second)")
		seed      = flag.Uint64("seed", 1, "scenario seed")
		fronts    = flag.Int("fronts", 2, "territories held by a Queen at start")
		energy    = flag.Float64("energy", 100, "starting energy pool")
		directive = flag.String("directive", "balanced", "strategy directive: balanced, aggressive, defensive or passive")
		diag      = flag.String("diag", "", "serve the websocket diagnostics feed on this address, e.g. :8080")
		realtime  = flag.Bool("realtime", false, "pace frames at wall-clock speed")
		logLevel  = flag.String("log-level", "info", "debug, info, warn or error")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting vimy-combat", "frames", *frames, "seed", *seed, "directive", *directive)

	strat := strategy.NewStrategist(strategy.HeuristicSource{}, *directive, 600)

	opts := sim.DefaultOptions()
	opts.Scenario.Seed = *seed
	opts.Scenario.Fronts = *fronts
	opts.Energy = *energy
	opts.Strategist = strat

	session, err := sim.NewSession(opts)
	if err != nil {
		slog.Error("failed to build session", "error", err)
		os.Exit(1)
	}
	pub := ipc.NewPublisher()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return runLoop(ctx, session, pub, *frames, *realtime)
	})
	g.Go(func() error {
		strat.Start(ctx)
		return nil
	})

	if *diag != "" {
		hello := ipc.HelloMessage{Engine: "vimy-combat", Seed: *seed, Directive: *directive}
		mux := http.NewServeMux()
		mux.Handle("/feed", ipc.NewHandler(pub, hello, 250*time.Millisecond))
		srv := &http.Server{Addr: *diag, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			slog.Info("diagnostics feed listening", "addr", *diag, "path", "/feed")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("diagnostics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("shutting down with error", "error", err)
		os.Exit(1)
	}

	final := session.Summary()
	slog.Info("simulation finished",
		"frame", final.Frame,
		"energy", final.Energy.Total,
		"generated", final.Energy.Generated,
		"consumed", final.Energy.Consumed,
		"liberated", len(final.Territories),
		"doctrine", final.Doctrine,
		"entities", final.Counts,
	)
}

// runLoop steps the session frame by frame and publishes each summary. With
// realtime set, frames are paced by a ticker; otherwise they run back to back.
func runLoop(ctx context.Context, s *sim.Session, pub *ipc.Publisher, frames int, realtime bool) error {
	var tick <-chan time.Time
	if realtime {
		ticker := time.NewTicker(frameTime)
		defer ticker.Stop()
		tick = ticker.C
	}
	for i := 0; i < frames; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}
		s.Step(frameTime)
		pub.Publish(s.Summary())
	}
	slog.Info("frame budget reached", "frames", frames)
	return nil
}
