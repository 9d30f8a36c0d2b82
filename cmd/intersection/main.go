// Command intersection runs a two-road signal controller in real time and
// renders each frame to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anggasct/intersection"
	"github.com/anggasct/intersection/internal/config"
	"github.com/anggasct/intersection/internal/telemetry"
	"github.com/anggasct/intersection/pkg/logging"
	"github.com/anggasct/intersection/pkg/observers"
	"github.com/anggasct/intersection/visualization"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "intersection:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("intersection", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	green := fs.Duration("green", 0, "Green phase duration (overrides config)")
	yellow := fs.Duration("yellow", 0, "Yellow phase duration (overrides config)")
	frame := fs.Duration("frame", 0, "Render interval (overrides config)")
	duration := fs.Duration("duration", 0, "Stop after this long; 0 runs until interrupted")
	jsonOut := fs.Bool("json", false, "Emit one JSON snapshot per frame instead of text")
	dotOut := fs.Bool("dot", false, "Print the phase cycle as a Graphviz graph and exit")
	metricsAddr := fs.String("metrics-addr", "", "HTTP address for Prometheus /metrics (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "green":
			cfg.Green = *green
		case "yellow":
			cfg.Yellow = *yellow
		case "frame":
			cfg.Frame = *frame
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	durations, err := cfg.Durations()
	if err != nil {
		return err
	}

	if *dotOut {
		opts := visualization.DefaultDOTOptions()
		opts.Names = cfg.Roads
		dot, err := visualization.NewDOTGenerator(durations, opts).Generate()
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, dot)
		return err
	}

	log := logging.NewWithWriter(cfg.Logging, stderr)

	tp, shutdown, err := telemetry.InitTracing(ctx, cfg.Tracing, stderr, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer telemetry.ShutdownWithTimeout(context.Background(), shutdown, log)

	metrics, err := observers.NewMetricsObserver(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	tracing := observers.NewTracingObserver(tp)
	defer tracing.Close()
	validation := observers.NewValidationObserver()

	ctrl, err := intersection.NewBuilder().
		Durations(durations).
		Observer(observers.NewLoggingObserver(log, cfg.Roads)).
		Observer(metrics).
		Observer(tracing).
		Observer(validation).
		Build()
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, metrics, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	render := textRenderer(stdout, cfg.Roads)
	if *jsonOut {
		render = jsonRenderer(stdout, cfg.Roads)
	}

	log.Info(ctx, "starting signal controller",
		logging.String("controller_id", ctrl.ID()),
		logging.Duration("green", durations.Green),
		logging.Duration("yellow", durations.Yellow),
		logging.Duration("frame", cfg.Frame),
	)

	ticker := time.NewTicker(cfg.Frame)
	defer ticker.Stop()
	if err := hostLoop(ctx, ctrl, ticker.C, render); err != nil {
		return err
	}

	if violations := validation.GetViolations(); len(violations) > 0 {
		log.Error(ctx, "signal safety violations detected",
			logging.Int("count", len(violations)),
			logging.String("first", violations[0]),
		)
	}
	log.Info(ctx, "signal controller stopped", logging.String("phase", ctrl.Phase().String()))
	return nil
}

// hostLoop renders the current state, then on every tick feeds the
// controller the wall-clock delta and renders again, until ctx is done or
// ticks is closed.
func hostLoop(ctx context.Context, ctrl *intersection.Controller, ticks <-chan time.Time, render func(intersection.Snapshot) error) error {
	// anchor the clock so the first tick measures from here
	if _, err := ctrl.Tick(); err != nil {
		return err
	}
	if err := render(ctrl.Snapshot()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			if _, err := ctrl.Tick(); err != nil {
				return err
			}
			if err := render(ctrl.Snapshot()); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}
	}
}

func serveMetrics(addr string, metrics *observers.MetricsObserver, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
