package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/robosim/internal/core/config"
	"github.com/zeusync/robosim/internal/core/observability/log"
	"github.com/zeusync/robosim/internal/injector"
	"github.com/zeusync/robosim/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "scenario file (.json, .yaml); built-in scenario when empty")
		ticks      = flag.Int("ticks", 0, "ticks to run headless; overrides run.ticks")
		outDir     = flag.String("out", "", "directory for PNG snapshots; none when empty")
		every      = flag.Int("every", -1, "snapshot every N ticks; overrides run.snapshotEvery")
		scale      = flag.Float64("scale", 1, "pixels per world unit in world snapshots")
		serveAddr  = flag.String("serve", "", "serve over HTTP/websocket on this address instead of running headless")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error; overrides run.logLevel")
	)
	flag.Parse()

	scenario, err := loadScenario(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading scenario:", err)
		os.Exit(1)
	}
	if *ticks > 0 {
		scenario.Run.Ticks = *ticks
	}
	if *every >= 0 {
		scenario.Run.SnapshotEvery = *every
	}
	if *logLevel != "" {
		scenario.Run.LogLevel = *logLevel
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *serveAddr != "" {
		err = serve(ctx, scenario, *serveAddr)
	} else {
		err = headless(ctx, scenario, runOptions{OutDir: *outDir, Scale: *scale})
	}
	_ = log.Provide().Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadScenario(path string) (*config.Scenario, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func headless(ctx context.Context, scenario *config.Scenario, opts runOptions) error {
	sim, err := injector.InitializeSimulation(scenario)
	if err != nil {
		return err
	}
	return run(ctx, sim, opts)
}

func serve(ctx context.Context, scenario *config.Scenario, addr string) error {
	srv, err := injector.InitializeServer(scenario, server.Config{ListenAddr: addr})
	if err != nil {
		return err
	}
	defer srv.Close()

	if err = srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(stopCtx)
}
