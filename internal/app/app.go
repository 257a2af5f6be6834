// Package app wires configuration, logging, the simulation loop, and the
// HTTP surface into a runnable server.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"deadlock/server/internal/config"
	servernet "deadlock/server/internal/net"
	"deadlock/server/internal/sim"
	"deadlock/server/internal/telemetry"
	"deadlock/server/internal/world"
	"deadlock/server/logging"
	loggingSinks "deadlock/server/logging/sinks"
)

// Options come from flags in main.
type Options struct {
	ConfigPath string
	Logger     *log.Logger
}

// Run builds the server and blocks until the context is cancelled or the
// listener fails.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logCfg := logging.DefaultConfig()
	sinks := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logCfg.Console)},
	}
	if logCfg.HasSink("json") && logCfg.JSON.FilePath != "" {
		file, err := os.OpenFile(logCfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer file.Close()
		sinks = append(sinks, logging.NamedSink{Name: "json", Sink: loggingSinks.NewJSON(file, logCfg.JSON.FlushInterval)})
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logCfg, sinks)
	if err != nil {
		return fmt.Errorf("constructing logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("closing logging router: %v", cerr)
		}
	}()

	collector, err := telemetry.NewCollector(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("constructing telemetry collector: %w", err)
	}

	w := world.New(cfg, router)

	var hub *servernet.Hub
	loop := sim.NewLoop(w, sim.Config{
		TickRate:        cfg.Server.TickRate,
		CatchupMaxTicks: cfg.Server.CatchupMaxTicks,
	}, sim.Hooks{
		AfterTick: func(result sim.StepResult) {
			data, err := servernet.EncodeState(result.Snapshot)
			if err != nil {
				logger.Printf("encoding state broadcast: %v", err)
				return
			}
			hub.Broadcast(data)
		},
	}, collector, router)
	hub = servernet.NewHub(loop, logger)

	mux, err := servernet.NewMux(hub, logger)
	if err != nil {
		return fmt.Errorf("constructing http mux: %w", err)
	}

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	go loop.Run(loopCtx)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		logger.Printf("server listening on %s", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}
}
