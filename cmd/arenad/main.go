// Command arenad runs the turn-based combat arena server: it binds the
// raw-TCP game port (spec §6), an optional ops HTTP side-channel, and an
// optional NATS event bus, then drives the reactor until terminated.
// Flag parsing, config loading, and signal-driven shutdown follow the
// teacher's go-server-2/main.go and go-server/cmd/main.go shape.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arenad/internal/acceptor"
	"arenad/internal/config"
	"arenad/internal/engine"
	"arenad/internal/eventbus"
	"arenad/internal/matcher"
	"arenad/internal/metrics"
	"arenad/internal/opsserver"
	"arenad/internal/reactor"
)

func main() {
	var (
		addr       = flag.String("addr", "", "game listen address (overrides config)")
		opsAddr    = flag.String("ops-addr", "", "ops HTTP listen address (overrides config)")
		natsURL    = flag.String("nats", "", "NATS server URL (overrides config; empty disables the event bus)")
		seed       = flag.Int64("seed", 0, "RNG seed (0 derives one from wall time)")
		configPath = flag.String("config", "", "path to a JSON config file")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[ARENA] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *opsAddr != "" {
		cfg.Ops.Addr = *opsAddr
	}
	if *natsURL != "" {
		cfg.NATS.URL = *natsURL
	}
	if *seed != 0 {
		cfg.RNGSeed = *seed
	}

	rngSeed := cfg.RNGSeed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))
	logger.Printf("rng seed: %d", rngSeed)

	m := metrics.New()

	var bus *eventbus.Bus
	if cfg.NATS.URL != "" {
		nc := eventbus.Config{
			URL:           cfg.NATS.URL,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: time.Duration(cfg.NATS.ReconnectWaitMs) * time.Millisecond,
		}
		bus, err = eventbus.Connect(nc, logger)
		if err != nil {
			logger.Printf("event bus disabled: %v", err)
			bus = nil
		}
	}

	observer := engine.Multi{m, eventbus.Observer{Bus: bus}}
	eng := engine.New(rng, observer)
	mtch := matcher.New(rng, eng)
	react := reactor.New(eng, mtch, m, bus, logger)

	acc, err := acceptor.Listen(cfg.Server.Addr, logger)
	if err != nil {
		logger.Fatalf("failed to bind %s: %v", cfg.Server.Addr, err)
	}
	logger.Printf("listening on %s", cfg.Server.Addr)

	go react.Run()
	go acc.Serve(react.Accept)

	var ops *opsserver.Server
	if cfg.Ops.Enabled {
		sampler := metrics.NewSystemSampler()
		ops = opsserver.New(cfg.Ops.Addr, m, sampler, logger)
		ops.Start()
		logger.Printf("ops listening on %s", cfg.Ops.Addr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Println("shutting down")
	react.Stop()
	acc.Close()
	if ops != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ops.Shutdown(ctx); err != nil {
			logger.Printf("ops shutdown error: %v", err)
		}
	}
	if bus != nil {
		bus.Close()
	}
}
