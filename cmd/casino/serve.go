package main

import (
	"fmt"
	"os"

	"github.com/lox/casino/cmd/casino/shared"
	"github.com/lox/casino/internal/config"
	"github.com/lox/casino/internal/server"
)

// ServeCmd runs the websocket host
type ServeCmd struct {
	Addr string `short:"a" help:"Server address to bind to (overrides config)"`
	Seed *int64 `help:"Deterministic RNG seed for sessions (optional)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}

	logger := shared.SetupLogger(os.Stderr, shared.LogOptions{
		Level:   cfg.Server.LogLevel,
		Debug:   g.Debug,
		Format:  g.LogFormat,
		NoColor: g.NoColor,
	})

	opts := []server.Option{server.WithLogger(logger)}
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", *c.Seed)
		opts = append(opts, server.WithSeed(*c.Seed))
	}

	s, err := server.NewServer(cfg, opts...)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	logger.Info("Starting casino server",
		"addr", cfg.Server.Address,
		"config", g.Config,
		"machines", len(cfg.Machines),
		"startingBalance", cfg.Wallet.StartingBalance,
		"dealerDelay", cfg.DealerDelay())

	ctx := shared.SetupSignalHandler(logger)
	return s.Start(ctx)
}
