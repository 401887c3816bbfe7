package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/casino/cmd/casino/shared"
	"github.com/lox/casino/internal/config"
	"github.com/lox/casino/internal/fileutil"
	"github.com/lox/casino/internal/session"
	"github.com/lox/casino/internal/tui"
)

// PlayCmd runs a local session in the terminal
type PlayCmd struct {
	Seed        *int64 `help:"Deterministic RNG seed (optional)"`
	LogFile     string `default:"casino.log" help:"File to write logs to while the terminal UI runs"`
	HistoryFile string `help:"Write the session's round history as JSON on exit"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger := shared.SetupLogger(logFile, shared.LogOptions{
		Level:  cfg.Server.LogLevel,
		Debug:  g.Debug,
		Format: g.LogFormat,
	})
	if g.NoColor {
		shared.DisableColor()
	}

	sc, err := cfg.Session()
	if err != nil {
		return err
	}
	opts := []session.Option{session.WithLogger(logger)}
	if c.Seed != nil {
		opts = append(opts, session.WithSeed(*c.Seed))
	} else if cfg.Server.Seed != 0 {
		opts = append(opts, session.WithSeed(cfg.Server.Seed))
	}
	sess, err := session.New(sc, opts...)
	if err != nil {
		return err
	}

	logger.Info("Starting terminal session", "session", sess.ID(), "balance", sess.Balance())

	program := tea.NewProgram(tui.NewModel(sess, cfg, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}

	if c.HistoryFile != "" {
		if err := fileutil.WriteJSON(c.HistoryFile, sess.History()); err != nil {
			return err
		}
		logger.Info("History written", "file", c.HistoryFile)
	}

	snap := sess.Snapshot()
	logger.Info("Session closed", "balance", snap.Balance, "counters", snap.Counters)
	fmt.Printf("Thanks for playing. Final balance $%d\n", snap.Balance)
	return nil
}
