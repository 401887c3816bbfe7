// Package simulator estimates return to player by playing many rounds.
//
// Rounds run through the same tables and machines the hosts use, each worker
// settling against its own wallet, so every simulated round also checks that
// the ledger moved by exactly the round's net.
package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/lox/casino/internal/blackjack"
	"github.com/lox/casino/internal/ledger"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/slots"
	"github.com/lox/casino/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// Game selects what to simulate
type Game string

const (
	GameBlackjack Game = "blackjack"
	GameSlots     Game = "slots"
)

// cancellation is checked once per this many rounds
const checkEvery = 1024

// Config holds configuration for running simulations
type Config struct {
	Game     Game
	Rounds   int
	Seed     int64
	Workers  int
	Stake    int
	StandOn  int            // Player stands at or above this score
	PayTable slots.PayTable // Slots only, default table when empty
	Logger   *log.Logger
}

// Simulator runs wager simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Stake <= 0 {
		config.Stake = blackjack.DefaultStake
	}
	if config.StandOn <= 0 {
		config.StandOn = blackjack.DealerStandsOn
	}
	if config.PayTable.Len() == 0 {
		config.PayTable = slots.DefaultPayTable()
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run plays the configured rounds across workers and merges their results.
// Worker w draws from a source seeded with Seed+w, so a run is reproducible
// for a given seed and worker count.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	cfg := s.config
	if cfg.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}

	var play func(ctx context.Context, src randutil.Source, rounds int) (*statistics.Statistics, error)
	switch cfg.Game {
	case GameBlackjack:
		play = s.playBlackjack
	case GameSlots:
		play = s.playSlots
	default:
		return nil, fmt.Errorf("unknown game %q", cfg.Game)
	}

	workers := min(cfg.Workers, cfg.Rounds)
	perWorker := cfg.Rounds / workers
	remainder := cfg.Rounds % workers

	cfg.Logger.Info("Starting simulation",
		"game", cfg.Game,
		"rounds", cfg.Rounds,
		"workers", workers,
		"seed", cfg.Seed,
		"stake", cfg.Stake)

	results := make([]*statistics.Statistics, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		rounds := perWorker
		if w < remainder {
			rounds++
		}
		seed := cfg.Seed + int64(w)

		g.Go(func() error {
			stats, err := play(ctx, randutil.New(seed), rounds)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Statistics{}
	for _, r := range results {
		total.Merge(r)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	cfg.Logger.Info("Simulation complete", "rounds", total.Rounds, "rtp", total.RTP())
	return total, nil
}

// engineLogger only passes per-round logging through at debug level
func (s *Simulator) engineLogger() *log.Logger {
	if s.config.Logger.GetLevel() <= log.DebugLevel {
		return s.config.Logger
	}
	return log.New(io.Discard)
}

func (s *Simulator) playBlackjack(ctx context.Context, src randutil.Source, rounds int) (*statistics.Statistics, error) {
	stake := s.config.Stake
	wallet := ledger.NewWallet(stake * rounds)
	table := blackjack.NewTable(src, wallet,
		blackjack.WithStake(stake),
		blackjack.WithLogger(s.engineLogger()))

	stats := &statistics.Statistics{}
	for i := 0; i < rounds; i++ {
		if i%checkEvery == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		before := wallet.Balance()
		r, err := table.Start(stake)
		if err != nil {
			return nil, err
		}
		for r.Phase == blackjack.Playing {
			if r.PlayerScore() < s.config.StandOn {
				r, err = table.Hit()
			} else {
				r, err = table.Stand()
			}
			if err != nil {
				return nil, err
			}
		}

		result := statistics.RoundResult{Stake: stake, Payout: r.Payout(), Outcome: r.Outcome.String()}
		if got := wallet.Balance() - before; got != result.Net() {
			return nil, fmt.Errorf("round %d: ledger moved %d, want %d", i, got, result.Net())
		}
		stats.Add(result)

		if _, err := table.NewRound(); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (s *Simulator) playSlots(ctx context.Context, src randutil.Source, rounds int) (*statistics.Statistics, error) {
	stake := s.config.Stake
	wallet := ledger.NewWallet(stake * rounds)
	machine := slots.NewMachine(src, wallet,
		slots.WithPayTable(s.config.PayTable),
		slots.WithLogger(s.engineLogger()))

	stats := &statistics.Statistics{}
	for i := 0; i < rounds; i++ {
		if i%checkEvery == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		before := wallet.Balance()
		res, err := machine.Spin(stake)
		if err != nil {
			return nil, err
		}

		result := statistics.RoundResult{Stake: stake, Payout: res.Payout, Outcome: res.Kind.String()}
		if got := wallet.Balance() - before; got != result.Net() {
			return nil, fmt.Errorf("spin %d: ledger moved %d, want %d", i, got, result.Net())
		}
		stats.Add(result)
	}
	return stats, nil
}
