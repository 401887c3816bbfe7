package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/lox/casino/cmd/casino/shared"
	"github.com/lox/casino/internal/config"
	"github.com/lox/casino/internal/fileutil"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/simulator"
	"github.com/lox/casino/internal/slots"
	"github.com/lox/casino/internal/statistics"
)

// SimulateCmd estimates return to player for one game
type SimulateCmd struct {
	Game    string `arg:"" enum:"blackjack,slots" help:"Game to simulate (blackjack, slots)"`
	Rounds  int    `short:"n" default:"100000" help:"Number of rounds to simulate"`
	Seed    int64  `default:"0" help:"RNG seed (0 for random)"`
	Workers int    `default:"0" help:"Parallel workers (0 for one per CPU)"`
	Stake   int    `default:"100" help:"Stake per round"`
	StandOn int    `default:"17" help:"Blackjack: player stands at or above this score"`
	Machine string `default:"golden-jackpot" help:"Slots: machine whose pay table to use"`
	Output  string `short:"o" help:"Write a JSON report to this file"`
}

// report is the JSON summary written by --output
type report struct {
	Game      string         `json:"game"`
	Seed      int64          `json:"seed"`
	Stake     int            `json:"stake"`
	Rounds    int            `json:"rounds"`
	Wagered   int64          `json:"wagered"`
	Returned  int64          `json:"returned"`
	RTP       float64        `json:"rtp"`
	HouseEdge float64        `json:"houseEdge"`
	Mean      float64        `json:"meanNet"`
	StdError  float64        `json:"stdError"`
	CI95      [2]float64     `json:"ci95"`
	Wins      int            `json:"wins"`
	Losses    int            `json:"losses"`
	Pushes    int            `json:"pushes"`
	MaxPayout int            `json:"maxPayout"`
	Outcomes  map[string]int `json:"outcomes"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	logger := shared.SetupLogger(os.Stderr, shared.LogOptions{
		Level:   "warn",
		Debug:   g.Debug,
		Format:  g.LogFormat,
		NoColor: g.NoColor,
	})

	if c.Seed == 0 {
		c.Seed = randutil.NewSeed()
	}

	simCfg := simulator.Config{
		Game:    simulator.Game(c.Game),
		Rounds:  c.Rounds,
		Seed:    c.Seed,
		Workers: c.Workers,
		Stake:   c.Stake,
		StandOn: c.StandOn,
		Logger:  logger,
	}

	if simCfg.Game == simulator.GameSlots {
		table, err := c.payTable(g.Config)
		if err != nil {
			return err
		}
		simCfg.PayTable = table
		fmt.Printf("Theoretical RTP: %.4f\n", table.ExpectedReturn())
	}

	fmt.Printf("Starting simulation: %d %s rounds at $%d (seed: %d)\n", c.Rounds, c.Game, c.Stake, c.Seed)

	ctx := shared.SetupSignalHandler(logger)
	start := time.Now()
	stats, err := simulator.New(simCfg).Run(ctx)
	if err != nil {
		return err
	}
	printResults(os.Stdout, stats, time.Since(start))

	if c.Output != "" {
		if err := fileutil.WriteJSON(c.Output, c.report(stats)); err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", c.Output)
	}
	return nil
}

func (c *SimulateCmd) report(stats *statistics.Statistics) report {
	low, high := stats.ConfidenceInterval95()
	return report{
		Game:      c.Game,
		Seed:      c.Seed,
		Stake:     c.Stake,
		Rounds:    stats.Rounds,
		Wagered:   stats.Wagered,
		Returned:  stats.Returned,
		RTP:       stats.RTP(),
		HouseEdge: stats.HouseEdge(),
		Mean:      stats.Mean(),
		StdError:  stats.StdError(),
		CI95:      [2]float64{low, high},
		Wins:      stats.Wins,
		Losses:    stats.Losses,
		Pushes:    stats.Pushes,
		MaxPayout: stats.MaxPayout,
		Outcomes:  stats.Outcomes,
	}
}

// payTable looks up the configured machine's pay table
func (c *SimulateCmd) payTable(filename string) (slots.PayTable, error) {
	cfg, err := config.Load(filename)
	if err != nil {
		return slots.PayTable{}, err
	}
	sc, err := cfg.Session()
	if err != nil {
		return slots.PayTable{}, err
	}
	for _, m := range sc.Machines {
		if m.ID == c.Machine {
			if m.PayTable.Len() == 0 {
				return slots.DefaultPayTable(), nil
			}
			return m.PayTable, nil
		}
	}
	return slots.PayTable{}, fmt.Errorf("unknown machine %q", c.Machine)
}

func printResults(w io.Writer, stats *statistics.Statistics, duration time.Duration) {
	low, high := stats.ConfidenceInterval95()
	perSec := float64(stats.Rounds) / duration.Seconds()

	fmt.Fprintf(w, "\n=== SIMULATION RESULTS ===\n")
	fmt.Fprintf(w, "Rounds: %d in %v (%.0f rounds/sec)\n", stats.Rounds, duration.Round(time.Millisecond), perSec)
	fmt.Fprintf(w, "Wagered: $%d  Returned: $%d\n", stats.Wagered, stats.Returned)
	fmt.Fprintf(w, "RTP: %.4f  House edge: %.2f%%\n", stats.RTP(), stats.HouseEdge()*100)
	fmt.Fprintf(w, "Net per round: %.3f ± %.3f SE\n", stats.Mean(), stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.3f, %.3f]\n", low, high)
	fmt.Fprintf(w, "Std dev: %.2f  Median: %.1f  P5: %.1f  P95: %.1f\n",
		stats.StdDev(), stats.Median(), stats.Percentile(0.05), stats.Percentile(0.95))
	fmt.Fprintf(w, "Wins: %d  Losses: %d  Pushes: %d  Win rate: %.2f%%\n",
		stats.Wins, stats.Losses, stats.Pushes, stats.WinRate()*100)
	fmt.Fprintf(w, "Largest payout: $%d\n", stats.MaxPayout)

	fmt.Fprintf(w, "\nOutcomes:\n")
	outcomes := make([]string, 0, len(stats.Outcomes))
	for o := range stats.Outcomes {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	for _, o := range outcomes {
		n := stats.Outcomes[o]
		fmt.Fprintf(w, "  %-12s %8d  %6.2f%%\n", o, n, 100*float64(n)/float64(stats.Rounds))
	}
}
