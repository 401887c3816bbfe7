// Package slots implements the three-reel slot round engine.
//
// A spin is a single logical operation: debit the stake, draw three symbols,
// resolve the payout and credit it. Animation frames a host shows before the
// result come from Frames and carry no game meaning.
package slots

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/casino/internal/ledger"
	"github.com/lox/casino/internal/randutil"
)

// ReelCount is the number of reels on the machine
const ReelCount = 3

// Reels holds one symbol per reel
type Reels [ReelCount]Symbol

func (r Reels) String() string {
	parts := make([]string, len(r))
	for i, s := range r {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}

// Kind classifies a spin result
type Kind int

const (
	NoWin Kind = iota
	Pair
	Jackpot
)

func (k Kind) String() string {
	switch k {
	case NoWin:
		return "no_win"
	case Pair:
		return "pair"
	case Jackpot:
		return "jackpot"
	}
	return "unknown"
}

// MarshalText renders the kind in JSON payloads
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Result is the settled outcome of one spin
type Result struct {
	Reels      Reels `json:"reels"`
	Stake      int   `json:"stake"`
	Kind       Kind  `json:"kind"`
	Multiplier int   `json:"multiplier,omitempty"`
	Payout     int   `json:"payout"`
}

// Net is the payout minus the stake
func (r Result) Net() int {
	return r.Payout - r.Stake
}

// Message returns the status line for the result
func (r Result) Message() string {
	switch r.Kind {
	case Jackpot:
		return fmt.Sprintf("JACKPOT! x%d win!", r.Multiplier)
	case Pair:
		return "Two of a kind! You win!"
	}
	return "No luck, try again!"
}

// Evaluate resolves the payout for a set of reels
func Evaluate(reels Reels, stake int, table PayTable) Result {
	res := Result{Reels: reels, Stake: stake, Kind: NoWin}

	a, b, c := reels[0], reels[1], reels[2]
	switch {
	case a == b && b == c:
		res.Kind = Jackpot
		res.Multiplier = table.Multiplier(a)
		res.Payout = stake * res.Multiplier
	case a == b || b == c || a == c:
		res.Kind = Pair
		res.Payout = stake / 2
	}
	return res
}

// Machine spins reels and settles through a ledger
type Machine struct {
	mu     sync.Mutex
	name   string
	src    randutil.Source
	ledger ledger.Ledger
	table  PayTable
	logger *log.Logger
	spins  int
}

// Option configures a Machine during creation.
type Option func(*Machine)

// WithPayTable replaces the default pay table
func WithPayTable(t PayTable) Option {
	return func(m *Machine) {
		m.table = t
	}
}

// WithName labels the machine in logs
func WithName(name string) Option {
	return func(m *Machine) {
		m.name = name
	}
}

// WithLogger sets the machine logger
func WithLogger(logger *log.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// NewMachine creates a machine. The random source is required.
func NewMachine(src randutil.Source, l ledger.Ledger, opts ...Option) *Machine {
	if src == nil {
		panic("random source is required for machine creation")
	}
	if l == nil {
		panic("ledger is required for machine creation")
	}

	m := &Machine{
		name:   "slots",
		src:    src,
		ledger: l,
		table:  DefaultPayTable(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithPrefix("slots").With("machine", m.name)
	return m
}

// Name returns the machine label
func (m *Machine) Name() string {
	return m.name
}

// PayTable returns the machine's pay table
func (m *Machine) PayTable() PayTable {
	return m.table
}

// Spin debits the stake, draws the reels and credits any payout. When the
// debit fails nothing is drawn.
func (m *Machine) Spin(stake int) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ledger.Debit(stake); err != nil {
		return Result{}, fmt.Errorf("spin: %w", err)
	}

	m.spins++
	res := Evaluate(m.draw(), stake, m.table)

	m.logger.Debug("Spin resolved",
		"spin", m.spins,
		"reels", res.Reels.String(),
		"kind", res.Kind,
		"stake", stake,
		"payout", res.Payout)

	if res.Payout > 0 {
		if err := m.ledger.Credit(res.Payout); err != nil {
			m.logger.Error("Failed to credit payout", "payout", res.Payout, "error", err)
			return res, fmt.Errorf("credit payout: %w", err)
		}
	}
	return res, nil
}

// draw picks each reel independently and uniformly, with replacement
func (m *Machine) draw() Reels {
	return drawReels(m.src, m.table)
}

func drawReels(src randutil.Source, table PayTable) Reels {
	var r Reels
	for i := range r {
		r[i] = table.Symbol(src.IntN(table.Len()))
	}
	return r
}

// Frames returns n decorative reel frames for a spin animation. Use a source
// separate from the machine's so the animation never shifts the outcome.
func Frames(src randutil.Source, table PayTable, n int) []Reels {
	frames := make([]Reels, n)
	for i := range frames {
		frames[i] = drawReels(src, table)
	}
	return frames
}
