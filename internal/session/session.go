// Package session is the host glue around the game engines.
//
// A Session owns the player's wallet, one blackjack table and the lobby's
// slot machines. It enforces stake limits before any engine is called, keeps
// the lobby counters and a bounded history of settled rounds.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lox/casino/cards"
	"github.com/lox/casino/internal/blackjack"
	"github.com/lox/casino/internal/ledger"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/roundid"
	"github.com/lox/casino/internal/slots"
)

// ErrUnknownMachine is returned for a spin on a machine not in the catalogue
var ErrUnknownMachine = errors.New("unknown machine")

const (
	// DefaultStartingBalance is the opening balance of a new session
	DefaultStartingBalance = 12500

	// DefaultHistorySize bounds the settled-round history
	DefaultHistorySize = 50
)

// Game names used in records
const (
	GameBlackjack = "blackjack"
	GameSlots     = "slots"
)

// Config holds everything needed to open a session
type Config struct {
	StartingBalance int
	Blackjack       Limits
	Machines        []MachineSpec
	HistorySize     int
}

// DefaultConfig returns the lobby defaults
func DefaultConfig() Config {
	return Config{
		StartingBalance: DefaultStartingBalance,
		Blackjack:       BlackjackLimits(),
		Machines:        DefaultCatalogue(),
		HistorySize:     DefaultHistorySize,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.StartingBalance < 0 {
		return fmt.Errorf("starting balance must not be negative, got %d", c.StartingBalance)
	}
	if err := c.Blackjack.Validate(); err != nil {
		return fmt.Errorf("blackjack limits: %w", err)
	}
	seen := make(map[string]bool, len(c.Machines))
	for _, m := range c.Machines {
		if m.ID == "" {
			return errors.New("machine id must not be empty")
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate machine id %q", m.ID)
		}
		seen[m.ID] = true
		if err := m.Limits.Validate(); err != nil {
			return fmt.Errorf("machine %s limits: %w", m.ID, err)
		}
	}
	return nil
}

// Counters are the running lobby totals
type Counters struct {
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	Pushes       int `json:"pushes"`
	Spins        int `json:"spins"`
	Jackpots     int `json:"jackpots"`
	SlotWinnings int `json:"slotWinnings"`
}

// Record is one settled round in the history
type Record struct {
	ID      string `json:"id"`
	Game    string `json:"game"`
	Machine string `json:"machine,omitempty"`
	Stake   int    `json:"stake"`
	Payout  int    `json:"payout"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail"`
	Balance int    `json:"balance"`
}

// Net is the payout minus the stake
func (r Record) Net() int {
	return r.Payout - r.Stake
}

// Snapshot is the full host-visible state of a session
type Snapshot struct {
	ID        string         `json:"id"`
	Balance   int            `json:"balance"`
	Stake     int            `json:"stake"`
	Counters  Counters       `json:"counters"`
	Blackjack blackjack.View `json:"blackjack"`
	Limits    Limits         `json:"limits"`
}

// Session is one player's lobby state
type Session struct {
	mu       sync.Mutex
	id       string
	cfg      Config
	wallet   *ledger.Wallet
	table    *blackjack.Table
	machines map[string]*slots.Machine
	specs    map[string]MachineSpec
	counters Counters
	history  []Record
	logger   *log.Logger
}

type options struct {
	src      randutil.Source
	seed     int64
	logger   *log.Logger
	deckFunc func() cards.Deck
}

// Option configures a Session during creation.
type Option func(*options)

// WithSeed seeds the table and every machine deterministically
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithSource shares one random source between the table and the machines.
// This overrides the seed.
func WithSource(src randutil.Source) Option {
	return func(o *options) {
		o.src = src
	}
}

// WithLogger sets the session logger
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDeckSource overrides how each blackjack deck is built
func WithDeckSource(fn func() cards.Deck) Option {
	return func(o *options) {
		o.deckFunc = fn
	}
}

// New opens a session
func New(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	o := options{
		seed:   randutil.NewSeed(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}

	id := uuid.NewString()
	logger := o.logger.With("session", id[:8])

	source := func(offset int64) randutil.Source {
		if o.src != nil {
			return o.src
		}
		return randutil.New(o.seed + offset)
	}

	s := &Session{
		id:       id,
		cfg:      cfg,
		wallet:   ledger.NewWallet(cfg.StartingBalance),
		machines: make(map[string]*slots.Machine, len(cfg.Machines)),
		specs:    make(map[string]MachineSpec, len(cfg.Machines)),
		logger:   logger,
	}

	tableOpts := []blackjack.TableOption{
		blackjack.WithStake(cfg.Blackjack.Default),
		blackjack.WithLogger(logger),
	}
	if o.deckFunc != nil {
		tableOpts = append(tableOpts, blackjack.WithDeckSource(o.deckFunc))
	}
	s.table = blackjack.NewTable(source(0), s.wallet, tableOpts...)

	for i, spec := range cfg.Machines {
		if spec.PayTable.Len() == 0 {
			spec.PayTable = slots.DefaultPayTable()
		}
		s.specs[spec.ID] = spec
		s.machines[spec.ID] = slots.NewMachine(source(int64(i)+1), s.wallet,
			slots.WithName(spec.ID),
			slots.WithPayTable(spec.PayTable),
			slots.WithLogger(logger))
	}

	logger.Info("Session opened", "balance", cfg.StartingBalance, "machines", len(cfg.Machines))
	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Wallet returns the session's ledger
func (s *Session) Wallet() *ledger.Wallet {
	return s.wallet
}

// Balance returns the wallet balance
func (s *Session) Balance() int {
	return s.wallet.Balance()
}

// Deposit tops up the wallet
func (s *Session) Deposit(amount int) error {
	if err := s.wallet.Deposit(amount); err != nil {
		return err
	}
	s.logger.Info("Deposit", "amount", amount, "balance", s.wallet.Balance())
	return nil
}

// Deal validates the stake against the table limits and starts a round
func (s *Session) Deal(stake int) (blackjack.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cfg.Blackjack.Check(stake); err != nil {
		return s.table.Round(), err
	}
	return s.blackjackAction(func() (blackjack.Round, error) {
		return s.table.Start(stake)
	})
}

// Hit draws a player card
func (s *Session) Hit() (blackjack.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blackjackAction(s.table.Hit)
}

// Stand plays out the dealer and settles
func (s *Session) Stand() (blackjack.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blackjackAction(s.table.Stand)
}

// NewRound returns the table to betting
func (s *Session) NewRound() (blackjack.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.NewRound()
}

// SetStake changes the default blackjack stake
func (s *Session) SetStake(stake int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cfg.Blackjack.Check(stake); err != nil {
		return err
	}
	return s.table.SetStake(stake)
}

// AdjustStake moves the default blackjack stake by whole steps, clamped to
// the table limits, and returns the new stake.
func (s *Session) AdjustStake(steps int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stake := s.cfg.Blackjack.Adjust(s.table.Stake(), steps)
	if err := s.table.SetStake(stake); err != nil {
		return s.table.Stake(), err
	}
	return stake, nil
}

// Stake returns the default blackjack stake
func (s *Session) Stake() int {
	return s.table.Stake()
}

// Round returns the active blackjack round
func (s *Session) Round() blackjack.Round {
	return s.table.Round()
}

// blackjackAction runs one table action and books the round if it settled.
// Callers hold the lock.
func (s *Session) blackjackAction(fn func() (blackjack.Round, error)) (blackjack.Round, error) {
	before := s.table.Round().Phase
	r, err := fn()
	if r.Phase == blackjack.Ended && before != blackjack.Ended {
		s.recordBlackjack(r)
	}
	return r, err
}

func (s *Session) recordBlackjack(r blackjack.Round) {
	switch {
	case r.Outcome.IsWin():
		s.counters.Wins++
	case r.Outcome.IsLoss():
		s.counters.Losses++
	case r.Outcome == blackjack.OutcomePush:
		s.counters.Pushes++
	}

	s.append(Record{
		Game:    GameBlackjack,
		Stake:   r.Stake,
		Payout:  r.Payout(),
		Outcome: r.Outcome.String(),
		Detail:  fmt.Sprintf("%s (%d) vs %s (%d)", r.Player, r.PlayerScore(), r.Dealer, r.DealerScore()),
	})
}

// Spin plays one round on a catalogue machine
func (s *Session) Spin(machineID string, stake int) (slots.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.machines[machineID]
	if !ok {
		return slots.Result{}, fmt.Errorf("machine %q: %w", machineID, ErrUnknownMachine)
	}
	if err := s.specs[machineID].Limits.Check(stake); err != nil {
		return slots.Result{}, err
	}

	res, err := m.Spin(stake)
	if err != nil && res.Stake == 0 {
		return res, err
	}

	s.counters.Spins++
	if res.Kind == slots.Jackpot {
		s.counters.Jackpots++
	}
	s.counters.SlotWinnings += res.Payout

	s.append(Record{
		Game:    GameSlots,
		Machine: machineID,
		Stake:   res.Stake,
		Payout:  res.Payout,
		Outcome: res.Kind.String(),
		Detail:  res.Reels.String(),
	})
	return res, err
}

// Machine returns the spec of a catalogue machine
func (s *Session) Machine(id string) (MachineSpec, error) {
	spec, ok := s.specs[id]
	if !ok {
		return MachineSpec{}, fmt.Errorf("machine %q: %w", id, ErrUnknownMachine)
	}
	return spec, nil
}

// Machines returns the catalogue in lobby order
func (s *Session) Machines() []MachineSpec {
	out := make([]MachineSpec, 0, len(s.cfg.Machines))
	for _, m := range s.cfg.Machines {
		out = append(out, s.specs[m.ID])
	}
	return out
}

// Limits returns the blackjack table limits
func (s *Session) Limits() Limits {
	return s.cfg.Blackjack
}

// Counters returns the running totals
func (s *Session) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// History returns settled rounds, oldest first
func (s *Session) History() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.history))
	copy(out, s.history)
	return out
}

// Snapshot returns the host-visible state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:        s.id,
		Balance:   s.wallet.Balance(),
		Stake:     s.table.Stake(),
		Counters:  s.counters,
		Blackjack: s.table.View(),
		Limits:    s.cfg.Blackjack,
	}
}

// append adds a record, dropping the oldest past the history bound.
// Callers hold the lock.
func (s *Session) append(rec Record) {
	rec.ID = roundid.New()
	rec.Balance = s.wallet.Balance()
	s.history = append(s.history, rec)
	if over := len(s.history) - s.cfg.HistorySize; over > 0 {
		s.history = append(s.history[:0:0], s.history[over:]...)
	}

	s.logger.Debug("Round recorded",
		"id", rec.ID,
		"game", rec.Game,
		"outcome", rec.Outcome,
		"net", rec.Net())
}
