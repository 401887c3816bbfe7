package blackjack

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/casino/cards"
	"github.com/lox/casino/internal/ledger"
	"github.com/lox/casino/internal/randutil"
)

// DefaultStake is used until the host picks another one
const DefaultStake = 100

// Table holds the single active round of one blackjack table and settles it
// through the ledger.
type Table struct {
	mu      sync.Mutex
	ledger  ledger.Ledger
	logger  *log.Logger
	newDeck func() cards.Deck
	stake   int
	round   Round
	rounds  int
}

// TableOption configures a Table during creation.
type TableOption func(*Table)

// WithStake sets the initial default stake
func WithStake(stake int) TableOption {
	return func(t *Table) {
		t.stake = stake
	}
}

// WithLogger sets the table logger
func WithLogger(logger *log.Logger) TableOption {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithDeckSource overrides how each round's deck is built. This overrides the
// random source for deck creation.
func WithDeckSource(fn func() cards.Deck) TableOption {
	return func(t *Table) {
		t.newDeck = fn
	}
}

// NewTable creates a table in the Betting phase. The random source is required
// to make randomness explicit and testing deterministic.
func NewTable(src randutil.Source, l ledger.Ledger, opts ...TableOption) *Table {
	if src == nil {
		panic("random source is required for table creation")
	}
	if l == nil {
		panic("ledger is required for table creation")
	}

	t := &Table{
		ledger: l,
		logger: log.New(io.Discard),
		stake:  DefaultStake,
		newDeck: func() cards.Deck {
			return cards.NewDeck(src)
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithPrefix("table")
	t.round = Round{Phase: Betting, Stake: t.stake}
	return t
}

// Start debits the stake and deals a new round. On any error nothing changes.
func (t *Table) Start(stake int) (Round, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.round.Phase != Betting {
		return t.round, fmt.Errorf("start round during %s: %w", t.round.Phase, ErrInvalidTransition)
	}
	if err := t.ledger.Debit(stake); err != nil {
		return t.round, fmt.Errorf("start round: %w", err)
	}

	t.stake = stake
	t.rounds++
	t.round = Deal(t.newDeck(), stake)

	t.logger.Debug("Dealt round",
		"round", t.rounds,
		"stake", stake,
		"player", t.round.Player,
		"upcard", t.round.Dealer[0])

	return t.round, t.settleIfEnded()
}

// Hit draws a card for the player
func (t *Table) Hit() (Round, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := t.round.Hit()
	if err != nil {
		return t.round, err
	}
	t.round = next
	return t.round, t.settleIfEnded()
}

// Stand plays the dealer's turn and settles
func (t *Table) Stand() (Round, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := t.round.Stand()
	if err != nil {
		return t.round, err
	}
	t.round = next
	return t.round, t.settleIfEnded()
}

// NewRound clears the finished round and returns to Betting. The last stake
// stays as the default.
func (t *Table) NewRound() (Round, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.round.Phase != Ended && t.round.Phase != DealerTurn {
		return t.round, fmt.Errorf("new round during %s: %w", t.round.Phase, ErrInvalidTransition)
	}
	t.round = Round{Phase: Betting, Stake: t.stake}
	return t.round, nil
}

// SetStake changes the default stake while betting
func (t *Table) SetStake(stake int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.round.Phase != Betting {
		return fmt.Errorf("set stake during %s: %w", t.round.Phase, ErrInvalidTransition)
	}
	if stake <= 0 {
		return fmt.Errorf("stake %d: %w", stake, ledger.ErrInvalidAmount)
	}
	t.stake = stake
	t.round.Stake = stake
	return nil
}

// Stake returns the current default stake
func (t *Table) Stake() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stake
}

// Round returns the active round
func (t *Table) Round() Round {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.round
}

// View renders the active round
func (t *Table) View() View {
	return t.Round().View()
}

// settleIfEnded credits the payout exactly once, at the transition to Ended.
// Callers hold the lock.
func (t *Table) settleIfEnded() error {
	r := t.round
	if r.Phase != Ended {
		return nil
	}

	t.logger.Info("Round settled",
		"round", t.rounds,
		"outcome", r.Outcome,
		"player", r.PlayerScore(),
		"dealer", r.DealerScore(),
		"stake", r.Stake,
		"payout", r.Payout())

	payout := r.Payout()
	if payout == 0 {
		return nil
	}
	if err := t.ledger.Credit(payout); err != nil {
		t.logger.Error("Failed to credit payout", "payout", payout, "error", err)
		return fmt.Errorf("credit payout: %w", err)
	}
	return nil
}
