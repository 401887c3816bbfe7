package session

import (
	"errors"
	"testing"

	"github.com/lox/casino/cards"
	"github.com/lox/casino/internal/blackjack"
	"github.com/lox/casino/internal/ledger"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/roundid"
	"github.com/lox/casino/internal/slots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stackedSource(t *testing.T, s string) func() cards.Deck {
	t.Helper()
	d, err := cards.NewStackedDeck(cards.MustParseCards(s)...)
	require.NoError(t, err)
	return func() cards.Deck { return d }
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := New(DefaultConfig(), append([]Option{WithSeed(42)}, opts...)...)
	require.NoError(t, err)
	return s
}

func TestNewSessionDefaults(t *testing.T) {
	t.Parallel()
	s := newTestSession(t)

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, DefaultStartingBalance, s.Balance())
	assert.Equal(t, 100, s.Stake())
	assert.Len(t, s.Machines(), 6)
	assert.Equal(t, "golden-jackpot", s.Machines()[0].ID)

	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.ID)
	assert.Equal(t, blackjack.Betting, snap.Blackjack.Phase)
	assert.Equal(t, 12500, snap.Balance)
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Machines = append(cfg.Machines, cfg.Machines[0])
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Blackjack.Min = 0
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestDealEnforcesLimits(t *testing.T) {
	t.Parallel()
	s := newTestSession(t)

	for _, stake := range []int{0, 25, 5050} {
		_, err := s.Deal(stake)
		assert.ErrorIs(t, err, ErrStakeOutOfRange, "stake %d", stake)
	}
	assert.Equal(t, DefaultStartingBalance, s.Balance())
	assert.Equal(t, blackjack.Betting, s.Round().Phase)
}

func TestBlackjackRoundIsRecorded(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, WithDeckSource(stackedSource(t, "Ks 6c Qh 5d 8s")))

	r, err := s.Deal(100)
	require.NoError(t, err)
	require.Equal(t, blackjack.Playing, r.Phase)
	assert.Empty(t, s.History())

	r, err = s.Stand()
	require.NoError(t, err)
	assert.Equal(t, blackjack.OutcomePlayerWin, r.Outcome)
	assert.Equal(t, DefaultStartingBalance+100, s.Balance())

	hist := s.History()
	require.Len(t, hist, 1)
	rec := hist[0]
	assert.Equal(t, GameBlackjack, rec.Game)
	assert.Equal(t, "win", rec.Outcome)
	assert.Equal(t, 100, rec.Net())
	assert.Equal(t, s.Balance(), rec.Balance)
	require.NoError(t, roundid.Validate(rec.ID))
	assert.Equal(t, Counters{Wins: 1}, s.Counters())

	_, err = s.Stand()
	assert.ErrorIs(t, err, blackjack.ErrInvalidTransition)
	assert.Len(t, s.History(), 1, "rejected actions are not recorded")
}

func TestNaturalIsRecordedOnDeal(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, WithDeckSource(stackedSource(t, "As 5c Kd 9h")))

	r, err := s.Deal(100)
	require.NoError(t, err)
	assert.Equal(t, blackjack.Ended, r.Phase)
	assert.Len(t, s.History(), 1)
	assert.Equal(t, 1, s.Counters().Wins)
}

func TestCountersByOutcome(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, WithDeckSource(stackedSource(t, "10s 6c 9h 10d 5d")))

	_, err := s.Deal(100)
	require.NoError(t, err)
	_, err = s.Hit()
	require.NoError(t, err)
	assert.Equal(t, Counters{Losses: 1}, s.Counters())

	_, err = s.NewRound()
	require.NoError(t, err)

	s2 := newTestSession(t, WithDeckSource(stackedSource(t, "Ks Kd Qh Qc")))
	_, err = s2.Deal(100)
	require.NoError(t, err)
	_, err = s2.Stand()
	require.NoError(t, err)
	assert.Equal(t, Counters{Pushes: 1}, s2.Counters())
	assert.Equal(t, DefaultStartingBalance, s2.Balance())
}

func TestStakeAdjustments(t *testing.T) {
	t.Parallel()
	s := newTestSession(t)

	stake, err := s.AdjustStake(1)
	require.NoError(t, err)
	assert.Equal(t, 150, stake)

	stake, err = s.AdjustStake(-10)
	require.NoError(t, err)
	assert.Equal(t, 50, stake, "clamped to the table minimum")

	stake, err = s.AdjustStake(1000)
	require.NoError(t, err)
	assert.Equal(t, 5000, stake, "clamped to the table maximum")

	assert.ErrorIs(t, s.SetStake(10), ErrStakeOutOfRange)
	require.NoError(t, s.SetStake(250))
	assert.Equal(t, 250, s.Stake())
}

func TestSpinScenarios(t *testing.T) {
	t.Parallel()
	// Index 4 is the diamond in the default table.
	s := newTestSession(t, WithSource(randutil.NewSequence(4, 4, 4, 0, 0, 3)))

	res, err := s.Spin("fruit-paradise", 100)
	require.NoError(t, err)
	assert.Equal(t, slots.Jackpot, res.Kind)
	assert.Equal(t, 1000, res.Payout)
	assert.Equal(t, DefaultStartingBalance+900, s.Balance())

	res, err = s.Spin("fruit-paradise", 100)
	require.NoError(t, err)
	assert.Equal(t, slots.Pair, res.Kind)
	assert.Equal(t, 50, res.Payout)

	c := s.Counters()
	assert.Equal(t, 2, c.Spins)
	assert.Equal(t, 1, c.Jackpots)
	assert.Equal(t, 1050, c.SlotWinnings)

	hist := s.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "fruit-paradise", hist[0].Machine)
	assert.Equal(t, "jackpot", hist[0].Outcome)
	assert.Equal(t, "💎 💎 💎", hist[0].Detail)
}

func TestSpinErrors(t *testing.T) {
	t.Parallel()
	s := newTestSession(t)

	_, err := s.Spin("nope", 100)
	assert.ErrorIs(t, err, ErrUnknownMachine)

	_, err = s.Spin("mega-fortune", 100)
	assert.ErrorIs(t, err, ErrStakeOutOfRange, "below the machine minimum")

	_, err = s.Machine("nope")
	assert.ErrorIs(t, err, ErrUnknownMachine)

	cfg := DefaultConfig()
	cfg.StartingBalance = 50
	poor, err := New(cfg, WithSeed(1))
	require.NoError(t, err)
	_, err = poor.Spin("fruit-paradise", 100)
	assert.True(t, errors.Is(err, ledger.ErrInsufficientFunds))
	assert.Equal(t, 0, poor.Counters().Spins)
	assert.Empty(t, poor.History())
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.HistorySize = 5
	cfg.StartingBalance = 1_000_000
	s, err := New(cfg, WithSeed(7))
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 12; i++ {
		_, err := s.Spin("fruit-paradise", 25)
		require.NoError(t, err)
		hist := s.History()
		ids = append(ids, hist[len(hist)-1].ID)
	}

	hist := s.History()
	require.Len(t, hist, 5)
	assert.Equal(t, ids[7:], []string{hist[0].ID, hist[1].ID, hist[2].ID, hist[3].ID, hist[4].ID})
	assert.Equal(t, 12, s.Counters().Spins)
}

func TestDeposit(t *testing.T) {
	t.Parallel()
	s := newTestSession(t)

	require.NoError(t, s.Deposit(500))
	assert.Equal(t, DefaultStartingBalance+500, s.Balance())
	assert.ErrorIs(t, s.Deposit(-1), ledger.ErrInvalidAmount)
}
