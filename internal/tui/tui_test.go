package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/casino/cards"
	"github.com/lox/casino/internal/config"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func stackedSource(t *testing.T, s string) func() cards.Deck {
	t.Helper()
	d, err := cards.NewStackedDeck(cards.MustParseCards(s)...)
	require.NoError(t, err)
	return func() cards.Deck { return d }
}

func newTestModel(t *testing.T, opts ...session.Option) (*Model, *session.Session) {
	t.Helper()
	cfg := config.Default()
	sessCfg, err := cfg.Session()
	require.NoError(t, err)

	sess, err := session.New(sessCfg, append([]session.Option{
		session.WithSeed(1),
		session.WithLogger(quietLogger()),
	}, opts...)...)
	require.NoError(t, err)

	m := NewModel(sess, cfg, quietLogger(), WithTestMode(), WithFrameSource(randutil.New(2)))
	return m, sess
}

// lastEntry returns the most recent captured log line
func lastEntry(t *testing.T, m *Model) string {
	t.Helper()
	entries := m.GetCapturedLog()
	require.NotEmpty(t, entries)
	return entries[len(entries)-1]
}

func containsEntry(m *Model, substr string) bool {
	for _, e := range m.GetCapturedLog() {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestTestMode(t *testing.T) {
	t.Parallel()

	t.Run("test mode captures log entries", func(t *testing.T) {
		m, _ := newTestModel(t)
		assert.True(t, m.IsTestMode())

		captured := m.GetCapturedLog()
		require.Len(t, captured, 2)
		assert.Contains(t, captured[0], "Welcome to the casino")
		assert.Contains(t, captured[1], "Balance $12500")

		m.AddLogEntries("one", "two")
		assert.Equal(t, "two", lastEntry(t, m))
	})

	t.Run("production mode does not capture logs", func(t *testing.T) {
		sess, err := session.New(session.DefaultConfig(), session.WithLogger(quietLogger()))
		require.NoError(t, err)
		m := NewModel(sess, nil, quietLogger())

		assert.False(t, m.IsTestMode())
		m.AddLogEntry("Some log entry")
		assert.Nil(t, m.GetCapturedLog())
	})
}

func TestDealAndStandReplaysDealer(t *testing.T) {
	t.Parallel()
	m, sess := newTestModel(t, session.WithDeckSource(stackedSource(t, "Ks 6c Qh 5d 8s")))

	assert.Nil(t, m.Submit("deal"))
	assert.Contains(t, lastEntry(t, m), "Dealt $100")
	assert.Contains(t, m.Stage()[0], "(6)", "hole card hidden while playing")

	cmd := m.Submit("stand")
	require.NotNil(t, cmd, "dealer turn is paced")
	assert.True(t, m.Animating())
	assert.Contains(t, m.Stage()[0], "(11)")
	assert.False(t, containsEntry(m, "You win!"), "result waits for the last frame")

	// Settlement happened before the replay started
	assert.Equal(t, 12600, sess.Balance())

	_, cmd = m.Update(frameMsg{id: 1})
	require.NotNil(t, cmd)
	assert.Contains(t, m.Stage()[0], "(19)")

	_, cmd = m.Update(frameMsg{id: 1})
	assert.Nil(t, cmd)
	assert.False(t, m.Animating())
	assert.Contains(t, m.Stage()[2], "You win!")
	assert.Contains(t, lastEntry(t, m), "balance $12600")
}

func TestCommandSkipsAnimation(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t, session.WithDeckSource(stackedSource(t, "Ks 6c Qh 5d 8s")))

	m.Submit("deal")
	require.NotNil(t, m.Submit("stand"))
	require.True(t, m.Animating())

	m.Submit("history")
	assert.False(t, m.Animating())
	assert.Contains(t, m.Stage()[2], "You win!")
	assert.True(t, containsEntry(m, "You win!"))
	assert.Contains(t, lastEntry(t, m), "blackjack")

	// A tick from the skipped replay is ignored
	_, cmd := m.Update(frameMsg{id: 1})
	assert.Nil(t, cmd)
	assert.Contains(t, m.Stage()[2], "You win!")
}

func TestNaturalSettlesOnDeal(t *testing.T) {
	t.Parallel()
	m, sess := newTestModel(t, session.WithDeckSource(stackedSource(t, "As 5c Kd 9h")))

	assert.Nil(t, m.Submit("deal 200"))
	assert.Contains(t, lastEntry(t, m), "You win!")
	assert.Equal(t, 12700, sess.Balance())

	// Dealing again clears the finished table first
	m.Submit("deal")
	assert.Contains(t, lastEntry(t, m), "Dealt $200")
}

func TestSpinReplaysReels(t *testing.T) {
	t.Parallel()
	// Index 4 is the diamond in the default table.
	m, sess := newTestModel(t, session.WithSource(randutil.NewSequence(4, 4, 4)))

	cmd := m.Submit("spin")
	require.NotNil(t, cmd)
	assert.True(t, m.Animating())
	assert.Contains(t, m.Stage()[2], "Spinning...")
	assert.Equal(t, 12500+900, sess.Balance())

	_, cmd = m.Update(frameMsg{id: 1})
	require.NotNil(t, cmd, "forty frames by default")

	m.Submit("")
	assert.False(t, m.Animating())
	stage := m.Stage()
	assert.Contains(t, stage[0], "Golden Jackpot")
	assert.Contains(t, stage[1], "💎 | 💎 | 💎")
	assert.Contains(t, stage[2], "JACKPOT! x10 win!")
	assert.Contains(t, lastEntry(t, m), "Paid $1000")
	assert.Equal(t, 1, sess.Counters().Jackpots)
}

func TestMachineSelection(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)

	m.Submit("machines")
	entries := m.GetCapturedLog()
	assert.Contains(t, entries[len(entries)-6], "* golden-jackpot")
	assert.Contains(t, entries[len(entries)-6], "HOT")

	m.Submit("machine fruit-paradise")
	assert.Contains(t, lastEntry(t, m), "Fruit Paradise")
	assert.Contains(t, m.Stage()[2], "$25-$1000")

	m.Submit("machine nope")
	assert.Contains(t, lastEntry(t, m), "Unknown machine")
}

func TestStakeCommands(t *testing.T) {
	t.Parallel()
	m, sess := newTestModel(t)

	tests := []struct {
		input string
		want  int
	}{
		{input: "stake +", want: 150},
		{input: "stake -", want: 100},
		{input: "stake -", want: 50},
		{input: "stake -", want: 50},
		{input: "stake 250", want: 250},
	}
	for _, tt := range tests {
		m.Submit(tt.input)
		assert.Equal(t, tt.want, sess.Stake(), tt.input)
	}
	assert.Contains(t, lastEntry(t, m), "Stake set to $250")

	m.Submit("stake")
	assert.Contains(t, lastEntry(t, m), "limits $50-$5000")
}

func TestCommandErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{input: "deal 10", want: "Stake out of range"},
		{input: "hit", want: "Not now"},
		{input: "stand", want: "Not now"},
		{input: "new", want: "Not now"},
		{input: "spin 5000", want: "Stake out of range"},
		{input: "spin lots", want: "invalid amount"},
		{input: "deposit", want: "usage"},
		{input: "deposit -5", want: "invalid amount"},
		{input: "dance", want: "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, sess := newTestModel(t)
			assert.Nil(t, m.Submit(tt.input))
			assert.Contains(t, lastEntry(t, m), tt.want)
			assert.Equal(t, 12500, sess.Balance())
		})
	}
}

func TestInsufficientFunds(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Wallet.StartingBalance = 50
	sessCfg, err := cfg.Session()
	require.NoError(t, err)
	sess, err := session.New(sessCfg, session.WithSeed(1), session.WithLogger(quietLogger()))
	require.NoError(t, err)
	m := NewModel(sess, cfg, quietLogger(), WithTestMode())

	assert.Nil(t, m.Submit("spin"))
	assert.Contains(t, lastEntry(t, m), "Insufficient funds")
	assert.Equal(t, 50, sess.Balance())
	assert.Zero(t, sess.Counters().Spins)

	m.Submit("deposit 1000")
	assert.Contains(t, lastEntry(t, m), "Deposited $1000, balance $1050")
	assert.NotNil(t, m.Submit("spin"))
	assert.Equal(t, 1, sess.Counters().Spins)
}

func TestQuitAndView(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)

	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Balance: $12500")
	assert.Contains(t, view, "Golden Jackpot")
	assert.Contains(t, view, "Place your bet")

	cmd := m.Submit("quit")
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}
