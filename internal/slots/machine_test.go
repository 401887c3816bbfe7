package slots

import (
	"errors"
	"testing"

	"github.com/lox/casino/internal/ledger"
	"github.com/lox/casino/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// symbolIndex returns the draw value that lands on s in the default table
func symbolIndex(t *testing.T, s Symbol) int {
	t.Helper()
	for i, sym := range DefaultPayTable().Symbols() {
		if sym == s {
			return i
		}
	}
	t.Fatalf("symbol %s not in default table", s)
	return -1
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	table := DefaultPayTable()
	tests := []struct {
		name   string
		reels  Reels
		stake  int
		kind   Kind
		payout int
	}{
		{name: "diamond jackpot", reels: Reels{Diamond, Diamond, Diamond}, stake: 100, kind: Jackpot, payout: 1000},
		{name: "bell jackpot", reels: Reels{Bell, Bell, Bell}, stake: 25, kind: Jackpot, payout: 2500},
		{name: "pair first two", reels: Reels{Cherry, Cherry, Grape}, stake: 100, kind: Pair, payout: 50},
		{name: "pair last two", reels: Reels{Grape, Cherry, Cherry}, stake: 100, kind: Pair, payout: 50},
		{name: "pair outer", reels: Reels{Cherry, Grape, Cherry}, stake: 100, kind: Pair, payout: 50},
		{name: "pair floors odd stake", reels: Reels{Star, Star, Lemon}, stake: 75, kind: Pair, payout: 37},
		{name: "no match", reels: Reels{Cherry, Lemon, Orange}, stake: 100, kind: NoWin, payout: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.reels, tt.stake, table)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.payout, res.Payout)
			assert.Equal(t, tt.stake, res.Stake)
		})
	}
}

func TestEvaluateUnknownSymbolFallsBack(t *testing.T) {
	t.Parallel()
	res := Evaluate(Reels{"🍉", "🍉", "🍉"}, 100, DefaultPayTable())
	assert.Equal(t, Jackpot, res.Kind)
	assert.Equal(t, FallbackMultiplier, res.Multiplier)
	assert.Equal(t, 200, res.Payout)
}

func TestEvaluatePayoutBounds(t *testing.T) {
	t.Parallel()
	table := DefaultPayTable()
	syms := table.Symbols()
	for _, stake := range []int{1, 25, 99, 100, 1000} {
		for _, a := range syms {
			for _, b := range syms {
				for _, c := range syms {
					res := Evaluate(Reels{a, b, c}, stake, table)
					require.GreaterOrEqual(t, res.Payout, 0)
					require.LessOrEqual(t, res.Payout, stake*table.MaxMultiplier())
				}
			}
		}
	}
}

func TestMachineSpinJackpotScenario(t *testing.T) {
	t.Parallel()
	d := symbolIndex(t, Diamond)
	w := ledger.NewWallet(1000)
	m := NewMachine(randutil.NewSequence(d, d, d), w)

	res, err := m.Spin(100)
	require.NoError(t, err)
	assert.Equal(t, Reels{Diamond, Diamond, Diamond}, res.Reels)
	assert.Equal(t, 10, res.Multiplier)
	assert.Equal(t, 1000, res.Payout)
	assert.Equal(t, 1900, w.Balance())
	assert.Equal(t, "JACKPOT! x10 win!", res.Message())
}

func TestMachineSpinPairScenario(t *testing.T) {
	t.Parallel()
	c, g := symbolIndex(t, Cherry), symbolIndex(t, Grape)
	w := ledger.NewWallet(1000)
	m := NewMachine(randutil.NewSequence(c, c, g), w)

	res, err := m.Spin(100)
	require.NoError(t, err)
	assert.Equal(t, Pair, res.Kind)
	assert.Equal(t, 50, res.Payout)
	assert.Equal(t, -50, res.Net())
	assert.Equal(t, 950, w.Balance())
}

func TestMachineSpinNoWin(t *testing.T) {
	t.Parallel()
	w := ledger.NewWallet(1000)
	m := NewMachine(randutil.NewSequence(0, 1, 2), w)

	res, err := m.Spin(100)
	require.NoError(t, err)
	assert.Equal(t, NoWin, res.Kind)
	assert.Equal(t, 900, w.Balance())

	entries := w.Entries()
	require.Len(t, entries, 1, "no credit on a losing spin")
	assert.Equal(t, ledger.EntryDebit, entries[0].Kind)
}

func TestMachineSpinInsufficientFunds(t *testing.T) {
	t.Parallel()
	seq := randutil.NewSequence(0, 0, 0)
	w := ledger.NewWallet(50)
	m := NewMachine(seq, w)

	_, err := m.Spin(100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrInsufficientFunds))
	assert.Equal(t, 50, w.Balance())
	assert.Equal(t, 3, seq.Remaining(), "no symbols drawn on a failed debit")
}

func TestMachineSymbolsUniform(t *testing.T) {
	t.Parallel()
	w := ledger.NewWallet(1 << 40)
	m := NewMachine(randutil.New(11), w)
	table := m.PayTable()

	const spins = 40000
	counts := make(map[Symbol]int)
	for i := 0; i < spins; i++ {
		res, err := m.Spin(1)
		require.NoError(t, err)
		for _, s := range res.Reels {
			counts[s]++
		}
	}

	expected := float64(spins*ReelCount) / float64(table.Len())
	for _, s := range table.Symbols() {
		got := float64(counts[s])
		assert.InEpsilon(t, expected, got, 0.05, "symbol %s drawn %v times", s, got)
	}
}

func TestFramesDoNotConsumeMachineSource(t *testing.T) {
	t.Parallel()
	frames := Frames(randutil.New(3), DefaultPayTable(), 40)
	assert.Len(t, frames, 40)

	// Same machine seed gives the same result no matter how many frames a
	// host rendered from its own source.
	a := NewMachine(randutil.New(9), ledger.NewWallet(1000))
	b := NewMachine(randutil.New(9), ledger.NewWallet(1000))
	_ = Frames(randutil.New(4), DefaultPayTable(), 100)

	ra, err := a.Spin(100)
	require.NoError(t, err)
	rb, err := b.Spin(100)
	require.NoError(t, err)
	assert.Equal(t, ra, rb)
}

func TestNewPayTableValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		lines []PayLine
	}{
		{name: "too small", lines: []PayLine{{Cherry, 2}}},
		{name: "duplicate", lines: []PayLine{{Cherry, 2}, {Cherry, 3}}},
		{name: "zero multiplier", lines: []PayLine{{Cherry, 0}, {Lemon, 3}}},
		{name: "decreasing", lines: []PayLine{{Cherry, 5}, {Lemon, 3}}},
		{name: "empty symbol", lines: []PayLine{{"", 2}, {Lemon, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPayTable(tt.lines...)
			assert.Error(t, err)
		})
	}

	table, err := NewPayTable(PayLine{Cherry, 2}, PayLine{Bell, 2})
	require.NoError(t, err)
	assert.Equal(t, []Symbol{Cherry, Bell}, table.Symbols())
	assert.Equal(t, 2, table.MaxMultiplier())
}

func TestDefaultPayTable(t *testing.T) {
	t.Parallel()
	table := DefaultPayTable()
	assert.Equal(t, 8, table.Len())
	assert.Equal(t, 100, table.MaxMultiplier())
	assert.Equal(t, 2, table.Multiplier(Cherry))
	assert.Equal(t, 50, table.Multiplier(Star))

	// 194 jackpot multiples and 168 pairs at half stake over 512 outcomes
	assert.InDelta(t, (194.0+84.0)/512.0, table.ExpectedReturn(), 1e-12)
}
