package slots

import (
	"errors"
	"fmt"
)

// Symbol is one reel face
type Symbol string

// Symbol alphabet, commonest payout first
const (
	Cherry  Symbol = "🍒"
	Lemon   Symbol = "🍋"
	Orange  Symbol = "🍊"
	Grape   Symbol = "🍇"
	Diamond Symbol = "💎"
	Seven   Symbol = "7️⃣"
	Star    Symbol = "⭐"
	Bell    Symbol = "🔔"
)

// FallbackMultiplier pays a jackpot on a symbol missing from the table
const FallbackMultiplier = 2

// PayLine maps a symbol to its three-of-a-kind multiplier
type PayLine struct {
	Symbol     Symbol `json:"symbol"`
	Multiplier int    `json:"multiplier"`
}

// PayTable is the ordered symbol alphabet with multipliers increasing with
// rarity. Every symbol on the table is equally likely on each reel.
type PayTable struct {
	lines []PayLine
	index map[Symbol]int
}

// DefaultPayTable returns the classic eight-symbol table
func DefaultPayTable() PayTable {
	t, err := NewPayTable(
		PayLine{Cherry, 2},
		PayLine{Lemon, 3},
		PayLine{Orange, 4},
		PayLine{Grape, 5},
		PayLine{Diamond, 10},
		PayLine{Seven, 20},
		PayLine{Star, 50},
		PayLine{Bell, 100},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// NewPayTable validates and builds a pay table
func NewPayTable(lines ...PayLine) (PayTable, error) {
	if len(lines) < 2 {
		return PayTable{}, errors.New("pay table needs at least two symbols")
	}

	index := make(map[Symbol]int, len(lines))
	for i, l := range lines {
		if l.Symbol == "" {
			return PayTable{}, fmt.Errorf("pay line %d: empty symbol", i)
		}
		if _, dup := index[l.Symbol]; dup {
			return PayTable{}, fmt.Errorf("pay line %d: duplicate symbol %s", i, l.Symbol)
		}
		if l.Multiplier <= 0 {
			return PayTable{}, fmt.Errorf("pay line %d: multiplier must be positive", i)
		}
		if i > 0 && l.Multiplier < lines[i-1].Multiplier {
			return PayTable{}, fmt.Errorf("pay line %d: multipliers must not decrease", i)
		}
		index[l.Symbol] = i
	}

	out := make([]PayLine, len(lines))
	copy(out, lines)
	return PayTable{lines: out, index: index}, nil
}

// Lines returns a copy of the pay lines in rarity order
func (t PayTable) Lines() []PayLine {
	out := make([]PayLine, len(t.lines))
	copy(out, t.lines)
	return out
}

// Symbols returns the alphabet in rarity order
func (t PayTable) Symbols() []Symbol {
	out := make([]Symbol, len(t.lines))
	for i, l := range t.lines {
		out[i] = l.Symbol
	}
	return out
}

// Len returns the alphabet size
func (t PayTable) Len() int {
	return len(t.lines)
}

// Symbol returns the i-th symbol of the alphabet
func (t PayTable) Symbol(i int) Symbol {
	return t.lines[i].Symbol
}

// Multiplier returns the three-of-a-kind multiplier for s
func (t PayTable) Multiplier(s Symbol) int {
	if i, ok := t.index[s]; ok {
		return t.lines[i].Multiplier
	}
	return FallbackMultiplier
}

// ExpectedReturn is the theoretical return per unit staked with every symbol
// equally likely on each reel. Pair payouts are floored per spin, so small odd
// stakes return slightly less.
func (t PayTable) ExpectedReturn() float64 {
	n := float64(len(t.lines))
	if n == 0 {
		return 0
	}
	outcomes := n * n * n

	var jackpots float64
	for _, l := range t.lines {
		jackpots += float64(l.Multiplier)
	}
	pairs := 3 * n * (n - 1)
	return jackpots/outcomes + 0.5*pairs/outcomes
}

// MaxMultiplier returns the top multiplier
func (t PayTable) MaxMultiplier() int {
	if len(t.lines) == 0 {
		return FallbackMultiplier
	}
	return max(t.lines[len(t.lines)-1].Multiplier, FallbackMultiplier)
}
