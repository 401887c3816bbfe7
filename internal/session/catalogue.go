package session

import (
	"github.com/lox/casino/internal/slots"
)

// MachineSpec describes one slot machine in the lobby catalogue
type MachineSpec struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	TopPrize int            `json:"topPrize"`
	Hot      bool           `json:"hot"`
	Limits   Limits         `json:"limits"`
	PayTable slots.PayTable `json:"-"`
}

// DefaultCatalogue returns the six lobby machines. They share the default pay
// table and differ in their minimum stake.
func DefaultCatalogue() []MachineSpec {
	machine := func(id, title string, minStake, topPrize int, hot bool) MachineSpec {
		limits := SlotLimits()
		limits.Min = minStake
		limits.Default = max(limits.Default, minStake)
		limits.Presets = presetsFrom(limits.Presets, minStake)
		return MachineSpec{
			ID:       id,
			Title:    title,
			TopPrize: topPrize,
			Hot:      hot,
			Limits:   limits,
			PayTable: slots.DefaultPayTable(),
		}
	}

	return []MachineSpec{
		machine("golden-jackpot", "Golden Jackpot", 100, 1_000_000, true),
		machine("diamond-luck", "Diamond Luck", 50, 500_000, false),
		machine("royal-poker", "Royal Poker", 200, 2_000_000, true),
		machine("fruit-paradise", "Fruit Paradise", 25, 250_000, false),
		machine("fire-roulette", "Fire Roulette", 150, 1_500_000, true),
		machine("mega-fortune", "Mega Fortune", 300, 3_000_000, false),
	}
}

func presetsFrom(presets []int, minStake int) []int {
	var out []int
	for _, p := range presets {
		if p >= minStake {
			out = append(out, p)
		}
	}
	return out
}
