package session

import (
	"errors"
	"fmt"
	"slices"
)

// ErrStakeOutOfRange is returned when a stake falls outside a game's limits
var ErrStakeOutOfRange = errors.New("stake out of range")

// Limits bound the stakes a host accepts for one game
type Limits struct {
	Min     int   `json:"min"`
	Max     int   `json:"max"`
	Step    int   `json:"step"`
	Default int   `json:"default"`
	Presets []int `json:"presets,omitempty"`
}

// BlackjackLimits are the table limits of the lobby
func BlackjackLimits() Limits {
	return Limits{
		Min:     50,
		Max:     5000,
		Step:    50,
		Default: 100,
		Presets: []int{50, 100, 250, 500, 1000, 2500},
	}
}

// SlotLimits are the default slot machine limits
func SlotLimits() Limits {
	return Limits{
		Min:     25,
		Max:     1000,
		Step:    25,
		Default: 100,
		Presets: []int{25, 50, 100, 250, 500, 1000},
	}
}

// Validate checks the limits are usable
func (l Limits) Validate() error {
	if l.Min <= 0 {
		return fmt.Errorf("minimum stake must be positive, got %d", l.Min)
	}
	if l.Max < l.Min {
		return fmt.Errorf("maximum stake %d is below minimum %d", l.Max, l.Min)
	}
	if l.Step <= 0 {
		return fmt.Errorf("stake step must be positive, got %d", l.Step)
	}
	if l.Default < l.Min || l.Default > l.Max {
		return fmt.Errorf("default stake %d outside %d-%d", l.Default, l.Min, l.Max)
	}
	for _, p := range l.Presets {
		if p < l.Min || p > l.Max {
			return fmt.Errorf("preset %d outside %d-%d", p, l.Min, l.Max)
		}
	}
	return nil
}

// Check rejects a stake outside [Min, Max]
func (l Limits) Check(stake int) error {
	if stake < l.Min || stake > l.Max {
		return fmt.Errorf("stake %d outside %d-%d: %w", stake, l.Min, l.Max, ErrStakeOutOfRange)
	}
	return nil
}

// Clamp pulls a stake into [Min, Max]
func (l Limits) Clamp(stake int) int {
	return min(max(stake, l.Min), l.Max)
}

// Adjust moves a stake by whole steps and clamps the result
func (l Limits) Adjust(stake, steps int) int {
	return l.Clamp(stake + steps*l.Step)
}

// IsPreset reports whether stake is one of the quick-pick amounts
func (l Limits) IsPreset(stake int) bool {
	return slices.Contains(l.Presets, stake)
}
