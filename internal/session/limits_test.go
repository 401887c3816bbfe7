package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitsCheck(t *testing.T) {
	t.Parallel()
	l := BlackjackLimits()
	tests := []struct {
		stake int
		ok    bool
	}{
		{stake: 49},
		{stake: 50, ok: true},
		{stake: 2500, ok: true},
		{stake: 5000, ok: true},
		{stake: 5001},
		{stake: -100},
	}
	for _, tt := range tests {
		err := l.Check(tt.stake)
		if tt.ok {
			assert.NoError(t, err, "stake %d", tt.stake)
		} else {
			assert.ErrorIs(t, err, ErrStakeOutOfRange, "stake %d", tt.stake)
		}
	}
}

func TestLimitsAdjust(t *testing.T) {
	t.Parallel()
	l := SlotLimits()
	assert.Equal(t, 125, l.Adjust(100, 1))
	assert.Equal(t, 75, l.Adjust(100, -1))
	assert.Equal(t, 25, l.Adjust(25, -1))
	assert.Equal(t, 1000, l.Adjust(1000, 3))
	assert.Equal(t, 25, l.Clamp(0))
}

func TestLimitsValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, BlackjackLimits().Validate())
	require.NoError(t, SlotLimits().Validate())

	tests := []struct {
		name   string
		mutate func(*Limits)
	}{
		{"zero min", func(l *Limits) { l.Min = 0 }},
		{"max below min", func(l *Limits) { l.Max = 10 }},
		{"zero step", func(l *Limits) { l.Step = 0 }},
		{"default outside", func(l *Limits) { l.Default = 10_000 }},
		{"preset outside", func(l *Limits) { l.Presets = append(l.Presets, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := BlackjackLimits()
			tt.mutate(&l)
			assert.Error(t, l.Validate())
		})
	}
}

func TestDefaultCatalogue(t *testing.T) {
	t.Parallel()
	mins := map[string]int{
		"golden-jackpot": 100,
		"diamond-luck":   50,
		"royal-poker":    200,
		"fruit-paradise": 25,
		"fire-roulette":  150,
		"mega-fortune":   300,
	}

	catalogue := DefaultCatalogue()
	require.Len(t, catalogue, len(mins))
	for _, m := range catalogue {
		assert.Equal(t, mins[m.ID], m.Limits.Min, m.ID)
		assert.NoError(t, m.Limits.Validate(), m.ID)
		assert.GreaterOrEqual(t, m.Limits.Default, m.Limits.Min, m.ID)
		assert.Equal(t, 8, m.PayTable.Len(), m.ID)
	}
	assert.True(t, catalogue[0].Hot)
	assert.False(t, catalogue[1].Hot)
	assert.True(t, BlackjackLimits().IsPreset(2500))
}
