package blackjack

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewMasksHoleCardWhilePlaying(t *testing.T) {
	t.Parallel()
	r := Deal(stacked(t, "Ks 6c Qh 5d 8s"), 100)
	v := r.View()

	assert.Equal(t, Playing, v.Phase)
	assert.True(t, v.HoleHidden)
	require.Len(t, v.Dealer, 2)
	assert.Equal(t, "6♣", v.Dealer[0].String())
	assert.True(t, v.Dealer[1].Hidden)
	assert.Equal(t, "??", v.Dealer[1].String())
	assert.Equal(t, 6, v.DealerScore, "only the up card is counted")
	assert.Equal(t, 20, v.PlayerScore)
	assert.Equal(t, MessageYourMove, v.Message)
	assert.Equal(t, OutcomeNone, v.Outcome)
	assert.Equal(t, 0, v.Payout)
}

func TestViewRevealsAfterSettlement(t *testing.T) {
	t.Parallel()
	r := Deal(stacked(t, "Ks 6c Qh 5d 8s"), 100)
	r, err := r.Stand()
	require.NoError(t, err)

	v := r.View()
	assert.Equal(t, Ended, v.Phase)
	assert.False(t, v.HoleHidden)
	assert.Equal(t, "6♣ 5♦ 8♠", CardsString(v.Dealer))
	assert.Equal(t, 19, v.DealerScore)
	assert.Equal(t, MessageWin, v.Message)
	assert.Equal(t, 200, v.Payout)
}

func TestViewBetting(t *testing.T) {
	t.Parallel()
	v := Round{Phase: Betting, Stake: 100}.View()
	assert.Equal(t, MessagePlaceBet, v.Message)
	assert.Empty(t, v.Player)
	assert.Empty(t, v.Dealer)
	assert.False(t, v.HoleHidden)
}

func TestDealerFrames(t *testing.T) {
	t.Parallel()

	t.Run("dealer draws", func(t *testing.T) {
		r := Deal(stacked(t, "Ks 6c Qh 5d 8s"), 100)
		r, err := r.Stand()
		require.NoError(t, err)

		frames := r.DealerFrames()
		require.Len(t, frames, 3)

		assert.Equal(t, DealerTurn, frames[0].Phase)
		assert.Equal(t, 11, frames[0].DealerScore)
		assert.Len(t, frames[0].Dealer, 2)
		assert.Equal(t, MessageDealerTurn, frames[0].Message)
		assert.Equal(t, 0, frames[0].Payout)

		assert.Equal(t, DealerTurn, frames[1].Phase)
		assert.Equal(t, 19, frames[1].DealerScore)

		assert.Equal(t, r.View(), frames[2])
	})

	t.Run("bust skips the dealer", func(t *testing.T) {
		r := Deal(stacked(t, "10s 6c 9h 10d 5d"), 100)
		r, err := r.Hit()
		require.NoError(t, err)

		frames := r.DealerFrames()
		require.Len(t, frames, 1)
		assert.Equal(t, MessageBust, frames[0].Message)
	})
}

func TestMessageFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		outcome Outcome
		want    Message
	}{
		{OutcomePlayerBust, MessageBust},
		{OutcomeDealerBust, MessageDealerBust},
		{OutcomePlayerWin, MessageWin},
		{OutcomeDealerWin, MessageLoss},
		{OutcomePush, MessagePush},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, MessageFor(Ended, tt.outcome))
		})
	}
}

func TestViewJSON(t *testing.T) {
	t.Parallel()
	r := Deal(stacked(t, "As 5c Kd 9h"), 100)

	data, err := json.Marshal(r.View())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ended", decoded["phase"])
	assert.Equal(t, "win", decoded["outcome"])
	assert.Equal(t, string(MessageWin), decoded["message"])
	assert.EqualValues(t, 200, decoded["payout"])
}
