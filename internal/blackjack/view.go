package blackjack

import (
	"strings"

	"github.com/lox/casino/cards"
)

// CardView is a card as a renderer may show it
type CardView struct {
	Rank   string `json:"rank,omitempty"`
	Suit   string `json:"suit,omitempty"`
	Red    bool   `json:"red,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

func (c CardView) String() string {
	if c.Hidden {
		return "??"
	}
	return c.Rank + c.Suit
}

func cardView(c cards.Card) CardView {
	return CardView{Rank: c.Rank.String(), Suit: c.Suit.String(), Red: c.IsRed()}
}

// View is everything a renderer needs after an engine call. The dealer's hole
// card is masked while the player is still acting and the dealer score only
// counts the visible card.
type View struct {
	Phase       Phase      `json:"phase"`
	Player      []CardView `json:"player"`
	Dealer      []CardView `json:"dealer"`
	PlayerScore int        `json:"playerScore"`
	DealerScore int        `json:"dealerScore"`
	HoleHidden  bool       `json:"holeHidden"`
	Stake       int        `json:"stake"`
	Outcome     Outcome    `json:"outcome"`
	Message     Message    `json:"message"`
	Payout      int        `json:"payout"`
	CardsLeft   int        `json:"cardsLeft"`
}

// View renders the round
func (r Round) View() View {
	return r.view(r.Dealer, r.Phase)
}

func (r Round) view(dealer cards.Hand, phase Phase) View {
	v := View{
		Phase:       phase,
		Player:      make([]CardView, len(r.Player)),
		Dealer:      make([]CardView, len(dealer)),
		PlayerScore: r.Player.Score(),
		Stake:       r.Stake,
		Message:     MessageFor(phase, r.Outcome),
		CardsLeft:   r.Deck.Len(),
	}
	for i, c := range r.Player {
		v.Player[i] = cardView(c)
	}

	v.HoleHidden = phase == Playing && len(dealer) > 1
	for i, c := range dealer {
		if v.HoleHidden && i == 1 {
			v.Dealer[i] = CardView{Hidden: true}
			continue
		}
		v.Dealer[i] = cardView(c)
	}
	if v.HoleHidden {
		v.DealerScore = dealer[:1].Score()
	} else {
		v.DealerScore = dealer.Score()
	}

	if phase == Ended {
		v.Outcome = r.Outcome
		v.Payout = r.Payout()
	}
	return v
}

// DealerFrames returns the dealer's turn as a sequence of views for a host to
// replay at its own pace: one frame per dealer hand from the revealed hole
// card to the final draw, followed by the settled view. Rounds that ended
// without the dealer playing yield only the settled view.
func (r Round) DealerFrames() []View {
	if !r.DealerPlayed {
		return []View{r.View()}
	}

	frames := make([]View, 0, len(r.Dealer))
	for n := 2; n <= len(r.Dealer); n++ {
		frames = append(frames, r.view(r.Dealer[:n], DealerTurn))
	}
	return append(frames, r.View())
}

// CardsString renders a hand of views, e.g. "A♠ ??"
func CardsString(cs []CardView) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
