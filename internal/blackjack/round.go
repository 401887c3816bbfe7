package blackjack

import (
	"errors"
	"fmt"

	"github.com/lox/casino/cards"
)

// DealerStandsOn is the score at which the dealer stops drawing
const DealerStandsOn = 17

// ErrInvalidTransition is returned when an action is not allowed in the
// current phase. The round is left unchanged.
var ErrInvalidTransition = errors.New("invalid transition")

// Round is the complete state of one round. It is a value: every action
// returns a new Round.
type Round struct {
	Deck    cards.Deck
	Player  cards.Hand
	Dealer  cards.Hand
	Stake   int
	Phase   Phase
	Outcome Outcome

	// DealerPlayed is set once the player stands and the dealer policy ran
	DealerPlayed bool
}

// Deal starts a round from a fresh deck: player, dealer, player, dealer. The
// dealer's second card is the hole card. An opening 21 settles immediately.
func Deal(deck cards.Deck, stake int) Round {
	r := Round{Deck: deck, Stake: stake, Phase: Playing}

	for range 2 {
		var c cards.Card
		c, r.Deck = mustDraw(r.Deck)
		r.Player = r.Player.Add(c)
		c, r.Deck = mustDraw(r.Deck)
		r.Dealer = r.Dealer.Add(c)
	}

	if r.Player.Score() == cards.Twentyone {
		return r.settle()
	}
	return r
}

// Hit draws one card for the player. Going over 21 settles the round as a bust.
func (r Round) Hit() (Round, error) {
	if r.Phase != Playing {
		return r, fmt.Errorf("hit during %s: %w", r.Phase, ErrInvalidTransition)
	}

	next := r
	var c cards.Card
	c, next.Deck = mustDraw(r.Deck)
	next.Player = r.Player.Add(c)

	if next.Player.IsBust() {
		return next.settle(), nil
	}
	return next, nil
}

// Stand ends the player's turn, runs the dealer policy to completion and
// settles.
func (r Round) Stand() (Round, error) {
	if r.Phase != Playing {
		return r, fmt.Errorf("stand during %s: %w", r.Phase, ErrInvalidTransition)
	}

	next := r
	next.Phase = DealerTurn
	next.Deck, next.Dealer = PlayDealer(r.Deck, r.Dealer)
	next.DealerPlayed = true
	return next.settle(), nil
}

// PlayDealer draws for the dealer while the score is below 17. It stops on the
// first score of 17 or more, bust included.
func PlayDealer(deck cards.Deck, dealer cards.Hand) (cards.Deck, cards.Hand) {
	for dealer.Score() < DealerStandsOn {
		var c cards.Card
		c, deck = mustDraw(deck)
		dealer = dealer.Add(c)
	}
	return deck, dealer
}

// Settle compares final scores. The rules are ordered and exactly one fires.
func Settle(playerScore, dealerScore int) Outcome {
	switch {
	case playerScore > cards.Twentyone:
		return OutcomePlayerBust
	case dealerScore > cards.Twentyone:
		return OutcomeDealerBust
	case playerScore > dealerScore:
		return OutcomePlayerWin
	case playerScore < dealerScore:
		return OutcomeDealerWin
	default:
		return OutcomePush
	}
}

func (r Round) settle() Round {
	r.Outcome = Settle(r.Player.Score(), r.Dealer.Score())
	r.Phase = Ended
	return r
}

// PlayerScore is derived from the player's cards
func (r Round) PlayerScore() int {
	return r.Player.Score()
}

// DealerScore is derived from all of the dealer's cards, hole card included
func (r Round) DealerScore() int {
	return r.Dealer.Score()
}

// Payout is the amount credited back at settlement, zero until the round ends
func (r Round) Payout() int {
	if r.Phase != Ended {
		return 0
	}
	return r.Stake * r.Outcome.PayoutMultiple()
}

// Net is the payout minus the stake for a settled round
func (r Round) Net() int {
	if r.Phase != Ended {
		return 0
	}
	return r.Payout() - r.Stake
}

// mustDraw treats an empty deck as a broken invariant: one round can never
// use up 52 cards.
func mustDraw(d cards.Deck) (cards.Card, cards.Deck) {
	c, rest, err := d.Draw()
	if err != nil {
		panic(fmt.Errorf("blackjack: %w", err))
	}
	return c, rest
}
