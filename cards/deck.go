package cards

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lox/casino/internal/randutil"
)

// DeckSize is the number of cards in one standard deck
const DeckSize = 52

// ErrEmptyDeck is returned when drawing from an exhausted deck
var ErrEmptyDeck = errors.New("deck is empty")

// Deck is an ordered sequence of cards consumed from the front.
//
// Deck is a value: Draw returns the remaining deck and leaves the receiver
// untouched, so a round state holding a Deck never changes behind its back.
type Deck struct {
	cards []Card
}

// Standard returns the 52 cards of a standard deck in suit-then-rank order
func Standard() []Card {
	out := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			out = append(out, NewCard(rank, suit))
		}
	}
	return out
}

// NewDeck builds a full deck and shuffles it with src
func NewDeck(src randutil.Source) Deck {
	cs := Standard()
	Shuffle(src, cs)
	return Deck{cards: cs}
}

// NewStackedDeck returns a deck that deals cards in exactly the given order
func NewStackedDeck(cs ...Card) (Deck, error) {
	var seen [DeckSize]bool
	for _, c := range cs {
		if !c.Rank.Valid() || c.Suit > Clubs {
			return Deck{}, fmt.Errorf("invalid card in stacked deck: %v", c)
		}
		if seen[c.index()] {
			return Deck{}, fmt.Errorf("duplicate card in stacked deck: %s", c)
		}
		seen[c.index()] = true
	}
	return Deck{cards: slices.Clone(cs)}, nil
}

// Shuffle shuffles cards in place using Fisher-Yates
func Shuffle(src randutil.Source, cs []Card) {
	for i := len(cs) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		cs[i], cs[j] = cs[j], cs[i]
	}
}

// Draw removes the front card and returns it with the remaining deck
func (d Deck) Draw() (Card, Deck, error) {
	if len(d.cards) == 0 {
		return Card{}, d, ErrEmptyDeck
	}
	return d.cards[0], Deck{cards: d.cards[1:]}, nil
}

// Len returns the number of cards left in the deck
func (d Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards in deal order
func (d Deck) Cards() []Card {
	return slices.Clone(d.cards)
}
