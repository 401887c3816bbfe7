package cards

import "strings"

// Twentyone is the best possible score
const Twentyone = 21

// Hand is the ordered list of cards held by one party in a round
type Hand []Card

// Add returns a new hand with c appended. The receiver is not modified and the
// result never shares its backing array with it.
func (h Hand) Add(c Card) Hand {
	out := make(Hand, len(h), len(h)+1)
	copy(out, h)
	return append(out, c)
}

// Score sums base values, then counts aces as 1 one at a time while the
// total is over 21.
func (h Hand) Score() int {
	score, _ := h.score()
	return score
}

// Soft reports whether an ace is still being counted as 11
func (h Hand) Soft() bool {
	_, soft := h.score()
	return soft
}

func (h Hand) score() (int, bool) {
	total := 0
	aces := 0
	for _, c := range h {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > Twentyone && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// MinScore counts every ace as 1
func (h Hand) MinScore() int {
	total := 0
	for _, c := range h {
		if c.IsAce() {
			total++
			continue
		}
		total += c.Value()
	}
	return total
}

// MaxScore counts every ace as 11
func (h Hand) MaxScore() int {
	total := 0
	for _, c := range h {
		total += c.Value()
	}
	return total
}

// IsBust reports whether the hand scores over 21
func (h Hand) IsBust() bool {
	return h.Score() > Twentyone
}

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
