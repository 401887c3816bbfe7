// Package blackjack implements the card-game round engine.
//
// A Round is an immutable value: Deal, Hit and Stand each return a new Round
// and never modify the receiver, so a hand and its score can never drift
// apart. Scores are always derived from the cards.
//
// # Basic Usage
//
//	r := blackjack.Deal(cards.NewDeck(rng), 100)
//	if r.Phase == blackjack.Playing {
//	    r, _ = r.Hit()
//	}
//	if r.Phase == blackjack.Playing {
//	    r, _ = r.Stand()
//	}
//	fmt.Println(r.Outcome, r.Payout())
//
// # Tables
//
// Table wraps a single active Round and settles it through a ledger.Ledger:
// the stake is debited once when the round starts and the payout is credited
// at most once when it ends.
//
//	t := blackjack.NewTable(rng, wallet, blackjack.WithLogger(logger))
//	t.Start(100)
//	t.Stand()
//	t.NewRound()
//
// # Deterministic Testing
//
// Use WithDeckSource to deal from a stacked deck:
//
//	deck, _ := cards.NewStackedDeck(cards.MustParseCards("As 6h Kd 5c 8s")...)
//	t := blackjack.NewTable(rng, wallet, blackjack.WithDeckSource(func() cards.Deck { return deck }))
package blackjack
