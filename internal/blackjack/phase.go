package blackjack

// Phase of a round
type Phase int

const (
	Betting Phase = iota
	Playing
	DealerTurn
	Ended
)

func (p Phase) String() string {
	switch p {
	case Betting:
		return "betting"
	case Playing:
		return "playing"
	case DealerTurn:
		return "dealer"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// MarshalText renders the phase name in JSON payloads
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Outcome of a settled round. Exactly one non-None outcome is assigned by
// settlement.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePlayerBust
	OutcomeDealerBust
	OutcomePlayerWin
	OutcomeDealerWin
	OutcomePush
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePlayerBust:
		return "bust"
	case OutcomeDealerBust:
		return "dealer_bust"
	case OutcomePlayerWin:
		return "win"
	case OutcomeDealerWin:
		return "loss"
	case OutcomePush:
		return "push"
	}
	return "unknown"
}

// MarshalText renders the outcome code in JSON payloads
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// PayoutMultiple is how many stakes are credited back at settlement
func (o Outcome) PayoutMultiple() int {
	switch o {
	case OutcomeDealerBust, OutcomePlayerWin:
		return 2
	case OutcomePush:
		return 1
	}
	return 0
}

// IsWin reports whether the player won the round
func (o Outcome) IsWin() bool {
	return o == OutcomeDealerBust || o == OutcomePlayerWin
}

// IsLoss reports whether the player lost the stake
func (o Outcome) IsLoss() bool {
	return o == OutcomePlayerBust || o == OutcomeDealerWin
}

// Message is the human-readable status shown by a renderer. The set is fixed.
type Message string

const (
	MessagePlaceBet   Message = "Place your bet"
	MessageYourMove   Message = "Your move"
	MessageDealerTurn Message = "Dealer's turn"
	MessageBust       Message = "Bust! You lose"
	MessageDealerBust Message = "Dealer busts! You win!"
	MessageWin        Message = "You win!"
	MessageLoss       Message = "Dealer wins"
	MessagePush       Message = "Push! Stake returned"
)

// MessageFor picks the status line for a phase and outcome
func MessageFor(phase Phase, outcome Outcome) Message {
	switch phase {
	case Betting:
		return MessagePlaceBet
	case Playing:
		return MessageYourMove
	case DealerTurn:
		return MessageDealerTurn
	}

	switch outcome {
	case OutcomePlayerBust:
		return MessageBust
	case OutcomeDealerBust:
		return MessageDealerBust
	case OutcomePlayerWin:
		return MessageWin
	case OutcomeDealerWin:
		return MessageLoss
	case OutcomePush:
		return MessagePush
	}
	return MessagePlaceBet
}
