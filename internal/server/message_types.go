package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeDeal     MessageType = "deal"
	MessageTypeHit      MessageType = "hit"
	MessageTypeStand    MessageType = "stand"
	MessageTypeNewRound MessageType = "new_round"
	MessageTypeSetStake MessageType = "set_stake"
	MessageTypeSpin     MessageType = "spin"
	MessageTypeDeposit  MessageType = "deposit"
	MessageTypeState    MessageType = "state"
	MessageTypeHistory  MessageType = "history"
	MessageTypeSkip     MessageType = "skip"

	// Server to client messages
	MessageTypeSessionState   MessageType = "session_state"
	MessageTypeBlackjackState MessageType = "blackjack_state"
	MessageTypeBlackjackFrame MessageType = "blackjack_frame"
	MessageTypeSlotFrame      MessageType = "slot_frame"
	MessageTypeSlotResult     MessageType = "slot_result"
	MessageTypeStake          MessageType = "stake"
	MessageTypeBalance        MessageType = "balance"
	MessageTypeHistoryList    MessageType = "history_list"
	MessageTypeError          MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes carried in error messages
const (
	CodeInvalidMessage    = "invalid_message"
	CodeUnknownType       = "unknown_message_type"
	CodeInsufficientFunds = "insufficient_funds"
	CodeInvalidTransition = "invalid_transition"
	CodeStakeOutOfRange   = "stake_out_of_range"
	CodeUnknownMachine    = "unknown_machine"
	CodeInvalidAmount     = "invalid_amount"
	CodeInternal          = "internal_error"
)
