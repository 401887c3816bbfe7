package server

import (
	"encoding/json"
	"time"

	"github.com/lox/casino/internal/blackjack"
	"github.com/lox/casino/internal/session"
	"github.com/lox/casino/internal/slots"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type DealData struct {
	Stake int `json:"stake,omitempty"` // zero deals at the current stake
}

type SetStakeData struct {
	Stake int `json:"stake,omitempty"`
	Steps int `json:"steps,omitempty"` // used when stake is zero
}

type SpinData struct {
	Machine string `json:"machine"`
	Stake   int    `json:"stake,omitempty"` // zero spins at the machine default
}

type DepositData struct {
	Amount int `json:"amount"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BlackjackStateData struct {
	View    blackjack.View `json:"view"`
	Balance int            `json:"balance"`
}

type BlackjackFrameData struct {
	View   blackjack.View `json:"view"`
	Frame  int            `json:"frame"`
	Frames int            `json:"frames"`
}

type SlotFrameData struct {
	Machine string      `json:"machine"`
	Reels   slots.Reels `json:"reels"`
	Frame   int         `json:"frame"`
	Frames  int         `json:"frames"`
}

type SlotResultData struct {
	Machine string       `json:"machine"`
	Result  slots.Result `json:"result"`
	Message string       `json:"message"`
	Balance int          `json:"balance"`
}

type SessionStateData struct {
	Snapshot session.Snapshot      `json:"snapshot"`
	Machines []session.MachineSpec `json:"machines"`
}

type HistoryData struct {
	Records []session.Record `json:"records"`
}

type StakeData struct {
	Stake int `json:"stake"`
}

type BalanceData struct {
	Balance int `json:"balance"`
}
