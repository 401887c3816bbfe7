package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/casino/internal/blackjack"
	"github.com/lox/casino/internal/config"
	"github.com/lox/casino/internal/ledger"
	"github.com/lox/casino/internal/pacing"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/session"
	"github.com/lox/casino/internal/slots"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// animation is a frame replay running alongside the read loop
type animation struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Connection represents a WebSocket connection to one player session
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	session   *session.Session
	cfg       *config.Config
	pacer     *pacing.Pacer
	frames    randutil.Source
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	anim      *animation // owned by the read loop
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, sess *session.Session, cfg *config.Config, pacer *pacing.Pacer, frames randutil.Source, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		session: sess,
		cfg:     cfg,
		pacer:   pacer,
		frames:  frames,
		logger:  logger.WithPrefix("conn").With("session", sess.ID()[:8]),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection shuts down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.skipAnimation()
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes incoming messages from the client. Any message
// first fast-forwards a running animation to its final frame.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)
	c.skipAnimation()

	switch msg.Type {
	case MessageTypeDeal:
		var data DealData
		if !c.decode(msg, &data) {
			return
		}
		c.handleDeal(msg.RequestID, data)

	case MessageTypeHit:
		r, err := c.session.Hit()
		if err != nil {
			c.sendError(msg.RequestID, err)
			return
		}
		c.sendBlackjackState(msg.RequestID, r)

	case MessageTypeStand:
		c.handleStand(msg.RequestID)

	case MessageTypeNewRound:
		r, err := c.session.NewRound()
		if err != nil {
			c.sendError(msg.RequestID, err)
			return
		}
		c.sendBlackjackState(msg.RequestID, r)

	case MessageTypeSetStake:
		var data SetStakeData
		if !c.decode(msg, &data) {
			return
		}
		c.handleSetStake(msg.RequestID, data)

	case MessageTypeSpin:
		var data SpinData
		if !c.decode(msg, &data) {
			return
		}
		c.handleSpin(msg.RequestID, data)

	case MessageTypeDeposit:
		var data DepositData
		if !c.decode(msg, &data) {
			return
		}
		if err := c.session.Deposit(data.Amount); err != nil {
			c.sendError(msg.RequestID, err)
			return
		}
		c.reply(msg.RequestID, MessageTypeBalance, BalanceData{Balance: c.session.Balance()})

	case MessageTypeState:
		c.sendSessionState(msg.RequestID)

	case MessageTypeHistory:
		c.reply(msg.RequestID, MessageTypeHistoryList, HistoryData{Records: c.session.History()})

	case MessageTypeSkip:
		// handled above

	default:
		c.sendErrorCode(msg.RequestID, CodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) decode(msg *Message, v any) bool {
	if len(msg.Data) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		c.sendErrorCode(msg.RequestID, CodeInvalidMessage, "Failed to parse "+msg.Type.String()+" data")
		return false
	}
	return true
}

func (c *Connection) handleDeal(requestID string, data DealData) {
	stake := data.Stake
	if stake == 0 {
		stake = c.session.Stake()
	}

	r, err := c.session.Deal(stake)
	if err != nil {
		c.sendError(requestID, err)
		return
	}
	c.sendBlackjackState(requestID, r)
}

// handleStand settles the round, then replays the dealer's draws
func (c *Connection) handleStand(requestID string) {
	r, err := c.session.Stand()
	if err != nil {
		c.sendError(requestID, err)
		return
	}

	frames := r.DealerFrames()
	delay := c.cfg.DealerDelay()
	c.animate(func(ctx context.Context) {
		_ = c.pacer.Replay(ctx, len(frames), delay, func(i int) {
			c.reply(requestID, MessageTypeBlackjackFrame, BlackjackFrameData{
				View:   frames[i],
				Frame:  i,
				Frames: len(frames),
			})
		})
		c.sendBlackjackState(requestID, r)
	})
}

func (c *Connection) handleSetStake(requestID string, data SetStakeData) {
	var (
		stake = data.Stake
		err   error
	)
	if stake != 0 {
		err = c.session.SetStake(stake)
	} else {
		stake, err = c.session.AdjustStake(data.Steps)
	}
	if err != nil {
		c.sendError(requestID, err)
		return
	}
	c.reply(requestID, MessageTypeStake, StakeData{Stake: stake})
}

// handleSpin settles the spin, then replays decorative frames ending on the
// settled reels
func (c *Connection) handleSpin(requestID string, data SpinData) {
	spec, err := c.session.Machine(data.Machine)
	if err != nil {
		c.sendError(requestID, err)
		return
	}
	stake := data.Stake
	if stake == 0 {
		stake = spec.Limits.Default
	}

	res, err := c.session.Spin(data.Machine, stake)
	if err != nil {
		c.sendError(requestID, err)
		return
	}

	count, interval := 1, time.Duration(0)
	if mc, ok := c.cfg.Machine(data.Machine); ok {
		count, interval = max(mc.FrameCount(), 1), mc.FrameInterval()
	}
	frames := slots.Frames(c.frames, spec.PayTable, count)
	frames[len(frames)-1] = res.Reels

	result := SlotResultData{
		Machine: data.Machine,
		Result:  res,
		Message: res.Message(),
		Balance: c.session.Balance(),
	}
	c.animate(func(ctx context.Context) {
		_ = c.pacer.Replay(ctx, len(frames), interval, func(i int) {
			c.reply(requestID, MessageTypeSlotFrame, SlotFrameData{
				Machine: data.Machine,
				Reels:   frames[i],
				Frame:   i,
				Frames:  len(frames),
			})
		})
		c.reply(requestID, MessageTypeSlotResult, result)
	})
}

// animate runs fn in the background until it finishes or is skipped
func (c *Connection) animate(fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(c.ctx)
	a := &animation{cancel: cancel, done: make(chan struct{})}
	c.anim = a
	go func() {
		defer close(a.done)
		defer cancel()
		fn(ctx)
	}()
}

// skipAnimation fast-forwards the running animation and waits for it
func (c *Connection) skipAnimation() {
	if c.anim == nil {
		return
	}
	c.anim.cancel()
	<-c.anim.done
	c.anim = nil
}

func (c *Connection) sendBlackjackState(requestID string, r blackjack.Round) {
	c.reply(requestID, MessageTypeBlackjackState, BlackjackStateData{
		View:    r.View(),
		Balance: c.session.Balance(),
	})
}

func (c *Connection) sendSessionState(requestID string) {
	c.reply(requestID, MessageTypeSessionState, SessionStateData{
		Snapshot: c.session.Snapshot(),
		Machines: c.session.Machines(),
	})
}

func (c *Connection) reply(requestID string, t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg) // Ignore send errors
}

// sendError maps an engine or session error to an error message
func (c *Connection) sendError(requestID string, err error) {
	c.sendErrorCode(requestID, ErrorCode(err), err.Error())
}

func (c *Connection) sendErrorCode(requestID, code, message string) {
	c.logger.Debug("Sending error", "code", code, "message", message)
	c.reply(requestID, MessageTypeError, ErrorData{Code: code, Message: message})
}

// ErrorCode returns the wire code for an error
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, blackjack.ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, session.ErrStakeOutOfRange):
		return CodeStakeOutOfRange
	case errors.Is(err, session.ErrUnknownMachine):
		return CodeUnknownMachine
	case errors.Is(err, ledger.ErrInvalidAmount):
		return CodeInvalidAmount
	}
	return CodeInternal
}
