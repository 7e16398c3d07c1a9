package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/broker"
	"github.com/piresc/arbiter/internal/pkg/constants"
	appctx "github.com/piresc/arbiter/internal/pkg/context"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
	"github.com/piresc/arbiter/services/gateway"
	"go.uber.org/zap"
)

var (
	// ErrSessionClosed is returned by Deliver after the session closed
	ErrSessionClosed = errors.New("session closed")
	// ErrSlowConsumer is returned by Deliver when the send queue is full
	ErrSlowConsumer = errors.New("send queue full")
)

const (
	defaultSendBuffer     = 256
	defaultInboundBuffer  = 64
	defaultMaxMessageSize = 1 << 20
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultCallTimeout    = 30 * time.Second
)

func withDefaults(cfg models.WebSocketConfig) models.WebSocketConfig {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.InboundBuffer <= 0 {
		cfg.InboundBuffer = defaultInboundBuffer
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaultWriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaultPongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = cfg.PongWait * 9 / 10
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	return cfg
}

// Session is one client connection. A reader goroutine feeds inbound frames
// to an event loop that handles them in order; a writer goroutine drains the
// send queue. A session is open until Close, after which it stays closed.
type Session struct {
	id      string
	conn    Conn
	broker  *broker.Broker
	uc      gateway.GatewayUC
	cfg     models.WebSocketConfig
	log     *zap.Logger
	send    chan []byte
	inbound chan []byte
	done    chan struct{}
	once    sync.Once
}

// NewSession creates a session over conn with a fresh connection id
func NewSession(conn Conn, b *broker.Broker, uc gateway.GatewayUC, cfg models.WebSocketConfig) *Session {
	cfg = withDefaults(cfg)
	id := uuid.NewString()
	return &Session{
		id:      id,
		conn:    conn,
		broker:  b,
		uc:      uc,
		cfg:     cfg,
		log:     logger.WithConnection(id),
		send:    make(chan []byte, cfg.SendBuffer),
		inbound: make(chan []byte, cfg.InboundBuffer),
		done:    make(chan struct{}),
	}
}

// ID returns the connection id
func (s *Session) ID() string {
	return s.id
}

// Deliver queues payload for the writer without blocking
func (s *Session) Deliver(payload []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.send <- payload:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrSlowConsumer
	}
}

// Done is closed once the session has closed
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close removes the session from every channel and closes the transport.
// It is safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		s.broker.LeaveAll(s.id)
		if err := s.conn.Close(); err != nil {
			s.log.Debug("Transport close failed", logger.Err(err))
		}
		s.log.Info("WebSocket session closed")
	})
}

// Run serves the connection until the transport fails or Close is called
func (s *Session) Run() {
	s.broker.Register(s)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.writePump()
	}()
	go func() {
		defer wg.Done()
		s.eventLoop()
	}()

	s.readPump()
	s.Close()
	wg.Wait()
}

func (s *Session) readPump() {
	s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("WebSocket read failed", logger.Err(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		select {
		case s.inbound <- data:
		case <-s.done:
			return
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(s.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.log.Warn("WebSocket write failed", logger.Err(err))
				s.Close()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteWait)); err != nil {
				s.log.Debug("WebSocket ping failed", logger.Err(err))
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.inbound:
			s.handleFrame(data)
		}
	}
}

func (s *Session) handleFrame(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic recovered while handling frame",
				logger.String("panic_value", fmt.Sprintf("%v", r)),
				logger.String("panic_type", fmt.Sprintf("%T", r)),
				logger.String("stack_trace", string(debug.Stack())))
			s.sendError(apperror.Unknown(fmt.Errorf("panic: %v", r)))
		}
	}()

	var msg models.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.log.Warn("Dropping malformed frame", logger.Err(apperror.MalformedMessage(err)))
		return
	}

	switch msg.Action {
	case constants.ActionSubscribe:
		if msg.Channel == "" {
			s.log.Warn("Dropping subscribe without channel")
			return
		}
		s.join(msg.Channel)
	case constants.ActionUnsubscribe:
		if msg.Channel == "" {
			s.log.Warn("Dropping unsubscribe without channel")
			return
		}
		s.broker.Leave(msg.Channel, s.id)
	case constants.ActionCall:
		if msg.Function == "" {
			s.log.Warn("Dropping call without function")
			return
		}
		s.handleCall(&msg)
	default:
		s.log.Warn("Dropping frame with unknown action", logger.String("action", msg.Action))
	}
}

// join adds the session to channel unless it closed meanwhile
func (s *Session) join(channel string) {
	s.broker.Join(channel, s)
	if s.closed() {
		s.broker.LeaveAll(s.id)
	}
}

func (s *Session) handleCall(msg *models.WSMessage) {
	claims, err := s.uc.VerifyToken(msg.Auth)
	if err != nil {
		s.log.Info("Rejected call with bad token",
			logger.String("function", msg.Function),
			logger.Err(err))
		s.sendError(apperror.Unauthorized(apperror.From(err).Message))
		return
	}

	ctx, cancel := context.WithTimeout(appctx.WithConnID(context.Background(), s.id), s.cfg.CallTimeout)
	defer cancel()

	outcome, err := s.uc.Dispatch(ctx, &models.Invocation{
		Function: msg.Function,
		Params:   msg.Params,
		Data:     msg.Data,
		Claims:   claims,
	})
	// A caller that left mid call gets no reply, but other subscribers still
	// hear about the change.
	if err != nil {
		if !s.closed() {
			s.sendError(apperror.From(err))
		}
		return
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		s.log.Error("Failed to encode outcome", logger.String("function", msg.Function), logger.Err(err))
		if !s.closed() {
			s.sendError(apperror.Unknown(err))
		}
		return
	}

	if !s.closed() {
		for _, channel := range outcome.SubscribeTo {
			s.join(channel)
		}
		if err := s.broker.NotifyClient(s.id, payload); err != nil {
			s.log.Warn("Failed to deliver reply", logger.String("function", msg.Function), logger.Err(err))
		}
	}
	if len(outcome.PublishTo) > 0 {
		s.broker.Fanout(outcome.PublishTo, payload, s.id)
	}
}

func (s *Session) sendError(appErr *apperror.Error) {
	if err := s.broker.PublishError(s.id, appErr); err != nil {
		s.log.Warn("Failed to deliver error", logger.String("code", appErr.Code), logger.Err(err))
	}
}
