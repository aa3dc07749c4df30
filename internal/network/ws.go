package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bomberman-client/pkg/api"

	"github.com/gorilla/websocket"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 1 << 20
	sendQueueSize     = 256
	defaultAckTimeout = 5 * time.Second
)

// WSConfig - параметры подключения.
type WSConfig struct {
	URL string
	// Token уходит в заголовке Authorization. Функция, потому что токен обновляется.
	Token      func() string
	Codec      Codec
	AckTimeout time.Duration
	Dialer     *websocket.Dialer
}

type pendingAck struct {
	event string
	ack   Ack
	timer *time.Timer
}

// WSSocket - событийный сокет поверх gorilla/websocket.
// Пампы чтения и записи работают в своих горутинах, но обработчики и
// подтверждения выполняются только через Inbox.
type WSSocket struct {
	cfg      WSConfig
	inbox    *Inbox
	handlers *Dispatcher
	log      logrus.FieldLogger

	mu      deadlock.Mutex
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	pending map[string]*pendingAck
	closed  bool
}

func NewWSSocket(cfg WSConfig, inbox *Inbox, log logrus.FieldLogger) *WSSocket {
	if cfg.Codec == nil {
		cfg.Codec = JSON
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	l := log.WithFields(logrus.Fields{"component": "ws_socket", "codec": cfg.Codec.Name()})
	return &WSSocket{
		cfg:      cfg,
		inbox:    inbox,
		handlers: NewDispatcher(l),
		log:      l,
		pending:  make(map[string]*pendingAck),
	}
}

func (s *WSSocket) On(event string, h Handler) { s.handlers.Register(event, h) }
func (s *WSSocket) Off(event string)           { s.handlers.Unregister(event) }
func (s *WSSocket) Dispatcher() *Dispatcher    { return s.handlers }

func (s *WSSocket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Connect дозванивается до сервера. Блокирует до завершения рукопожатия,
// поэтому из цикла кадров его вызывают только в отдельной горутине.
// Результат всегда приходит и событием: connect или connect_error.
func (s *WSSocket) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("socket closed")
	}
	if s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	header := http.Header{}
	if s.cfg.Token != nil {
		if token := s.cfg.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	conn, resp, err := s.cfg.Dialer.DialContext(ctx, s.cfg.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		view := api.ConnectErrorView{Message: err.Error()}
		if resp != nil {
			view.Code = resp.StatusCode
		}
		s.log.WithError(err).WithField("code", view.Code).Warn("Connect failed")
		s.deliver(api.EventConnectError, view)
		return fmt.Errorf("dial %s: %w", s.cfg.URL, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.send = make(chan []byte, sendQueueSize)
	s.done = make(chan struct{})
	send, done := s.send, s.done
	s.mu.Unlock()

	go s.readPump(conn, done)
	go s.writePump(conn, send, done)

	s.log.WithField("url", s.cfg.URL).Info("Connected")
	s.deliver(api.EventConnect, struct{}{})
	return nil
}

// Reconnect рвет текущее соединение (если есть) и подключается заново.
func (s *WSSocket) Reconnect(ctx context.Context) error {
	s.teardown(nil, "reconnect", false)
	return s.Connect(ctx)
}

// Close закрывает сокет насовсем. Событие disconnect не генерируется.
func (s *WSSocket) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.teardown(nil, "closed", false)
	return nil
}

func (s *WSSocket) Emit(event string, payload any, ack Ack) error {
	id := ""
	if ack != nil {
		id = NewRequestID()
	}
	b, err := s.cfg.Codec.EncodeFrame(event, id, "", payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	select {
	case s.send <- b:
	default:
		return ErrSendQueueFull
	}

	if ack != nil {
		p := &pendingAck{event: event, ack: ack}
		p.timer = time.AfterFunc(s.cfg.AckTimeout, func() { s.expire(id) })
		s.pending[id] = p
	}
	return nil
}

// PendingAcks - сколько запросов ждут ответа.
func (s *WSSocket) PendingAcks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *WSSocket) expire(id string) {
	s.mu.Lock()
	p, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	s.log.WithField("event", p.event).Warn("Ack timeout")
	s.inbox.Post(func() { p.ack(Message{}, ErrAckTimeout) })
}

func (s *WSSocket) resolve(f Frame) {
	s.mu.Lock()
	p, ok := s.pending[f.Ack]
	delete(s.pending, f.Ack)
	s.mu.Unlock()
	if !ok {
		s.log.WithField("ack", f.Ack).Debug("Ack for unknown request")
		return
	}
	p.timer.Stop()
	msg := NewMessage(p.event, f.Data, s.cfg.Codec)
	s.inbox.Post(func() { p.ack(msg, nil) })
}

// teardown закрывает соединение и проваливает ожидающие подтверждения.
// owner != nil - закрыть только если это все еще текущее соединение
// (пампы старого соединения не должны трогать новое после Reconnect).
func (s *WSSocket) teardown(owner *websocket.Conn, reason string, notify bool) {
	s.mu.Lock()
	conn := s.conn
	if conn == nil || (owner != nil && owner != conn) {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	close(s.done)
	pending := s.pending
	s.pending = make(map[string]*pendingAck)
	s.mu.Unlock()

	// WriteControl можно звать параллельно с writePump.
	if err := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait)); err != nil {
		s.log.WithError(err).Debug("write close message failed")
	}
	if err := conn.Close(); err != nil {
		s.log.WithError(err).Debug("failed to close websocket connection")
	}
	for _, p := range pending {
		p.timer.Stop()
		ack := p.ack
		s.inbox.Post(func() { ack(Message{}, ErrDisconnected) })
	}
	if notify {
		s.log.WithField("reason", reason).Warn("Disconnected")
		s.deliver(api.EventDisconnect, api.DisconnectView{Reason: reason})
	}
}

func (s *WSSocket) deliver(event string, payload any) {
	data, err := s.cfg.Codec.Marshal(payload)
	if err != nil {
		s.log.WithError(err).WithField("event", event).Error("Failed to encode transport event")
		return
	}
	msg := NewMessage(event, data, s.cfg.Codec)
	s.inbox.Post(func() { s.handlers.Dispatch(msg) })
}

// readPump читает фреймы сервера
func (s *WSSocket) readPump(conn *websocket.Conn, done chan struct{}) {
	reason := "read error"
	defer func() {
		select {
		case <-done:
			// соединение уже закрыто нами
		default:
			s.teardown(conn, reason, true)
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.log.WithError(err).Warn("failed to set read deadline")
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithError(err).Error("WS read error")
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				reason = "server closed"
			}
			return
		}
		f, err := s.cfg.Codec.DecodeFrame(data)
		if err != nil {
			s.log.WithError(err).Warn("Malformed frame dropped")
			continue
		}
		if f.Ack != "" {
			s.resolve(f)
			continue
		}
		msg := NewMessage(f.Event, f.Data, s.cfg.Codec)
		s.inbox.Post(func() { s.handlers.Dispatch(msg) })
	}
}

// writePump отправляет фреймы + Ping
func (s *WSSocket) writePump(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	msgType := s.cfg.Codec.MessageType()
	for {
		select {
		case <-done:
			return

		case b := <-send:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.log.WithError(err).Warn("failed to set write deadline")
			}
			if err := conn.WriteMessage(msgType, b); err != nil {
				s.log.WithError(err).Debug("write message failed")
				s.teardown(conn, "write error", true)
				return
			}

		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.WithError(err).Debug("ping failed")
				s.teardown(conn, "ping failed", true)
				return
			}
		}
	}
}
