package network

import (
	"context"
	"errors"
	"sync"

	"bomberman-client/pkg/api"

	"github.com/sirupsen/logrus"
)

// Pipe - сокет в памяти. Вторая сторона (Peer) играет роль сервера:
// в тестах, при воспроизведении трассы и у офлайн-бота.
// Все, что Peer отправляет клиенту, проходит через кодек и Inbox, как и по сети.
type Pipe struct {
	inbox    *Inbox
	handlers *Dispatcher
	codec    Codec
	log      logrus.FieldLogger

	mu        sync.Mutex
	connected bool
	closed    bool
	peer      *Peer
}

// PeerHandler обрабатывает запрос клиента. reply == nil, если клиент не ждет ответа.
type PeerHandler func(msg Message, reply func(payload any))

// Peer - серверная сторона Pipe.
type Peer struct {
	pipe *Pipe

	mu       sync.Mutex
	handlers map[string]PeerHandler
	received []Message
	reject   *api.ConnectErrorView
	connects int
	// forget - не копить историю запросов (долгоживущий офлайн-сервер).
	forget bool
}

func NewPipe(inbox *Inbox, codec Codec, log logrus.FieldLogger) (*Pipe, *Peer) {
	if codec == nil {
		codec = JSON
	}
	l := log.WithField("component", "pipe")
	p := &Pipe{
		inbox:    inbox,
		handlers: NewDispatcher(l),
		codec:    codec,
		log:      l,
	}
	p.peer = &Peer{pipe: p, handlers: make(map[string]PeerHandler)}
	return p, p.peer
}

func (p *Pipe) On(event string, h Handler) { p.handlers.Register(event, h) }
func (p *Pipe) Off(event string)           { p.handlers.Unregister(event) }

// Dispatcher отдает реестр обработчиков (например, чтобы поставить tap).
func (p *Pipe) Dispatcher() *Dispatcher { return p.handlers }

func (p *Pipe) Emit(event string, payload any, ack Ack) error {
	if !p.Connected() {
		return ErrNotConnected
	}
	data, err := p.codec.Marshal(payload)
	if err != nil {
		return err
	}
	msg := NewMessage(event, data, p.codec)

	var reply func(any)
	if ack != nil {
		var once sync.Once
		reply = func(resp any) {
			once.Do(func() {
				b, err := p.codec.Marshal(resp)
				p.inbox.Post(func() {
					if err != nil {
						ack(Message{}, err)
						return
					}
					ack(NewMessage(event, b, p.codec), nil)
				})
			})
		}
	}
	p.peer.handle(msg, reply)
	return nil
}

func (p *Pipe) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New("pipe closed")
	}
	p.mu.Unlock()

	if reject := p.peer.takeReject(); reject != nil {
		p.deliver(api.EventConnectError, reject)
		return errors.New(reject.Message)
	}

	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	p.deliver(api.EventConnect, struct{}{})
	return nil
}

func (p *Pipe) Reconnect(ctx context.Context) error {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	return p.Connect(ctx)
}

func (p *Pipe) Close() error {
	p.mu.Lock()
	p.closed = true
	p.connected = false
	p.mu.Unlock()
	return nil
}

func (p *Pipe) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *Pipe) deliver(event string, payload any) {
	data, err := p.codec.Marshal(payload)
	if err != nil {
		p.log.WithError(err).WithField("event", event).Error("Failed to encode pipe event")
		return
	}
	msg := NewMessage(event, data, p.codec)
	p.inbox.Post(func() { p.handlers.Dispatch(msg) })
}

// --- Peer ---

// On ставит обработчик запросов клиента.
func (s *Peer) On(event string, h PeerHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = h
}

// Emit отправляет событие клиенту.
func (s *Peer) Emit(event string, payload any) {
	s.pipe.deliver(event, payload)
}

// EmitRaw отправляет уже закодированную полезную нагрузку (воспроизведение трассы).
func (s *Peer) EmitRaw(event string, data []byte) {
	p := s.pipe
	msg := NewMessage(event, data, p.codec)
	p.inbox.Post(func() { p.handlers.Dispatch(msg) })
}

// Drop имитирует обрыв соединения со стороны сервера.
func (s *Peer) Drop(reason string) {
	s.pipe.mu.Lock()
	s.pipe.connected = false
	s.pipe.mu.Unlock()
	s.pipe.deliver(api.EventDisconnect, api.DisconnectView{Reason: reason})
}

// RejectNextConnect - следующий Connect завершится connect_error с этим кодом.
func (s *Peer) RejectNextConnect(code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject = &api.ConnectErrorView{Code: code, Message: message}
}

// KeepHistory включает или выключает запись запросов для Received и Count.
func (s *Peer) KeepHistory(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forget = !on
	if s.forget {
		s.received = nil
	}
}

// Received - все запросы клиента в порядке поступления.
func (s *Peer) Received() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.received))
	copy(out, s.received)
	return out
}

// Count - сколько раз клиент отправил событие.
func (s *Peer) Count(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.received {
		if m.Event == event {
			n++
		}
	}
	return n
}

// Connects - число успешных подключений.
func (s *Peer) Connects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connects
}

func (s *Peer) takeReject() *api.ConnectErrorView {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.reject
	s.reject = nil
	if r == nil {
		s.connects++
	}
	return r
}

func (s *Peer) handle(msg Message, reply func(any)) {
	s.mu.Lock()
	if !s.forget {
		s.received = append(s.received, msg)
	}
	h := s.handlers[msg.Event]
	s.mu.Unlock()

	if h != nil {
		h(msg, reply)
	}
}
