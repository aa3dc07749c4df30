package network

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotConnected  = errors.New("socket is not connected")
	ErrSendQueueFull = errors.New("send queue is full")
	ErrAckTimeout    = errors.New("ack timeout")
	ErrDisconnected  = errors.New("disconnected before ack")
)

// Message - входящее событие или ответ на запрос.
type Message struct {
	Event string
	Data  []byte
	codec Codec
}

func NewMessage(event string, data []byte, codec Codec) Message {
	return Message{Event: event, Data: data, codec: codec}
}

// Decode раскодирует полезную нагрузку тем же кодеком, которым она пришла.
func (m Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return errors.New("empty payload")
	}
	if m.codec == nil {
		return JSON.Unmarshal(m.Data, v)
	}
	return m.codec.Unmarshal(m.Data, v)
}

// Codec - кодек, которым пришло сообщение.
func (m Message) Codec() Codec {
	if m.codec == nil {
		return JSON
	}
	return m.codec
}

// Handler обрабатывает событие. Всегда вызывается из цикла кадров.
type Handler func(Message)

// Ack получает ответ на запрос или ошибку (таймаут, разрыв).
// Тоже вызывается из цикла кадров.
type Ack func(Message, error)

// Socket - двунаправленный событийный транспорт.
type Socket interface {
	On(event string, h Handler)
	Off(event string)
	// Emit не блокирует. ack == nil - "выстрелил и забыл".
	Emit(event string, payload any, ack Ack) error
	Connect(ctx context.Context) error
	Reconnect(ctx context.Context) error
	Close() error
	Connected() bool
}

// NewRequestID - идентификатор запроса для корреляции ответа.
func NewRequestID() string {
	return uuid.NewString()
}
