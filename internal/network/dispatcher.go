package network

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Dispatcher хранит обработчики событий: одно событие - один обработчик.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	tap      func(Message)
	log      logrus.FieldLogger
}

func NewDispatcher(log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		log:      log,
	}
}

// Register ставит обработчик, заменяя старый.
func (d *Dispatcher) Register(event string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = h
}

func (d *Dispatcher) Unregister(event string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, event)
}

// SetTap ставит наблюдателя, который видит каждое входящее событие
// (запись трассы). nil снимает.
func (d *Dispatcher) SetTap(fn func(Message)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tap = fn
}

// Dispatch вызывает обработчик события. Возвращает false, если его нет.
func (d *Dispatcher) Dispatch(msg Message) bool {
	d.mu.RLock()
	h, ok := d.handlers[msg.Event]
	tap := d.tap
	d.mu.RUnlock()

	if tap != nil {
		tap(msg)
	}
	if !ok {
		d.log.WithField("event", msg.Event).Debug("No handler for event")
		return false
	}
	h(msg)
	return true
}

func (d *Dispatcher) Has(event string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[event]
	return ok
}

func (d *Dispatcher) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers)
}
