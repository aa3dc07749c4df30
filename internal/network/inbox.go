package network

import (
	"context"
	"errors"
	"sync"
)

var ErrInboxClosed = errors.New("inbox closed")

// Inbox - очередь работы для цикла кадров.
// Сетевые горутины (read pump, таймеры подтверждений, обновление токена) ничего
// не меняют сами: они кладут сюда замыкания, а цикл выполняет их в начале тика.
// Так все изменения состояния происходят в одной горутине.
type Inbox struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
}

func NewInbox() *Inbox {
	return &Inbox{wake: make(chan struct{}, 1)}
}

// Post ставит работу в очередь. false, если очередь закрыта.
func (in *Inbox) Post(fn func()) bool {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return false
	}
	in.queue = append(in.queue, fn)
	in.mu.Unlock()

	select {
	case in.wake <- struct{}{}:
	default:
	}
	return true
}

// Drain выполняет все, что было в очереди на момент вызова.
// Работа, поставленная во время Drain, ждет следующего тика.
func (in *Inbox) Drain() int {
	in.mu.Lock()
	batch := in.queue
	in.queue = nil
	in.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Call выполняет fn на цикле и ждет завершения.
// Нельзя вызывать из самого цикла: он не дождется собственного Drain.
func (in *Inbox) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !in.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrInboxClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wake сигналит, что в очереди появилась работа.
func (in *Inbox) Wake() <-chan struct{} {
	return in.wake
}

func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.queue)
}

// Close отбрасывает невыполненную работу. Дальнейшие Post возвращают false.
func (in *Inbox) Close() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closed = true
	in.queue = nil
}
