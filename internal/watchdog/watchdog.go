package watchdog

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultStaleAfter - порог тишины потока, после которого запрашивается ресинк.
const DefaultStaleAfter = 3000 * time.Millisecond

// Sender отправляет запрос полного состояния. seq нужно вернуть в Acknowledge,
// когда придет ответ. false - отправить не удалось.
type Sender func(reason string, seq uint64) bool

// Watchdog следит за временем с последнего обновления и восстанавливает поток
// явным запросом полного состояния.
//
// Одновременно в полете не больше одного запроса: следующий возможен только после
// Acknowledge текущего запроса или когда порог истечет еще раз с момента
// предыдущего запроса. Ответ на вытесненный запрос шлюз не открывает.
// Фатальных состояний нет - процесс самовосстанавливается.
type Watchdog struct {
	threshold  time.Duration
	lastUpdate func() time.Time
	active     func() bool
	send       Sender
	clock      func() time.Time
	log        logrus.FieldLogger

	outstanding bool
	seq         uint64
	requestedAt time.Time
	requests    int
}

// Config - параметры сторожа.
type Config struct {
	StaleAfter time.Duration
	// LastUpdate - время последнего примененного обновления (Store.LastUpdate).
	LastUpdate func() time.Time
	// Active - есть ли активная сессия (игра выбрана и локальный игрок известен).
	Active func() bool
	Send   Sender
	Clock  func() time.Time
}

func New(cfg Config, log logrus.FieldLogger) *Watchdog {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Active == nil {
		cfg.Active = func() bool { return true }
	}
	return &Watchdog{
		threshold:  cfg.StaleAfter,
		lastUpdate: cfg.LastUpdate,
		active:     cfg.Active,
		send:       cfg.Send,
		clock:      cfg.Clock,
		log:        log.WithField("component", "resync_watchdog"),
	}
}

// Check вызывается на каждом тике планировщика. Возвращает true, если отправлен запрос.
func (w *Watchdog) Check(now time.Time) bool {
	if !w.active() || w.lastUpdate == nil {
		return false
	}
	last := w.lastUpdate()
	if last.IsZero() {
		return false
	}
	silence := now.Sub(last)
	if silence <= w.threshold {
		return false
	}
	if !w.canRequest(now) {
		return false
	}
	w.log.WithField("silence_ms", silence.Milliseconds()).Warn("Update stream stalled")
	return w.issue(now, "stale")
}

// RequestResync - внеочередной запрос (например, промах кэша). Тот же single-flight.
func (w *Watchdog) RequestResync(reason string) bool {
	if !w.active() {
		return false
	}
	now := w.clock()
	if !w.canRequest(now) {
		w.log.WithField("reason", reason).Debug("Resync already outstanding")
		return false
	}
	return w.issue(now, reason)
}

// Acknowledge отмечает, что ответ на запрос seq получен (успешный или нет).
// false, если seq уже вытеснен более новым запросом: тот остается в полете.
func (w *Watchdog) Acknowledge(seq uint64) bool {
	if !w.outstanding || seq != w.seq {
		w.log.WithFields(logrus.Fields{"seq": seq, "current": w.seq}).Debug("Stale resync reply")
		return false
	}
	w.outstanding = false
	return true
}

// Outstanding true, пока запрос в полете.
func (w *Watchdog) Outstanding() bool {
	return w.outstanding
}

// Requests - сколько запросов отправлено за жизнь сторожа.
func (w *Watchdog) Requests() int {
	return w.requests
}

// Reset сбрасывает состояние (новая сессия). Счетчик seq не сбрасывается,
// чтобы ответ из прошлой сессии не совпал с новым запросом.
func (w *Watchdog) Reset() {
	w.outstanding = false
	w.requestedAt = time.Time{}
}

func (w *Watchdog) canRequest(now time.Time) bool {
	if !w.outstanding {
		return true
	}
	// Ответ так и не пришел: считаем запрос потерянным после еще одного порога.
	return now.Sub(w.requestedAt) > w.threshold
}

func (w *Watchdog) issue(now time.Time, reason string) bool {
	seq := w.seq + 1
	if w.send == nil || !w.send(reason, seq) {
		return false
	}
	w.seq = seq
	w.outstanding = true
	w.requestedAt = now
	w.requests++
	w.log.WithFields(logrus.Fields{
		"reason":   reason,
		"seq":      seq,
		"requests": w.requests,
	}).Info("Resync requested")
	return true
}
