package watchdog

import (
	"testing"
	"time"

	"bomberman-client/pkg/logger"
)

type harness struct {
	now    time.Time
	last   time.Time
	active bool
	sent   []string
	seqs   []uint64
	wd     *Watchdog
}

func newHarness() *harness {
	h := &harness{now: time.Unix(5000, 0), active: true}
	h.last = h.now
	h.wd = New(Config{
		StaleAfter: 3000 * time.Millisecond,
		LastUpdate: func() time.Time { return h.last },
		Active:     func() bool { return h.active },
		Send: func(reason string, seq uint64) bool {
			h.sent = append(h.sent, reason)
			h.seqs = append(h.seqs, seq)
			return true
		},
		Clock: func() time.Time { return h.now },
	}, logger.Discard())
	return h
}

// advance двигает время кадрами по 16мс и зовет Check на каждом.
func (h *harness) advance(d time.Duration) {
	const frame = 16 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		h.now = h.now.Add(frame)
		h.wd.Check(h.now)
	}
}

func TestCheck_StallEmitsExactlyOneRequest(t *testing.T) {
	h := newHarness()
	h.advance(3100 * time.Millisecond)

	if len(h.sent) != 1 {
		t.Fatalf("expected exactly one resync request, got %d", len(h.sent))
	}
	if h.sent[0] != "stale" {
		t.Errorf("reason = %q", h.sent[0])
	}
}

func TestCheck_SingleFlightUntilAcknowledged(t *testing.T) {
	h := newHarness()
	h.advance(3100 * time.Millisecond)
	// Ответа нет, кадры идут, но порог с момента запроса еще не истек.
	h.advance(2900 * time.Millisecond)
	if len(h.sent) != 1 {
		t.Fatalf("requests while outstanding: %d", len(h.sent))
	}

	if !h.wd.Acknowledge(h.seqs[0]) {
		t.Fatal("reply to the current request not accepted")
	}
	h.advance(16 * time.Millisecond)
	if len(h.sent) != 2 {
		t.Errorf("after ack with stream still stale a new request is expected, got %d", len(h.sent))
	}
}

func TestCheck_RetryAfterThresholdElapsesAgain(t *testing.T) {
	h := newHarness()
	h.advance(3100 * time.Millisecond)
	h.advance(3100 * time.Millisecond)

	if len(h.sent) != 2 {
		t.Errorf("lost request should be retried once per threshold, got %d", len(h.sent))
	}
}

func TestAcknowledge_SupersededReplyKeepsGateClosed(t *testing.T) {
	h := newHarness()
	h.advance(3100 * time.Millisecond)
	h.advance(3100 * time.Millisecond)
	if len(h.sent) != 2 {
		t.Fatalf("setup: expected a retry after the lost request, got %d", len(h.sent))
	}

	// Ответ на первый запрос пришел поздно: второй все еще в полете.
	if h.wd.Acknowledge(h.seqs[0]) {
		t.Error("superseded reply accepted")
	}
	if !h.wd.Outstanding() {
		t.Fatal("superseded reply reopened the gate")
	}
	h.advance(100 * time.Millisecond)
	if len(h.sent) != 2 {
		t.Errorf("request issued while the retry is in flight: %d", len(h.sent))
	}

	if !h.wd.Acknowledge(h.seqs[1]) || h.wd.Outstanding() {
		t.Error("reply to the current request must close it")
	}
}

func TestCheck_NoRequestWithoutSessionOrUpdates(t *testing.T) {
	h := newHarness()
	h.active = false
	h.advance(4 * time.Second)
	if len(h.sent) != 0 {
		t.Error("inactive session must not trigger resync")
	}

	h.active = true
	h.last = time.Time{}
	h.advance(4 * time.Second)
	if len(h.sent) != 0 {
		t.Error("lastUpdate == 0 must not trigger resync")
	}
}

func TestCheck_FreshStreamIsQuiet(t *testing.T) {
	h := newHarness()
	for i := 0; i < 10; i++ {
		h.advance(time.Second)
		h.last = h.now
	}
	if len(h.sent) != 0 {
		t.Errorf("fresh stream produced %d requests", len(h.sent))
	}
}

func TestRequestResync_SharesGateWithCheck(t *testing.T) {
	h := newHarness()
	if !h.wd.RequestResync("cache_miss") {
		t.Fatal("first request should go out")
	}
	if h.wd.RequestResync("cache_miss") {
		t.Error("second request while outstanding must be refused")
	}
	h.advance(3100 * time.Millisecond)
	// Check сработал бы по тишине, но прошло больше порога с запроса - повтор разрешен.
	if len(h.sent) != 2 {
		t.Errorf("sent = %v", h.sent)
	}
}

func TestIssue_FailedSendDoesNotMarkOutstanding(t *testing.T) {
	h := newHarness()
	h.wd.send = func(string, uint64) bool { return false }
	h.advance(3100 * time.Millisecond)
	if h.wd.Outstanding() || h.wd.Requests() != 0 {
		t.Error("unsent request must not be outstanding")
	}
}
