package network

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestInbox_DrainRunsInOrder(t *testing.T) {
	in := NewInbox()
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		in.Post(func() { got = append(got, i) })
	}
	if n := in.Drain(); n != 5 {
		t.Fatalf("drained %d", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken: %v", got)
		}
	}
}

func TestInbox_WorkPostedDuringDrainWaitsForNextTick(t *testing.T) {
	in := NewInbox()
	ran := 0
	in.Post(func() {
		ran++
		in.Post(func() { ran++ })
	})
	in.Drain()
	if ran != 1 {
		t.Errorf("nested work ran in the same drain")
	}
	in.Drain()
	if ran != 2 {
		t.Errorf("nested work lost")
	}
}

func TestInbox_ConcurrentPost(t *testing.T) {
	in := NewInbox()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				in.Post(func() {})
			}
		}()
	}
	wg.Wait()
	if n := in.Drain(); n != 800 {
		t.Errorf("drained %d, want 800", n)
	}
}

func TestInbox_Call(t *testing.T) {
	in := NewInbox()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-in.Wake():
				in.Drain()
			}
		}
	}()

	value := 0
	if err := in.Call(context.Background(), func() { value = 42 }); err != nil {
		t.Fatal(err)
	}
	if value != 42 {
		t.Errorf("value = %d", value)
	}
}

func TestInbox_CallTimeoutAndClose(t *testing.T) {
	in := NewInbox()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := in.Call(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v", err)
	}

	in.Close()
	if in.Post(func() {}) {
		t.Error("post after close accepted")
	}
	if err := in.Call(context.Background(), func() {}); !errors.Is(err, ErrInboxClosed) {
		t.Errorf("err = %v", err)
	}
}
