package request

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFuture_SettlesOnce(t *testing.T) {
	fut, settle := NewFuture()
	if fut.Settled() {
		t.Fatal("expected unsettled future")
	}
	if !settle("first", nil) {
		t.Fatal("expected first settle to take effect")
	}
	if settle(nil, errors.New("second")) {
		t.Error("expected second settle to be ignored")
	}

	v, err := fut.Result()
	if v != "first" || err != nil {
		t.Errorf("expected first settlement, got %v / %v", v, err)
	}
	select {
	case <-fut.Done():
	default:
		t.Error("expected Done to be closed")
	}
}

func TestFuture_ThenBeforeAndAfter(t *testing.T) {
	fut, settle := NewFuture()

	var mu sync.Mutex
	var calls []any
	record := func(v any, err error) {
		mu.Lock()
		calls = append(calls, v)
		mu.Unlock()
	}

	fut.Then(record)
	settle(42, nil)
	fut.Then(record)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 || calls[0] != 42 || calls[1] != 42 {
		t.Errorf("expected two callbacks with 42, got %v", calls)
	}
}

func TestFuture_WaitContext(t *testing.T) {
	fut, settle := NewFuture()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := fut.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if fut.Settled() {
		t.Error("expected a timed out wait not to settle the future")
	}

	go settle(nil, errors.New("late"))
	if _, err := fut.Wait(context.Background()); err == nil || err.Error() != "late" {
		t.Errorf("expected late rejection, got %v", err)
	}
}

func TestResolvedRejected(t *testing.T) {
	if v, err := Resolved("x").Result(); v != "x" || err != nil {
		t.Errorf("expected resolved x, got %v / %v", v, err)
	}
	boom := errors.New("boom")
	if _, err := Rejected(boom).Result(); err != boom {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestFuture_ConcurrentSettle(t *testing.T) {
	fut, settle := NewFuture()
	var wg sync.WaitGroup
	wins := make(chan int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if settle(i, nil) {
				wins <- i
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Errorf("expected exactly one winning settle, got %d", count)
	}
	if !fut.Settled() {
		t.Error("expected settled future")
	}
}
