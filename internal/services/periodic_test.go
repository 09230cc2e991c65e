package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// countingRunner records runs and can be told to fail.
type countingRunner struct {
	runs int64
	fail bool
}

func (r *countingRunner) SyncAll(ctx context.Context) (*SyncResult, error) {
	atomic.AddInt64(&r.runs, 1)
	if r.fail {
		return &SyncResult{IsSuccess: false}, errors.New("upstream down")
	}
	return &SyncResult{IsSuccess: true}, nil
}

func (r *countingRunner) count() int64 { return atomic.LoadInt64(&r.runs) }

func TestPeriodicSync_RunsImmediatelyThenOnInterval(t *testing.T) {
	r := &countingRunner{}
	p := NewPeriodicSync(r, zerolog.Nop(), 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for r.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if r.count() < 3 {
		t.Fatalf("runs = %d, want at least the initial run plus two ticks", r.count())
	}
}

func TestPeriodicSync_FailureShortensWait(t *testing.T) {
	r := &countingRunner{fail: true}
	p := NewPeriodicSync(r, zerolog.Nop(), 200*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// With the failure retry at interval/4 = 50ms, two runs land well before a
	// full interval elapses.
	deadline := time.Now().Add(2 * time.Second)
	for r.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if r.count() < 2 {
		t.Fatalf("runs = %d, failed run did not retry sooner", r.count())
	}
}

func TestPeriodicSync_StopsOnCancel(t *testing.T) {
	r := &countingRunner{}
	p := NewPeriodicSync(r, zerolog.Nop(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for r.count() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancellation")
	}
	if r.count() != 1 {
		t.Fatalf("runs = %d, want exactly the initial run", r.count())
	}
}
