package queue

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chinese-translation-service/internal/domain"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	log := zerolog.Nop()
	p := NewPool(2, &log)
	p.Start()

	var done int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		if err := p.Submit(func() error {
			defer wg.Done()
			atomic.AddInt32(&done, 1)
			return nil
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	p.Shutdown(true)

	if done != 10 {
		t.Errorf("ran %d tasks, want 10", done)
	}
}

func TestPoolQueuesBeyondWorkerCount(t *testing.T) {
	log := zerolog.Nop()
	p := NewPool(1, &log)
	p.Start()

	gate := make(chan struct{})
	var done int32
	for i := 0; i < 5; i++ {
		err := p.Submit(func() error {
			<-gate
			atomic.AddInt32(&done, 1)
			return nil
		})
		if err != nil {
			t.Fatalf("Submit #%d: %v, queue should be unbounded", i, err)
		}
	}
	close(gate)
	p.Shutdown(true)

	if done != 5 {
		t.Errorf("ran %d tasks, want 5", done)
	}
}

func TestPoolSubmitAfterShutdown(t *testing.T) {
	log := zerolog.Nop()
	p := NewPool(1, &log)
	p.Start()
	p.Shutdown(true)

	err := p.Submit(func() error { return nil })
	if !errors.Is(err, domain.ErrQueueShutdown) {
		t.Errorf("err = %v, want ErrQueueShutdown", err)
	}
}

func TestPoolShutdownWithoutWaitDropsQueued(t *testing.T) {
	log := zerolog.Nop()
	p := NewPool(1, &log)
	p.Start()

	gate := make(chan struct{})
	started := make(chan struct{})
	var ran int32
	_ = p.Submit(func() error {
		close(started)
		<-gate
		atomic.AddInt32(&ran, 1)
		return nil
	})
	<-started
	for i := 0; i < 3; i++ {
		_ = p.Submit(func() error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
	}

	p.Shutdown(false)
	close(gate)
	// Give the in-flight task time to finish; the dropped ones never run.
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&ran); got != 1 {
		t.Errorf("ran %d tasks, want only the in-flight one", got)
	}
}
