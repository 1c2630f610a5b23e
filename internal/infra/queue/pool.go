package queue

import (
	"sync"

	"github.com/rs/zerolog"

	"chinese-translation-service/internal/domain"
)

// Task is one unit of work. A returned error is logged by the pool; it is
// not delivered anywhere else, so tasks must record their own failure state
// before returning it.
type Task func() error

// Pool is a bounded set of worker goroutines draining an unbounded task
// queue. Saturation queues work (bounded only by memory) rather than
// rejecting it; no backpressure signal is given to submitters.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Task
	closed bool
	wg     sync.WaitGroup
	n      int
	log    *zerolog.Logger
}

func NewPool(workers int, log *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 2
	}
	p := &Pool{n: workers, log: log}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *Pool) Start() {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				p.mu.Lock()
				for len(p.queue) == 0 && !p.closed {
					p.cond.Wait()
				}
				if len(p.queue) == 0 {
					p.mu.Unlock()
					return
				}
				task := p.queue[0]
				p.queue = p.queue[1:]
				p.mu.Unlock()

				if err := task(); err != nil {
					p.log.Error().Err(err).Int("worker", id).Msg("worker task error")
				}
			}
		}(i)
	}
}

// Submit enqueues a task. Never blocks; fails only after shutdown.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return domain.ErrInvalidArgument
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return domain.ErrQueueShutdown
	}
	p.queue = append(p.queue, task)
	p.cond.Signal()
	return nil
}

// Shutdown stops accepting new work. With wait, it blocks until the queue
// drains and in-flight tasks finish. Without wait, queued-but-unstarted
// tasks are dropped; the count is logged since the only other trace is
// jobs left pending in storage.
func (p *Pool) Shutdown(wait bool) {
	p.mu.Lock()
	p.closed = true
	var dropped int
	if !wait {
		dropped = len(p.queue)
		p.queue = nil
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	if wait {
		p.wg.Wait()
		return
	}
	if dropped > 0 {
		p.log.Warn().Int("dropped_tasks", dropped).Msg("shutdown dropped queued work")
	}
}
