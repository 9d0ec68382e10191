// Package exec provides the execution context for the async server: a
// fixed-size worker pool draining a shared task queue, and strands —
// serialized sub-contexts that guarantee tasks posted to the same
// strand never run concurrently with each other.
package exec

import "sync"

// Pool runs submitted tasks on a fixed set of worker goroutines.
// The queue is unbounded; Submit never blocks.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts a pool with n workers. n is clamped to at least 1.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 && p.closed {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()
		task()
	}
}

// Submit enqueues task for execution on some worker. It reports false
// if the pool has been closed, in which case the task is dropped.
func (p *Pool) Submit(task func()) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.queue = append(p.queue, task)
	p.mu.Unlock()
	p.cond.Signal()
	return true
}

// Close stops accepting new tasks, lets already-queued tasks finish,
// and waits for all workers to exit.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

// Strand derives a new serialized sub-context from the pool.
func (p *Pool) Strand() *Strand {
	return &Strand{pool: p}
}

// Strand executes posted tasks on its pool in FIFO order, at most one
// at a time. Tasks posted to different strands of the same pool run in
// parallel; tasks posted to one strand never overlap.
type Strand struct {
	pool    *Pool
	mu      sync.Mutex
	queue   []func()
	running bool
}

// Post enqueues task on the strand. Safe to call from any goroutine,
// including from a task currently running on the same strand.
func (s *Strand) Post(task func()) {
	s.mu.Lock()
	s.queue = append(s.queue, task)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	s.pool.Submit(s.drain)
}

// drain runs queued tasks one by one. It holds the strand's running
// flag for the whole batch, so no second drain can be scheduled.
func (s *Strand) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.mu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		task()
	}
}
