package queue

import "sync"

// Store is the ordered, mutex-guarded sequence of pending jobs shared by the
// ingress handler and the transfer worker. All four operations are
// lock-scoped; the lock is never held across I/O.
type Store struct {
	mu   sync.Mutex
	jobs []Job
	wake chan struct{}
}

// NewStore returns an empty queue.
func NewStore() *Store {
	return &Store{wake: make(chan struct{}, 1)}
}

// Enqueue appends the job and returns its 1-based position (the queue length
// after insertion).
func (s *Store) Enqueue(job Job) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return len(s.jobs)
}

// PeekFront returns a copy of the head job without removing it.
func (s *Store) PeekFront() (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.jobs) == 0 {
		return Job{}, false
	}
	return s.jobs[0], true
}

// PopFront removes the head job. It is a no-op on an empty queue; the caller
// is expected to have just processed the head it peeked.
func (s *Store) PopFront() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.jobs) == 0 {
		return
	}
	copy(s.jobs, s.jobs[1:])
	s.jobs[len(s.jobs)-1] = Job{}
	s.jobs = s.jobs[:len(s.jobs)-1]
}

// Len returns the number of pending jobs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Snapshot copies the current queue contents, head first. Used by the HTTP
// API; not part of the worker's contract.
func (s *Store) Snapshot() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Job, len(s.jobs))
	copy(cp, s.jobs)
	return cp
}

// Signal wakes the worker. The send never blocks: tokens coalesce in a
// capacity-one channel, which is safe because the worker drains the queue
// until empty on every wake.
func (s *Store) Signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wake exposes the worker-side wake channel.
func (s *Store) Wake() <-chan struct{} {
	return s.wake
}
