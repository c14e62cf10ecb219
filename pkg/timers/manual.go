package timers

import (
	"sync"
	"time"
)

// ManualScheduler is a Scheduler driven by Advance instead of the clock.
// Callbacks run on the goroutine calling Advance, in deadline order.
type ManualScheduler struct {
	mu      sync.Mutex
	elapsed time.Duration
	seq     uint64
	tasks   []*manualTask
}

type manualTask struct {
	s   *ManualScheduler
	at  time.Duration
	seq uint64
	fn  func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &manualTask{s: s, at: s.elapsed + d, seq: s.seq, fn: f}
	s.tasks = append(s.tasks, t)
	return t
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.removeLocked(t)
}

// Advance moves the clock forward by d and runs every callback that falls due,
// including ones scheduled by callbacks along the way. It returns how many ran.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.elapsed + d
	s.mu.Unlock()

	fired := 0
	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.elapsed = target
			s.mu.Unlock()
			return fired
		}
		s.removeLocked(next)
		s.elapsed = next.at
		s.mu.Unlock()

		next.fn()
		fired++
	}
}

// Pending reports how many callbacks are scheduled and not yet stopped or run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *ManualScheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *ManualScheduler) nextDueLocked(target time.Duration) *manualTask {
	var next *manualTask
	for _, t := range s.tasks {
		if t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (s *ManualScheduler) removeLocked(t *manualTask) bool {
	for i, cur := range s.tasks {
		if cur == t {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}
