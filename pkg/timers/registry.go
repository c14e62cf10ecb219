// Package timers keeps at most one pending flush timer per key.
package timers

import "time"

// Handle cancels a scheduled callback. Stop reports whether the call
// prevented the callback from running.
type Handle interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
}

// RealScheduler schedules on the runtime clock.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}

type entry struct {
	handle Handle
	gen    uint64
}

// Registry maps keys to their pending timer. Every Arm gets a new generation
// so a callback that fired while a newer timer was being armed can be told
// apart with Expire. It is not safe for concurrent use; the owner serializes
// access, including from inside the expiry callbacks.
type Registry[K comparable] struct {
	sched   Scheduler
	entries map[K]entry
	gen     uint64
}

func NewRegistry[K comparable](sched Scheduler) *Registry[K] {
	if sched == nil {
		sched = RealScheduler{}
	}
	return &Registry[K]{sched: sched, entries: make(map[K]entry)}
}

// Arm replaces any pending timer for key with a new one that calls onExpire
// after delay. It returns the generation passed to onExpire.
func (r *Registry[K]) Arm(key K, delay time.Duration, onExpire func(key K, gen uint64)) uint64 {
	r.Cancel(key)
	r.gen++
	gen := r.gen
	h := r.sched.AfterFunc(delay, func() { onExpire(key, gen) })
	r.entries[key] = entry{handle: h, gen: gen}
	return gen
}

// Cancel stops the timer for key. It is a no-op when none is pending.
func (r *Registry[K]) Cancel(key K) bool {
	e, ok := r.entries[key]
	if !ok {
		return false
	}
	delete(r.entries, key)
	e.handle.Stop()
	return true
}

func (r *Registry[K]) CancelAll() {
	for key, e := range r.entries {
		e.handle.Stop()
		delete(r.entries, key)
	}
}

// Expire retires the entry for key if gen is still its current generation.
// A false result means the timer was cancelled or re-armed in the meantime.
func (r *Registry[K]) Expire(key K, gen uint64) bool {
	e, ok := r.entries[key]
	if !ok || e.gen != gen {
		return false
	}
	delete(r.entries, key)
	return true
}

func (r *Registry[K]) Has(key K) bool {
	_, ok := r.entries[key]
	return ok
}

func (r *Registry[K]) Len() int { return len(r.entries) }
