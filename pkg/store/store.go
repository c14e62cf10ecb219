// Package store holds the buffered heartbeat records waiting to be flushed.
package store

import (
	"time"

	"github.com/harunnryd/heartbeat/pkg/props"
)

// Key identifies a buffered record. Using a struct rather than a joined string
// keeps separators inside either field from colliding.
type Key struct {
	EventName string
	ContentID string
}

// Record accumulates the merged properties of one (event, content) pair.
type Record struct {
	EventName string
	ContentID string
	Props     props.Map
	Beats     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Record) Key() Key { return Key{EventName: r.EventName, ContentID: r.ContentID} }

// Clone returns a copy that does not share property storage with r.
func (r Record) Clone() Record {
	r.Props = r.Props.Clone()
	return r
}

// Store maps keys to records and remembers insertion order. It is not safe for
// concurrent use; the owner serializes access.
type Store struct {
	records map[Key]Record
	order   []Key
}

func New() *Store {
	return &Store{records: make(map[Key]Record)}
}

func (s *Store) Get(k Key) (Record, bool) {
	r, ok := s.records[k]
	return r, ok
}

func (s *Store) Has(k Key) bool {
	_, ok := s.records[k]
	return ok
}

// Set inserts or replaces the record for k. Replacing keeps the original position.
func (s *Store) Set(k Key, r Record) {
	if _, ok := s.records[k]; !ok {
		s.order = append(s.order, k)
	}
	s.records[k] = r
}

func (s *Store) Delete(k Key) bool {
	if _, ok := s.records[k]; !ok {
		return false
	}
	delete(s.records, k)
	for i, cur := range s.order {
		if cur == k {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns a snapshot of live keys in insertion order.
func (s *Store) Keys() []Key {
	out := make([]Key, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) KeysByEvent(eventName string) []Key {
	return s.filter(func(k Key) bool { return k.EventName == eventName })
}

func (s *Store) KeysByContent(contentID string) []Key {
	return s.filter(func(k Key) bool { return k.ContentID == contentID })
}

func (s *Store) Len() int { return len(s.order) }

func (s *Store) ClearAll() {
	s.records = make(map[Key]Record)
	s.order = nil
}

func (s *Store) filter(keep func(Key) bool) []Key {
	var out []Key
	for _, k := range s.order {
		if keep(k) {
			out = append(out, k)
		}
	}
	return out
}
