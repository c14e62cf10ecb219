// Package props models heartbeat properties as a closed set of value kinds
// and implements the type-directed merge used to aggregate them.
package props

import (
	"fmt"
	"math"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindInvalid Kind = iota
	KindNumber
	KindText
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "invalid"
	}
}

// Value is a property value: a number, a text, an ordered sequence of values
// or a mapping. Values are immutable once built; accessors return copies.
type Value struct {
	kind Kind
	num  float64
	text string
	seq  []Value
	m    Map
}

// Number builds a number value. NaN and infinities yield an invalid Value,
// which Map.Set and Sequence drop.
func Number(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: v}
}

func Text(s string) Value { return Value{kind: KindText, text: s} }

// Sequence builds a sequence value. Invalid items are dropped.
func Sequence(items ...Value) Value {
	seq := make([]Value, 0, len(items))
	for _, it := range items {
		if it.Valid() {
			seq = append(seq, it)
		}
	}
	return Value{kind: KindSequence, seq: seq}
}

func Mapping(m Map) Value { return Value{kind: KindMapping, m: m.Clone()} }

func (v Value) Kind() Kind  { return v.kind }
func (v Value) Valid() bool { return v.kind != KindInvalid }

func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) Text() (string, bool) { return v.text, v.kind == KindText }

func (v Value) Sequence() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	out := make([]Value, len(v.seq))
	copy(out, v.seq)
	return out, true
}

func (v Value) Mapping() (Map, bool) {
	if v.kind != KindMapping {
		return Map{}, false
	}
	return v.m.Clone(), true
}

// Any converts the value to plain Go types (float64, string, []any,
// map[string]any) for encoders that do not know about Value.
func (v Value) Any() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, it := range v.seq {
			out[i] = it.Any()
		}
		return out
	case KindMapping:
		return v.m.ToAny()
	default:
		return nil
	}
}

// Equal reports deep equality, including key order of nested mappings.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.text == o.text
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		return v.m.Equal(o.m)
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindInvalid:
		return "<invalid>"
	default:
		return fmt.Sprint(v.Any())
	}
}
