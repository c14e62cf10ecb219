package props

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var jsonStd = jsoniter.ConfigCompatibleWithStandardLibrary

// Map is an insertion-ordered set of named values. The zero Map is empty and
// ready to use. Overwriting a key keeps its original position.
type Map struct {
	keys   []string
	values map[string]Value
}

// Of builds a Map from alternating key/value arguments. Values go through
// FromAny; pairs with a non-string key or an unsupported value are skipped.
func Of(pairs ...any) Map {
	var m Map
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		if v, ok := FromAny(pairs[i+1]); ok {
			m.Set(key, v)
		}
	}
	return m
}

func (m *Map) Set(key string, v Value) {
	if !v.Valid() {
		return
	}
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

func (m Map) Len() int { return len(m.keys) }

func (m Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m Map) Range(fn func(key string, v Value) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

func (m Map) Clone() Map {
	if len(m.keys) == 0 {
		return Map{}
	}
	out := Map{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]Value, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

func (m Map) Equal(o Map) bool {
	if len(m.keys) != len(o.keys) {
		return false
	}
	for i, k := range m.keys {
		if o.keys[i] != k || !m.values[k].Equal(o.values[k]) {
			return false
		}
	}
	return true
}

func (m Map) ToAny() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = m.values[k].Any()
	}
	return out
}

// MarshalJSON writes the entries in insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	stream := jsonStd.BorrowStream(nil)
	defer jsonStd.ReturnStream(stream)
	writeMap(stream, m)
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	stream := jsonStd.BorrowStream(nil)
	defer jsonStd.ReturnStream(stream)
	writeValue(stream, v)
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func writeMap(stream *jsoniter.Stream, m Map) {
	stream.WriteObjectStart()
	for i, k := range m.keys {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(k)
		writeValue(stream, m.values[k])
	}
	stream.WriteObjectEnd()
}

func writeValue(stream *jsoniter.Stream, v Value) {
	switch v.kind {
	case KindNumber:
		stream.WriteFloat64(v.num)
	case KindText:
		stream.WriteString(v.text)
	case KindSequence:
		stream.WriteArrayStart()
		for i, it := range v.seq {
			if i > 0 {
				stream.WriteMore()
			}
			writeValue(stream, it)
		}
		stream.WriteArrayEnd()
	case KindMapping:
		writeMap(stream, v.m)
	default:
		stream.WriteNil()
	}
}

// FromMap converts a plain Go map. Keys are inserted in sorted order since
// Go maps carry no order of their own.
func FromMap(in map[string]any) Map {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var m Map
	for _, k := range keys {
		if v, ok := FromAny(in[k]); ok {
			m.Set(k, v)
		}
	}
	return m
}

// FromAny converts plain Go values into a Value. Booleans, nil and other
// unsupported types report false; unsupported sequence items are dropped.
func FromAny(in any) (Value, bool) {
	switch val := in.(type) {
	case Value:
		return val, val.Valid()
	case Map:
		return Mapping(val), true
	case float64:
		v := Number(val)
		return v, v.Valid()
	case float32:
		v := Number(float64(val))
		return v, v.Valid()
	case int:
		return Number(float64(val)), true
	case int8:
		return Number(float64(val)), true
	case int16:
		return Number(float64(val)), true
	case int32:
		return Number(float64(val)), true
	case int64:
		return Number(float64(val)), true
	case uint:
		return Number(float64(val)), true
	case uint8:
		return Number(float64(val)), true
	case uint16:
		return Number(float64(val)), true
	case uint32:
		return Number(float64(val)), true
	case uint64:
		return Number(float64(val)), true
	case string:
		return Text(val), true
	case []string:
		items := make([]Value, len(val))
		for i, s := range val {
			items[i] = Text(s)
		}
		return Sequence(items...), true
	case []float64:
		items := make([]Value, len(val))
		for i, f := range val {
			items[i] = Number(f)
		}
		return Sequence(items...), true
	case []Value:
		return Sequence(val...), true
	case []any:
		items := make([]Value, 0, len(val))
		for _, it := range val {
			if v, ok := FromAny(it); ok {
				items = append(items, v)
			}
		}
		return Sequence(items...), true
	case map[string]any:
		return Value{kind: KindMapping, m: FromMap(val)}, true
	}
	return Value{}, false
}
