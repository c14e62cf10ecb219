package props

// Merge folds incoming into existing and returns the result. Neither input is
// modified. For every key of incoming, in order:
//
//   - missing in existing: copied
//   - number onto number: summed, keeping existing if the sum overflows
//   - text: incoming wins
//   - sequence onto sequence: concatenated, existing items first
//   - mapping onto mapping: shallow merge, incoming top-level keys win
//   - anything else: incoming wins
func Merge(existing, incoming Map) Map {
	out := existing.Clone()
	incoming.Range(func(key string, in Value) bool {
		cur, ok := out.Get(key)
		if !ok {
			out.Set(key, in)
			return true
		}
		out.Set(key, mergeValue(cur, in))
		return true
	})
	return out
}

func mergeValue(cur, in Value) Value {
	switch in.kind {
	case KindNumber:
		if cur.kind == KindNumber {
			if sum := Number(cur.num + in.num); sum.Valid() {
				return sum
			}
			return cur
		}
	case KindText:
		return in
	case KindSequence:
		if cur.kind == KindSequence {
			seq := make([]Value, 0, len(cur.seq)+len(in.seq))
			seq = append(seq, cur.seq...)
			seq = append(seq, in.seq...)
			return Value{kind: KindSequence, seq: seq}
		}
	case KindMapping:
		if cur.kind == KindMapping {
			m := cur.m.Clone()
			in.m.Range(func(k string, v Value) bool {
				m.Set(k, v)
				return true
			})
			return Value{kind: KindMapping, m: m}
		}
	}
	return in
}
