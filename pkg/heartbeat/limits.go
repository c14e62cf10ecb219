package heartbeat

import (
	"math"

	"github.com/harunnryd/heartbeat/pkg/props"
	"github.com/harunnryd/heartbeat/pkg/store"
)

// checkLimits reports the first limit rec has reached. The property count is
// checked before values; values are scanned in insertion order and only
// top-level numbers count.
func checkLimits(rec store.Record, cfg Config) (FlushReason, bool) {
	if rec.Props.Len() >= cfg.MaxPropsCount {
		return ReasonMaxPropsCount, true
	}
	hit := false
	rec.Props.Range(func(_ string, v props.Value) bool {
		if n, ok := v.Number(); ok && math.Abs(n) >= cfg.MaxAggregatedValue {
			hit = true
			return false
		}
		return true
	})
	if hit {
		return ReasonMaxAggregatedValue, true
	}
	return "", false
}
