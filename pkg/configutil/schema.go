package configutil

import (
	"sort"
	"strings"

	"github.com/harunnryd/heartbeat/pkg/errorsx"
)

// Schema lists the keys a settings map must and may carry.
type Schema struct {
	Required     []string
	Optional     []string
	AllowUnknown bool
}

// Validate checks input against the schema. Keys match regardless of case,
// underscores and hyphens, so "max_buffer_time" and "MaxBufferTime" agree.
func (s Schema) Validate(input map[string]any) error {
	required := make(map[string]string, len(s.Required))
	allowed := make(map[string]struct{}, len(s.Required)+len(s.Optional))
	for _, k := range s.Required {
		required[normalizeKey(k)] = k
		allowed[normalizeKey(k)] = struct{}{}
	}
	for _, k := range s.Optional {
		allowed[normalizeKey(k)] = struct{}{}
	}

	var missing, unknown []string
	seen := make(map[string]bool, len(input))
	for k, v := range input {
		nk := normalizeKey(k)
		seen[nk] = true
		if _, ok := allowed[nk]; !ok && !s.AllowUnknown {
			unknown = append(unknown, k)
		}
		if reqKey, ok := required[nk]; ok && isEmptyValue(v) {
			missing = append(missing, reqKey)
		}
	}
	for nk, reqKey := range required {
		if !seen[nk] {
			missing = append(missing, reqKey)
		}
	}

	if len(missing) == 0 && len(unknown) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(unknown)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(unknown) > 0 {
		parts = append(parts, "unknown: "+strings.Join(unknown, ", "))
	}
	return errorsx.New(errorsx.ReasonConfigDecode, "%s", strings.Join(parts, "; "))
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
