// Package kv converts raw configuration values into the typed results
// the driven.ConfigStore getters return. TOML decodes integers as int64
// and arrays as []any; values set in process keep their Go types. Both
// shapes are accepted.
package kv

// Lookup returns the raw value stored under key.
type Lookup func(key string) (any, bool)

// Typed provides the typed getters of driven.ConfigStore over a Lookup.
// Stores embed it and supply their own Get.
type Typed struct {
	lookup Lookup
}

// NewTyped wraps lookup.
func NewTyped(lookup Lookup) Typed {
	return Typed{lookup: lookup}
}

// GetString returns the string under key, or "".
func (t Typed) GetString(key string) string {
	s, _ := t.raw(key).(string)
	return s
}

// GetInt returns the integer under key, or 0. Floats are truncated.
func (t Typed) GetInt(key string) int {
	n, _ := Number(t.raw(key))
	return int(n)
}

// GetFloat returns the number under key, or 0.
func (t Typed) GetFloat(key string) float64 {
	n, _ := Number(t.raw(key))
	return n
}

// GetBool returns the boolean under key, or false.
func (t Typed) GetBool(key string) bool {
	b, _ := t.raw(key).(bool)
	return b
}

// GetStringSlice returns the strings under key. Non-string items of a
// mixed array are skipped; anything else yields nil.
func (t Typed) GetStringSlice(key string) []string {
	switch v := t.raw(key).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func (t Typed) raw(key string) any {
	if t.lookup == nil {
		return nil
	}
	v, _ := t.lookup(key)
	return v
}

// Number reports v as a float64 when it holds any Go numeric kind
// produced by the TOML decoder or by callers.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
