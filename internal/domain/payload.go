package domain

import "encoding/json"

// IndicatorPayload is the decoded body of a single remote indicator
// response. Field names vary per indicator (value, valueMACD,
// valueUpperBand, ...), so it stays schemaless at the wire boundary and
// is converted to a typed IndicatorResult by name, never by shape
// guessing.
type IndicatorPayload map[string]any

func (p IndicatorPayload) Empty() bool { return len(p) == 0 }

// Float reads a numeric field, tolerating the decoder representations
// JSON numbers arrive in.
func (p IndicatorPayload) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func (p IndicatorPayload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
