package align

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Recovery records which policy produced a field's value.
type Recovery uint8

const (
	RecoveryNone Recovery = iota
	// RecoveryMissing: field absent or null.
	RecoveryMissing
	// RecoveryUnseen: categorical value not in the reference vocabulary.
	RecoveryUnseen
	// RecoveryUnparseable: numeric field that does not parse to a finite number.
	RecoveryUnparseable
)

func (r Recovery) String() string {
	switch r {
	case RecoveryMissing:
		return "missing"
	case RecoveryUnseen:
		return "unseen"
	case RecoveryUnparseable:
		return "unparseable"
	default:
		return "none"
	}
}

func (r Recovery) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// ResolveCategorical maps raw to the column's code, falling back to the
// mode's code for absent or unseen values.
func ResolveCategorical(c Column, raw any, present bool) (float64, Recovery) {
	if !present || raw == nil {
		return float64(c.Fallback), RecoveryMissing
	}
	if code, ok := c.Codes[text(raw)]; ok {
		return float64(code), RecoveryNone
	}
	return float64(c.Fallback), RecoveryUnseen
}

// ResolveNumeric parses raw, falling back to the reference median.
func ResolveNumeric(c Column, raw any, present bool) (float64, Recovery) {
	if !present || raw == nil {
		return c.Impute, RecoveryMissing
	}
	v, ok := number(raw)
	if !ok {
		return c.Impute, RecoveryUnparseable
	}
	return v, RecoveryNone
}

// text renders a raw input the way reference cells are stored.
func text(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func number(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		p, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
