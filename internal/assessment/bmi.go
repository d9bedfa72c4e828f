package assessment

import (
	"maps"

	"github.com/Skufu/cardiorisk/internal/align"
)

const (
	weightField = "Weight_(kg)"
	heightField = "Height_(cm)"
	bmiField    = "BMI"
)

// WithBMI returns rec with BMI derived from weight and height when BMI is
// absent and both measurements are usable. rec itself is never modified.
func WithBMI(rec align.Record) align.Record {
	if _, ok := rec[bmiField]; ok {
		return rec
	}
	w, wok := measurement(rec, weightField)
	h, hok := measurement(rec, heightField)
	if !wok || !hok || w <= 0 || h <= 0 {
		return rec
	}
	m := h / 100
	out := maps.Clone(rec)
	out[bmiField] = w / (m * m)
	return out
}

func measurement(rec align.Record, name string) (float64, bool) {
	raw, ok := rec[name]
	v, rc := align.ResolveNumeric(align.Column{Name: name}, raw, ok)
	return v, rc == align.RecoveryNone
}
