package align

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCategorical(t *testing.T) {
	col := Column{Name: "Diabetes", Kind: Categorical, Codes: map[string]int{"No": 0, "Yes": 1, "1": 2, "true": 3}, Fallback: 0}

	tests := []struct {
		name    string
		raw     any
		present bool
		want    float64
		rc      Recovery
	}{
		{name: "known", raw: "Yes", present: true, want: 1, rc: RecoveryNone},
		{name: "unseen", raw: "Maybe", present: true, want: 0, rc: RecoveryUnseen},
		{name: "case differs", raw: "yes", present: true, want: 0, rc: RecoveryUnseen},
		{name: "absent", present: false, want: 0, rc: RecoveryMissing},
		{name: "null", raw: nil, present: true, want: 0, rc: RecoveryMissing},
		{name: "number rendered", raw: 1.0, present: true, want: 2, rc: RecoveryNone},
		{name: "bool rendered", raw: true, present: true, want: 3, rc: RecoveryNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rc := ResolveCategorical(col, tt.raw, tt.present)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rc, rc)
		})
	}
}

func TestResolveNumeric(t *testing.T) {
	col := Column{Name: "BMI", Kind: Numeric, Impute: 3}

	tests := []struct {
		name    string
		raw     any
		present bool
		want    float64
		rc      Recovery
	}{
		{name: "float", raw: 24.5, present: true, want: 24.5},
		{name: "int", raw: 30, present: true, want: 30},
		{name: "json number", raw: json.Number("18.25"), present: true, want: 18.25},
		{name: "numeric string", raw: " 41 ", present: true, want: 41},
		{name: "absent", present: false, want: 3, rc: RecoveryMissing},
		{name: "null", raw: nil, present: true, want: 3, rc: RecoveryMissing},
		{name: "word", raw: "tall", present: true, want: 3, rc: RecoveryUnparseable},
		{name: "nan string", raw: "NaN", present: true, want: 3, rc: RecoveryUnparseable},
		{name: "inf", raw: math.Inf(1), present: true, want: 3, rc: RecoveryUnparseable},
		{name: "bool", raw: false, present: true, want: 3, rc: RecoveryUnparseable},
		{name: "slice", raw: []any{1}, present: true, want: 3, rc: RecoveryUnparseable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rc := ResolveNumeric(col, tt.raw, tt.present)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rc, rc)
		})
	}
}

func TestRecoveryText(t *testing.T) {
	b, err := json.Marshal(FieldRecovery{Column: "BMI", Reason: RecoveryUnparseable})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"column":"BMI","reason":"unparseable"}`, string(b))
}
