package align

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return &Schema{
		Target: "Heart_Disease",
		Columns: []Column{
			{Name: "General_Health", Kind: Categorical, Codes: map[string]int{"Excellent": 0, "Fair": 1, "Good": 2, "Poor": 3, "Very Good": 4}, Fallback: 4},
			{Name: "Sex", Kind: Categorical, Codes: map[string]int{"Female": 0, "Male": 1}, Fallback: 1},
			{Name: "BMI", Kind: Numeric, Impute: 27.4},
			{Name: "Smoking_History", Kind: Categorical, Codes: map[string]int{"No": 0, "Yes": 1}, Fallback: 0},
			{Name: "Alcohol_Consumption", Kind: Numeric, Impute: 2},
		},
	}
}

// offsetScaler adds 100 to every value it receives.
type offsetScaler struct{ cols []string }

func (s offsetScaler) Columns() []string { return s.cols }

func (s offsetScaler) Transform(v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] + 100
	}
	return out
}

// shortScaler drops the last value it receives.
type shortScaler struct{ cols []string }

func (s shortScaler) Columns() []string { return s.cols }

func (s shortScaler) Transform(v []float64) []float64 { return v[:len(v)-1] }

func TestAlignNoSchema(t *testing.T) {
	_, err := Align(Record{"BMI": 20}, nil)
	require.ErrorIs(t, err, ErrNoSchema)

	_, err = Align(Record{"BMI": 20}, &Schema{})
	require.ErrorIs(t, err, ErrNoSchema)
	assert.EqualError(t, err, "cannot align: no reference schema")

	var a *Aligner
	_, err = a.Align(Record{})
	require.ErrorIs(t, err, ErrNoSchema)
}

func TestAlignColumnOrder(t *testing.T) {
	s := testSchema()
	inputs := []Record{
		{},
		{"Alcohol_Consumption": 4, "Sex": "Female", "Unexpected": "x"},
		{"Smoking_History": "Yes", "BMI": "31.5", "General_Health": "Poor", "Heart_Disease": "Yes"},
	}
	for _, in := range inputs {
		row, err := Align(in, s)
		require.NoError(t, err)
		require.Len(t, row, len(s.Columns))
	}

	row, err := Align(Record{"Alcohol_Consumption": 4, "Sex": "Female", "General_Health": "Good"}, s)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0, 27.4, 0, 4}, row)
}

func TestAlignSexBMIScenario(t *testing.T) {
	row, err := Align(Record{"Sex": "Unknown"}, testSchema())
	require.NoError(t, err)
	assert.Equal(t, 1.0, row[1], "unseen Sex falls back to the mode code")
	assert.Equal(t, 27.4, row[2], "absent BMI is imputed with the median")
}

func TestAlignAllValid(t *testing.T) {
	a, err := New(testSchema(), nil)
	require.NoError(t, err)

	res, err := a.Align(Record{
		"General_Health":      "Excellent",
		"Sex":                 "Female",
		"BMI":                 22.5,
		"Smoking_History":     "Yes",
		"Alcohol_Consumption": json.Number("7"),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 22.5, 1, 7}, res.Row)
	assert.Empty(t, res.Recoveries)
}

func TestAlignRecordsRecoveries(t *testing.T) {
	a, err := New(testSchema(), nil)
	require.NoError(t, err)

	res, err := a.Align(Record{
		"General_Health":      "Superb",
		"BMI":                 "heavy",
		"Smoking_History":     nil,
		"Alcohol_Consumption": 3,
		"Sex":                 "Male",
	})
	require.NoError(t, err)
	assert.Equal(t, []FieldRecovery{
		{Column: "General_Health", Reason: RecoveryUnseen},
		{Column: "BMI", Reason: RecoveryUnparseable},
		{Column: "Smoking_History", Reason: RecoveryMissing},
	}, res.Recoveries)
}

func TestAlignFallbackDeterminism(t *testing.T) {
	s := testSchema()
	first, err := Align(Record{"General_Health": "Superb"}, s)
	require.NoError(t, err)
	second, err := Align(Record{"General_Health": "Superb"}, s)
	require.NoError(t, err)
	missing, err := Align(Record{}, s)
	require.NoError(t, err)

	assert.Equal(t, first[0], second[0])
	assert.Equal(t, missing[0], first[0])
}

func TestAlignIdempotent(t *testing.T) {
	a, err := New(testSchema(), offsetScaler{cols: []string{"BMI"}})
	require.NoError(t, err)
	in := Record{"Sex": "Female", "BMI": 33.1, "General_Health": "bad"}

	r1, err := a.Align(in)
	require.NoError(t, err)
	r2, err := a.Align(in)
	require.NoError(t, err)
	require.Len(t, r2.Row, len(r1.Row))
	for i := range r1.Row {
		assert.Equal(t, math.Float64bits(r1.Row[i]), math.Float64bits(r2.Row[i]))
	}
}

func TestAlignScalerScope(t *testing.T) {
	s := testSchema()
	in := Record{"General_Health": "Fair", "Sex": "Female", "BMI": 30, "Smoking_History": "Yes", "Alcohol_Consumption": 5}

	plain, err := New(s, nil)
	require.NoError(t, err)
	// Fitted jointly on an encoded categorical and one numeric column.
	scaled, err := New(s, offsetScaler{cols: []string{"Sex", "BMI"}})
	require.NoError(t, err)
	assert.True(t, scaled.Scaled())

	p, err := plain.Align(in)
	require.NoError(t, err)
	q, err := scaled.Align(in)
	require.NoError(t, err)

	assert.Equal(t, p.Row[0], q.Row[0])
	assert.Equal(t, p.Row[1], q.Row[1], "categorical codes are never scaled")
	assert.Equal(t, p.Row[3], q.Row[3])
	assert.Equal(t, p.Row[4], q.Row[4], "numeric column outside the scaler subset")
	assert.Equal(t, 130.0, q.Row[2])
}

func TestAlignConcurrentShared(t *testing.T) {
	a, err := New(testSchema(), offsetScaler{cols: []string{"Sex", "BMI"}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(bmi float64) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				res, err := a.Align(Record{"Sex": "Female", "BMI": bmi, "General_Health": "Superb"})
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, []float64{4, 0, bmi + 100, 0, 2}, res.Row)
				assert.Equal(t, []FieldRecovery{
					{Column: "General_Health", Reason: RecoveryUnseen},
					{Column: "Smoking_History", Reason: RecoveryMissing},
					{Column: "Alcohol_Consumption", Reason: RecoveryMissing},
				}, res.Recoveries)
			}
		}(float64(20 + i))
	}
	wg.Wait()
}

func TestAlignRejectsShortScalerOutput(t *testing.T) {
	a, err := New(testSchema(), shortScaler{cols: []string{"BMI", "Alcohol_Consumption"}})
	require.NoError(t, err)

	res, err := a.Align(Record{"BMI": 30, "Alcohol_Consumption": 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scaler returned 1 values for 2 columns")
	assert.Nil(t, res.Row)
}

func TestNewRejectsUnknownScalerColumn(t *testing.T) {
	_, err := New(testSchema(), offsetScaler{cols: []string{"Cholesterol"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cholesterol")
}

func TestSchemaHelpers(t *testing.T) {
	s := testSchema()
	assert.Equal(t, []string{"General_Health", "Sex", "BMI", "Smoking_History", "Alcohol_Consumption"}, s.Names())
	assert.Equal(t, 2, s.Index("BMI"))
	assert.Equal(t, -1, s.Index("Heart_Disease"))
	assert.Equal(t, []string{"Female", "Male"}, s.Columns[1].Vocabulary())
	assert.Equal(t, "Male", s.Columns[1].FallbackValue())
	assert.Equal(t, "categorical", s.Columns[1].Kind.String())
}
