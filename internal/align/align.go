// Package align maps a partial survey record onto the exact feature row a
// trained classifier expects.
//
// Columns come out in schema order with categorical values encoded the way
// they were at training time. Missing or malformed fields are recovered with
// the column's fallback code or reference median and never fail the call.
package align

import "fmt"

// Record is one set of form answers keyed by field name.
type Record map[string]any

// Scaler transforms the values of Columns(), given in that order, and
// returns exactly one value per input.
type Scaler interface {
	Columns() []string
	Transform(values []float64) []float64
}

// FieldRecovery names a field whose value came from a recovery policy.
type FieldRecovery struct {
	Column string   `json:"column"`
	Reason Recovery `json:"reason"`
}

// Alignment is the aligned row plus the fields that needed recovery.
type Alignment struct {
	Row        []float64
	Recoveries []FieldRecovery
}

// Aligner holds a schema and an optional scaler; safe for concurrent use.
type Aligner struct {
	schema *Schema
	scaler Scaler
	// scaled[i] is the row position of scaler column i; writeBack[i] is
	// false for categorical positions, which keep their code.
	scaled    []int
	writeBack []bool
}

// New validates the schema and the scaler's column subset.
func New(schema *Schema, scaler Scaler) (*Aligner, error) {
	if err := schema.validate(); err != nil {
		return nil, err
	}
	a := &Aligner{schema: schema, scaler: scaler}
	if scaler == nil {
		return a, nil
	}
	cols := scaler.Columns()
	a.scaled = make([]int, len(cols))
	a.writeBack = make([]bool, len(cols))
	for i, name := range cols {
		idx := schema.Index(name)
		if idx < 0 {
			return nil, fmt.Errorf("scaler column %q not in schema", name)
		}
		a.scaled[i] = idx
		a.writeBack[i] = schema.Columns[idx].Kind == Numeric
	}
	return a, nil
}

// Schema returns the schema the aligner was built with.
func (a *Aligner) Schema() *Schema { return a.schema }

// Scaled reports whether a scaler is applied.
func (a *Aligner) Scaled() bool { return a.scaler != nil }

// Align produces the feature row for in.
func (a *Aligner) Align(in Record) (Alignment, error) {
	if a == nil {
		return Alignment{}, ErrNoSchema
	}
	if err := a.schema.validate(); err != nil {
		return Alignment{}, err
	}

	row := make([]float64, len(a.schema.Columns))
	var recovered []FieldRecovery
	for i, c := range a.schema.Columns {
		raw, present := in[c.Name]
		var (
			v  float64
			rc Recovery
		)
		if c.Kind == Categorical {
			v, rc = ResolveCategorical(c, raw, present)
		} else {
			v, rc = ResolveNumeric(c, raw, present)
		}
		row[i] = v
		if rc != RecoveryNone {
			recovered = append(recovered, FieldRecovery{Column: c.Name, Reason: rc})
		}
	}

	if a.scaler != nil {
		if err := a.scale(row); err != nil {
			return Alignment{}, err
		}
	}
	return Alignment{Row: row, Recoveries: recovered}, nil
}

// scale runs the scaler over its own column subset and writes back the
// numeric positions only. row is left untouched on error.
func (a *Aligner) scale(row []float64) error {
	in := make([]float64, len(a.scaled))
	for i, idx := range a.scaled {
		in[i] = row[idx]
	}
	out := a.scaler.Transform(in)
	if len(out) != len(in) {
		return fmt.Errorf("scaler returned %d values for %d columns", len(out), len(in))
	}
	for i, idx := range a.scaled {
		if a.writeBack[i] {
			row[idx] = out[i]
		}
	}
	return nil
}

// Align aligns in against schema without scaling.
func Align(in Record, schema *Schema) ([]float64, error) {
	a, err := New(schema, nil)
	if err != nil {
		return nil, err
	}
	res, err := a.Align(in)
	if err != nil {
		return nil, err
	}
	return res.Row, nil
}
