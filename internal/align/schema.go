package align

import (
	"errors"
	"sort"
)

// ErrNoSchema is the only error that crosses the aligner boundary.
var ErrNoSchema = errors.New("cannot align: no reference schema")

type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "numeric"
}

// Column describes one model input in training order.
type Column struct {
	Name string
	Kind Kind

	// Codes and Fallback are set for categorical columns only.
	Codes    map[string]int
	Fallback int

	// Impute is the reference median, numeric columns only.
	Impute float64
}

// Vocabulary returns the known categorical values ordered by code.
func (c Column) Vocabulary() []string {
	out := make([]string, 0, len(c.Codes))
	for v := range c.Codes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return c.Codes[out[i]] < c.Codes[out[j]] })
	return out
}

// FallbackValue is the categorical value whose code is Fallback.
func (c Column) FallbackValue() string {
	for v, code := range c.Codes {
		if code == c.Fallback {
			return v
		}
	}
	return ""
}

// Schema is built once from the reference dataset and is read-only afterwards.
type Schema struct {
	Columns []Column
	// Target is the prediction column; it never appears in Columns.
	Target string
}

// Names returns the column names in schema order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of name in the schema, or -1.
func (s *Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (s *Schema) validate() error {
	if s == nil || len(s.Columns) == 0 {
		return ErrNoSchema
	}
	return nil
}
