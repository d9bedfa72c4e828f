package model

// StandardScaler applies a fitted (x - mean) / std per named column.
type StandardScaler struct {
	columns []string
	mean    []float64
	std     []float64
}

// NewStandardScaler copies the fitted parameters; a zero std is treated as 1.
func NewStandardScaler(columns []string, mean, std []float64) *StandardScaler {
	s := &StandardScaler{
		columns: append([]string(nil), columns...),
		mean:    append([]float64(nil), mean...),
		std:     make([]float64, len(std)),
	}
	for i, v := range std {
		if v == 0 {
			v = 1
		}
		s.std[i] = v
	}
	return s
}

func (s *StandardScaler) Columns() []string { return s.columns }

func (s *StandardScaler) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i >= len(s.mean) {
			out[i] = v
			continue
		}
		out[i] = (v - s.mean[i]) / s.std[i]
	}
	return out
}
