package dataset

// Summary is the reference dataset overview shown next to the form.
type Summary struct {
	TotalRecords  int     `json:"total_records"`
	PositiveCases int     `json:"positive_cases"`
	RiskRate      float64 `json:"risk_rate"`
}

// Summary counts the rows whose target equals positive.
func (f *Frame) Summary(target, positive string) Summary {
	s := Summary{TotalRecords: len(f.Rows)}
	for _, v := range f.Column(target) {
		if v == positive {
			s.PositiveCases++
		}
	}
	if s.TotalRecords > 0 {
		s.RiskRate = float64(s.PositiveCases) / float64(s.TotalRecords)
	}
	return s
}
