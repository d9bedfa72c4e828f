package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Skufu/cardiorisk/internal/align"
)

// BuildSchema derives the feature schema from f. The target column, when
// named, must exist and is left out of the schema.
func BuildSchema(f *Frame, target string) (*align.Schema, error) {
	if f == nil || len(f.Header) == 0 {
		return nil, align.ErrNoSchema
	}
	if target != "" && f.index(target) < 0 {
		return nil, fmt.Errorf("target column %q not in dataset header", target)
	}

	s := &align.Schema{Target: target}
	for _, name := range f.Header {
		if name == target {
			continue
		}
		cells := f.Column(name)
		if nums, ok := numericCells(cells); ok {
			s.Columns = append(s.Columns, align.Column{
				Name:   name,
				Kind:   align.Numeric,
				Impute: Median(nums),
			})
			continue
		}
		codes, fallback := labelEncode(cells)
		s.Columns = append(s.Columns, align.Column{
			Name:     name,
			Kind:     align.Categorical,
			Codes:    codes,
			Fallback: fallback,
		})
	}
	if len(s.Columns) == 0 {
		return nil, align.ErrNoSchema
	}
	return s, nil
}

// numericCells returns the parsed non-missing cells when every one of them
// is a number. A column with no present cells counts as numeric, so it
// imputes 0.
func numericCells(cells []string) ([]float64, bool) {
	var nums []float64
	for _, v := range cells {
		if Missing(v) {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}

// labelEncode assigns codes to the sorted distinct non-missing values and
// returns the code of the most frequent one.
func labelEncode(cells []string) (map[string]int, int) {
	counts := make(map[string]int)
	for _, v := range cells {
		if !Missing(v) {
			counts[v]++
		}
	}
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	codes := make(map[string]int, len(values))
	for i, v := range values {
		codes[v] = i
	}
	return codes, codes[Mode(cells)]
}

// Median returns the median of x without modifying it.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	mid := n >> 1
	if n&1 == 0 {
		return (cp[mid-1] + cp[mid]) * 0.5
	}
	return cp[mid]
}

// Mode returns the most frequent non-missing value; ties go to the
// lexically smallest.
func Mode(x []string) string {
	counts := make(map[string]int)
	for _, v := range x {
		if Missing(v) {
			continue
		}
		counts[v]++
	}
	mode, best := "", 0
	for v, c := range counts {
		if c > best || (c == best && v < mode) {
			mode, best = v, c
		}
	}
	return mode
}
