// Package dataset reads the reference survey dataset and derives the
// feature schema the classifier was trained against.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultRows mirrors the sample size the forms were designed against.
const DefaultRows = 1000

// Frame is a header plus raw string cells, row-major.
type Frame struct {
	Header []string
	Rows   [][]string
}

// Column returns the cells of the named column, or nil if absent.
func (f *Frame) Column(name string) []string {
	idx := f.index(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r[idx]
	}
	return out
}

func (f *Frame) index(name string) int {
	for i, h := range f.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Load opens path and reads at most limit data rows (0 reads all).
func Load(path string, limit int) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference dataset: %w", err)
	}
	defer file.Close()

	f, err := ReadCSV(file, limit)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

// ReadCSV parses a headed CSV stream.
func ReadCSV(r io.Reader, limit int) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty dataset: missing header row")
		}
		return nil, fmt.Errorf("header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	f := &Frame{Header: header}
	for line := 2; limit <= 0 || len(f.Rows) < limit; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d: got %d fields, header has %d", line, len(rec), len(header))
		}
		f.Rows = append(f.Rows, rec)
	}
	return f, nil
}

// Missing reports whether a cell holds no value.
func Missing(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "NA", "NaN", "nan", "null":
		return true
	}
	return false
}
