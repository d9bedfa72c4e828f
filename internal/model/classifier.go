// Package model holds the classifier and scaler collaborators the aligned
// feature row is handed to.
package model

import (
	"errors"
	"fmt"
	"slices"
)

// ErrFeatureCount is returned when a row does not match the model's inputs.
var ErrFeatureCount = errors.New("feature count mismatch between model and row")

// Info describes a loaded model artifact.
type Info struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Features []string `json:"features"`
	Classes  []string `json:"classes"`
}

// Classifier is a fitted binary classifier over aligned rows.
type Classifier interface {
	Predict(row []float64) (string, error)
	// PredictProba returns one probability per entry of Info().Classes.
	PredictProba(row []float64) ([]float64, error)
	Info() Info
}

// CheckFeatures fails unless the classifier was trained on exactly the
// given columns in the given order.
func CheckFeatures(c Classifier, columns []string) error {
	want := c.Info().Features
	if slices.Equal(want, columns) {
		return nil
	}
	if len(want) != len(columns) {
		return fmt.Errorf("model expects %d features, schema has %d: %w", len(want), len(columns), ErrFeatureCount)
	}
	for i := range want {
		if want[i] != columns[i] {
			return fmt.Errorf("feature %d: model expects %q, schema has %q", i, want[i], columns[i])
		}
	}
	return nil
}

// Positive reports whether label is the high-risk class.
func Positive(label string) bool {
	return label == "1" || label == "Yes"
}
