package model

import "math"

// Logistic is a binary logistic regression: p = sigmoid(w·x + b).
type Logistic struct {
	info      Info
	weights   []float64
	bias      float64
	threshold float64
}

// NewLogistic builds a model from fitted parameters. Classes must hold the
// negative then the positive label.
func NewLogistic(info Info, weights []float64, bias, threshold float64) *Logistic {
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.5
	}
	return &Logistic{info: info, weights: weights, bias: bias, threshold: threshold}
}

func (m *Logistic) Info() Info { return m.info }

func (m *Logistic) PredictProba(row []float64) ([]float64, error) {
	if len(row) != len(m.weights) {
		return nil, ErrFeatureCount
	}
	sum := m.bias
	for j, v := range row {
		sum += m.weights[j] * v
	}
	p := sigmoid(sum)
	return []float64{1 - p, p}, nil
}

// Predict returns the positive class when p reaches the threshold.
func (m *Logistic) Predict(row []float64) (string, error) {
	proba, err := m.PredictProba(row)
	if err != nil {
		return "", err
	}
	if proba[1] >= m.threshold {
		return m.info.Classes[1], nil
	}
	return m.info.Classes[0], nil
}

func sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }
