package model

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type logisticArtifact struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Kind      string    `json:"kind"`
	Features  []string  `json:"features"`
	Classes   []string  `json:"classes"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Threshold float64   `json:"threshold"`
}

type scalerArtifact struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Std     []float64 `json:"std"`
}

// LoadLogistic reads a logistic model artifact from path.
func LoadLogistic(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return DecodeLogistic(data)
}

// DecodeLogistic validates and decodes a logistic model artifact.
func DecodeLogistic(data []byte) (*Logistic, error) {
	if err := validate("schemas/logistic.json", data); err != nil {
		return nil, fmt.Errorf("model artifact: %w", err)
	}
	var a logisticArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(a.Weights) != len(a.Features) {
		return nil, fmt.Errorf("model has %d weights for %d features: %w", len(a.Weights), len(a.Features), ErrFeatureCount)
	}
	info := Info{Name: a.Name, Version: a.Version, Features: a.Features, Classes: a.Classes}
	return NewLogistic(info, a.Weights, a.Bias, a.Threshold), nil
}

// LoadScaler reads a fitted standard scaler from path.
func LoadScaler(path string) (*StandardScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	return DecodeScaler(data)
}

// DecodeScaler validates and decodes a scaler artifact.
func DecodeScaler(data []byte) (*StandardScaler, error) {
	if err := validate("schemas/scaler.json", data); err != nil {
		return nil, fmt.Errorf("scaler artifact: %w", err)
	}
	var a scalerArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if len(a.Mean) != len(a.Columns) || len(a.Std) != len(a.Columns) {
		return nil, fmt.Errorf("scaler has %d columns, %d means, %d stds", len(a.Columns), len(a.Mean), len(a.Std))
	}
	return NewStandardScaler(a.Columns, a.Mean, a.Std), nil
}

func validate(schemaPath string, data []byte) error {
	raw, err := schemaFS.ReadFile(schemaPath)
	if err != nil {
		return err
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(raw), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
}
