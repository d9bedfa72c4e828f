// Package store persists completed assessments. PostgreSQL and SQLite
// backends share the Repository contract.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrDisabled is returned by Nop for reads.
var ErrDisabled = errors.New("assessment store disabled")

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Assessment is one persisted assessment outcome.
type Assessment struct {
	ID              string          `json:"id"`
	RequestID       string          `json:"request_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Label           string          `json:"label"`
	HighRisk        bool            `json:"high_risk"`
	RiskProbability float64         `json:"risk_probability"`
	Source          string          `json:"source"`
	Input           json.RawMessage `json:"input"`
	Recoveries      json.RawMessage `json:"recoveries"`
}

type Repository interface {
	Save(ctx context.Context, a Assessment) error
	Recent(ctx context.Context, limit int) ([]Assessment, error)
	Ping(ctx context.Context) error
	Close() error
}

// ClampLimit maps a requested page size into [1, MaxLimit].
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

// Open returns the repository for driver: "none" (or empty), "postgres"
// using dsn as the connection URL, or "sqlite" using dsn as the file path.
func Open(ctx context.Context, driver, dsn string) (Repository, error) {
	switch driver {
	case "", "none":
		return Nop{}, nil
	case "postgres":
		p, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "sqlite":
		s, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}

// Nop is the repository used when persistence is off.
type Nop struct{}

func (Nop) Save(context.Context, Assessment) error { return nil }

func (Nop) Recent(context.Context, int) ([]Assessment, error) { return nil, ErrDisabled }

func (Nop) Ping(context.Context) error { return nil }

func (Nop) Close() error { return nil }

func orEmpty(b json.RawMessage) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("null")
	}
	return b
}
