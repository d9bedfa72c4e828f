package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS assessments(
	id TEXT PRIMARY KEY,
	request_id TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	label TEXT NOT NULL,
	high_risk BOOLEAN NOT NULL,
	risk_probability DOUBLE PRECISION NOT NULL,
	source TEXT NOT NULL,
	input JSONB,
	recoveries JSONB
)`

type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, pings and creates the assessments table.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create assessments table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Save(ctx context.Context, a Assessment) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO assessments(
		id, request_id, created_at, label, high_risk, risk_probability, source, input, recoveries)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.RequestID, a.CreatedAt.UTC(), a.Label, a.HighRisk, a.RiskProbability, a.Source,
		string(orEmpty(a.Input)), string(orEmpty(a.Recoveries)))
	if err != nil {
		return fmt.Errorf("insert assessment %s: %w", a.ID, err)
	}
	return nil
}

func (p *Postgres) Recent(ctx context.Context, limit int) ([]Assessment, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, COALESCE(request_id, ''), created_at, label, high_risk, risk_probability, source,
		COALESCE(input::text, 'null'), COALESCE(recoveries::text, 'null')
		FROM assessments ORDER BY created_at DESC LIMIT $1`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Assessment, error) {
		var (
			a                 Assessment
			input, recoveries string
		)
		err := row.Scan(&a.ID, &a.RequestID, &a.CreatedAt, &a.Label, &a.HighRisk, &a.RiskProbability, &a.Source, &input, &recoveries)
		a.Input = []byte(input)
		a.Recoveries = []byte(recoveries)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan assessments: %w", err)
	}
	return out, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
