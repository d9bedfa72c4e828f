package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS assessments(
	id TEXT PRIMARY KEY,
	request_id TEXT,
	created_at DATETIME NOT NULL,
	label TEXT NOT NULL,
	high_risk BOOLEAN NOT NULL,
	risk_probability REAL NOT NULL,
	source TEXT NOT NULL,
	input TEXT,
	recoveries TEXT
)`

// SQL stores assessments through database/sql with ? placeholders.
type SQL struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// go-sqlite3 serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := NewSQL(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an open handle without running migrations.
func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create assessments table: %w", err)
	}
	return nil
}

func (s *SQL) Save(ctx context.Context, a Assessment) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO assessments(
		id, request_id, created_at, label, high_risk, risk_probability, source, input, recoveries)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		a.ID, a.RequestID, a.CreatedAt.UTC(), a.Label, a.HighRisk, a.RiskProbability, a.Source,
		string(orEmpty(a.Input)), string(orEmpty(a.Recoveries)))
	if err != nil {
		return fmt.Errorf("insert assessment %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQL) Recent(ctx context.Context, limit int) ([]Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, request_id, created_at, label, high_risk, risk_probability, source, input, recoveries
		FROM assessments ORDER BY created_at DESC LIMIT ?`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		var (
			a                 Assessment
			reqID             sql.NullString
			input, recoveries sql.NullString
		)
		if err := rows.Scan(&a.ID, &reqID, &a.CreatedAt, &a.Label, &a.HighRisk, &a.RiskProbability, &a.Source, &input, &recoveries); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		a.RequestID = reqID.String
		a.Input = orEmpty([]byte(input.String))
		a.Recoveries = orEmpty([]byte(recoveries.String))
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return out, nil
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQL) Close() error {
	return s.db.Close()
}
