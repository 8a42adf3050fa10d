package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/internal/presentation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the evaluations table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS evaluations (
    job_id       TEXT PRIMARY KEY,
    student_name TEXT NOT NULL DEFAULT '',
    student_age  INT NOT NULL,
    topic        TEXT NOT NULL DEFAULT '',
    age_group    TEXT NOT NULL,
    overall      INT NOT NULL,
    variant      TEXT NOT NULL,
    result       JSONB NOT NULL,
    presentation JSONB NOT NULL DEFAULT 'null',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_evaluations_age_group ON evaluations(age_group);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database. The full result
// and the rendered presentation are stored as JSONB alongside the columns
// reports filter on.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the
// evaluations table and indexes if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Save creates or replaces the record for its job ID.
func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("store: marshal result: %w", err)
	}
	presJSON := rec.Presentation
	if len(presJSON) == 0 {
		presJSON = json.RawMessage("null")
	}

	const query = `
		INSERT INTO evaluations (
			job_id, student_name, student_age, topic, age_group,
			overall, variant, result, presentation
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (job_id) DO UPDATE SET
			student_name = EXCLUDED.student_name,
			student_age = EXCLUDED.student_age,
			topic = EXCLUDED.topic,
			age_group = EXCLUDED.age_group,
			overall = EXCLUDED.overall,
			variant = EXCLUDED.variant,
			result = EXCLUDED.result,
			presentation = EXCLUDED.presentation
		RETURNING created_at`

	err = s.db.QueryRow(ctx, query,
		rec.JobID, rec.StudentName, rec.StudentAge, rec.Topic, string(rec.AgeGroup),
		rec.Overall, string(rec.Variant), resultJSON, presJSON,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: save %q: %w", rec.JobID, err)
	}
	return nil
}

// Get retrieves a record by job ID. Returns (nil, nil) if no record with the
// given ID exists.
func (s *PostgresStore) Get(ctx context.Context, jobID string) (*Record, error) {
	const query = `
		SELECT job_id, student_name, student_age, topic, age_group,
		       overall, variant, result, presentation, created_at
		FROM evaluations
		WHERE job_id = $1`

	var (
		rec                 Record
		ageGroup, variant   string
		resultJSON, presRaw []byte
	)
	err := s.db.QueryRow(ctx, query, jobID).Scan(
		&rec.JobID, &rec.StudentName, &rec.StudentAge, &rec.Topic, &ageGroup,
		&rec.Overall, &variant, &resultJSON, &presRaw, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get %q: %w", jobID, err)
	}

	if err := hydrate(&rec, ageGroup, variant, resultJSON, presRaw); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the most recent records, newest first.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	const query = `
		SELECT job_id, student_name, student_age, topic, age_group,
		       overall, variant, result, presentation, created_at
		FROM evaluations
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			rec                 Record
			ageGroup, variant   string
			resultJSON, presRaw []byte
		)
		if err := rows.Scan(
			&rec.JobID, &rec.StudentName, &rec.StudentAge, &rec.Topic, &ageGroup,
			&rec.Overall, &variant, &resultJSON, &presRaw, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		if err := hydrate(&rec, ageGroup, variant, resultJSON, presRaw); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return recs, nil
}

// Delete removes a record by job ID. Deleting a non-existent record is not an
// error.
func (s *PostgresStore) Delete(ctx context.Context, jobID string) error {
	const query = `DELETE FROM evaluations WHERE job_id = $1`
	if _, err := s.db.Exec(ctx, query, jobID); err != nil {
		return fmt.Errorf("store: delete %q: %w", jobID, err)
	}
	return nil
}

// hydrate deserialises the JSONB columns into the record.
func hydrate(rec *Record, ageGroup, variant string, resultJSON, presRaw []byte) error {
	rec.AgeGroup = evaluation.Group(ageGroup)
	rec.Variant = presentation.Variant(variant)
	if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
		return fmt.Errorf("store: unmarshal result for %q: %w", rec.JobID, err)
	}
	rec.Presentation = json.RawMessage(presRaw)
	return nil
}
