package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ---------------------------------------------------------------------------
// Test helpers — mock DB types
// ---------------------------------------------------------------------------

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error { return r.scanFunc(dest...) }

// mockRows implements pgx.Rows for testing.
type mockRows struct {
	data   [][]any
	idx    int
	err    error
	closed bool
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.err }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }

func (r *mockRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *mockRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: expected %d columns, got %d destinations", len(row), len(dest))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *[]byte:
			*d = v.([]byte)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported type at index %d: %T", i, dest[i])
		}
	}
	return nil
}

// mockDB implements the DB interface for testing.
type mockDB struct {
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFunc != nil {
		return m.queryRowFunc(ctx, sql, args...)
	}
	return &mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

func (m *mockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.execFunc != nil {
		return m.execFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

// dbRow flattens a record into the column order the queries select.
func dbRow(t *testing.T, rec *Record) []any {
	t.Helper()
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	return []any{
		rec.JobID, rec.StudentName, rec.StudentAge, rec.Topic, string(rec.AgeGroup),
		rec.Overall, string(rec.Variant), resultJSON, []byte(rec.Presentation), rec.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// PostgresStore tests
// ---------------------------------------------------------------------------

func TestPostgresMigrate(t *testing.T) {
	t.Parallel()

	var executed string
	db := &mockDB{
		execFunc: func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
			executed = sql
			return pgconn.CommandTag{}, nil
		},
	}
	if err := NewPostgresStore(db).Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if !strings.Contains(executed, "CREATE TABLE IF NOT EXISTS evaluations") {
		t.Errorf("Migrate executed unexpected DDL: %s", executed)
	}
}

func TestPostgresSaveUpserts(t *testing.T) {
	t.Parallel()

	now := time.Now()
	var gotSQL string
	var gotArgs []any
	db := &mockDB{
		queryRowFunc: func(_ context.Context, sql string, args ...any) pgx.Row {
			gotSQL = sql
			gotArgs = args
			return &mockRow{scanFunc: func(dest ...any) error {
				*dest[0].(*time.Time) = now
				return nil
			}}
		},
	}

	rec := sampleRecord(t, "job-1")
	if err := NewPostgresStore(db).Save(context.Background(), rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.Contains(gotSQL, "ON CONFLICT (job_id) DO UPDATE") {
		t.Errorf("Save query is not an upsert: %s", gotSQL)
	}
	if len(gotArgs) != 9 || gotArgs[0] != "job-1" {
		t.Errorf("Save args = %v, want 9 args starting with the job ID", gotArgs)
	}
	if !rec.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want the returned timestamp", rec.CreatedAt)
	}
}

func TestPostgresSaveRejectsInvalidRecord(t *testing.T) {
	t.Parallel()

	s := NewPostgresStore(&mockDB{})
	if err := s.Save(context.Background(), &Record{}); err == nil {
		t.Fatal("Save accepted an invalid record")
	}
}

func TestPostgresGetRoundTrip(t *testing.T) {
	t.Parallel()

	rec := sampleRecord(t, "job-1")
	rec.CreatedAt = time.Now()
	row := dbRow(t, rec)
	db := &mockDB{
		queryRowFunc: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &mockRow{scanFunc: func(dest ...any) error {
				rows := &mockRows{data: [][]any{row}}
				rows.Next()
				return rows.Scan(dest...)
			}}
		},
	}

	got, err := NewPostgresStore(db).Get(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for an existing record")
	}
	if got.AgeGroup != rec.AgeGroup || got.Variant != rec.Variant || got.Overall != rec.Overall {
		t.Errorf("Get = %+v, want the saved record", got)
	}
	if got.Result == nil || got.Result.Metadata.StudentName != "Mira" {
		t.Errorf("Get result = %+v, want hydrated result", got.Result)
	}
}

func TestPostgresGetNotFound(t *testing.T) {
	t.Parallel()

	got, err := NewPostgresStore(&mockDB{}).Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Get for unknown ID = %+v, want nil", got)
	}
}

func TestPostgresList(t *testing.T) {
	t.Parallel()

	a := sampleRecord(t, "job-a")
	b := sampleRecord(t, "job-b")
	a.CreatedAt = time.Now()
	b.CreatedAt = a.CreatedAt.Add(-time.Minute)

	rows := &mockRows{data: [][]any{dbRow(t, a), dbRow(t, b)}}
	var gotLimit any
	db := &mockDB{
		queryFunc: func(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
			gotLimit = args[0]
			return rows, nil
		},
	}

	recs, err := NewPostgresStore(db).List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("List returned %d records, want 2", len(recs))
	}
	if gotLimit != 10 {
		t.Errorf("List limit arg = %v, want 10", gotLimit)
	}
	if !rows.closed {
		t.Error("List did not close rows")
	}
	if recs[0].JobID != "job-a" || recs[1].JobID != "job-b" {
		t.Errorf("List order = [%s %s]", recs[0].JobID, recs[1].JobID)
	}
}

func TestPostgresListQueryError(t *testing.T) {
	t.Parallel()

	db := &mockDB{
		queryFunc: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
			return nil, errors.New("connection refused")
		},
	}
	if _, err := NewPostgresStore(db).List(context.Background(), 5); err == nil {
		t.Fatal("List swallowed the query error")
	}
}

func TestPostgresDelete(t *testing.T) {
	t.Parallel()

	var gotSQL string
	db := &mockDB{
		execFunc: func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
			gotSQL = sql
			return pgconn.CommandTag{}, nil
		},
	}
	if err := NewPostgresStore(db).Delete(context.Background(), "job-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !strings.Contains(gotSQL, "DELETE FROM evaluations") {
		t.Errorf("Delete executed unexpected SQL: %s", gotSQL)
	}
}
