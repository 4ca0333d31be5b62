// Package sqlite stores parsed submissions in a SQLite database, one row per
// instance with the document body as JSON.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/openrow/tabular/pkg/tabular/record"
	"github.com/openrow/tabular/pkg/tabular/source"
)

// DB is a handle to the submission store.
type DB struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// Open opens (creating if necessary) a submission store with WAL mode
// enabled.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	form_uid TEXT NOT NULL,
	uuid TEXT NOT NULL UNIQUE,
	submitted_at TEXT NOT NULL,
	body TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_form ON submissions(form_uid, id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Insert stores one submission for a form. The reserved _uuid field is minted
// as a ULID when absent, and _submission_time defaults to the current time.
// Returns the submission's uuid.
func (d *DB) Insert(ctx context.Context, formUID string, doc record.Document) (string, error) {
	uuid, _ := doc[record.FieldUUID].(string)
	if uuid == "" {
		uuid = ulid.MustNew(ulid.Timestamp(time.Now()), d.entropy).String()
		doc[record.FieldUUID] = uuid
	}
	submittedAt, _ := doc[record.FieldSubmissionTime].(string)
	if submittedAt == "" {
		submittedAt = time.Now().UTC().Format(time.RFC3339)
		doc[record.FieldSubmissionTime] = submittedAt
	}
	doc[record.FieldXFormID] = formUID

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO submissions (form_uid, uuid, submitted_at, body) VALUES (?, ?, ?, ?)`,
		formUID, uuid, submittedAt, string(body))
	if err != nil {
		return "", fmt.Errorf("store submission: %w", err)
	}
	return uuid, nil
}

// Submissions returns a retrieval source scoped to one form. The handle's
// lifecycle is the caller's export invocation; it shares the DB connection.
func (d *DB) Submissions(formUID string) source.Source {
	return &formSource{db: d.db, formUID: formUID}
}

type formSource struct {
	db      *sql.DB
	formUID string
}

// Count implements source.Source.
func (s *formSource) Count(ctx context.Context, filter source.Filter) (int, error) {
	where, args, err := buildWhere(s.formUID, filter)
	if err != nil {
		return 0, err
	}
	var n int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE `+where, args...)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

// Fetch implements source.Source. Submissions are returned in insertion
// order so that offsets are stable across calls.
func (s *formSource) Fetch(ctx context.Context, filter source.Filter, start, limit int) ([]record.Document, error) {
	where, args, err := buildWhere(s.formUID, filter)
	if err != nil {
		return nil, err
	}
	args = append(args, limit, start)
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM submissions WHERE `+where+` ORDER BY id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}
	defer rows.Close()

	var docs []record.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var doc record.Document
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// buildWhere compiles the opaque filter into json_extract equality
// predicates. Keys are sorted so the generated SQL is deterministic.
func buildWhere(formUID string, filter source.Filter) (string, []any, error) {
	clauses := []string{"form_uid = ?"}
	args := []any{formUID}
	if filter == "" {
		return strings.Join(clauses, " AND "), args, nil
	}
	var constraints map[string]any
	if err := json.Unmarshal([]byte(filter), &constraints); err != nil {
		return "", nil, fmt.Errorf("decode filter: %w", err)
	}
	keys := make([]string, 0, len(constraints))
	for key := range constraints {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		clauses = append(clauses, fmt.Sprintf(`json_extract(body, '$."%s"') = ?`, key))
		args = append(args, constraints[key])
	}
	return strings.Join(clauses, " AND "), args, nil
}
