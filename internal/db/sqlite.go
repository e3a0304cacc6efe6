package db

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore implements DocumentStore on a single SQLite table holding one
// JSON object per document. Timestamps are stored as Unix milliseconds.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the database at path, configures it and runs pending
// migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps writes serialized and makes ":memory:"
	// databases visible to every query.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Migrate runs all pending database migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return decodeRow(id, raw)
}

func (s *SQLiteStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	raw, err := s.encode(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, id, raw, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) Merge(ctx context.Context, collection, id string, data map[string]interface{}) error {
	raw, err := s.encode(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = json_patch(documents.data, excluded.data),
			updated_at = excluded.updated_at`,
		collection, id, raw, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to merge %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) Update(ctx context.Context, collection, id string, data map[string]interface{}) error {
	raw, err := s.encode(data)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET data = json_patch(data, ?), updated_at = ?
		WHERE collection = ? AND id = ?`,
		raw, s.now().UnixMilli(), collection, id)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, collection string, q Query) ([]*Document, error) {
	var sb strings.Builder
	args := []interface{}{collection}

	sb.WriteString(`SELECT id, data FROM documents WHERE collection = ?`)
	for _, f := range q.Filters {
		switch f.Op {
		case OpEqual:
			sb.WriteString(` AND json_extract(data, ?) = ?`)
		case OpArrayContains:
			sb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(data, ?) WHERE value = ?)`)
		default:
			return nil, fmt.Errorf("unsupported operator %q", f.Op)
		}
		args = append(args, "$."+f.Field, sqlValue(f.Value))
	}
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Direction == Desc {
			dir = "DESC"
		}
		sb.WriteString(` ORDER BY json_extract(data, ?) ` + dir + `, rowid`)
		args = append(args, "$."+q.OrderBy)
	} else {
		sb.WriteString(` ORDER BY rowid`)
	}
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []*Document{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		doc, err := decodeRow(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return docs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) encode(data map[string]interface{}) (string, error) {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		switch t := v.(type) {
		case serverTimestamp:
			out[k] = s.now().UnixMilli()
		case time.Time:
			out[k] = t.UnixMilli()
		default:
			out[k] = v
		}
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	return string(raw), nil
}

func decodeRow(id, raw string) (*Document, error) {
	data := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", id, err)
	}
	return &Document{ID: id, Data: data}, nil
}

// sqlValue converts a filter value to what json_extract yields for it.
func sqlValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	case time.Time:
		return t.UnixMilli()
	}
	return v
}
