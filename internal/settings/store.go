// Package settings persists plugin settings in SQLite.
//
// Each settings document is a JSON object stored under a name in one of
// three tables: options for a single site, sitemeta for the network of a
// multisite install, and blog_options for individual blogs. Keys inside a
// document are read with gjson and written with sjson, so a key update
// never needs the document to be decoded into Go values.
package settings

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed migrations/001_settings.sql
var settingsSchema string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Errors returned by the store.
var (
	// ErrNotFound indicates no document is stored under the name.
	ErrNotFound = errors.New("settings not found")

	// ErrInvalidDocument indicates a document that is not a JSON object.
	ErrInvalidDocument = errors.New("settings document must be a JSON object")
)

// Store provides access to the settings database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
// Use MemoryPath for a throwaway store.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps an in-memory database alive and serializes
	// writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.initPragmas(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize pragmas: %w", err)
	}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) initPragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// Migrate applies the embedded schema. It is idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(settingsSchema); err != nil {
		return fmt.Errorf("migration settings: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the document stored under name, or ErrNotFound.
func (s *Store) Get(ctx context.Context, scope Scope, name string) (string, error) {
	var (
		doc string
		err error
	)
	switch scope.kind {
	case scopeBlog:
		err = s.db.QueryRowContext(ctx,
			`SELECT value FROM blog_options WHERE blog_id = ? AND name = ?`,
			scope.blogID, name).Scan(&doc)
	default:
		err = s.db.QueryRowContext(ctx,
			`SELECT value FROM `+table(scope)+` WHERE name = ?`, name).Scan(&doc)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s %q", ErrNotFound, scope, name)
	}
	if err != nil {
		return "", fmt.Errorf("get %s %q: %w", scope, name, err)
	}
	return doc, nil
}

// Put replaces the document stored under name.
func (s *Store) Put(ctx context.Context, scope Scope, name, doc string) error {
	if !isObject(doc) {
		return ErrInvalidDocument
	}

	var err error
	switch scope.kind {
	case scopeBlog:
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO blog_options (blog_id, name, value) VALUES (?, ?, ?)
			ON CONFLICT (blog_id, name) DO UPDATE
			SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			scope.blogID, name, doc)
	default:
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO `+table(scope)+` (name, value) VALUES (?, ?)
			ON CONFLICT (name) DO UPDATE
			SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			name, doc)
	}
	if err != nil {
		return fmt.Errorf("put %s %q: %w", scope, name, err)
	}
	return nil
}

// Delete removes the document stored under name. Deleting a missing
// document is not an error.
func (s *Store) Delete(ctx context.Context, scope Scope, name string) error {
	var err error
	switch scope.kind {
	case scopeBlog:
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM blog_options WHERE blog_id = ? AND name = ?`, scope.blogID, name)
	default:
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM `+table(scope)+` WHERE name = ?`, name)
	}
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", scope, name, err)
	}
	return nil
}

// Document returns the stored document, or an empty object when nothing
// is stored.
func (s *Store) Document(ctx context.Context, scope Scope, name string) (string, error) {
	doc, err := s.Get(ctx, scope, name)
	if errors.Is(err, ErrNotFound) {
		return "{}", nil
	}
	return doc, err
}

// GetKey reads one top-level key of the document. The result does not
// exist when the document or the key is missing.
func (s *Store) GetKey(ctx context.Context, scope Scope, name, key string) (gjson.Result, error) {
	doc, err := s.Document(ctx, scope, name)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.Get(doc, EscapeKey(key)), nil
}

// SetKey writes one top-level key of the document, creating the document
// if needed, and returns the previous value.
func (s *Store) SetKey(ctx context.Context, scope Scope, name, key string, value any) (gjson.Result, error) {
	doc, err := s.Document(ctx, scope, name)
	if err != nil {
		return gjson.Result{}, err
	}
	path := EscapeKey(key)
	old := gjson.Get(doc, path)

	var updated string
	if raw, ok := value.(json.RawMessage); ok {
		updated, err = sjson.SetRaw(doc, path, string(raw))
	} else {
		updated, err = sjson.Set(doc, path, value)
	}
	if err != nil {
		return gjson.Result{}, fmt.Errorf("set %s %q key %q: %w", scope, name, key, err)
	}
	if err := s.Put(ctx, scope, name, updated); err != nil {
		return gjson.Result{}, err
	}
	return old, nil
}

// EscapeKey escapes gjson/sjson path syntax so key addresses a single
// top-level member.
func EscapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isObject(doc string) bool {
	return gjson.Valid(doc) && gjson.Parse(doc).IsObject()
}

func table(scope Scope) string {
	if scope.kind == scopeNetwork {
		return "sitemeta"
	}
	return "options"
}
