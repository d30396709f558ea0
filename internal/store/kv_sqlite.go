package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is an Engine backed by a SQLite database. A read-write handle is a
// transaction.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and creates the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (namespace, key)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return nil
}

// Open implements Engine.
func (s *SQLite) Open(namespace string, mode Mode) (Handle, error) {
	h := &sqliteHandle{namespace: namespace, q: s.db}
	if mode == ReadWrite {
		tx, err := s.db.Begin()
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		h.tx = tx
		h.q = tx
	}
	return h, nil
}

// Close implements Engine.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

type sqliteHandle struct {
	namespace string
	q         querier
	tx        *sql.Tx
	done      bool
}

func (h *sqliteHandle) GetU8(key string) (uint8, error) {
	if h.done {
		return 0, ErrClosed
	}

	var v int64
	err := h.q.QueryRow(`
		SELECT value FROM kv_store WHERE namespace = ? AND key = ?
	`, h.namespace, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return checkU8(key, v)
}

func (h *sqliteHandle) SetU8(key string, value uint8) error {
	if err := h.writable(); err != nil {
		return err
	}

	_, err := h.tx.Exec(`
		INSERT INTO kv_store (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, h.namespace, key, int64(value), time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

func (h *sqliteHandle) Erase(key string) error {
	if err := h.writable(); err != nil {
		return err
	}

	if _, err := h.tx.Exec(`DELETE FROM kv_store WHERE namespace = ? AND key = ?`, h.namespace, key); err != nil {
		return fmt.Errorf("failed to erase %q: %w", key, err)
	}
	return nil
}

func (h *sqliteHandle) Commit() error {
	if err := h.writable(); err != nil {
		return err
	}
	h.done = true
	if err := h.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (h *sqliteHandle) Close() error {
	if h.done {
		return nil
	}
	h.done = true
	if h.tx != nil {
		return h.tx.Rollback()
	}
	return nil
}

func (h *sqliteHandle) writable() error {
	if h.done {
		return ErrClosed
	}
	if h.tx == nil {
		return ErrReadOnly
	}
	return nil
}
