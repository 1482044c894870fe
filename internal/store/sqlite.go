package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmcdole/datapass/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements domain.Store on a single sqlite table
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	s := &SQLiteStore{db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			namespace TEXT NOT NULL,
			key       TEXT NOT NULL,
			value     BLOB NOT NULL,
			PRIMARY KEY (namespace, key)
		)
	`)
	if err != nil {
		return fmt.Errorf("create kv: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Namespace(name string) domain.KeyValueStore {
	return &namespace{b: s, name: name}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(ns, key string) ([]byte, bool) {
	var data []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE namespace = ? AND key = ?`, ns, key).Scan(&data)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *SQLiteStore) put(ns, key string, data []byte) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO kv (namespace, key, value) VALUES (?, ?, ?)`, ns, key, data)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", ns, key, err)
	}
	return nil
}

func (s *SQLiteStore) remove(ns, key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE namespace = ? AND key = ?`, ns, key)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", ns, key, err)
	}
	return nil
}

func (s *SQLiteStore) empty(ns string) bool {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM kv WHERE namespace = ? LIMIT 1`, ns).Scan(&one)
	return errors.Is(err, sql.ErrNoRows)
}
