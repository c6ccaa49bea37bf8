package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite keeps keys in a single table.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`create table if not exists kv (key text primary key, value text not null);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRow("select value from kv where key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *SQLite) Set(key string, value []byte) error {
	stmt, err := s.db.Prepare(`
	insert into kv values (?, ?)
	on conflict (key)
	do update set value = excluded.value;
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(key, string(value))
	return err
}

func (s *SQLite) Delete(key string) error {
	_, err := s.db.Exec("delete from kv where key = ?", key)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
