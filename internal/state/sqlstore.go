package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"casync/internal/ca"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an RFC 3339 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory if it does not exist.
func Open(path string) (*SqlStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; the CLI is short-lived and the MCP server serializes tools.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		return s.freshInstall()
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return s.freshInstall()
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch v {
	case currentSchemaVersion:
		return nil
	default:
		return fmt.Errorf("unknown schema version %d", v)
	}
}

func (s *SqlStore) freshInstall() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(schemaV1); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("reset schema version: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SqlStore) Close() error { return s.db.Close() }

func (s *SqlStore) get(key string, v any) error {
	var data []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return decode(key, data, v)
}

func (s *SqlStore) put(key string, v any) error {
	data, err := encode(key, v)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, nowUTC())
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// deleteWhere removes every key accepted by match inside tx.
func deleteWhere(tx *sql.Tx, match func(string) bool) error {
	rows, err := tx.Query("SELECT key FROM kv")
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	var doomed []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan key: %w", err)
		}
		if match(k) {
			doomed = append(doomed, k)
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	for _, k := range doomed {
		if _, err := tx.Exec("DELETE FROM kv WHERE key = ?", k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

func (s *SqlStore) Selected() (string, error) {
	var id string
	err := s.get(keySelected, &id)
	if errors.Is(err, ErrNotFound) || (err == nil && id == "") {
		return SelectNone, nil
	}
	return id, err
}

func (s *SqlStore) SetSelected(id string) error {
	if id == "" {
		id = SelectNone
	}
	prev, err := s.Selected()
	if err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin select tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if prev != id {
		if err := deleteWhere(tx, architectureScoped); err != nil {
			return err
		}
	}
	data, err := encode(keySelected, id)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		keySelected, data, nowUTC())
	if err != nil {
		return fmt.Errorf("put %s: %w", keySelected, err)
	}
	return tx.Commit()
}

func (s *SqlStore) Architectures() ([]ca.Architecture, error) {
	var list []ca.Architecture
	if err := s.get(keyArchitectures, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *SqlStore) SetArchitectures(list []ca.Architecture) error {
	return s.put(keyArchitectures, list)
}

func (s *SqlStore) Info() (*ca.ArchitectureInfo, error) {
	var info ca.ArchitectureInfo
	if err := s.get(keyInfo, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *SqlStore) SetInfo(info *ca.ArchitectureInfo) error {
	if info == nil {
		return fmt.Errorf("set info: nil")
	}
	return s.put(keyInfo, info)
}

func (s *SqlStore) Artifacts() ([]ca.CatalogNode, error) {
	var nodes []ca.CatalogNode
	if err := s.get(keyArtifacts, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *SqlStore) SetArtifacts(nodes []ca.CatalogNode) error {
	return s.put(keyArtifacts, nodes)
}

func (s *SqlStore) Instances(t ca.ArtifactType) ([]ca.InstanceSummary, error) {
	var list []ca.InstanceSummary
	if err := s.get(instancesKey(t), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *SqlStore) SetInstances(t ca.ArtifactType, list []ca.InstanceSummary) error {
	return s.put(instancesKey(t), list)
}

func (s *SqlStore) AppendErrors(messages ...string) error {
	messages = cleanMessages(messages)
	if len(messages) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin error log tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	now := nowUTC()
	for _, m := range messages {
		if _, err := tx.Exec("INSERT INTO error_log(message, created_at) VALUES(?, ?)", m, now); err != nil {
			return fmt.Errorf("append error: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SqlStore) Errors() ([]ErrorEntry, error) {
	rows, err := s.db.Query("SELECT id, message, created_at FROM error_log ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list errors: %w", err)
	}
	defer rows.Close()
	var out []ErrorEntry
	for rows.Next() {
		var (
			e  ErrorEntry
			at string
		)
		if err := rows.Scan(&e.ID, &e.Message, &at); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SqlStore) ClearErrors() error {
	if _, err := s.db.Exec("DELETE FROM error_log"); err != nil {
		return fmt.Errorf("clear errors: %w", err)
	}
	return nil
}

func (s *SqlStore) Fingerprint() (string, error) {
	var fp string
	if err := s.get(keyFingerprint, &fp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return fp, nil
}

func (s *SqlStore) SetFingerprint(fp string) error {
	return s.put(keyFingerprint, fp)
}

func (s *SqlStore) Invalidate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin invalidate tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := deleteWhere(tx, func(k string) bool { return cached(k) || k == keySelected }); err != nil {
		return err
	}
	return tx.Commit()
}
