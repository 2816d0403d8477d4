package fieldstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

const createFieldData = `
CREATE TABLE IF NOT EXISTS field_data (
	entry_uid  TEXT NOT NULL,
	field_uid  TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (entry_uid, field_uid)
)`

const upsertFieldData = `
INSERT INTO field_data (entry_uid, field_uid, data, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (entry_uid, field_uid) DO UPDATE SET
	data = excluded.data,
	updated_at = excluded.updated_at`

// SQLite stores one field's data per (entry, field) row. Several fields can
// share one database file.
type SQLite struct {
	db       *sql.DB
	entryUID string
	fieldUID string
}

// OpenSQLite opens (creating if needed) the database at path and binds the
// store to one entry field.
func OpenSQLite(path, entryUID, fieldUID string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(createFieldData); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create field_data table: %w", err)
	}

	return &SQLite{db: db, entryUID: entryUID, fieldUID: fieldUID}, nil
}

// GetData loads the field's snapshot. A missing row reads as empty data.
func (s *SQLite) GetData() (model.FieldData, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT data FROM field_data WHERE entry_uid = ? AND field_uid = ?`,
		s.entryUID, s.fieldUID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FieldData{}, nil
	}
	if err != nil {
		return model.FieldData{}, fmt.Errorf("query field data: %w", err)
	}

	var data model.FieldData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return model.FieldData{}, fmt.Errorf("parse field data for %s/%s: %w", s.entryUID, s.fieldUID, err)
	}
	return data, nil
}

// SetData upserts the field's snapshot.
func (s *SQLite) SetData(data model.FieldData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal field data: %w", err)
	}
	_, err = s.db.Exec(upsertFieldData, s.entryUID, s.fieldUID, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write field data for %s/%s: %w", s.entryUID, s.fieldUID, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
