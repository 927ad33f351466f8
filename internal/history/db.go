package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type OpType string

const (
	OpDelete OpType = "delete"
	OpTrash  OpType = "trash"
)

// timestamps are stored as fixed-width UTC text so they sort as strings
const timeLayout = "2006-01-02 15:04:05.000000"

// Operation is one recorded deletion
type Operation struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Type       OpType    `json:"type"`
	Target     string    `json:"target"`
	SourcePath string    `json:"source_path"`
	DestPath   string    `json:"dest_path,omitempty"`
	SizeBytes  uint64    `json:"size_bytes"`
	Reversible bool      `json:"reversible"`
}

type DB struct {
	db *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history: %w", err)
	}

	return &DB{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS deletions (
			id INTEGER PRIMARY KEY,
			timestamp TEXT NOT NULL,
			operation TEXT NOT NULL,
			target TEXT,
			source_path TEXT NOT NULL,
			dest_path TEXT,
			size_bytes INTEGER,
			reversible BOOLEAN DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_deletions_source ON deletions(source_path);
		CREATE INDEX IF NOT EXISTS idx_deletions_timestamp ON deletions(timestamp);
	`)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Record stores op, stamping it with the current time if unset
func (d *DB) Record(op Operation) (int64, error) {
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now()
	}

	result, err := d.db.Exec(`
		INSERT INTO deletions (timestamp, operation, target, source_path, dest_path, size_bytes, reversible)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, op.Timestamp.UTC().Format(timeLayout), string(op.Type), op.Target, op.SourcePath,
		op.DestPath, int64(op.SizeBytes), op.Reversible)
	if err != nil {
		return 0, fmt.Errorf("recording deletion: %w", err)
	}
	return result.LastInsertId()
}

const selectColumns = `
	SELECT id, timestamp, operation, target, source_path, dest_path, size_bytes, reversible
	FROM deletions`

// likeEscaper makes LIKE match query characters literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns operations whose paths contain query, newest first
func (d *DB) Search(query string) ([]Operation, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	rows, err := d.db.Query(selectColumns+`
		WHERE source_path LIKE ? ESCAPE '\' OR dest_path LIKE ? ESCAPE '\'
		ORDER BY timestamp DESC, id DESC
	`, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOperations(rows)
}

// Since returns operations recorded at or after t, newest first
func (d *DB) Since(t time.Time) ([]Operation, error) {
	rows, err := d.db.Query(selectColumns+`
		WHERE timestamp >= ?
		ORDER BY timestamp DESC, id DESC
	`, t.UTC().Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOperations(rows)
}

func scanOperations(rows *sql.Rows) ([]Operation, error) {
	var ops []Operation
	for rows.Next() {
		var (
			op       Operation
			ts       string
			opType   string
			target   sql.NullString
			destPath sql.NullString
			size     sql.NullInt64
		)

		err := rows.Scan(&op.ID, &ts, &opType, &target, &op.SourcePath, &destPath, &size, &op.Reversible)
		if err != nil {
			return nil, err
		}

		op.Type = OpType(opType)
		op.Timestamp, _ = time.ParseInLocation(timeLayout, ts, time.UTC)
		op.Target = target.String
		op.DestPath = destPath.String
		if size.Valid && size.Int64 > 0 {
			op.SizeBytes = uint64(size.Int64)
		}

		ops = append(ops, op)
	}
	return ops, rows.Err()
}
