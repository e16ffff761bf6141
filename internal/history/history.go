// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records export runs in a SQLite ledger: which drawing was
// exported, with which settings, and which files each run wrote.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusDone    Status = "done"
	StatusAborted Status = "aborted"
)

// Run is one recorded invocation of the export pipeline.
type Run struct {
	ID           int64                `json:"id" yaml:"id"`
	Source       string               `json:"source" yaml:"source"`
	SourceSHA256 string               `json:"source_sha256" yaml:"source_sha256"`
	Format       types.Format         `json:"format" yaml:"format"`
	OutputDir    string               `json:"output_dir" yaml:"output_dir"`
	StartedAt    time.Time            `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time            `json:"finished_at" yaml:"finished_at"`
	Status       Status               `json:"status" yaml:"status"`
	Error        string               `json:"error,omitempty" yaml:"error,omitempty"`
	Files        []types.ExportedFile `json:"files" yaml:"files"`
}

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and its schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			source_sha256 TEXT,
			format TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			layers TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_run_id ON files(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a finished run and its files, returning the run id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (source, source_sha256, format, output_dir, started_at, finished_at, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Source, run.SourceSHA256, string(run.Format), run.OutputDir,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(run.Status), run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, f := range run.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (run_id, name, path, layers) VALUES (?, ?, ?, ?)`,
			id, f.Name, f.Path, strings.Join(f.Layers, ","),
		); err != nil {
			return 0, fmt.Errorf("inserting file %s: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// QueryOptions filters Runs. Zero values mean no filter.
type QueryOptions struct {
	Source string
	Limit  int
}

// Runs returns recorded runs, newest first, with their files.
func (s *Store) Runs(ctx context.Context, opts QueryOptions) ([]Run, error) {
	query := `SELECT id, source, source_sha256, format, output_dir, started_at, finished_at, status, error FROM runs`
	var args []any
	if opts.Source != "" {
		query += ` WHERE source = ?`
		args = append(args, opts.Source)
	}
	query += ` ORDER BY id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			sha, errText      sql.NullString
			format, status    string
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Source, &sha, &format, &r.OutputDir, &started, &finished, &status, &errText); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.SourceSHA256 = sha.String
		r.Error = errText.String
		r.Format = types.Format(format)
		r.Status = Status(status)
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		files, err := s.files(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Files = files
	}
	return runs, nil
}

func (s *Store) files(ctx context.Context, runID int64) ([]types.ExportedFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, path, layers FROM files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying files of run %d: %w", runID, err)
	}
	defer rows.Close()

	var files []types.ExportedFile
	for rows.Next() {
		var (
			f      types.ExportedFile
			layers sql.NullString
		)
		if err := rows.Scan(&f.Name, &f.Path, &layers); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		if layers.String != "" {
			f.Layers = strings.Split(layers.String, ",")
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	return res.RowsAffected()
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
