package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	apperrors "regionstats/internal/errors"
)

const runsSchema = `CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	tables      TEXT NOT NULL
)`

// Store persists output tables in a SQLite database. Each table is replaced
// on every run; the runs table keeps one row per run.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenStore opens or creates the database at path.
func OpenStore(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create database directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open database %s", path), err)
	}
	if _, err := db.ExecContext(ctx, runsSchema); err != nil {
		_ = db.Close()
		return nil, apperrors.NewStorageError("failed to create runs table", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTables replaces each table and records the run, all in one transaction.
func (s *Store) SaveTables(ctx context.Context, runID, mode string, tables ...Table) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	names := make([]string, 0, len(tables))
	for _, t := range tables {
		if err = saveTable(ctx, tx, t); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to save table %s", t.Name), err)
		}
		names = append(names, t.Name)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, mode, finished_at, tables) VALUES (?, ?, ?, ?)`,
		runID, mode, time.Now().UTC().Format(time.RFC3339), strings.Join(names, ","))
	if err != nil {
		return apperrors.NewStorageError("failed to record run", err)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit", err)
	}

	s.logger.InfoContext(ctx, "Saved tables to SQLite",
		slog.String("run_id", runID),
		slog.Int("tables", len(tables)))
	return nil
}

func saveTable(ctx context.Context, tx *sql.Tx, t Table) error {
	if t.Name == "" || len(t.Header) == 0 {
		return fmt.Errorf("table %q has no name or no columns", t.Name)
	}

	columns := make([]string, len(t.Header))
	for i, h := range t.Header {
		name := h
		if name == "" {
			name = "column"
		}
		columns[i] = fmt.Sprintf("%s %s", quoteIdent(name), columnType(t, i))
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(t.Name)); err != nil {
		return err
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(t.Name), strings.Join(columns, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Header)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(t.Name), placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		args := make([]any, len(t.Header))
		for i := range args {
			if i < len(row) && !missing(row[i]) {
				args[i] = row[i]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// columnType is REAL when any value in the column is a float, TEXT otherwise.
func columnType(t Table, col int) string {
	if numericColumn(t, col) {
		return "REAL"
	}
	return "TEXT"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
