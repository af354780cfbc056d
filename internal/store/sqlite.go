package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/faizmokh/jurnal/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// SQLiteStore keeps every resource as one row of the sheets table, the way a
// spreadsheet service keeps worksheets. The change token is the row version.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenSQLite creates or opens the database at path and applies the schema.
func OpenSQLite(path string, logger *log.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sheets database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect sheets database: %w", ErrUnavailable, err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("set user_version: %w", err)
	}

	return &SQLiteStore{db: db, logger: logging.OrDiscard(logger)}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Read(ctx context.Context, resource string) (Content, error) {
	var (
		data    []byte
		version int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT content, version FROM sheets WHERE name = ?", resource,
	).Scan(&data, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Content{}, ErrNotFound
		}
		return Content{}, fmt.Errorf("%w: read sheet %s: %w", ErrUnavailable, resource, err)
	}

	records, err := DecodeCSV(data)
	if err != nil {
		return Content{}, decodeFailure("sheet "+resource, err)
	}

	s.logger.Debug("read sheet", "resource", resource, "version", version, "rows", len(records))
	return Content{Records: records, Token: strconv.FormatInt(version, 10)}, nil
}

func (s *SQLiteStore) Write(ctx context.Context, resource string, records [][]string, token string) (string, error) {
	data, err := EncodeCSV(records)
	if err != nil {
		return "", err
	}
	now := time.Now().Unix()

	if token == "" {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO sheets (name, content, version, updated_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(name) DO NOTHING
		`, resource, data, now)
		if err != nil {
			return "", fmt.Errorf("%w: write sheet %s: %w", ErrUnavailable, resource, err)
		}
		if err := expectOneRow(res, resource); err != nil {
			return "", err
		}
		return "1", nil
	}

	version, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return "", fmt.Errorf("write sheet %s: token %q: %w", resource, token, ErrConflict)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sheets SET content = ?, version = version + 1, updated_at = ?
		WHERE name = ? AND version = ?
	`, data, now, resource, version)
	if err != nil {
		return "", fmt.Errorf("%w: write sheet %s: %w", ErrUnavailable, resource, err)
	}
	if err := expectOneRow(res, resource); err != nil {
		return "", err
	}

	s.logger.Debug("wrote sheet", "resource", resource, "version", version+1, "rows", len(records))
	return strconv.FormatInt(version+1, 10), nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func expectOneRow(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: write sheet %s: %w", ErrUnavailable, resource, err)
	}
	if n != 1 {
		return fmt.Errorf("write sheet %s: %w", resource, ErrConflict)
	}
	return nil
}
