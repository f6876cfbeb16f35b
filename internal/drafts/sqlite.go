package drafts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps drafts in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens dataSourceName and creates the drafts table if needed.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	stmt := `
	CREATE TABLE IF NOT EXISTS drafts (
		id TEXT PRIMARY KEY,
		name TEXT,
		data TEXT NOT NULL,
		width INTEGER,
		height INTEGER,
		created_at DATETIME
	);`
	if _, err := db.Exec(stmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("create drafts table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, d *Draft) (string, error) {
	d.ID = ulid.Make().String()
	d.CreatedAt = time.Now().UTC()
	log := logrus.WithFields(logrus.Fields{"draft_id": d.ID, "data_length": len(d.DataURL)})
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO drafts (id, name, data, width, height, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		d.ID, d.Name, d.DataURL, d.Width, d.Height, d.CreatedAt)
	if err != nil {
		log.WithError(err).Error("failed to create draft")
		return "", err
	}
	log.Debug("draft created")
	return d.ID, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Draft, error) {
	d := Draft{ID: id}
	err := s.db.QueryRowContext(ctx,
		"SELECT name, data, width, height, created_at FROM drafts WHERE id = ?", id).
		Scan(&d.Name, &d.DataURL, &d.Width, &d.Height, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &d, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Draft, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, width, height, created_at FROM drafts ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.Name, &d.Width, &d.Height, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
