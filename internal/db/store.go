package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/flav-dev/flav/internal/model"
)

// ChartNamespace is the snapshot key of the shared chart.
const ChartNamespace = "chart"

// Store persists client and chart snapshots. Each save replaces the whole
// document; the last write wins.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite file at path and runs pending migrations.
func Open(path string) (*Store, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveClient inserts or replaces a client.
func (s *Store) SaveClient(ctx context.Context, c model.Client) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding client: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, string(doc), formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upserting client %s: %w", c.ID, err)
	}
	return nil
}

// DeleteClient removes a client. Deleting an unknown id is not an error.
func (s *Store) DeleteClient(ctx context.Context, clientID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, clientID); err != nil {
		return fmt.Errorf("deleting client %s: %w", clientID, err)
	}
	return nil
}

// ListClients returns every stored client in insertion order.
func (s *Store) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, document FROM clients ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		var clientID, doc string
		if err := rows.Scan(&clientID, &doc); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		var c model.Client
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("decoding client %s: %w", clientID, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	return out, nil
}

// SaveChart replaces the snapshot of a chart namespace.
func (s *Store) SaveChart(ctx context.Context, namespace string, snap model.ChartSnapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chart_snapshots (namespace, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		namespace, string(doc), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("saving chart %s: %w", namespace, err)
	}
	return nil
}

// LoadChart returns the snapshot of a chart namespace. ok is false when
// nothing has been saved yet.
func (s *Store) LoadChart(ctx context.Context, namespace string) (snap model.ChartSnapshot, ok bool, err error) {
	var doc string
	err = s.db.QueryRowContext(ctx, `SELECT document FROM chart_snapshots WHERE namespace = ?`, namespace).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ChartSnapshot{}, false, nil
	}
	if err != nil {
		return model.ChartSnapshot{}, false, fmt.Errorf("loading chart %s: %w", namespace, err)
	}
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		return model.ChartSnapshot{}, false, fmt.Errorf("decoding chart %s: %w", namespace, err)
	}
	return snap, true, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
