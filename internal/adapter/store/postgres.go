package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/port"
)

const channelsSchema = `
	CREATE TABLE IF NOT EXISTS watch_channels (
		channel_id  TEXT PRIMARY KEY,
		resource_id TEXT NOT NULL,
		secret      TEXT NOT NULL,
		owner       TEXT NOT NULL DEFAULT '',
		expiration  TIMESTAMPTZ NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// PostgresStore persists watch channel records in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, ensures the schema exists, and
// returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(channelsSchema); err != nil {
		return nil, fmt.Errorf("migrate watch_channels: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SaveChannel inserts or replaces a channel record by channel id.
func (s *PostgresStore) SaveChannel(ctx context.Context, rec *domain.ChannelRecord) error {
	query := `
		INSERT INTO watch_channels (channel_id, resource_id, secret, owner, expiration)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (channel_id) DO UPDATE SET
			resource_id = EXCLUDED.resource_id,
			secret = EXCLUDED.secret,
			owner = EXCLUDED.owner,
			expiration = EXCLUDED.expiration`

	if _, err := s.db.ExecContext(ctx, query,
		rec.ChannelID, rec.ResourceID, rec.Secret, rec.Owner, rec.Expiration,
	); err != nil {
		return fmt.Errorf("save channel: %w", err)
	}
	return nil
}

// GetChannel retrieves a channel record by channel id.
func (s *PostgresStore) GetChannel(ctx context.Context, channelID string) (*domain.ChannelRecord, error) {
	query := `SELECT channel_id, resource_id, secret, owner, expiration, created_at
	          FROM watch_channels WHERE channel_id = $1`

	var rec domain.ChannelRecord
	err := s.db.QueryRowContext(ctx, query, channelID).Scan(
		&rec.ChannelID, &rec.ResourceID, &rec.Secret,
		&rec.Owner, &rec.Expiration, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &rec, nil
}

// DeleteChannel removes a channel record by channel id.
func (s *PostgresStore) DeleteChannel(ctx context.Context, channelID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM watch_channels WHERE channel_id = $1`, channelID,
	); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}

// ListExpired returns channels whose expiration is at or before the
// given time.
func (s *PostgresStore) ListExpired(ctx context.Context, before time.Time) ([]*domain.ChannelRecord, error) {
	query := `SELECT channel_id, resource_id, secret, owner, expiration, created_at
	          FROM watch_channels WHERE expiration <= $1 ORDER BY expiration`

	rows, err := s.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("list expired channels: %w", err)
	}
	defer rows.Close()

	var recs []*domain.ChannelRecord
	for rows.Next() {
		var rec domain.ChannelRecord
		if err := rows.Scan(
			&rec.ChannelID, &rec.ResourceID, &rec.Secret,
			&rec.Owner, &rec.Expiration, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}
