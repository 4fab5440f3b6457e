package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jaycloud/jaycloud-go/internal/common"
	"github.com/jaycloud/jaycloud-go/internal/dbx"
)

const updatedAtKey = common.RenewalTokenStorageKey + "_updated_at"

// SQLiteStore keeps the renewal credential in a metadata(key, value) table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// SetRenewalToken upserts the token and its update timestamp in a single
// transaction so a crash cannot leave the two keys out of step.
func (s *SQLiteStore) SetRenewalToken(ctx context.Context, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := upsert(ctx, tx, common.RenewalTokenStorageKey, []byte(token)); err != nil {
			return err
		}
		stamp := time.Now().UTC().Format(time.RFC3339)
		return upsert(ctx, tx, updatedAtKey, []byte(stamp))
	})
}

// RenewalToken returns the stored token or "" when absent.
func (s *SQLiteStore) RenewalToken(ctx context.Context) (string, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = ?`, common.RenewalTokenStorageKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get renewal token: %w", err)
	}
	return string(value), nil
}

// RemoveRenewalToken deletes the token and its timestamp. No-op when absent.
func (s *SQLiteStore) RemoveRenewalToken(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM metadata WHERE key IN (?, ?)`, common.RenewalTokenStorageKey, updatedAtKey)
		if err != nil {
			return fmt.Errorf("failed to remove renewal token: %w", err)
		}
		return nil
	})
}

func upsert(ctx context.Context, tx dbx.DBTX, key string, value []byte) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}
