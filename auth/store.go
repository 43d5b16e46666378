// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"database/sql"
	"log/slog"
	"time"
)

// SQLStore persists session records in the session table, implementing
// scs.Store. Keeping sessions in the same database as everything else means
// a session is an ordinary row with an explicit create/touch/destroy
// lifecycle, visible to the same backup and inspection tooling.
type SQLStore struct {
	db          *sql.DB
	stopCleanup chan struct{}
}

// NewSQLStore returns a session store backed by the given database, with a
// background sweep of expired records every 15 minutes.
func NewSQLStore(db *sql.DB) *SQLStore {
	return NewSQLStoreWithCleanupInterval(db, 15*time.Minute)
}

// NewSQLStoreWithCleanupInterval is NewSQLStore with a custom sweep interval.
// An interval of zero or less disables the sweep; scs never calls
// DeleteExpired itself, so expired rows then linger until Find touches them.
func NewSQLStoreWithCleanupInterval(db *sql.DB, interval time.Duration) *SQLStore {
	s := &SQLStore{db: db}
	if interval > 0 {
		s.stopCleanup = make(chan struct{})
		go s.cleanupLoop(interval)
	}
	return s
}

func (s *SQLStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.DeleteExpired(); err != nil {
				slog.Error("failed to sweep expired sessions", "error", err)
			}
		case <-s.stopCleanup:
			return
		}
	}
}

// StopCleanup ends the background sweep. Safe to call on a store created
// without one.
func (s *SQLStore) StopCleanup() {
	if s.stopCleanup != nil {
		close(s.stopCleanup)
	}
}

// Find returns the payload for a session token. Expired records are treated
// as absent and deleted lazily.
func (s *SQLStore) Find(token string) ([]byte, bool, error) {
	var data []byte
	var expiry time.Time
	err := s.db.QueryRow(`SELECT data, expiry FROM session WHERE token = $1`, token).Scan(&data, &expiry)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if time.Now().After(expiry) {
		_ = s.Delete(token)
		return nil, false, nil
	}

	return data, true, nil
}

// Commit creates or updates the session record. The upsert keeps a rolling
// expiry write race-free without a read-modify-write cycle.
func (s *SQLStore) Commit(token string, b []byte, expiry time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO session (token, data, expiry)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET data = $2, expiry = $3
	`, token, b, expiry)
	return err
}

// Delete removes the session record. Deleting an absent token is not an
// error.
func (s *SQLStore) Delete(token string) error {
	_, err := s.db.Exec(`DELETE FROM session WHERE token = $1`, token)
	return err
}

// DeleteExpired removes all expired session records. Find already ignores
// expired rows, so this is housekeeping; the cleanup loop calls it on a
// timer.
func (s *SQLStore) DeleteExpired() error {
	_, err := s.db.Exec(`DELETE FROM session WHERE expiry < $1`, time.Now())
	return err
}
