package store

import (
	"database/sql"
	"errors"
	"fmt"
)

const (
	keyCurrentUser  = "current_user"
	keyTicketPrefix = "ticket_prefix"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) DeleteSetting(key string) error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// CurrentUser returns the signed-in user, or nil when no session exists.
// The session outlives the process; it is cleared only by sign-out.
func (s *Store) CurrentUser() (*User, error) {
	id, err := s.GetSetting(keyCurrentUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u, err := s.GetUser(id)
	if err == ErrNotFound {
		// Stale session pointing at a deleted user.
		return nil, nil
	}
	return u, err
}

// SetCurrentUser records the session after a successful sign-in.
func (s *Store) SetCurrentUser(id string) error {
	return s.SetSetting(keyCurrentUser, id)
}

// ClearCurrentUser signs the user out.
func (s *Store) ClearCurrentUser() error {
	return s.DeleteSetting(keyCurrentUser)
}

// TicketPrefix returns the required ticket-number prefix.
func (s *Store) TicketPrefix() string {
	prefix, err := s.GetSetting(keyTicketPrefix)
	if err != nil {
		return ""
	}
	return prefix
}
