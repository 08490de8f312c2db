package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SignIn returns the user with the given username, creating it on first use.
// Re-submitting an existing username signs in as that user rather than
// erroring.
func (s *Store) SignIn(username string) (*User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 2 || len(username) > 50 {
		return nil, ErrUsernameLength
	}

	u, err := s.getUserByUsername(username)
	if err == nil {
		return u, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("look up user %q: %w", username, err)
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO users (id, username, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, username, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(id)
}

func (s *Store) GetUser(id string) (*User, error) {
	u := &User{}
	var createdAt, updatedAt string
	err := s.db.QueryRow(
		`SELECT id, username, created_at, updated_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return u, nil
}

func (s *Store) getUserByUsername(username string) (*User, error) {
	u := &User{}
	var createdAt, updatedAt string
	err := s.db.QueryRow(
		`SELECT id, username, created_at, updated_at FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return u, nil
}
