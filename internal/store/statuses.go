package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const statusColumns = `id, user_id, ticket_number, title, status, date,
	effort_today_days, effort_today_hours, effort_today_minutes,
	total_effort_days, total_effort_hours, total_effort_minutes,
	estimated_effort_days, estimated_effort_hours, estimated_effort_minutes,
	created_at, updated_at`

func validateFields(f StatusFields) error {
	switch {
	case f.Date.IsZero():
		return fmt.Errorf("%w: date", ErrMissingField)
	case f.TicketNumber == "":
		return fmt.Errorf("%w: ticket number", ErrMissingField)
	case f.Title == "":
		return fmt.Errorf("%w: title", ErrMissingField)
	case f.Status == "":
		return fmt.Errorf("%w: status", ErrMissingField)
	}
	return nil
}

// CreateStatus inserts a new record for userID. The duplicate-ticket check
// and the insert run in one transaction so concurrent submissions of the
// same ticket number cannot both pass the check.
func (s *Store) CreateStatus(userID string, f StatusFields) (*WorkStatus, error) {
	if err := validateFields(f); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	dup, err := checkDuplicate(tx, userID, f.TicketNumber, "")
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateTicket
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(
		`INSERT INTO work_statuses (id, user_id, ticket_number, title, status, date,
			effort_today_days, effort_today_hours, effort_today_minutes,
			total_effort_days, total_effort_hours, total_effort_minutes,
			estimated_effort_days, estimated_effort_hours, estimated_effort_minutes,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, f.TicketNumber, f.Title, f.Status, f.Date.UTC().Format(time.RFC3339),
		f.EffortToday.Days, f.EffortToday.Hours, f.EffortToday.Minutes,
		f.TotalEffort.Days, f.TotalEffort.Hours, f.TotalEffort.Minutes,
		f.EstimatedEffort.Days, f.EstimatedEffort.Hours, f.EstimatedEffort.Minutes,
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert work status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return s.GetStatus(id, userID)
}

// UpdateStatus applies all writable fields to a record the user owns. A
// missing row and a row owned by someone else both report ErrNotFound.
func (s *Store) UpdateStatus(id, userID string, f StatusFields) (*WorkStatus, error) {
	if err := validateFields(f); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var owned string
	err = tx.QueryRow(`SELECT id FROM work_statuses WHERE id = ? AND user_id = ?`, id, userID).Scan(&owned)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check ownership: %w", err)
	}

	dup, err := checkDuplicate(tx, userID, f.TicketNumber, id)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateTicket
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(
		`UPDATE work_statuses SET ticket_number = ?, title = ?, status = ?, date = ?,
			effort_today_days = ?, effort_today_hours = ?, effort_today_minutes = ?,
			total_effort_days = ?, total_effort_hours = ?, total_effort_minutes = ?,
			estimated_effort_days = ?, estimated_effort_hours = ?, estimated_effort_minutes = ?,
			updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		f.TicketNumber, f.Title, f.Status, f.Date.UTC().Format(time.RFC3339),
		f.EffortToday.Days, f.EffortToday.Hours, f.EffortToday.Minutes,
		f.TotalEffort.Days, f.TotalEffort.Hours, f.TotalEffort.Minutes,
		f.EstimatedEffort.Days, f.EstimatedEffort.Hours, f.EstimatedEffort.Minutes,
		now, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update work status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return s.GetStatus(id, userID)
}

// DeleteStatus removes a record the user owns. Permanent: there is no
// soft delete.
func (s *Store) DeleteStatus(id, userID string) error {
	res, err := s.db.Exec(`DELETE FROM work_statuses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete work status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete work status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MoveToToday creates a new record for today from an existing one, copying
// the ticket identity and the cumulative efforts while resetting status and
// today's effort. The duplicate-ticket check is deliberately skipped: the
// source row and the copy share a ticket number.
func (s *Store) MoveToToday(id, userID string) (*WorkStatus, error) {
	src, err := s.GetStatus(id, userID)
	if err != nil {
		return nil, err
	}

	newID := uuid.NewString()
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)
	unset := -1
	_, err = s.db.Exec(
		`INSERT INTO work_statuses (id, user_id, ticket_number, title, status, date,
			effort_today_days, effort_today_hours, effort_today_minutes,
			total_effort_days, total_effort_hours, total_effort_minutes,
			estimated_effort_days, estimated_effort_hours, estimated_effort_minutes,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		newID, userID, src.TicketNumber, src.Title, DefaultStatus, nowStr,
		unset, unset, unset,
		src.TotalEffort.Days, src.TotalEffort.Hours, src.TotalEffort.Minutes,
		src.EstimatedEffort.Days, src.EstimatedEffort.Hours, src.EstimatedEffort.Minutes,
		nowStr, nowStr,
	)
	if err != nil {
		return nil, fmt.Errorf("move to today: %w", err)
	}
	return s.GetStatus(newID, userID)
}

// ListStatuses returns all of the user's records, newest date first.
func (s *Store) ListStatuses(userID string) ([]WorkStatus, error) {
	rows, err := s.db.Query(
		`SELECT `+statusColumns+` FROM work_statuses WHERE user_id = ?
		 ORDER BY date DESC, created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list work statuses: %w", err)
	}
	defer rows.Close()

	var statuses []WorkStatus
	for rows.Next() {
		w, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *w)
	}
	return statuses, rows.Err()
}

func (s *Store) GetStatus(id, userID string) (*WorkStatus, error) {
	row := s.db.QueryRow(
		`SELECT `+statusColumns+` FROM work_statuses WHERE id = ? AND user_id = ?`, id, userID,
	)
	w, err := scanStatus(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get work status %s: %w", id, err)
	}
	return w, nil
}

// GetStatusByTicket returns the user's most recent record for a ticket
// number. After a move-to-today the same ticket can appear on several dates;
// the newest one is the record being worked.
func (s *Store) GetStatusByTicket(ticketNumber, userID string) (*WorkStatus, error) {
	row := s.db.QueryRow(
		`SELECT `+statusColumns+` FROM work_statuses WHERE ticket_number = ? AND user_id = ?
		 ORDER BY date DESC, created_at DESC LIMIT 1`, ticketNumber, userID,
	)
	w, err := scanStatus(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get work status %s: %w", ticketNumber, err)
	}
	return w, nil
}

// CheckDuplicateTicket reports whether the user already has a record with
// this ticket number, optionally excluding one record ID. Used at submit
// time and live while the user types.
func (s *Store) CheckDuplicateTicket(userID, ticketNumber, excludeID string) (bool, error) {
	return checkDuplicate(s.db, userID, ticketNumber, excludeID)
}

// querier lets the duplicate check run against the pool or inside a
// transaction.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func checkDuplicate(q querier, userID, ticketNumber, excludeID string) (bool, error) {
	query := `SELECT 1 FROM work_statuses WHERE user_id = ? AND ticket_number = ?`
	args := []any{userID, ticketNumber}
	if excludeID != "" {
		query += ` AND id != ?`
		args = append(args, excludeID)
	}
	var one int
	err := q.QueryRow(query+` LIMIT 1`, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check duplicate ticket: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatus(row rowScanner) (*WorkStatus, error) {
	w := &WorkStatus{}
	var date, createdAt, updatedAt string
	err := row.Scan(
		&w.ID, &w.UserID, &w.TicketNumber, &w.Title, &w.Status, &date,
		&w.EffortToday.Days, &w.EffortToday.Hours, &w.EffortToday.Minutes,
		&w.TotalEffort.Days, &w.TotalEffort.Hours, &w.TotalEffort.Minutes,
		&w.EstimatedEffort.Days, &w.EstimatedEffort.Hours, &w.EstimatedEffort.Minutes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.Date, _ = time.Parse(time.RFC3339, date)
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	w.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return w, nil
}
