package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avelis/worklog/internal/effort"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Store, username string) *User {
	t.Helper()
	u, err := s.SignIn(username)
	if err != nil {
		t.Fatalf("sign in %q: %v", username, err)
	}
	return u
}

func testFields(ticket string) StatusFields {
	return StatusFields{
		Date:            time.Now(),
		TicketNumber:    ticket,
		Title:           "Some ticket",
		Status:          DefaultStatus,
		EffortToday:     effort.Triple{Days: -1, Hours: 2, Minutes: 30},
		TotalEffort:     effort.Triple{Days: 1, Hours: -1, Minutes: -1},
		EstimatedEffort: effort.Unset(),
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/worklog.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Running migrate again should be a no-op
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Users
// ============================================================

func TestSignInCreatesUser(t *testing.T) {
	s := newTestStore(t)
	u, err := s.SignIn("alice")
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if u.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}
}

func TestSignInIdempotent(t *testing.T) {
	s := newTestStore(t)
	u1, _ := s.SignIn("alice")
	u2, err := s.SignIn("alice")
	if err != nil {
		t.Fatal(err)
	}
	if u1.ID != u2.ID {
		t.Fatal("re-signing in with the same username should return the same user")
	}
}

func TestSignInTrimsWhitespace(t *testing.T) {
	s := newTestStore(t)
	u1, _ := s.SignIn("alice")
	u2, err := s.SignIn("  alice  ")
	if err != nil {
		t.Fatal(err)
	}
	if u1.ID != u2.ID {
		t.Fatal("surrounding whitespace should not create a second user")
	}
}

func TestSignInUsernameLength(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", "a", "  a  ", strings.Repeat("x", 51)} {
		if _, err := s.SignIn(name); !errors.Is(err, ErrUsernameLength) {
			t.Fatalf("SignIn(%q): expected ErrUsernameLength, got %v", name, err)
		}
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetUser("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Work statuses
// ============================================================

func TestCreateAndGetStatus(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")

	ws, err := s.CreateStatus(u.ID, testFields("DCV2-123"))
	if err != nil {
		t.Fatal(err)
	}
	if ws.TicketNumber != "DCV2-123" || ws.Title != "Some ticket" || ws.Status != DefaultStatus {
		t.Fatalf("unexpected record: %+v", ws)
	}
	if ws.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if ws.EffortToday != (effort.Triple{Days: -1, Hours: 2, Minutes: 30}) {
		t.Fatalf("effort today not round-tripped: %+v", ws.EffortToday)
	}
	if !ws.EstimatedEffort.IsUnset() {
		t.Fatalf("estimate should stay unset: %+v", ws.EstimatedEffort)
	}
	if ws.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}

	fetched, err := s.GetStatus(ws.ID, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.TicketNumber != "DCV2-123" {
		t.Fatalf("GetStatus returned wrong ticket: %s", fetched.TicketNumber)
	}
}

func TestCreateStatusMissingFields(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")

	cases := []struct {
		name   string
		mutate func(*StatusFields)
	}{
		{"date", func(f *StatusFields) { f.Date = time.Time{} }},
		{"ticket", func(f *StatusFields) { f.TicketNumber = "" }},
		{"title", func(f *StatusFields) { f.Title = "" }},
		{"status", func(f *StatusFields) { f.Status = "" }},
	}
	for _, tc := range cases {
		f := testFields("DCV2-1")
		tc.mutate(&f)
		if _, err := s.CreateStatus(u.ID, f); !errors.Is(err, ErrMissingField) {
			t.Fatalf("%s: expected ErrMissingField, got %v", tc.name, err)
		}
	}
}

func TestCreateStatusDuplicateTicket(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")

	if _, err := s.CreateStatus(u.ID, testFields("DCV2-1")); err != nil {
		t.Fatal(err)
	}
	_, err := s.CreateStatus(u.ID, testFields("DCV2-1"))
	if !errors.Is(err, ErrDuplicateTicket) {
		t.Fatalf("expected ErrDuplicateTicket, got %v", err)
	}
}

func TestCreateStatusSameTicketDifferentUsers(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	_, err1 := s.CreateStatus(alice.ID, testFields("DCV2-1"))
	_, err2 := s.CreateStatus(bob.ID, testFields("DCV2-1"))
	if err1 != nil || err2 != nil {
		t.Fatal("the same ticket number under different users should be allowed")
	}
}

func TestGetStatusOwnership(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	ws, _ := s.CreateStatus(alice.ID, testFields("DCV2-1"))

	_, err := s.GetStatus(ws.ID, bob.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("another user's record should report ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")
	ws, _ := s.CreateStatus(u.ID, testFields("DCV2-1"))

	f := testFields("DCV2-2")
	f.Title = "Renamed"
	f.Status = "In Progress"
	f.EffortToday = effort.Triple{Days: -1, Hours: -1, Minutes: 45}
	updated, err := s.UpdateStatus(ws.ID, u.ID, f)
	if err != nil {
		t.Fatal(err)
	}
	if updated.TicketNumber != "DCV2-2" || updated.Title != "Renamed" || updated.Status != "In Progress" {
		t.Fatalf("update failed: %+v", updated)
	}
	if updated.EffortToday != (effort.Triple{Days: -1, Hours: -1, Minutes: 45}) {
		t.Fatalf("effort not updated: %+v", updated.EffortToday)
	}
}

func TestUpdateStatusKeepOwnTicket(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")
	ws, _ := s.CreateStatus(u.ID, testFields("DCV2-1"))

	// Re-submitting with the same ticket number must not trip the
	// duplicate check against the record itself.
	f := testFields("DCV2-1")
	f.Title = "Edited"
	if _, err := s.UpdateStatus(ws.ID, u.ID, f); err != nil {
		t.Fatalf("update with own ticket: %v", err)
	}
}

func TestUpdateStatusDuplicateTicket(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")
	s.CreateStatus(u.ID, testFields("DCV2-1"))
	ws, _ := s.CreateStatus(u.ID, testFields("DCV2-2"))

	_, err := s.UpdateStatus(ws.ID, u.ID, testFields("DCV2-1"))
	if !errors.Is(err, ErrDuplicateTicket) {
		t.Fatalf("expected ErrDuplicateTicket, got %v", err)
	}
}

func TestUpdateStatusNotOwned(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	ws, _ := s.CreateStatus(alice.ID, testFields("DCV2-1"))

	_, err := s.UpdateStatus(ws.ID, bob.ID, testFields("DCV2-9"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The record must be untouched.
	kept, _ := s.GetStatus(ws.ID, alice.ID)
	if kept.TicketNumber != "DCV2-1" {
		t.Fatal("foreign update should not modify the record")
	}
}

func TestDeleteStatus(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")
	ws, _ := s.CreateStatus(u.ID, testFields("DCV2-1"))

	if err := s.DeleteStatus(ws.ID, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetStatus(ws.ID, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("deleted record should be gone")
	}
}

func TestDeleteStatusNotOwned(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	ws, _ := s.CreateStatus(alice.ID, testFields("DCV2-1"))

	if err := s.DeleteStatus(ws.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetStatus(ws.ID, alice.ID); err != nil {
		t.Fatal("record should survive a foreign delete")
	}
}

func TestMoveToToday(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")

	f := testFields("DCV2-1")
	f.Date = time.Now().AddDate(0, 0, -3)
	f.Status = "In Progress"
	f.EffortToday = effort.Triple{Days: -1, Hours: 4, Minutes: -1}
	f.TotalEffort = effort.Triple{Days: 2, Hours: 1, Minutes: -1}
	f.EstimatedEffort = effort.Triple{Days: 3, Hours: -1, Minutes: -1}
	src, _ := s.CreateStatus(u.ID, f)

	moved, err := s.MoveToToday(src.ID, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if moved.ID == src.ID {
		t.Fatal("move should create a new record")
	}
	if moved.TicketNumber != src.TicketNumber || moved.Title != src.Title {
		t.Fatal("ticket identity should be copied")
	}
	if moved.Status != DefaultStatus {
		t.Fatalf("status should reset to %q, got %q", DefaultStatus, moved.Status)
	}
	if !moved.EffortToday.IsUnset() {
		t.Fatalf("today's effort should be cleared, got %+v", moved.EffortToday)
	}
	if moved.TotalEffort != src.TotalEffort || moved.EstimatedEffort != src.EstimatedEffort {
		t.Fatal("cumulative efforts should be copied")
	}
	y1, m1, d1 := moved.Date.Local().Date()
	y2, m2, d2 := time.Now().Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		t.Fatalf("moved record should be dated today, got %v", moved.Date)
	}

	// Source row must be left in place.
	if _, err := s.GetStatus(src.ID, u.ID); err != nil {
		t.Fatal("source record should survive the move")
	}
}

func TestMoveToTodaySkipsDuplicateCheck(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")
	f := testFields("DCV2-1")
	f.Date = time.Now().AddDate(0, 0, -1)
	src, _ := s.CreateStatus(u.ID, f)

	// The copy shares the ticket number with the source by design.
	if _, err := s.MoveToToday(src.ID, u.ID); err != nil {
		t.Fatalf("move should bypass the duplicate check: %v", err)
	}
}

func TestMoveToTodayNotOwned(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	ws, _ := s.CreateStatus(alice.ID, testFields("DCV2-1"))

	if _, err := s.MoveToToday(ws.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListStatusesOrderAndIsolation(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	old := testFields("DCV2-1")
	old.Date = time.Now().AddDate(0, 0, -2)
	s.CreateStatus(alice.ID, old)
	s.CreateStatus(alice.ID, testFields("DCV2-2"))
	s.CreateStatus(bob.ID, testFields("DCV2-3"))

	statuses, err := s.ListStatuses(alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 records for alice, got %d", len(statuses))
	}
	// Newest date first
	if statuses[0].TicketNumber != "DCV2-2" {
		t.Fatalf("expected newest first, got %s", statuses[0].TicketNumber)
	}
}

func TestListStatusesEmpty(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")
	statuses, err := s.ListStatuses(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if statuses != nil {
		t.Fatalf("expected nil slice, got %d items", len(statuses))
	}
}

func TestGetStatusByTicketReturnsNewest(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")

	f := testFields("DCV2-1")
	f.Date = time.Now().AddDate(0, 0, -2)
	src, _ := s.CreateStatus(u.ID, f)
	moved, _ := s.MoveToToday(src.ID, u.ID)

	ws, err := s.GetStatusByTicket("DCV2-1", u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ws.ID != moved.ID {
		t.Fatal("should return the most recent record for the ticket")
	}
}

func TestCheckDuplicateTicket(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "alice")
	ws, _ := s.CreateStatus(u.ID, testFields("DCV2-1"))

	dup, err := s.CheckDuplicateTicket(u.ID, "DCV2-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if !dup {
		t.Fatal("expected duplicate")
	}

	dup, _ = s.CheckDuplicateTicket(u.ID, "DCV2-1", ws.ID)
	if dup {
		t.Fatal("excluding the record itself should report no duplicate")
	}

	dup, _ = s.CheckDuplicateTicket(u.ID, "DCV2-99", "")
	if dup {
		t.Fatal("unknown ticket should not be a duplicate")
	}
}

func TestForeignKeyStatusesUser(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateStatus("no-such-user", testFields("DCV2-1"))
	if err == nil {
		t.Fatal("expected foreign key error")
	}
}

// ============================================================
// Settings and session
// ============================================================

func TestTicketPrefixSeeded(t *testing.T) {
	s := newTestStore(t)
	if prefix := s.TicketPrefix(); prefix != "DCV2-" {
		t.Fatalf("expected seeded prefix DCV2-, got %q", prefix)
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) < 1 {
		t.Fatal("expected at least the seeded ticket_prefix setting")
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)

	u, err := s.CurrentUser()
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Fatal("fresh store should have no session")
	}

	alice := newTestUser(t, s, "alice")
	if err := s.SetCurrentUser(alice.ID); err != nil {
		t.Fatal(err)
	}

	u, err = s.CurrentUser()
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.ID != alice.ID {
		t.Fatal("session should resolve to alice")
	}

	if err := s.ClearCurrentUser(); err != nil {
		t.Fatal(err)
	}
	u, _ = s.CurrentUser()
	if u != nil {
		t.Fatal("session should be cleared after sign-out")
	}
}

func TestCurrentUserStaleSession(t *testing.T) {
	s := newTestStore(t)
	s.SetCurrentUser("deleted-user-id")

	u, err := s.CurrentUser()
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Fatal("a session pointing at a missing user should resolve to no session")
	}
}

// ============================================================
// Close safety
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
}
