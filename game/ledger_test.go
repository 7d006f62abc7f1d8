// bingo/game/ledger_test.go
package game

import (
	"testing"
	"time"

	"bingo/models"
)

// testClock hands out strictly increasing timestamps so ordering assertions
// are stable.
func testClock() func() time.Time {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestLedgerAppend(t *testing.T) {
	l := NewLedger(testClock())

	sub, err := l.Append(1, "user1", "John Doe", "Major: Computer Science")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if sub.Status != models.StatusPending {
		t.Errorf("Expected new submission to be pending, got %s", sub.Status)
	}
	if sub.ID == "" {
		t.Error("Expected a generated submission id")
	}

	if _, err := l.Append(1, "user1", "John Doe", "second try"); err != ErrDuplicateActive {
		t.Errorf("Expected ErrDuplicateActive for a pending pair, got %v", err)
	}

	// A different user may submit the same task.
	if _, err := l.Append(1, "user2", "Jane Smith", "Major: Biology"); err != nil {
		t.Errorf("Expected another user's submission to succeed, got %v", err)
	}
}

func TestLedgerDiscard(t *testing.T) {
	l := NewLedger(nil)
	sub, err := l.Append(1, "alice", "Alice Park", "a reasonable answer")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if !l.Discard(sub.ID) {
		t.Fatal("Expected Discard to remove the pending record")
	}
	if l.Latest(1, "alice") != nil {
		t.Error("Expected no record after Discard")
	}

	// A discarded pair accepts a fresh submission.
	if _, err := l.Append(1, "alice", "Alice Park", "a second reasonable answer"); err != nil {
		t.Errorf("Expected Append to succeed after Discard, got %v", err)
	}

	if l.Discard("no-such-id") {
		t.Error("Expected Discard to report false for an unknown id")
	}

	// Decided records are history and stay put.
	if err := l.SetStatus(1, "alice", models.StatusApproved); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	decided := l.Latest(1, "alice")
	if l.Discard(decided.ID) {
		t.Error("Expected Discard to refuse a decided record")
	}
}

func TestLedgerSetStatus(t *testing.T) {
	l := NewLedger(testClock())

	if err := l.SetStatus(1, "user1", models.StatusApproved); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound on empty ledger, got %v", err)
	}

	if _, err := l.Append(1, "user1", "John Doe", "Major: Computer Science"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.SetStatus(1, "user1", models.StatusApproved); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	// Approving twice is an error, not a silent no-op.
	if err := l.SetStatus(1, "user1", models.StatusApproved); err != ErrInvalidTransition {
		t.Errorf("Expected ErrInvalidTransition when re-approving, got %v", err)
	}
	if err := l.SetStatus(1, "user1", models.StatusRejected); err != ErrInvalidTransition {
		t.Errorf("Expected ErrInvalidTransition when rejecting an approved submission, got %v", err)
	}

	// An approved pair also blocks fresh submissions.
	if _, err := l.Append(1, "user1", "John Doe", "again"); err != ErrDuplicateActive {
		t.Errorf("Expected ErrDuplicateActive after approval, got %v", err)
	}
}

func TestLedgerResubmitAfterRejection(t *testing.T) {
	l := NewLedger(testClock())

	first, err := l.Append(3, "user1", "John Doe", "my first attempt here")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.SetStatus(3, "user1", models.StatusRejected); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	second, err := l.Append(3, "user1", "John Doe", "a better second attempt")
	if err != nil {
		t.Fatalf("Expected resubmission after rejection to succeed, got %v", err)
	}
	if second.ID == first.ID {
		t.Error("Expected resubmission to create a fresh record")
	}
	if l.Len() != 2 {
		t.Errorf("Expected 2 ledger records, got %d", l.Len())
	}
	if latest := l.Latest(3, "user1"); latest == nil || latest.ID != second.ID {
		t.Error("Expected the resubmission to be the active record for the pair")
	}
}

func TestLedgerApprovedTaskIDs(t *testing.T) {
	l := NewLedger(testClock())
	l.Append(1, "user1", "John Doe", "first answer ok")
	l.Append(2, "user1", "John Doe", "second answer ok")
	l.Append(5, "user2", "Jane Smith", "third answer ok")
	l.SetStatus(1, "user1", models.StatusApproved)
	l.SetStatus(5, "user2", models.StatusApproved)

	ids := l.ApprovedTaskIDs()
	if len(ids) != 2 || !ids[1] || !ids[5] {
		t.Errorf("Expected approved task ids {1, 5}, got %v", ids)
	}
	if ids[2] {
		t.Error("Pending submissions must not count as approved")
	}
}

func TestLedgerQueries(t *testing.T) {
	l := NewLedger(testClock())
	l.Load(models.Submission{ID: "a", TaskID: 1, UserID: "user1", UserName: "John Doe", Proof: "Major: Computer Science", Status: models.StatusPending})
	l.Load(models.Submission{ID: "b", TaskID: 2, UserID: "user2", UserName: "Jane Smith", Proof: "Hometown: Boston, MA", Status: models.StatusApproved})
	l.Load(models.Submission{ID: "c", TaskID: 3, UserID: "user2", UserName: "Jane Smith", Proof: "a selfie", Status: models.StatusRejected})

	if got := len(l.ByStatus(models.StatusApproved)); got != 1 {
		t.Errorf("Expected 1 approved submission, got %d", got)
	}
	if got := len(l.Search("jane")); got != 2 {
		t.Errorf("Expected case-insensitive name search to match 2, got %d", got)
	}
	if got := len(l.Search("boston")); got != 1 {
		t.Errorf("Expected proof search to match 1, got %d", got)
	}
	if got := len(l.Search("")); got != 3 {
		t.Errorf("Expected empty search to match everything, got %d", got)
	}
	if got := len(l.Search("nobody")); got != 0 {
		t.Errorf("Expected no matches, got %d", got)
	}
	if got := len(l.All()); got != 3 {
		t.Errorf("Expected All to return 3 records, got %d", got)
	}
}
