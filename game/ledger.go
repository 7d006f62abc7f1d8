// bingo/game/ledger.go
package game

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"bingo/models"
)

// Ledger is the append-only collection of submissions for one board session
// and the single source of truth for per-task-per-user completion state. The
// only permitted mutation of an existing record is a moderation decision
// moving it out of pending.
type Ledger struct {
	subs []*models.Submission
	now  func() time.Time
}

// NewLedger creates an empty ledger. The clock is injectable for tests.
func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Ledger{now: now}
}

// Append records a new pending submission. It fails with ErrDuplicateActive
// when a pending or approved submission already exists for the pair; a
// rejected one does not block resubmission.
func (l *Ledger) Append(taskID int, userID, userName, proof string) (*models.Submission, error) {
	if latest := l.Latest(taskID, userID); latest != nil && latest.Status != models.StatusRejected {
		return nil, ErrDuplicateActive
	}
	now := l.now()
	sub := &models.Submission{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    userID,
		UserName:  userName,
		Proof:     proof,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.subs = append(l.subs, sub)
	return sub, nil
}

// Load inserts an existing submission record verbatim, preserving its id,
// status and timestamps. Used to seed the free space and to hydrate a session
// from the persistence collaborator.
func (l *Ledger) Load(sub models.Submission) *models.Submission {
	copied := sub
	l.subs = append(l.subs, &copied)
	return &copied
}

// Discard removes the record with the given id, so an orchestrator can
// unwind an Append whose downstream side effects failed. Only pending
// records may be discarded; decided ones are history.
func (l *Ledger) Discard(id string) bool {
	for i, sub := range l.subs {
		if sub.ID == id && sub.Status == models.StatusPending {
			l.subs = append(l.subs[:i], l.subs[i+1:]...)
			return true
		}
	}
	return false
}

// SetStatus applies a moderation decision to the latest submission for the
// pair. Only pending submissions may transition; approved and rejected are
// terminal.
func (l *Ledger) SetStatus(taskID int, userID string, status models.Status) error {
	sub := l.Latest(taskID, userID)
	if sub == nil {
		return ErrNotFound
	}
	if sub.Status != models.StatusPending {
		return ErrInvalidTransition
	}
	sub.Status = status
	sub.UpdatedAt = l.now()
	return nil
}

// Latest returns the most recent submission for (taskID, userID), or nil.
// After a rejection and resubmission this is the fresh record.
func (l *Ledger) Latest(taskID int, userID string) *models.Submission {
	for i := len(l.subs) - 1; i >= 0; i-- {
		if l.subs[i].TaskID == taskID && l.subs[i].UserID == userID {
			return l.subs[i]
		}
	}
	return nil
}

// ApprovedTaskIDs returns the set of task ids with at least one approved
// submission from any user.
func (l *Ledger) ApprovedTaskIDs() map[int]bool {
	ids := make(map[int]bool)
	for _, sub := range l.subs {
		if sub.Status == models.StatusApproved {
			ids[sub.TaskID] = true
		}
	}
	return ids
}

// ByStatus returns all submissions with the given status, in append order.
func (l *Ledger) ByStatus(status models.Status) []*models.Submission {
	var out []*models.Submission
	for _, sub := range l.subs {
		if sub.Status == status {
			out = append(out, sub)
		}
	}
	return out
}

// Search returns submissions whose user name or proof contains term,
// case-insensitively. An empty term matches everything.
func (l *Ledger) Search(term string) []*models.Submission {
	lowered := strings.ToLower(term)
	var out []*models.Submission
	for _, sub := range l.subs {
		if lowered == "" ||
			strings.Contains(strings.ToLower(sub.UserName), lowered) ||
			strings.Contains(strings.ToLower(sub.Proof), lowered) {
			out = append(out, sub)
		}
	}
	return out
}

// All returns every submission in append order.
func (l *Ledger) All() []*models.Submission {
	out := make([]*models.Submission, len(l.subs))
	copy(out, l.subs)
	return out
}

// Len returns the number of records in the ledger.
func (l *Ledger) Len() int {
	return len(l.subs)
}
