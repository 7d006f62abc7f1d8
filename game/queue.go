// bingo/game/queue.go
package game

import (
	"sort"

	"bingo/config"
	"bingo/models"
)

// StatusFilterAll matches every status in a moderation listing.
const StatusFilterAll = "all"

// ModerationQueue is a filtered, searchable view over one or more ledgers for
// moderator review. Decisions delegate to the owning controller so they flow
// through the same transition funnel as everything else.
type ModerationQueue struct {
	controllers []*Controller
}

// NewModerationQueue builds a queue over the given session controllers.
func NewModerationQueue(controllers ...*Controller) ModerationQueue {
	return ModerationQueue{controllers: controllers}
}

// List returns submissions matching both the status filter and the free-text
// search term (ANDed), newest first. statusFilter may be "all" or empty to
// match everything. Seeded free-space records are never listed; there is
// nothing for a moderator to review on them.
func (q ModerationQueue) List(statusFilter, searchTerm string) []*models.Submission {
	var out []*models.Submission
	for _, c := range q.controllers {
		for _, sub := range c.Ledger().Search(searchTerm) {
			if sub.TaskID == config.FreeSpaceID {
				continue
			}
			if statusFilter != "" && statusFilter != StatusFilterAll && string(sub.Status) != statusFilter {
				continue
			}
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Approve marks a pending submission approved via its session controller.
func (q ModerationQueue) Approve(sub *models.Submission) error {
	return q.decide(sub, models.StatusApproved)
}

// Reject marks a pending submission rejected via its session controller.
func (q ModerationQueue) Reject(sub *models.Submission) error {
	return q.decide(sub, models.StatusRejected)
}

func (q ModerationQueue) decide(sub *models.Submission, decision models.Status) error {
	for _, c := range q.controllers {
		if c.User().ID == sub.UserID {
			return c.Decide(sub.TaskID, sub.UserID, decision)
		}
	}
	return ErrNotFound
}
