// bingo/game/controller.go
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"bingo/config"
	"bingo/models"
)

// CellStatus is the derived per-cell state shown to the player.
type CellStatus string

const (
	CellUnsubmitted CellStatus = "unsubmitted"
	CellPending     CellStatus = CellStatus(models.StatusPending)
	CellApproved    CellStatus = CellStatus(models.StatusApproved)
	CellRejected    CellStatus = CellStatus(models.StatusRejected)
)

// CellState is everything the presentation layer needs to render one cell.
type CellState struct {
	Index      int                `json:"index"`
	Task       models.Task        `json:"task"`
	Status     CellStatus         `json:"status"`
	InBingo    bool               `json:"inBingo"`
	Submission *models.Submission `json:"submission,omitempty"`
}

// Controller owns the board and ledger for one player's game session and is
// the single funnel for every state transition, local or remote. Every
// successful Submit or Decide synchronously recomputes the line set, so
// callers always observe up-to-date bingo state.
type Controller struct {
	mu     sync.Mutex
	user   models.User
	board  Board
	ledger *Ledger
	lines  []models.Line
}

// NewController generates a fresh board from pool and seeds the free space as
// approved. The randomness source is injectable for deterministic tests.
func NewController(pool []models.Task, user models.User, rng *rand.Rand) (*Controller, error) {
	board, err := Generate(pool, rng)
	if err != nil {
		return nil, err
	}
	c := &Controller{user: user, board: board, ledger: NewLedger(nil)}
	c.seedFreeSpace()
	c.recompute()
	return c, nil
}

// Restore rebuilds a session from a persisted board layout and submission
// history. The free space is re-seeded if the history lacks it.
func Restore(board Board, user models.User, history []models.Submission) *Controller {
	c := &Controller{user: user, board: board, ledger: NewLedger(nil)}
	for _, sub := range history {
		c.ledger.Load(sub)
	}
	if c.ledger.Latest(config.FreeSpaceID, user.ID) == nil {
		c.seedFreeSpace()
	}
	c.recompute()
	return c
}

func (c *Controller) seedFreeSpace() {
	now := time.Now().UTC()
	c.ledger.Load(models.Submission{
		ID:        uuid.New().String(),
		TaskID:    config.FreeSpaceID,
		UserID:    c.user.ID,
		UserName:  c.user.Name,
		Proof:     "Free space",
		Status:    models.StatusApproved,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// User returns the session's player.
func (c *Controller) User() models.User {
	return c.user
}

// Board returns the session's board layout.
func (c *Controller) Board() Board {
	return c.board
}

// Ledger returns the session's submission ledger.
func (c *Controller) Ledger() *Ledger {
	return c.ledger
}

// Lines returns the most recently computed set of completed lines.
func (c *Controller) Lines() []models.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Submit validates the proof for the cell at index and, on success, appends a
// pending submission and recomputes lines. A validation failure leaves the
// ledger untouched.
func (c *Controller) Submit(index int, proof string, file *models.ProofFile) (*models.Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, err := c.board.Task(index)
	if err != nil {
		return nil, err
	}
	if err := ValidateProof(task, proof, file); err != nil {
		return nil, err
	}
	sub, err := c.ledger.Append(task.ID, c.user.ID, c.user.Name, proof)
	if err != nil {
		return nil, err
	}
	c.recompute()
	return sub, nil
}

// Discard unwinds a submission that could not be fully recorded, removing
// the pending ledger entry and recomputing lines. Without it a failed
// store would leave the pair blocked by a record that exists nowhere else.
func (c *Controller) Discard(submissionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ledger.Discard(submissionID) {
		return false
	}
	c.recompute()
	return true
}

// Decide applies a moderation decision through the ledger and recomputes
// lines. Remote decisions arriving from another session go through this same
// path, keeping a single consistent state-transition funnel.
func (c *Controller) Decide(taskID int, userID string, decision models.Status) error {
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return ErrInvalidTransition
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ledger.SetStatus(taskID, userID, decision); err != nil {
		return err
	}
	c.recompute()
	return nil
}

// CellState derives the render state for one cell.
func (c *Controller) CellState(index int) (CellState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, err := c.board.Task(index)
	if err != nil {
		return CellState{}, err
	}
	state := CellState{
		Index:   index,
		Task:    task,
		Status:  CellUnsubmitted,
		InBingo: PartOfBingo(c.lines, index),
	}
	if sub := c.ledger.Latest(task.ID, c.user.ID); sub != nil {
		state.Status = CellStatus(sub.Status)
		state.Submission = sub
	}
	return state, nil
}

// Cells derives the render state of the whole board in index order.
func (c *Controller) Cells() []CellState {
	out := make([]CellState, 0, len(c.board))
	for i := range c.board {
		state, _ := c.CellState(i)
		out = append(out, state)
	}
	return out
}

// recompute refreshes the line set from the current approved subset.
// Callers must hold c.mu.
func (c *Controller) recompute() {
	c.lines = DetectLines(c.board, c.ledger.ApprovedTaskIDs())
}
