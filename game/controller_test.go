// bingo/game/controller_test.go
package game

import (
	"fmt"
	"math/rand"
	"testing"

	"bingo/config"
	"bingo/models"
)

func testUser() models.User {
	return models.User{ID: "user1", Name: "John Doe"}
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	c, err := NewController(testPool(30), testUser(), rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return c
}

// findCell returns the index of a cell whose task has the wanted proof kind,
// skipping the free space.
func findCell(t *testing.T, c *Controller, kind models.ProofKind) int {
	t.Helper()
	for i, task := range c.Board() {
		if i != config.FreeSpaceIndex && task.ProofKind == kind {
			return i
		}
	}
	t.Fatalf("No %s cell on the board", kind)
	return -1
}

func TestControllerFreeSpaceSeeded(t *testing.T) {
	c := newTestController(t)

	state, err := c.CellState(config.FreeSpaceIndex)
	if err != nil {
		t.Fatalf("CellState failed: %v", err)
	}
	if state.Status != CellApproved {
		t.Errorf("Expected the free space to start approved, got %s", state.Status)
	}
	if !c.Ledger().ApprovedTaskIDs()[config.FreeSpaceID] {
		t.Error("Expected the free space task id in the approved set")
	}
}

func TestControllerSubmitApproveRoundTrip(t *testing.T) {
	c := newTestController(t)
	index := findCell(t, c, models.ProofText)

	sub, err := c.Submit(index, "a sufficiently detailed answer", nil)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.Status != models.StatusPending {
		t.Errorf("Expected submitted cell to be pending, got %s", sub.Status)
	}

	state, _ := c.CellState(index)
	if state.Status != CellPending {
		t.Errorf("Expected cell state pending, got %s", state.Status)
	}

	if err := c.Decide(sub.TaskID, sub.UserID, models.StatusApproved); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	// The decision must be visible synchronously in both cell state and the
	// line computation input.
	state, _ = c.CellState(index)
	if state.Status != CellApproved {
		t.Errorf("Expected cell state approved immediately after Decide, got %s", state.Status)
	}
	if !c.Ledger().ApprovedTaskIDs()[sub.TaskID] {
		t.Error("Expected the approved task id in the line detector input")
	}
}

func TestControllerSubmitValidationLeavesLedgerUntouched(t *testing.T) {
	c := newTestController(t)
	index := findCell(t, c, models.ProofPhoto)
	before := c.Ledger().Len()

	_, err := c.Submit(index, "photo.jpg", nil)
	verr, ok := AsValidationError(err)
	if !ok || verr.Reason != MissingFile {
		t.Fatalf("Expected MissingFile validation error, got %v", err)
	}
	if c.Ledger().Len() != before {
		t.Errorf("Expected ledger length %d after a failed submit, got %d", before, c.Ledger().Len())
	}
}

func TestControllerSubmitOutOfRange(t *testing.T) {
	c := newTestController(t)
	if _, err := c.Submit(config.BoardSize, "whatever proof", nil); err != ErrIndexOutOfRange {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestControllerDecideRejectsBadDecision(t *testing.T) {
	c := newTestController(t)
	if err := c.Decide(1, "user1", models.StatusPending); err != ErrInvalidTransition {
		t.Errorf("Expected ErrInvalidTransition for a pending decision, got %v", err)
	}
}

func TestControllerLineCompletion(t *testing.T) {
	c := newTestController(t)

	// Approve the full middle row; it passes through the pre-approved free
	// space, so four submissions complete it.
	for _, index := range []int{10, 11, 13, 14} {
		task := c.Board()[index]
		sub := c.Ledger().Load(models.Submission{
			ID: fmt.Sprintf("seed-%d", index), TaskID: task.ID,
			UserID: "user1", UserName: "John Doe",
			Proof: "seeded", Status: models.StatusPending,
		})
		if err := c.Decide(sub.TaskID, sub.UserID, models.StatusApproved); err != nil {
			t.Fatalf("Decide failed for index %d: %v", index, err)
		}
	}

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("Expected exactly one completed line, got %+v", lines)
	}
	if lines[0].Type != models.LineRow || lines[0].Index != 2 {
		t.Errorf("Expected row 2 complete, got %+v", lines[0])
	}

	for _, index := range []int{10, 11, 12, 13, 14} {
		state, _ := c.CellState(index)
		if !state.InBingo {
			t.Errorf("Expected cell %d to be part of the bingo", index)
		}
	}
	state, _ := c.CellState(0)
	if state.InBingo {
		t.Error("Cell 0 must not be part of the middle-row bingo")
	}
}

func TestControllerCells(t *testing.T) {
	c := newTestController(t)
	cells := c.Cells()
	if len(cells) != config.BoardSize {
		t.Fatalf("Expected %d cells, got %d", config.BoardSize, len(cells))
	}
	for i, cell := range cells {
		if cell.Index != i {
			t.Errorf("Cell %d carries index %d", i, cell.Index)
		}
		if i == config.FreeSpaceIndex {
			continue
		}
		if cell.Status != CellUnsubmitted {
			t.Errorf("Expected cell %d to start unsubmitted, got %s", i, cell.Status)
		}
	}
}

func TestRestoreRebuildsSession(t *testing.T) {
	original := newTestController(t)
	index := findCell(t, original, models.ProofText)
	task := original.Board()[index]

	history := []models.Submission{
		{ID: "h1", TaskID: config.FreeSpaceID, UserID: "user1", UserName: "John Doe", Proof: "Free space", Status: models.StatusApproved},
		{ID: "h2", TaskID: task.ID, UserID: "user1", UserName: "John Doe", Proof: "restored answer here", Status: models.StatusApproved},
	}
	restored := Restore(original.Board(), testUser(), history)

	state, _ := restored.CellState(index)
	if state.Status != CellApproved {
		t.Errorf("Expected restored cell to be approved, got %s", state.Status)
	}
	if restored.Ledger().Len() != 2 {
		t.Errorf("Expected 2 hydrated records, got %d", restored.Ledger().Len())
	}

	// Restoring without a free-space record seeds one.
	bare := Restore(original.Board(), testUser(), nil)
	if bare.Ledger().Latest(config.FreeSpaceID, "user1") == nil {
		t.Error("Expected Restore to seed the free space")
	}
}
