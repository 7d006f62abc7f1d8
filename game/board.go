// bingo/game/board.go
package game

import (
	"math/rand"

	"bingo/config"
	"bingo/models"
)

// Board is an ordered sequence of exactly 25 tasks laid out row-major over a
// 5x5 grid. The center cell (index 12) is always the free space. A board is
// immutable once generated; starting over means generating a new one.
type Board []models.Task

// FreeSpaceTask returns the synthetic task occupying the center cell.
func FreeSpaceTask() models.Task {
	return models.Task{
		ID:          config.FreeSpaceID,
		Label:       "FREE SPACE",
		ProofKind:   models.ProofText,
		Description: "Free space - already completed!",
	}
}

// Generate draws 24 distinct tasks from pool via a uniform shuffle on the
// injected randomness source and splices the free space into the center.
func Generate(pool []models.Task, rng *rand.Rand) (Board, error) {
	if len(pool) < config.BoardDraw {
		return nil, ErrInsufficientPool
	}

	drawn := make([]models.Task, len(pool))
	copy(drawn, pool)
	rng.Shuffle(len(drawn), func(i, j int) {
		drawn[i], drawn[j] = drawn[j], drawn[i]
	})
	drawn = drawn[:config.BoardDraw]

	board := make(Board, 0, config.BoardSize)
	board = append(board, drawn[:config.FreeSpaceIndex]...)
	board = append(board, FreeSpaceTask())
	board = append(board, drawn[config.FreeSpaceIndex:]...)
	return board, nil
}

// IndexOf returns the cell index holding the task with the given id, or -1.
func (b Board) IndexOf(taskID int) int {
	for i, t := range b {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

// Task returns the task at a cell index.
func (b Board) Task(index int) (models.Task, error) {
	if index < 0 || index >= len(b) {
		return models.Task{}, ErrIndexOutOfRange
	}
	return b[index], nil
}
