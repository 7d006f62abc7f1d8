// bingo/game/lines.go
package game

import (
	"bingo/config"
	"bingo/models"
)

// DetectLines computes the set of completed lines for a board given the task
// ids with at least one approved submission. It is a pure function: the same
// inputs always yield the same lines in the same order (rows 0..4, columns
// 0..4, left diagonal, right diagonal).
func DetectLines(board Board, approvedIDs map[int]bool) []models.Line {
	var on [config.BoardSize]bool
	for i, t := range board {
		if approvedIDs[t.ID] {
			on[i] = true
		}
	}

	allOn := func(indices []int) bool {
		for _, i := range indices {
			if !on[i] {
				return false
			}
		}
		return true
	}

	var lines []models.Line
	for r := 0; r < config.BoardDim; r++ {
		indices := make([]int, 0, config.BoardDim)
		for c := 0; c < config.BoardDim; c++ {
			indices = append(indices, r*config.BoardDim+c)
		}
		if allOn(indices) {
			lines = append(lines, models.Line{Type: models.LineRow, Index: r})
		}
	}
	for c := 0; c < config.BoardDim; c++ {
		indices := make([]int, 0, config.BoardDim)
		for r := 0; r < config.BoardDim; r++ {
			indices = append(indices, r*config.BoardDim+c)
		}
		if allOn(indices) {
			lines = append(lines, models.Line{Type: models.LineColumn, Index: c})
		}
	}

	left := make([]int, 0, config.BoardDim)
	right := make([]int, 0, config.BoardDim)
	for i := 0; i < config.BoardDim; i++ {
		left = append(left, i*config.BoardDim+i)
		right = append(right, i*config.BoardDim+(config.BoardDim-1-i))
	}
	if allOn(left) {
		lines = append(lines, models.Line{Type: models.LineDiagonal, Direction: models.DiagonalLeft})
	}
	if allOn(right) {
		lines = append(lines, models.Line{Type: models.LineDiagonal, Direction: models.DiagonalRight})
	}
	return lines
}

// LineContains reports whether the cell at index lies on the given line.
// Membership is checked against explicit row and column coordinates.
func LineContains(line models.Line, index int) bool {
	if index < 0 || index >= config.BoardSize {
		return false
	}
	row, col := index/config.BoardDim, index%config.BoardDim
	switch line.Type {
	case models.LineRow:
		return row == line.Index
	case models.LineColumn:
		return col == line.Index
	case models.LineDiagonal:
		if line.Direction == models.DiagonalLeft {
			return row == col
		}
		return row+col == config.BoardDim-1
	}
	return false
}

// PartOfBingo reports whether any detected line covers the cell at index.
func PartOfBingo(lines []models.Line, index int) bool {
	for _, line := range lines {
		if LineContains(line, index) {
			return true
		}
	}
	return false
}
