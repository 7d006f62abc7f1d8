// bingo/game/lines_test.go
package game

import (
	"reflect"
	"testing"

	"bingo/config"
	"bingo/models"
)

// gridBoard builds a board whose task ids equal their cell indices, which
// makes line scenarios easy to read. The center keeps the reserved id.
func gridBoard() Board {
	board := make(Board, config.BoardSize)
	for i := range board {
		board[i] = models.Task{ID: i, Label: "cell", ProofKind: models.ProofText}
	}
	board[config.FreeSpaceIndex] = FreeSpaceTask()
	return board
}

func approvedSet(ids ...int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestDetectLinesScenarios(t *testing.T) {
	board := gridBoard()

	testCases := []struct {
		name     string
		approved map[int]bool
		want     []models.Line
	}{
		{
			name:     "Top row complete",
			approved: approvedSet(0, 1, 2, 3, 4, config.FreeSpaceID),
			want:     []models.Line{{Type: models.LineRow, Index: 0}},
		},
		{
			name:     "Left diagonal through the free space",
			approved: approvedSet(0, 6, 18, 24, config.FreeSpaceID),
			want:     []models.Line{{Type: models.LineDiagonal, Direction: models.DiagonalLeft}},
		},
		{
			name:     "Right diagonal through the free space",
			approved: approvedSet(4, 8, 16, 20, config.FreeSpaceID),
			want:     []models.Line{{Type: models.LineDiagonal, Direction: models.DiagonalRight}},
		},
		{
			name:     "Middle column through the free space",
			approved: approvedSet(2, 7, 17, 22, config.FreeSpaceID),
			want:     []models.Line{{Type: models.LineColumn, Index: 2}},
		},
		{
			name:     "Four of five is not a line",
			approved: approvedSet(0, 1, 2, 3, config.FreeSpaceID),
			want:     nil,
		},
		{
			name:     "No approvals",
			approved: approvedSet(),
			want:     nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectLines(board, tc.approved)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("DetectLines = %+v, want %+v", got, tc.want)
			}
		})
	}
}

// The middle row and middle column pass through index 12, so approving the
// full middle cross plus the free space yields row 2, column 2 and nothing
// else, in the stable row-then-column order.
func TestDetectLinesStableOrder(t *testing.T) {
	board := gridBoard()
	approved := approvedSet(10, 11, 13, 14, 2, 7, 17, 22, config.FreeSpaceID)

	want := []models.Line{
		{Type: models.LineRow, Index: 2},
		{Type: models.LineColumn, Index: 2},
	}
	got := DetectLines(board, approved)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DetectLines = %+v, want %+v", got, want)
	}
}

func TestDetectLinesPure(t *testing.T) {
	board := gridBoard()
	approved := approvedSet(0, 1, 2, 3, 4, 6, 18, 24, config.FreeSpaceID)

	first := DetectLines(board, approved)
	second := DetectLines(board, approved)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("DetectLines is not deterministic: %+v vs %+v", first, second)
	}
}

func TestDetectLinesFullBoard(t *testing.T) {
	board := gridBoard()
	approved := approvedSet(config.FreeSpaceID)
	for i := 0; i < config.BoardSize; i++ {
		approved[i] = true
	}

	got := DetectLines(board, approved)
	if len(got) != 12 {
		t.Errorf("Expected 12 lines on a fully approved board, got %d", len(got))
	}
}

// LineContains is written with explicit row/column coordinates. The original
// rules were stated as modular-arithmetic shortcuts; both forms must agree on
// every cell of the grid.
func TestLineContainsMatchesModularShortcuts(t *testing.T) {
	var lines []models.Line
	for i := 0; i < config.BoardDim; i++ {
		lines = append(lines,
			models.Line{Type: models.LineRow, Index: i},
			models.Line{Type: models.LineColumn, Index: i},
		)
	}
	lines = append(lines,
		models.Line{Type: models.LineDiagonal, Direction: models.DiagonalLeft},
		models.Line{Type: models.LineDiagonal, Direction: models.DiagonalRight},
	)

	modular := func(line models.Line, index int) bool {
		switch line.Type {
		case models.LineRow:
			rowStart := line.Index * 5
			return index >= rowStart && index < rowStart+5
		case models.LineColumn:
			return index%5 == line.Index
		case models.LineDiagonal:
			if line.Direction == models.DiagonalLeft {
				return index%6 == 0
			}
			return index%4 == 0 && index > 0 && index < 24
		}
		return false
	}

	for _, line := range lines {
		for index := 0; index < config.BoardSize; index++ {
			got := LineContains(line, index)
			want := modular(line, index)
			if got != want {
				t.Errorf("LineContains(%+v, %d) = %v, modular formula says %v", line, index, got, want)
			}
		}
	}
}

func TestPartOfBingo(t *testing.T) {
	lines := []models.Line{{Type: models.LineRow, Index: 0}}

	for index := 0; index < 5; index++ {
		if !PartOfBingo(lines, index) {
			t.Errorf("Expected index %d to be part of row 0", index)
		}
	}
	if PartOfBingo(lines, 5) {
		t.Error("Index 5 must not be part of row 0")
	}
	if PartOfBingo(nil, 0) {
		t.Error("No lines means no cell is part of a bingo")
	}
}
