// bingo/models/models.go
package models

import (
	"time"
)

// --- Core Data Models ---

// ProofKind is the evidence format a task demands.
type ProofKind string

const (
	ProofPhoto      ProofKind = "photo"
	ProofText       ProofKind = "text"
	ProofScreenshot ProofKind = "screenshot"
)

// Valid reports whether k is one of the three known proof kinds.
func (k ProofKind) Valid() bool {
	return k == ProofPhoto || k == ProofText || k == ProofScreenshot
}

// Status is the lifecycle state of a submission. Pending is the only
// non-terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Task struct {
	ID          int       `json:"id"`
	Label       string    `json:"label"`
	ProofKind   ProofKind `json:"proofKind"`
	Description string    `json:"description"`
}

type Submission struct {
	ID            string    `json:"id"`
	TaskID        int       `json:"taskId"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	Proof         string    `json:"proof"`
	FilePath      string    `json:"filePath,omitempty"`
	ThumbnailPath string    `json:"thumbnailPath,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProofFile carries the metadata of an uploaded proof image, as declared by
// the upload pipeline after magic-byte sniffing.
type ProofFile struct {
	Name        string
	Size        int64
	ContentType string
}

// LineType distinguishes the three kinds of completed bingo lines.
type LineType string

const (
	LineRow      LineType = "row"
	LineColumn   LineType = "column"
	LineDiagonal LineType = "diagonal"
)

// Direction identifies a diagonal: "left" runs top-left to bottom-right,
// "right" runs top-right to bottom-left.
type Direction string

const (
	DiagonalLeft  Direction = "left"
	DiagonalRight Direction = "right"
)

// Line is a completed row, column or diagonal. Index is only meaningful for
// rows and columns, Direction only for diagonals.
type Line struct {
	Type      LineType  `json:"type"`
	Index     int       `json:"index"`
	Direction Direction `json:"direction,omitempty"`
}

// --- Identity & Moderation Models ---

type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsModerator bool      `json:"isModerator"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ModAction struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	ModeratorID string    `json:"moderatorId"`
	Action      string    `json:"action"`
	TargetID    string    `json:"targetId"`
	Details     string    `json:"details"`
}

// --- External Collaborator Interfaces ---

// StorageService abstracts proof file storage (local disk or S3).
type StorageService interface {
	SaveFile(filename string, data []byte, contentType string) (string, error)
	DeleteFile(path string) error
}
