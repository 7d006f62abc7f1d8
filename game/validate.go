// bingo/game/validate.go
package game

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"bingo/config"
	"bingo/models"
)

// contentMarkers maps a substring of a task label to the literal marker a
// text proof must contain. These are content heuristics carried over from the
// event's review workflow, not general parsing; the marker may appear
// anywhere in the proof.
var contentMarkers = []struct {
	labelHint string
	marker    string
	hint      string
}{
	{"major", "major:", `Please include the person's major (Format: "Major: Computer Science")`},
	{"hometown", "hometown:", `Please include the hometown (Format: "Hometown: City, State")`},
}

// ValidateProof checks a raw proof payload against a task's required proof
// kind. It is deterministic, has no side effects and never touches the
// ledger; file may be nil for text proofs.
func ValidateProof(task models.Task, proof string, file *models.ProofFile) error {
	switch task.ProofKind {
	case models.ProofText:
		return validateTextProof(task, proof)
	case models.ProofPhoto, models.ProofScreenshot:
		return validateFileProof(file)
	}
	return nil
}

func validateTextProof(task models.Task, proof string) error {
	// Characters, not bytes: a nine-rune answer in any script is too short.
	if utf8.RuneCountInString(proof) < config.MinTextProofLen {
		return &ValidationError{
			Reason:  TooShort,
			Message: fmt.Sprintf("please provide a more detailed answer (at least %d characters)", config.MinTextProofLen),
		}
	}

	label := strings.ToLower(task.Label)
	lowered := strings.ToLower(proof)
	for _, m := range contentMarkers {
		if strings.Contains(label, m.labelHint) && !strings.Contains(lowered, m.marker) {
			return &ValidationError{Reason: MissingField, Message: m.hint}
		}
	}
	return nil
}

func validateFileProof(file *models.ProofFile) error {
	if file == nil {
		return &ValidationError{Reason: MissingFile, Message: "please upload an image"}
	}
	if !strings.HasPrefix(file.ContentType, "image/") {
		return &ValidationError{Reason: InvalidType, Message: "please upload a valid image file"}
	}
	if file.Size > config.MaxProofFileSize {
		return &ValidationError{
			Reason:  TooLarge,
			Message: fmt.Sprintf("file size must be less than %dMB", config.MaxProofFileSize/1024/1024),
		}
	}
	return nil
}
