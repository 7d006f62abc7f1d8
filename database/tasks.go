// bingo/database/tasks.go
package database

import "bingo/models"

// DefaultTaskPool seeds the tasks table on first boot. The board generator
// draws 24 of these per player, so the pool must always hold at least 24.
var DefaultTaskPool = []models.Task{
	{ID: 1, Label: "Introduce yourself to someone new", ProofKind: models.ProofPhoto, Description: "Submit a selfie of you and the person"},
	{ID: 2, Label: "Find someone from a different major", ProofKind: models.ProofText, Description: "Submit their name and their major"},
	{ID: 3, Label: "Attend a workshop", ProofKind: models.ProofPhoto, Description: "Submit a picture of you in the workshop room"},
	{ID: 4, Label: "Find someone wearing the same color", ProofKind: models.ProofPhoto, Description: "Submit a selfie with your color twin"},
	{ID: 5, Label: "Follow ECS Diversity Summit socials", ProofKind: models.ProofScreenshot, Description: "Submit screenshot proof"},
	{ID: 6, Label: "Visit the career fair booth", ProofKind: models.ProofPhoto, Description: "Take a photo at any company booth"},
	{ID: 7, Label: "Collect 3 business cards", ProofKind: models.ProofPhoto, Description: "Photo of the collected cards"},
	{ID: 8, Label: "Ask a speaker a question", ProofKind: models.ProofText, Description: "Write down your question and the speaker's name"},
	{ID: 9, Label: "Find an alumni", ProofKind: models.ProofText, Description: "Submit their name and graduation year"},
	{ID: 10, Label: "Attend a networking session", ProofKind: models.ProofPhoto, Description: "Photo of you at the networking event"},
	{ID: 11, Label: "Share on LinkedIn", ProofKind: models.ProofScreenshot, Description: "Screenshot of your LinkedIn post"},
	{ID: 12, Label: "Join a student organization", ProofKind: models.ProofPhoto, Description: "Photo with organization members"},
	{ID: 13, Label: "Find a mentor", ProofKind: models.ProofText, Description: "Submit their name and role"},
	{ID: 14, Label: "Learn about research opportunities", ProofKind: models.ProofText, Description: "Write the research topic"},
	{ID: 15, Label: "Exchange contact info", ProofKind: models.ProofScreenshot, Description: "Screenshot of exchanged details"},
	{ID: 16, Label: "Attend a panel discussion", ProofKind: models.ProofPhoto, Description: "Photo of the panel"},
	{ID: 17, Label: "Find someone from your hometown", ProofKind: models.ProofText, Description: "Submit their name and hometown"},
	{ID: 18, Label: "Learn about an internship", ProofKind: models.ProofText, Description: "Write company and position"},
	{ID: 19, Label: "Take a group photo", ProofKind: models.ProofPhoto, Description: "Submit a group photo"},
	{ID: 20, Label: "Visit the tech showcase", ProofKind: models.ProofPhoto, Description: "Photo of an interesting project"},
	{ID: 21, Label: "Learn a new technology", ProofKind: models.ProofText, Description: "Write what you learned"},
	{ID: 22, Label: "Meet someone from industry", ProofKind: models.ProofText, Description: "Submit their name and company"},
	{ID: 23, Label: "Attend the opening ceremony", ProofKind: models.ProofPhoto, Description: "Photo from the ceremony"},
	{ID: 24, Label: "Get career advice", ProofKind: models.ProofText, Description: "Write down the key advice"},
	{ID: 25, Label: "Thank a volunteer", ProofKind: models.ProofPhoto, Description: "Photo with a summit volunteer"},
	{ID: 26, Label: "Visit the sponsor wall", ProofKind: models.ProofPhoto, Description: "Photo in front of the sponsor wall"},
	{ID: 27, Label: "Find someone who speaks another language", ProofKind: models.ProofText, Description: "Submit their name and the language"},
	{ID: 28, Label: "Post a summit story", ProofKind: models.ProofScreenshot, Description: "Screenshot of your story"},
	{ID: 29, Label: "Attend the closing keynote", ProofKind: models.ProofPhoto, Description: "Photo from the keynote"},
	{ID: 30, Label: "Recommend a session to someone", ProofKind: models.ProofText, Description: "Write the session and who you told"},
}
