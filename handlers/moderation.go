// bingo/handlers/moderation.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"bingo/game"
	"bingo/models"
)

// HandleQueue lists submissions for moderator review, filtered by status and
// an optional case-insensitive search term.
func HandleQueue(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleQueue")

	// Every player with recorded submissions needs a live session, or the
	// queue would silently shrink after a restart.
	if err := hydrateSessions(app); err != nil {
		logger.Error("Failed to hydrate sessions for queue", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load the moderation queue."}, app)
		return
	}

	statusFilter := r.URL.Query().Get("status")
	if statusFilter == "" {
		statusFilter = string(models.StatusPending)
	}
	searchTerm := r.URL.Query().Get("q")

	queue := app.Games().Queue()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": queue.List(statusFilter, searchTerm),
	}, app)
}

// HandleDecide applies a moderator's approve/reject decision to a pending
// submission and records it in the audit trail.
func HandleDecide(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleDecide")
	moderator, _ := currentUser(r)

	taskID, err := strconv.Atoi(r.FormValue("task_id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid task ID."}, app)
		return
	}
	userID := r.FormValue("user_id")
	decision := models.Status(r.FormValue("decision"))
	if decision != models.StatusApproved && decision != models.StatusRejected {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Decision must be 'approved' or 'rejected'."}, app)
		return
	}

	profile, err := app.DB().GetProfile(userID)
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Player not found."}, app)
		return
	}
	ctrl, err := ensureSession(app, *profile)
	if err != nil {
		logger.Error("Failed to load player session", "user_id", userID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load the player's session."}, app)
		return
	}

	sub := ctrl.Ledger().Latest(taskID, userID)
	if sub == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Submission not found."}, app)
		return
	}

	if err := app.Games().Decide(taskID, userID, decision); err != nil {
		switch err {
		case game.ErrNotFound:
			respondJSON(w, http.StatusNotFound, map[string]string{"error": "Submission not found."}, app)
		case game.ErrInvalidTransition:
			respondJSON(w, http.StatusConflict, map[string]string{"error": "Submission has already been decided."}, app)
		default:
			logger.Error("Decision failed", "task_id", taskID, "user_id", userID, "error", err)
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to apply decision."}, app)
		}
		return
	}

	// The live transition already won, so losing the row update only means
	// the record never hit the database (e.g. a seeded free space).
	won, err := app.DB().UpdateSubmissionStatus(sub.ID, decision)
	if err != nil {
		logger.Error("Failed to persist decision", "submission_id", sub.ID, "error", err)
	} else if !won {
		logger.Warn("Decision not persisted, no pending row matched", "submission_id", sub.ID)
	}

	details := fmt.Sprintf("task %d for %s", taskID, sub.UserName)
	if err := app.DB().LogModAction(moderator.ID, string(decision), sub.ID, details); err != nil {
		logger.Error("Failed to log mod action", "error", err)
	}

	app.Hub().Notify(Event{Type: EventStatusChanged, Submission: sub, Lines: ctrl.Lines()})
	logger.Info("Submission decided", "submission_id", sub.ID, "decision", decision, "moderator_id", moderator.ID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"submission": sub,
		"lines":      ctrl.Lines(),
	}, app)
}

// HandleSubmissionHistory returns the persisted submission archive, filtered
// like the queue but read straight from the database. Unlike the live queue
// it includes superseded rejections and needs no session hydration.
func HandleSubmissionHistory(w http.ResponseWriter, r *http.Request, app App) {
	statusFilter := r.URL.Query().Get("status")
	searchTerm := r.URL.Query().Get("q")

	subs, err := app.DB().ListSubmissions(statusFilter, searchTerm)
	if err != nil {
		app.Logger().Error("Failed to list submission history", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load submission history."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs}, app)
}

// HandleModLog returns the most recent moderation audit entries.
func HandleModLog(w http.ResponseWriter, r *http.Request, app App) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	actions, err := app.DB().ListModActions(limit)
	if err != nil {
		app.Logger().Error("Failed to list mod actions", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve log."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"actions": actions}, app)
}

// HandleDatabaseBackup triggers an online VACUUM INTO backup.
func HandleDatabaseBackup(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleDatabaseBackup")
	moderator, _ := currentUser(r)

	backupPath, err := app.DB().BackupDatabase()
	if err != nil {
		logger.Error("Failed to create database backup", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create database backup: " + err.Error()}, app)
		return
	}
	logger.Info("Database backup created successfully", "path", backupPath)

	if err := app.DB().LogModAction(moderator.ID, "database_backup", "", backupPath); err != nil {
		logger.Error("Failed to log backup action", "error", err)
	}
	respondJSON(w, http.StatusOK, map[string]string{"backupPath": backupPath}, app)
}
