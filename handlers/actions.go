// bingo/handlers/actions.go
package handlers

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bingo/config"
	"bingo/game"
	"bingo/models"
	"bingo/utils"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "golang.org/x/image/webp" // Import webp decoder
)

// HandleLogin registers a player (or, with the right PIN, a moderator) and
// issues a session cookie.
func HandleLogin(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleLogin")

	ip := utils.GetIPAddress(r)
	if !app.RateLimiter().GetLimiter(ip).Allow() {
		logger.Warn("Rate limit exceeded", "ip_hash", utils.HashIP(ip))
		respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Rate limit exceeded. Please wait a moment."}, app)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if len(name) < config.MinNameLen {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Name must be at least %d characters.", config.MinNameLen)}, app)
		return
	}
	if len(name) > config.MaxNameLen {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Name exceeds the maximum length."}, app)
		return
	}

	isModerator := false
	if pin := r.FormValue("pin"); pin != "" {
		err := bcrypt.CompareHashAndPassword(app.ModPINHash(), []byte(pin))
		if err != nil {
			if err != bcrypt.ErrMismatchedHashAndPassword {
				logger.Error("Bcrypt error comparing moderator PIN", "error", err)
			}
			logger.Warn("Failed moderator login", "ip_hash", utils.HashIP(ip))
			respondJSON(w, http.StatusForbidden, map[string]string{"error": "Invalid moderator PIN."}, app)
			return
		}
		isModerator = true
	}

	user := models.User{
		ID:          uuid.New().String(),
		Name:        name,
		IsModerator: isModerator,
		CreatedAt:   utils.GetSQLTime(),
	}
	if err := app.DB().CreateProfile(user); err != nil {
		logger.Error("Failed to create profile", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error creating profile."}, app)
		return
	}

	// Moderators review, they don't play. Only players get a board.
	if !isModerator {
		if _, err := ensureSession(app, user); err != nil {
			logger.Error("Failed to deal a board", "user_id", user.ID, "error", err)
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to set up your board."}, app)
			return
		}
	}

	token := app.Sessions().Create(user)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("Player signed in", "user_id", user.ID, "moderator", isModerator)
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user}, app)
}

// HandleLogout invalidates the session cookie.
func HandleLogout(w http.ResponseWriter, r *http.Request, app App) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		app.Sessions().Delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"success": "Signed out."}, app)
}

// HandleTasks returns the full task pool.
func HandleTasks(w http.ResponseWriter, r *http.Request, app App) {
	tasks, err := app.DB().ListTasks()
	if err != nil {
		app.Logger().Error("Failed to list tasks", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error loading tasks."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks}, app)
}

// HandleBoard returns the signed-in player's board with per-cell state and
// any completed lines.
func HandleBoard(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleBoard")
	user, ok := currentUser(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required."}, app)
		return
	}

	ctrl, err := ensureSession(app, user)
	if err != nil {
		logger.Error("Failed to load session", "user_id", user.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load your board."}, app)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cells": ctrl.Cells(),
		"lines": ctrl.Lines(),
	}, app)
}

// HandleSubmit records a proof submission for one board cell.
func HandleSubmit(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleSubmit")
	user, ok := currentUser(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required."}, app)
		return
	}

	ip := utils.GetIPAddress(r)
	if !app.RateLimiter().GetLimiter(ip).Allow() {
		logger.Warn("Rate limit exceeded", "ip_hash", utils.HashIP(ip))
		respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Rate limit exceeded. Please wait a moment."}, app)
		return
	}

	if err := r.ParseMultipartForm(config.MaxProofFileSize + 1024); err != nil {
		logger.Warn("Form parsing error", "error", err)
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Form parsing error: " + err.Error()}, app)
		return
	}

	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid cell index."}, app)
		return
	}
	proof := r.FormValue("proof")
	if len(proof) > config.MaxProofLen {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Proof exceeds the maximum length."}, app)
		return
	}

	ctrl, err := ensureSession(app, user)
	if err != nil {
		logger.Error("Failed to load session", "user_id", user.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load your board."}, app)
		return
	}

	data, proofFile, err := readProofFile(r, logger)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()}, app)
		return
	}

	// Decode before touching the ledger so a corrupt upload leaves no record.
	var img image.Image
	if proofFile != nil && strings.HasPrefix(proofFile.ContentType, "image/") && proofFile.Size <= config.MaxProofFileSize {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			logger.Warn("Proof image failed to decode", "detected_type", proofFile.ContentType, "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "The uploaded file is not a valid image."}, app)
			return
		}
	}

	sub, err := ctrl.Submit(index, proof, proofFile)
	if err != nil {
		if ve, ok := game.AsValidationError(err); ok {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "reason": string(ve.Reason)}, app)
			return
		}
		switch err {
		case game.ErrDuplicateActive:
			respondJSON(w, http.StatusConflict, map[string]string{"error": "This task already has an active submission."}, app)
		case game.ErrIndexOutOfRange:
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Cell index is out of range."}, app)
		default:
			logger.Error("Submit failed", "user_id", user.ID, "index", index, "error", err)
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to record submission."}, app)
		}
		return
	}

	// From here on a failure must unwind the ledger entry, or the cell
	// stays blocked by a record that was never stored.
	if img != nil {
		filePath, thumbPath, err := saveProofImage(app, logger, img, proofFile.ContentType)
		if err != nil {
			ctrl.Discard(sub.ID)
			logger.Error("Failed to store proof image", "submission_id", sub.ID, "error", err)
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to store proof image."}, app)
			return
		}
		sub.FilePath = filePath
		sub.ThumbnailPath = thumbPath
	}

	if err := app.DB().InsertSubmission(sub); err != nil {
		ctrl.Discard(sub.ID)
		logger.Error("Failed to persist submission", "submission_id", sub.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error saving submission."}, app)
		return
	}

	app.Hub().Notify(Event{Type: EventSubmissionCreated, Submission: sub, Lines: ctrl.Lines()})
	logger.Info("New submission", "submission_id", sub.ID, "task_id", sub.TaskID, "user_id", user.ID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"submission": sub,
		"lines":      ctrl.Lines(),
	}, app)
}

// HandleMySubmissions returns the signed-in player's submission history.
func HandleMySubmissions(w http.ResponseWriter, r *http.Request, app App) {
	user, ok := currentUser(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required."}, app)
		return
	}

	ctrl, err := ensureSession(app, user)
	if err != nil {
		app.Logger().Error("Failed to load session", "user_id", user.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load your submissions."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"submissions": ctrl.Ledger().All()}, app)
}

// --- Internal Helper Functions ---

// readProofFile reads and sniffs an uploaded proof image, if any. The file is
// read one byte past the size limit so the validator can tell an at-limit
// upload from an oversized one.
func readProofFile(r *http.Request, logger *slog.Logger) ([]byte, *models.ProofFile, error) {
	file, header, err := r.FormFile("proof_image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("could not get form file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Error("Failed to close upload file", "error", err)
		}
	}()

	limitedReader := &io.LimitedReader{R: file, N: config.MaxProofFileSize + 1}
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("uploaded file is empty")
	}

	// Magic byte sniffing; the client-declared type is not trusted.
	meta := &models.ProofFile{
		Name:        header.Filename,
		Size:        int64(len(data)),
		ContentType: http.DetectContentType(data),
	}
	return data, meta, nil
}

// saveProofImage re-encodes the decoded image and a thumbnail into storage.
// A thumbnail failure is logged but does not fail the submission.
func saveProofImage(app App, logger *slog.Logger, img image.Image, contentType string) (string, string, error) {
	outputFormat := imaging.JPEG
	ext := "jpeg"
	mime := "image/jpeg"
	if contentType == "image/png" {
		outputFormat = imaging.PNG
		ext = "png"
		mime = "image/png"
	}

	var buf bytes.Buffer
	var err error
	if outputFormat == imaging.PNG {
		err = imaging.Encode(&buf, img, imaging.PNG)
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90))
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to encode proof image: %w", err)
	}

	baseName := uuid.New().String()
	mainPath, err := app.Storage().SaveFile(fmt.Sprintf("%s.%s", baseName, ext), buf.Bytes(), mime)
	if err != nil {
		return "", "", fmt.Errorf("failed to store proof image: %w", err)
	}

	thumb := imaging.Fit(img, config.ThumbnailWidth, config.ThumbnailHeight, imaging.Lanczos)
	var thumbBuf bytes.Buffer
	if err := imaging.Encode(&thumbBuf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		logger.Error("Failed to encode thumbnail", "error", err)
		return mainPath, "", nil
	}
	thumbPath, err := app.Storage().SaveFile(baseName+"_thumb.jpeg", thumbBuf.Bytes(), "image/jpeg")
	if err != nil {
		logger.Error("Failed to store thumbnail", "error", err)
		return mainPath, "", nil
	}

	return mainPath, thumbPath, nil
}
