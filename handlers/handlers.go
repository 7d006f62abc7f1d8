// bingo/handlers/handlers.go

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"bingo/config"
	"bingo/database"
	"bingo/game"
	"bingo/models"

	"github.com/go-chi/chi/v5/middleware"
)

// App is an interface that defines the dependencies our handlers need.
type App interface {
	DB() *database.DatabaseService
	Games() *game.Manager
	Sessions() *models.SessionStore
	RateLimiter() *models.RateLimiter
	Storage() models.StorageService
	Hub() *Hub
	Logger() *slog.Logger
	UploadDir() string
	ModPINHash() []byte
}

// respondJSON sends a JSON response with a given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}, app App) {
	response, err := json.Marshal(payload)
	if err != nil {
		app.Logger().Error("Failed to marshal JSON payload", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte(`{"error":"Failed to marshal JSON response"}`)); werr != nil {
			app.Logger().Error("Failed to write internal server error response", "error", werr)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		app.Logger().Error("Failed to write JSON response", "error", err)
	}
}

// MakeHandler accepts our generic App interface.
func MakeHandler(app App, fn func(http.ResponseWriter, *http.Request, App)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, app)
	}
}

// NewStructuredLogger returns a chi middleware that logs each request through
// the application's slog logger.
func NewStructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("Request served",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// ensureSession returns the player's live game session, rebuilding it from the
// database when the process has restarted since their board was dealt.
func ensureSession(app App, user models.User) (*game.Controller, error) {
	if ctrl, ok := app.Games().Get(user.ID); ok {
		return ctrl, nil
	}

	layout, err := app.DB().GetBoardLayout(user.ID)
	if err != nil {
		return nil, err
	}
	if len(layout) == config.BoardSize {
		board, err := boardFromLayout(app, layout)
		if err != nil {
			return nil, err
		}
		history, err := app.DB().ListSubmissionsForUser(user.ID)
		if err != nil {
			return nil, err
		}
		return app.Games().Adopt(user, board, history), nil
	}

	// No saved layout: deal a fresh board and persist it.
	ctrl, err := app.Games().Create(user)
	if err != nil {
		return nil, err
	}
	taskIDs := make([]int, 0, config.BoardSize)
	for _, task := range ctrl.Board() {
		taskIDs = append(taskIDs, task.ID)
	}
	if err := app.DB().SaveBoard(user.ID, taskIDs); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// boardFromLayout rebuilds a Board from persisted task IDs.
func boardFromLayout(app App, layout []int) (game.Board, error) {
	pool, err := app.DB().ListTasks()
	if err != nil {
		return nil, err
	}
	byID := make(map[int]models.Task, len(pool))
	for _, task := range pool {
		byID[task.ID] = task
	}

	board := make(game.Board, 0, len(layout))
	for _, id := range layout {
		if id == config.FreeSpaceID {
			board = append(board, game.FreeSpaceTask())
			continue
		}
		task, ok := byID[id]
		if !ok {
			// The pool shrank underneath a saved board. Keep the cell
			// playable with a placeholder label.
			task = models.Task{ID: id, Label: "Retired task", ProofKind: models.ProofText}
		}
		board = append(board, task)
	}
	return board, nil
}

// hydrateSessions makes sure every player with recorded submissions has a live
// session, so the moderation queue is complete after a restart.
func hydrateSessions(app App) error {
	userIDs, err := app.DB().ListSubmissionUserIDs()
	if err != nil {
		return err
	}
	for _, userID := range userIDs {
		if _, ok := app.Games().Get(userID); ok {
			continue
		}
		profile, err := app.DB().GetProfile(userID)
		if err != nil {
			app.Logger().Warn("Skipping submissions with no profile", "user_id", userID, "error", err)
			continue
		}
		if _, err := ensureSession(app, *profile); err != nil {
			return err
		}
	}
	return nil
}
