package handlers

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bingo/database"
	"bingo/game"
	"bingo/models"
	"bingo/utils"

	"golang.org/x/crypto/bcrypt"
)

// MockApplication holds dependencies for handler tests.
type MockApplication struct {
	db          *database.DatabaseService
	games       *game.Manager
	sessions    *models.SessionStore
	rateLimiter *models.RateLimiter
	storage     models.StorageService
	hub         *Hub
	uploadDir   string
	logger      *slog.Logger
	pinHash     []byte
}

func (a *MockApplication) DB() *database.DatabaseService  { return a.db }
func (a *MockApplication) Games() *game.Manager           { return a.games }
func (a *MockApplication) Sessions() *models.SessionStore { return a.sessions }
func (a *MockApplication) RateLimiter() *models.RateLimiter {
	return a.rateLimiter
}
func (a *MockApplication) Storage() models.StorageService { return a.storage }
func (a *MockApplication) Hub() *Hub                      { return a.hub }
func (a *MockApplication) Logger() *slog.Logger           { return a.logger }
func (a *MockApplication) UploadDir() string              { return a.uploadDir }
func (a *MockApplication) ModPINHash() []byte             { return a.pinHash }

// setupTestApp creates a full application stack with a test database for integration testing.
func setupTestApp(t *testing.T) *MockApplication {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	dbDir, err := os.MkdirTemp("", "bingo_test_db_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir for test DB: %v", err)
	}
	dbPath := filepath.Join(dbDir, "test.db?_journal_mode=WAL&_foreign_keys=on")
	dbService, err := database.InitDB(dbPath, logger)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	uploadDir, err := os.MkdirTemp("", "bingo_test_uploads_*")
	if err != nil {
		t.Fatalf("Failed to create temp upload dir: %v", err)
	}

	pool, err := dbService.ListTasks()
	if err != nil {
		t.Fatalf("Failed to load task pool: %v", err)
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte("1111"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test PIN: %v", err)
	}

	hub := NewHub()
	go hub.Run()

	app := &MockApplication{
		db:          dbService,
		games:       game.NewManager(pool, rand.New(rand.NewSource(7))),
		sessions:    models.NewSessionStore(time.Hour),
		rateLimiter: models.NewRateLimiter(time.Second, 100, time.Hour, 24*time.Hour),
		storage:     &utils.LocalStorage{UploadDir: uploadDir},
		hub:         hub,
		uploadDir:   uploadDir,
		logger:      logger,
		pinHash:     pinHash,
	}

	utils.IPSalt = "test-salt"

	t.Cleanup(func() {
		app.db.DB.Close()
		os.RemoveAll(dbDir)
		os.RemoveAll(uploadDir)
		utils.IPSalt = ""
	})

	return app
}

// registerPlayer creates a profile with a dealt board, bypassing the login handler.
func registerPlayer(t *testing.T, app *MockApplication, id, name string) (models.User, *game.Controller) {
	t.Helper()
	user := models.User{ID: id, Name: name, CreatedAt: utils.GetSQLTime()}
	if err := app.db.CreateProfile(user); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	ctrl, err := ensureSession(app, user)
	if err != nil {
		t.Fatalf("ensureSession failed: %v", err)
	}
	return user, ctrl
}

// newAuthRequest builds a request carrying an already-resolved user, the way
// SessionMiddleware would hand it to a handler.
func newAuthRequest(_ *testing.T, method, path string, body io.Reader, user models.User) *http.Request {
	req := httptest.NewRequest(method, path, body)
	ctx := context.WithValue(req.Context(), CurrentUserKey, user)
	return req.WithContext(ctx)
}

// findBoardCell returns the index of a non-free cell with the wanted proof kind.
func findBoardCell(t *testing.T, ctrl *game.Controller, kind models.ProofKind) int {
	t.Helper()
	for i, task := range ctrl.Board() {
		if task.ID > 0 && task.ProofKind == kind {
			return i
		}
	}
	t.Fatalf("No cell with proof kind %s on the board", kind)
	return -1
}

// textProof satisfies the content markers of every text task in the pool.
const textProof = "Major: Computer Science and Hometown: Boston, we had a great chat"
