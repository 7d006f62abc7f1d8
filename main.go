// bingo/main.go
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	mrand "math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bingo/config"
	"bingo/database"
	"bingo/game"
	"bingo/handlers"
	"bingo/models"
	"bingo/utils"

	"golang.org/x/crypto/bcrypt"
)

type Application struct {
	db          *database.DatabaseService
	games       *game.Manager
	sessions    *models.SessionStore
	rateLimiter *models.RateLimiter
	storage     models.StorageService
	hub         *handlers.Hub
	logger      *slog.Logger
	uploadDir   string
	pinHash     []byte
}

// Methods to satisfy the handlers.App interface
func (a *Application) DB() *database.DatabaseService    { return a.db }
func (a *Application) Games() *game.Manager             { return a.games }
func (a *Application) Sessions() *models.SessionStore   { return a.sessions }
func (a *Application) RateLimiter() *models.RateLimiter { return a.rateLimiter }
func (a *Application) Storage() models.StorageService   { return a.storage }
func (a *Application) Hub() *handlers.Hub               { return a.hub }
func (a *Application) Logger() *slog.Logger             { return a.logger }
func (a *Application) UploadDir() string                { return a.uploadDir }
func (a *Application) ModPINHash() []byte               { return a.pinHash }

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	saltBytes := make([]byte, 32)
	if _, err := rand.Read(saltBytes); err != nil {
		logger.Error("Failed to generate IP salt", "error", err)
		os.Exit(1)
	}
	utils.IPSalt = hex.EncodeToString(saltBytes)

	// --- External Configuration ---
	port := os.Getenv("BINGO_PORT")
	if port == "" {
		port = "8080"
	}
	dbPath := os.Getenv("BINGO_DB_PATH")
	if dbPath == "" {
		dbPath = "./bingo.db?_journal_mode=WAL&_foreign_keys=on"
	}
	backupDir := os.Getenv("BINGO_BACKUP_DIR")
	if backupDir == "" {
		backupDir = "./backups"
	}
	utils.BackupDir = backupDir
	if err := os.MkdirAll(utils.BackupDir, 0755); err != nil {
		logger.Error("FATAL: Could not create backup directory", "path", utils.BackupDir, "error", err)
		os.Exit(1)
	}

	rateLimitEvery, err := time.ParseDuration(utils.GetEnv("BINGO_RATE_EVERY", config.DefaultRateLimitEvery))
	if err != nil {
		logger.Warn("Invalid BINGO_RATE_EVERY duration, using default", "value", utils.GetEnv("BINGO_RATE_EVERY", ""), "default", config.DefaultRateLimitEvery)
		rateLimitEvery, _ = time.ParseDuration(config.DefaultRateLimitEvery)
	}
	rateLimitBurst, err := strconv.Atoi(utils.GetEnv("BINGO_RATE_BURST", strconv.Itoa(config.DefaultRateLimitBurst)))
	if err != nil {
		logger.Warn("Invalid BINGO_RATE_BURST integer, using default", "value", utils.GetEnv("BINGO_RATE_BURST", ""), "default", config.DefaultRateLimitBurst)
		rateLimitBurst = config.DefaultRateLimitBurst
	}
	rateLimitPrune, err := time.ParseDuration(utils.GetEnv("BINGO_RATE_PRUNE", config.DefaultRateLimitPrune))
	if err != nil {
		logger.Warn("Invalid BINGO_RATE_PRUNE duration, using default", "value", utils.GetEnv("BINGO_RATE_PRUNE", ""), "default", config.DefaultRateLimitPrune)
		rateLimitPrune, _ = time.ParseDuration(config.DefaultRateLimitPrune)
	}
	rateLimitExpire, err := time.ParseDuration(utils.GetEnv("BINGO_RATE_EXPIRE", config.DefaultRateLimitExpire))
	if err != nil {
		logger.Warn("Invalid BINGO_RATE_EXPIRE duration, using default", "value", utils.GetEnv("BINGO_RATE_EXPIRE", ""), "default", config.DefaultRateLimitExpire)
		rateLimitExpire, _ = time.ParseDuration(config.DefaultRateLimitExpire)
	}
	sessionTTL, err := time.ParseDuration(utils.GetEnv("BINGO_SESSION_TTL", config.DefaultSessionTTL))
	if err != nil {
		logger.Warn("Invalid BINGO_SESSION_TTL duration, using default", "value", utils.GetEnv("BINGO_SESSION_TTL", ""), "default", config.DefaultSessionTTL)
		sessionTTL, _ = time.ParseDuration(config.DefaultSessionTTL)
	}

	modPIN := utils.GetEnv("BINGO_MOD_PIN", config.DefaultModeratorPIN)
	if modPIN == config.DefaultModeratorPIN {
		logger.Warn("Using the default moderator PIN, set BINGO_MOD_PIN in production")
	}
	pinHash, err := bcrypt.GenerateFromPassword([]byte(modPIN), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash moderator PIN", "error", err)
		os.Exit(1)
	}

	dbService, err := database.InitDB(dbPath, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbService.DB.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	taskPool, err := dbService.ListTasks()
	if err != nil {
		logger.Error("Failed to load task pool", "error", err)
		os.Exit(1)
	}

	// --- Storage Service Init ---
	uploadDir := ""
	var storageService models.StorageService
	if utils.GetEnv("BINGO_S3_ENABLED", "false") == "true" {
		endpoint := utils.GetEnv("BINGO_S3_ENDPOINT", "")
		accessKey := utils.GetEnv("BINGO_S3_ACCESS_KEY", "")
		secretKey := utils.GetEnv("BINGO_S3_SECRET_KEY", "")
		bucket := utils.GetEnv("BINGO_S3_BUCKET", "")
		region := utils.GetEnv("BINGO_S3_REGION", "us-east-1")
		publicURL := utils.GetEnv("BINGO_S3_PUBLIC_URL", "")
		useSSL := utils.GetEnv("BINGO_S3_USE_SSL", "true") == "true"

		storageService, err = utils.NewS3Storage(endpoint, accessKey, secretKey, bucket, region, publicURL, useSSL)
		if err != nil {
			logger.Error("Failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		logger.Info("S3 Storage initialized", "endpoint", endpoint, "bucket", bucket)
	} else {
		uploadDir = utils.GetEnv("BINGO_UPLOAD_DIR", "./proofs")
		if err := os.MkdirAll(uploadDir, 0755); err != nil {
			logger.Error("FATAL: Could not create proofs directory", "error", err)
			os.Exit(1)
		}
		storageService = &utils.LocalStorage{UploadDir: uploadDir}
		logger.Info("Local Storage initialized", "dir", uploadDir)
	}

	hub := handlers.NewHub()
	go hub.Run()

	app := &Application{
		db:          dbService,
		games:       game.NewManager(taskPool, mrand.New(mrand.NewSource(time.Now().UnixNano()))),
		sessions:    models.NewSessionStore(sessionTTL),
		rateLimiter: models.NewRateLimiter(rateLimitEvery, rateLimitBurst, rateLimitPrune, rateLimitExpire),
		storage:     storageService,
		hub:         hub,
		logger:      logger,
		uploadDir:   uploadDir,
		pinHash:     pinHash,
	}

	mux := handlers.SetupRouter(app)
	finalHandler := handlers.AppContextMiddleware(app, mux)

	// --- Graceful Shutdown ---
	server := &http.Server{Addr: ":" + port, Handler: finalHandler}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("bingo server started successfully",
		"version", config.AppVersion,
		"address", "http://localhost:"+port,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exiting")
}
