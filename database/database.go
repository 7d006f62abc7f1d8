// bingo/database/database.go
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bingo/models"
	"bingo/utils"

	_ "github.com/mattn/go-sqlite3"
)

// DatabaseService is the central struct for all database operations.
type DatabaseService struct {
	DB        *sql.DB
	logger    *slog.Logger
	dsn       string
	taskCache []models.Task
	cacheMu   sync.RWMutex
}

// InitDB connects to the database, runs migrations, and seeds the task pool.
func InitDB(dataSourceName string, logger *slog.Logger) (*DatabaseService, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Run the base schema to ensure all tables exist.
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to execute base schema: %w", err)
	}

	// Run versioned migrations
	if err := runMigrations(db, logger); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	// Seed the task pool if empty
	var taskCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&taskCount); err == nil && taskCount == 0 {
		tx, err := db.Begin()
		if err != nil {
			return nil, err
		}
		for _, task := range DefaultTaskPool {
			if _, err := tx.Exec("INSERT INTO tasks (id, label, proof_kind, description) VALUES (?, ?, ?, ?)",
				task.ID, task.Label, string(task.ProofKind), task.Description); err != nil {
				if rerr := tx.Rollback(); rerr != nil {
					logger.Error("Failed to rollback task seeding", "error", rerr)
				}
				return nil, fmt.Errorf("failed to seed tasks: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit task seeding: %w", err)
		}
		logger.Info("Seeded default task pool", "count", len(DefaultTaskPool))
	}

	logger.Info("Database initialized and cache ready.")

	return &DatabaseService{
		DB:     db,
		logger: logger,
		dsn:    dataSourceName,
	}, nil
}

// BackupDatabase performs an online backup of the live SQLite database using VACUUM INTO.
func (ds *DatabaseService) BackupDatabase() (string, error) {
	if utils.BackupDir == "" {
		return "", fmt.Errorf("backup directory is not configured")
	}
	if err := os.MkdirAll(utils.BackupDir, 0755); err != nil {
		return "", fmt.Errorf("could not create backup directory %s: %w", utils.BackupDir, err)
	}

	timestamp := time.Now().UTC().Format("2006-01-02_15-04-05")
	backupFilename := fmt.Sprintf("bingo_backup_%s.db", timestamp)
	backupPath := filepath.Join(utils.BackupDir, backupFilename)

	ds.logger.Info("Starting database backup", "destination", backupPath)

	_, err := ds.DB.Exec("VACUUM INTO ?", backupPath)
	if err != nil {
		// If backup fails, attempt to remove the potentially incomplete file
		if removeErr := os.Remove(backupPath); removeErr != nil && !os.IsNotExist(removeErr) {
			ds.logger.Error("Failed to remove incomplete backup file", "path", backupPath, "error", removeErr)
		}
		return "", fmt.Errorf("VACUUM INTO command failed: %w", err)
	}

	return backupPath, nil
}

// runMigrations applies all un-applied migrations.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	var latestVersion uint
	err := db.QueryRow("SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1").Scan(&latestVersion)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("could not get db version: %w", err)
	}

	logger.Info("Current database schema version", "version", latestVersion)

	for _, m := range allMigrations {
		if m.Version > latestVersion {
			logger.Info("Applying migration", "version", m.Version)
			tx, err := db.Begin()
			if err != nil {
				return err
			}

			if _, err := tx.Exec(m.Query); err != nil {
				if rerr := tx.Rollback(); rerr != nil {
					logger.Error("Failed to rollback migration", "version", m.Version, "error", rerr)
				}
				return fmt.Errorf("failed to apply migration v%d: %w", m.Version, err)
			}
			if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)", m.Version, utils.GetSQLTime()); err != nil {
				if rerr := tx.Rollback(); rerr != nil {
					logger.Error("Failed to rollback migration record", "version", m.Version, "error", rerr)
				}
				return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
			}

			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit migration v%d: %w", m.Version, err)
			}
			logger.Info("Successfully applied migration", "version", m.Version)
		}
	}
	return nil
}

// ListTasks returns the full task pool, using the instance's cache. The pool
// is read on every board generation and never changes at runtime.
func (ds *DatabaseService) ListTasks() ([]models.Task, error) {
	ds.cacheMu.RLock()
	cached := ds.taskCache
	ds.cacheMu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	rows, err := ds.DB.Query("SELECT id, label, proof_kind, description FROM tasks ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in ListTasks", "error", err)
		}
	}()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Label, &t.ProofKind, &t.Description); err != nil {
			ds.logger.Error("Failed to scan task row", "error", err)
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ds.cacheMu.Lock()
	ds.taskCache = tasks
	ds.cacheMu.Unlock()
	return tasks, nil
}

// CreateProfile inserts a new player profile.
func (ds *DatabaseService) CreateProfile(user models.User) error {
	_, err := ds.DB.Exec("INSERT INTO profiles (id, name, is_moderator, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Name, user.IsModerator, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// GetProfile fetches a player profile by ID.
func (ds *DatabaseService) GetProfile(userID string) (*models.User, error) {
	var user models.User
	err := ds.DB.QueryRow("SELECT id, name, is_moderator, created_at FROM profiles WHERE id = ?", userID).Scan(
		&user.ID, &user.Name, &user.IsModerator, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile '%s' not found", userID)
		}
		return nil, fmt.Errorf("db error getting profile '%s': %w", userID, err)
	}
	return &user, nil
}

// InsertSubmission records a new proof submission.
func (ds *DatabaseService) InsertSubmission(sub *models.Submission) error {
	_, err := ds.DB.Exec(`
		INSERT INTO submissions (id, task_id, user_id, user_name, proof, file_path, thumbnail_path, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.TaskID, sub.UserID, sub.UserName, sub.Proof, sub.FilePath, sub.ThumbnailPath,
		string(sub.Status), sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// UpdateSubmissionStatus moves a pending submission to a terminal status. The
// WHERE clause guards against racing moderators deciding the same record:
// only one update can win, the loser sees zero affected rows.
func (ds *DatabaseService) UpdateSubmissionStatus(submissionID string, status models.Status) (bool, error) {
	res, err := ds.DB.Exec("UPDATE submissions SET status = ?, updated_at = ? WHERE id = ? AND status = 'pending'",
		string(status), utils.GetSQLTime(), submissionID)
	if err != nil {
		return false, fmt.Errorf("failed to update submission status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListSubmissionsForUser returns a player's full submission history, oldest
// first, for session hydration.
func (ds *DatabaseService) ListSubmissionsForUser(userID string) ([]models.Submission, error) {
	rows, err := ds.DB.Query(`
		SELECT id, task_id, user_id, user_name, proof, file_path, thumbnail_path, status, created_at, updated_at
		FROM submissions WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in ListSubmissionsForUser", "error", err)
		}
	}()

	return ds.scanSubmissions(rows)
}

// ListSubmissions returns submissions for the moderation queue, newest first,
// optionally filtered by status and a case-insensitive search term.
func (ds *DatabaseService) ListSubmissions(statusFilter, searchTerm string) ([]models.Submission, error) {
	query := `
		SELECT id, task_id, user_id, user_name, proof, file_path, thumbnail_path, status, created_at, updated_at
		FROM submissions WHERE 1=1`
	var args []interface{}

	if statusFilter != "" && statusFilter != "all" {
		query += " AND status = ?"
		args = append(args, statusFilter)
	}
	if searchTerm != "" {
		query += " AND (LOWER(user_name) LIKE ? OR LOWER(proof) LIKE ?)"
		pattern := "%" + strings.ToLower(searchTerm) + "%"
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := ds.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in ListSubmissions", "error", err)
		}
	}()

	return ds.scanSubmissions(rows)
}

// ListSubmissionUserIDs returns the distinct players with at least one
// submission on record. Used to rebuild live sessions after a restart.
func (ds *DatabaseService) ListSubmissionUserIDs() ([]string, error) {
	rows, err := ds.DB.Query("SELECT DISTINCT user_id FROM submissions")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in ListSubmissionUserIDs", "error", err)
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			ds.logger.Error("Failed to scan user id row", "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveBoard stores a player's 25-cell layout, replacing any previous one.
func (ds *DatabaseService) SaveBoard(userID string, taskIDs []int) error {
	tx, err := ds.DB.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && rerr != sql.ErrTxDone {
			ds.logger.Error("Failed to rollback transaction in SaveBoard", "error", rerr)
		}
	}()

	if _, err := tx.Exec("DELETE FROM board_cells WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear previous board: %w", err)
	}
	for position, taskID := range taskIDs {
		if _, err := tx.Exec("INSERT INTO board_cells (user_id, position, task_id) VALUES (?, ?, ?)",
			userID, position, taskID); err != nil {
			return fmt.Errorf("failed to save board cell %d: %w", position, err)
		}
	}
	return tx.Commit()
}

// GetBoardLayout returns a player's saved task IDs ordered by position, or an
// empty slice when no board has been saved yet.
func (ds *DatabaseService) GetBoardLayout(userID string) ([]int, error) {
	rows, err := ds.DB.Query("SELECT task_id FROM board_cells WHERE user_id = ? ORDER BY position ASC", userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in GetBoardLayout", "error", err)
		}
	}()

	var taskIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		taskIDs = append(taskIDs, id)
	}
	return taskIDs, rows.Err()
}

// LogModAction records a moderator's decision to the audit trail.
func (ds *DatabaseService) LogModAction(moderatorID, action, targetID, details string) error {
	_, err := ds.DB.Exec("INSERT INTO mod_actions (timestamp, moderator_id, action, target_id, details) VALUES (?, ?, ?, ?, ?)",
		utils.GetSQLTime(), moderatorID, action, targetID, details)
	if err != nil {
		return fmt.Errorf("failed to log mod action: %w", err)
	}
	return nil
}

// ListModActions returns the most recent audit entries, newest first.
func (ds *DatabaseService) ListModActions(limit int) ([]models.ModAction, error) {
	rows, err := ds.DB.Query("SELECT id, timestamp, moderator_id, action, target_id, details FROM mod_actions ORDER BY timestamp DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in ListModActions", "error", err)
		}
	}()

	var actions []models.ModAction
	for rows.Next() {
		var a models.ModAction
		if err := rows.Scan(&a.ID, &a.Timestamp, &a.ModeratorID, &a.Action, &a.TargetID, &a.Details); err != nil {
			ds.logger.Error("Failed to scan mod action row", "error", err)
			continue
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// --- Internal Helpers ---

func (ds *DatabaseService) scanSubmissions(rows *sql.Rows) ([]models.Submission, error) {
	var subs []models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.TaskID, &s.UserID, &s.UserName, &s.Proof, &s.FilePath,
			&s.ThumbnailPath, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			ds.logger.Error("Failed to scan submission row", "error", err)
			continue
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
