// bingo/database/migrations.go
package database

// migration represents a single database schema migration.
type migration struct {
	Version uint
	Query   string
}

// allMigrations holds all schema changes in order.
var allMigrations = []migration{
	{
		Version: 1,
		Query: `
-- Add a thumbnail path for image proofs
ALTER TABLE submissions ADD COLUMN thumbnail_path TEXT DEFAULT '';

-- The moderation queue filters on status constantly
CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status);
		`,
	},
	// Future migrations will be added here, e.g.:
	// {
	// 	Version: 2,
	// 	Query: `ALTER TABLE tasks ADD COLUMN retired BOOLEAN DEFAULT 0;`,
	// },
}
