package database

const schema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME
);
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	is_moderator BOOLEAN DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY,
	label TEXT NOT NULL,
	proof_kind TEXT NOT NULL, -- 'photo', 'text' or 'screenshot'
	description TEXT DEFAULT ''
);
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	task_id INTEGER NOT NULL,
	user_id TEXT NOT NULL,
	user_name TEXT NOT NULL,
	proof TEXT NOT NULL,
	file_path TEXT DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (task_id) REFERENCES tasks(id),
	FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
);
-- Each player keeps the same 25-cell layout across sessions.
CREATE TABLE IF NOT EXISTS board_cells (
	user_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	task_id INTEGER NOT NULL,
	PRIMARY KEY (user_id, position),
	FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS mod_actions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME NOT NULL,
	moderator_id TEXT NOT NULL,
	action TEXT NOT NULL,
	target_id TEXT,
	details TEXT
);

-- --- INDEXES ---
CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user_id);
CREATE INDEX IF NOT EXISTS idx_submissions_task_user ON submissions(task_id, user_id);
CREATE INDEX IF NOT EXISTS idx_board_cells_user ON board_cells(user_id);
CREATE INDEX IF NOT EXISTS idx_mod_actions_time ON mod_actions(timestamp DESC);
`
