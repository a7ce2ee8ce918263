package store

import (
	"database/sql"

	"memelord/internal/logging"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS memories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	embedding BLOB,
	category TEXT NOT NULL,
	weight REAL NOT NULL DEFAULT 1.0,
	initial_cost INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	last_retrieved INTEGER,
	retrieval_count INTEGER NOT NULL DEFAULT 0,
	source_task INTEGER
);
CREATE INDEX IF NOT EXISTS idx_memories_weight ON memories(weight);
CREATE INDEX IF NOT EXISTS idx_memories_pending ON memories(embedding) WHERE embedding IS NULL;

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	description TEXT NOT NULL,
	description_embedding BLOB,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	tool_calls INTEGER NOT NULL DEFAULT 0,
	errors INTEGER NOT NULL DEFAULT 0,
	user_corrections INTEGER NOT NULL DEFAULT 0,
	completed INTEGER NOT NULL DEFAULT 0,
	task_score REAL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_tasks_session ON tasks(session_id);
CREATE INDEX IF NOT EXISTS idx_tasks_finished ON tasks(finished_at);

CREATE TABLE IF NOT EXISTS memory_retrievals (
	memory_id INTEGER NOT NULL,
	task_id INTEGER NOT NULL,
	similarity REAL NOT NULL,
	self_report INTEGER,
	credit REAL,
	PRIMARY KEY (memory_id, task_id)
);
CREATE INDEX IF NOT EXISTS idx_retrievals_task ON memory_retrievals(task_id);

CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// initSchema creates the four relations if missing (idempotent) and repairs
// any embedding whose length is not exactly dimensions*4 bytes (legacy
// truncation included), logging the repair count. Repaired memories become
// pending again.
func initSchema(db *sql.DB, dimensions int) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return newErr(ErrSchemaMismatch, "failed to create schema", err)
	}
	return repairTruncatedEmbeddings(db, dimensions)
}

func repairTruncatedEmbeddings(db *sql.DB, dimensions int) error {
	want := dimensions * 4
	res, err := db.Exec(
		`UPDATE memories SET embedding = NULL
		 WHERE embedding IS NOT NULL AND LENGTH(embedding) != ?`,
		want,
	)
	if err != nil {
		return newErr(ErrSchemaMismatch, "failed to repair truncated embeddings", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logging.Get(logging.CategoryStore).Warn("repaired %d memories with wrong-length embeddings (became pending)", n)
	} else {
		logging.StoreDebug("embedding-length repair: no truncated embeddings found")
	}
	return nil
}
