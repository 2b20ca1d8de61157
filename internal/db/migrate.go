package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Statements are idempotent so the full
// list re-runs on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS diagrams (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS workstreams (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		diagram_id  TEXT NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		color       TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_workstreams_diagram
		ON workstreams(diagram_id, order_index)`,

	`CREATE TABLE IF NOT EXISTS milestones (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		workstream_id INTEGER NOT NULL REFERENCES workstreams(id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		deadline      TEXT,
		status        TEXT NOT NULL DEFAULT 'not_started'
		              CHECK(status IN ('not_started','in_progress','completed')),
		order_index   INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_milestones_workstream
		ON milestones(workstream_id, order_index)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		workstream_id       INTEGER NOT NULL REFERENCES workstreams(id) ON DELETE CASCADE,
		source_milestone_id INTEGER NOT NULL REFERENCES milestones(id) ON DELETE CASCADE
	)`,

	// One row per activity→milestone link. supported=0 marks a same-lane
	// target, supported=1 a cross-lane supported milestone.
	`CREATE TABLE IF NOT EXISTS activity_links (
		activity_id  INTEGER NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		milestone_id INTEGER NOT NULL REFERENCES milestones(id) ON DELETE CASCADE,
		supported    INTEGER NOT NULL DEFAULT 0,
		link_order   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (activity_id, milestone_id, supported)
	)`,

	`CREATE TABLE IF NOT EXISTS dependencies (
		source_milestone_id INTEGER NOT NULL REFERENCES milestones(id) ON DELETE CASCADE,
		target_milestone_id INTEGER NOT NULL REFERENCES milestones(id) ON DELETE CASCADE,
		PRIMARY KEY (source_milestone_id, target_milestone_id)
	)`,

	// Position records are keyed by container rather than a local diagram
	// foreign key: in serve mode this table holds positions for diagrams
	// that only exist on other machines.
	`CREATE TABLE IF NOT EXISTS positions (
		container_id     TEXT NOT NULL,
		node_type        TEXT NOT NULL CHECK(node_type IN ('milestone','workstream')),
		node_id          TEXT NOT NULL,
		rel_y            REAL NOT NULL,
		is_duplicate     INTEGER NOT NULL DEFAULT 0,
		duplicate_key    TEXT NOT NULL DEFAULT '',
		original_node_id INTEGER,
		updated_at       TEXT NOT NULL,
		PRIMARY KEY (container_id, node_type, node_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_positions_container
		ON positions(container_id, node_type)`,
}
