package repository

import (
	"context"
	"fmt"

	"github.com/jspahr/laneplan/internal/db"
	"github.com/jspahr/laneplan/internal/domain"
)

// SQLiteDependencyRepo implements DependencyRepo using a SQLite database.
type SQLiteDependencyRepo struct {
	db db.DBTX
}

// NewSQLiteDependencyRepo creates a new SQLiteDependencyRepo.
func NewSQLiteDependencyRepo(dbtx db.DBTX) *SQLiteDependencyRepo {
	return &SQLiteDependencyRepo{db: dbtx}
}

func (r *SQLiteDependencyRepo) Create(ctx context.Context, d *domain.Dependency) error {
	query := `INSERT INTO dependencies (source_milestone_id, target_milestone_id) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, query, d.SourceMilestoneID, d.TargetMilestoneID)
	if err != nil {
		return fmt.Errorf("inserting dependency: %w", err)
	}
	return nil
}

func (r *SQLiteDependencyRepo) ListByDiagram(ctx context.Context, diagramID string) ([]domain.Dependency, error) {
	query := `SELECT d.source_milestone_id, d.target_milestone_id
		FROM dependencies d
		JOIN milestones m ON d.source_milestone_id = m.id
		JOIN workstreams w ON m.workstream_id = w.id
		WHERE w.diagram_id = ?
		ORDER BY d.source_milestone_id, d.target_milestone_id`
	rows, err := r.db.QueryContext(ctx, query, diagramID)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies: %w", err)
	}
	defer rows.Close()

	var deps []domain.Dependency
	for rows.Next() {
		var d domain.Dependency
		if err := rows.Scan(&d.SourceMilestoneID, &d.TargetMilestoneID); err != nil {
			return nil, fmt.Errorf("scanning dependency: %w", err)
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dependencies: %w", err)
	}
	return deps, nil
}
