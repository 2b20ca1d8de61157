package repository

import (
	"context"
	"fmt"

	"github.com/jspahr/laneplan/internal/db"
	"github.com/jspahr/laneplan/internal/domain"
)

// SQLiteWorkstreamRepo implements WorkstreamRepo using a SQLite database.
type SQLiteWorkstreamRepo struct {
	db db.DBTX
}

// NewSQLiteWorkstreamRepo creates a new SQLiteWorkstreamRepo.
func NewSQLiteWorkstreamRepo(dbtx db.DBTX) *SQLiteWorkstreamRepo {
	return &SQLiteWorkstreamRepo{db: dbtx}
}

func (r *SQLiteWorkstreamRepo) Create(ctx context.Context, w *domain.Workstream) error {
	query := `INSERT INTO workstreams (diagram_id, name, color, order_index) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, w.DiagramID, w.Name, w.Color, w.OrderIndex)
	if err != nil {
		return fmt.Errorf("inserting workstream: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading workstream id: %w", err)
	}
	w.ID = id
	return nil
}

// ListByDiagram returns the diagram's workstreams in display order, each with
// its owned milestone ids ordered by milestone order index.
func (r *SQLiteWorkstreamRepo) ListByDiagram(ctx context.Context, diagramID string) ([]*domain.Workstream, error) {
	query := `SELECT id, diagram_id, name, color, order_index
		FROM workstreams WHERE diagram_id = ? ORDER BY order_index, id`
	rows, err := r.db.QueryContext(ctx, query, diagramID)
	if err != nil {
		return nil, fmt.Errorf("listing workstreams: %w", err)
	}
	defer rows.Close()

	var streams []*domain.Workstream
	for rows.Next() {
		var w domain.Workstream
		if err := rows.Scan(&w.ID, &w.DiagramID, &w.Name, &w.Color, &w.OrderIndex); err != nil {
			return nil, fmt.Errorf("scanning workstream: %w", err)
		}
		streams = append(streams, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workstreams: %w", err)
	}

	for _, w := range streams {
		ids, err := r.listMilestoneIDs(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		w.MilestoneIDs = ids
	}
	return streams, nil
}

func (r *SQLiteWorkstreamRepo) listMilestoneIDs(ctx context.Context, workstreamID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM milestones WHERE workstream_id = ? ORDER BY order_index, id`, workstreamID)
	if err != nil {
		return nil, fmt.Errorf("listing owned milestones: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning milestone id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating milestone ids: %w", err)
	}
	return ids, nil
}
