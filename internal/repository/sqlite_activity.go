package repository

import (
	"context"
	"fmt"

	"github.com/jspahr/laneplan/internal/db"
	"github.com/jspahr/laneplan/internal/domain"
)

// SQLiteActivityRepo implements ActivityRepo using a SQLite database.
type SQLiteActivityRepo struct {
	db db.DBTX
}

// NewSQLiteActivityRepo creates a new SQLiteActivityRepo.
func NewSQLiteActivityRepo(dbtx db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: dbtx}
}

func (r *SQLiteActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO activities (workstream_id, source_milestone_id) VALUES (?, ?)`,
		a.WorkstreamID, a.SourceMilestoneID)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading activity id: %w", err)
	}
	a.ID = id

	if err := r.insertLinks(ctx, id, a.TargetMilestoneIDs, false); err != nil {
		return err
	}
	return r.insertLinks(ctx, id, a.SupportedMilestoneIDs, true)
}

func (r *SQLiteActivityRepo) insertLinks(ctx context.Context, activityID int64, milestoneIDs []int64, supported bool) error {
	for i, mid := range milestoneIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO activity_links (activity_id, milestone_id, supported, link_order)
			 VALUES (?, ?, ?, ?)`,
			activityID, mid, boolToInt(supported), i)
		if err != nil {
			return fmt.Errorf("inserting activity link: %w", err)
		}
	}
	return nil
}

func (r *SQLiteActivityRepo) ListByDiagram(ctx context.Context, diagramID string) ([]*domain.Activity, error) {
	query := `SELECT a.id, a.workstream_id, a.source_milestone_id
		FROM activities a
		JOIN workstreams w ON a.workstream_id = w.id
		WHERE w.diagram_id = ?
		ORDER BY a.id`
	rows, err := r.db.QueryContext(ctx, query, diagramID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.WorkstreamID, &a.SourceMilestoneID); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}

	for _, a := range activities {
		if err := r.loadLinks(ctx, a); err != nil {
			return nil, err
		}
	}
	return activities, nil
}

func (r *SQLiteActivityRepo) loadLinks(ctx context.Context, a *domain.Activity) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT milestone_id, supported FROM activity_links
		 WHERE activity_id = ? ORDER BY supported, link_order`, a.ID)
	if err != nil {
		return fmt.Errorf("listing activity links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mid int64
		var supported int
		if err := rows.Scan(&mid, &supported); err != nil {
			return fmt.Errorf("scanning activity link: %w", err)
		}
		if intToBool(supported) {
			a.SupportedMilestoneIDs = append(a.SupportedMilestoneIDs, mid)
		} else {
			a.TargetMilestoneIDs = append(a.TargetMilestoneIDs, mid)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating activity links: %w", err)
	}
	return nil
}
