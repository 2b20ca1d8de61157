package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jspahr/laneplan/internal/db"
	"github.com/jspahr/laneplan/internal/domain"
)

// SQLiteMilestoneRepo implements MilestoneRepo using a SQLite database.
type SQLiteMilestoneRepo struct {
	db db.DBTX
}

// NewSQLiteMilestoneRepo creates a new SQLiteMilestoneRepo.
func NewSQLiteMilestoneRepo(dbtx db.DBTX) *SQLiteMilestoneRepo {
	return &SQLiteMilestoneRepo{db: dbtx}
}

func (r *SQLiteMilestoneRepo) Create(ctx context.Context, m *domain.Milestone) error {
	if m.Status == "" {
		m.Status = domain.MilestoneNotStarted
	}
	query := `INSERT INTO milestones (workstream_id, name, deadline, status, order_index)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		m.WorkstreamID,
		m.Name,
		nullableTimeToString(m.Deadline, dateLayout),
		string(m.Status),
		m.OrderIndex,
	)
	if err != nil {
		return fmt.Errorf("inserting milestone: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading milestone id: %w", err)
	}
	m.ID = id
	return nil
}

func (r *SQLiteMilestoneRepo) GetByID(ctx context.Context, id int64) (*domain.Milestone, error) {
	query := `SELECT id, workstream_id, name, deadline, status, order_index
		FROM milestones WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	m, err := scanMilestone(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("milestone: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning milestone: %w", err)
	}
	return m, nil
}

func (r *SQLiteMilestoneRepo) ListByDiagram(ctx context.Context, diagramID string) ([]*domain.Milestone, error) {
	query := `SELECT m.id, m.workstream_id, m.name, m.deadline, m.status, m.order_index
		FROM milestones m
		JOIN workstreams w ON m.workstream_id = w.id
		WHERE w.diagram_id = ?
		ORDER BY w.order_index, m.order_index, m.id`
	rows, err := r.db.QueryContext(ctx, query, diagramID)
	if err != nil {
		return nil, fmt.Errorf("listing milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*domain.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating milestones: %w", err)
	}
	return milestones, nil
}

func (r *SQLiteMilestoneRepo) UpdateDeadline(ctx context.Context, id int64, deadline time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE milestones SET deadline = ? WHERE id = ?`,
		deadline.Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("updating milestone deadline: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deadline update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("milestone: %w", ErrNotFound)
	}
	return nil
}

// scanner abstracts over *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMilestone(row scanner) (*domain.Milestone, error) {
	var m domain.Milestone
	var deadline sql.NullString
	var status string
	if err := row.Scan(&m.ID, &m.WorkstreamID, &m.Name, &deadline, &status, &m.OrderIndex); err != nil {
		return nil, err
	}
	m.Deadline = parseNullableTime(deadline, dateLayout)
	m.Status = domain.MilestoneStatus(status)
	return &m, nil
}
