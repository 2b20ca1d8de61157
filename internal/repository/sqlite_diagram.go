package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jspahr/laneplan/internal/db"
	"github.com/jspahr/laneplan/internal/domain"
)

// SQLiteDiagramRepo implements DiagramRepo using a SQLite database.
type SQLiteDiagramRepo struct {
	db db.DBTX
}

// NewSQLiteDiagramRepo creates a new SQLiteDiagramRepo. The DBTX may be a
// *sql.DB or a transaction.
func NewSQLiteDiagramRepo(dbtx db.DBTX) *SQLiteDiagramRepo {
	return &SQLiteDiagramRepo{db: dbtx}
}

func (r *SQLiteDiagramRepo) Create(ctx context.Context, d *domain.Diagram) error {
	query := `INSERT INTO diagrams (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.Name,
		d.CreatedAt.Format(time.RFC3339),
		d.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting diagram: %w", err)
	}
	return nil
}

func (r *SQLiteDiagramRepo) GetByID(ctx context.Context, id string) (*domain.Diagram, error) {
	query := `SELECT id, name, created_at, updated_at FROM diagrams WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var d domain.Diagram
	var createdAt, updatedAt string
	if err := row.Scan(&d.ID, &d.Name, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("diagram: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning diagram: %w", err)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &d, nil
}

func (r *SQLiteDiagramRepo) List(ctx context.Context) ([]*domain.Diagram, error) {
	query := `SELECT id, name, created_at, updated_at FROM diagrams ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing diagrams: %w", err)
	}
	defer rows.Close()

	var diagrams []*domain.Diagram
	for rows.Next() {
		var d domain.Diagram
		var createdAt, updatedAt string
		if err := rows.Scan(&d.ID, &d.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning diagram: %w", err)
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		diagrams = append(diagrams, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating diagrams: %w", err)
	}
	return diagrams, nil
}

func (r *SQLiteDiagramRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM diagrams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting diagram: %w", err)
	}
	return nil
}
