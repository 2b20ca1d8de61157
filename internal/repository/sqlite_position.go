package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jspahr/laneplan/internal/db"
	"github.com/jspahr/laneplan/internal/domain"
)

// SQLitePositionRepo implements PositionRepo using a SQLite database. It is
// the diagram's local position cache and the storage behind the serve
// command's positions API.
type SQLitePositionRepo struct {
	db db.DBTX
}

// NewSQLitePositionRepo creates a new SQLitePositionRepo.
func NewSQLitePositionRepo(dbtx db.DBTX) *SQLitePositionRepo {
	return &SQLitePositionRepo{db: dbtx}
}

func (r *SQLitePositionRepo) Upsert(ctx context.Context, p *domain.Position) error {
	query := `INSERT INTO positions
		(container_id, node_type, node_id, rel_y, is_duplicate, duplicate_key, original_node_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (container_id, node_type, node_id) DO UPDATE SET
			rel_y = excluded.rel_y,
			is_duplicate = excluded.is_duplicate,
			duplicate_key = excluded.duplicate_key,
			original_node_id = excluded.original_node_id,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		p.ContainerID,
		string(p.NodeType),
		p.NodeID,
		p.RelY,
		boolToInt(p.IsDuplicate),
		p.DuplicateKey,
		nullableInt64ToValue(p.OriginalNodeID),
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting position: %w", err)
	}
	return nil
}

func (r *SQLitePositionRepo) List(ctx context.Context, containerID string, nodeType domain.NodeType) ([]*domain.Position, error) {
	query := `SELECT container_id, node_type, node_id, rel_y, is_duplicate, duplicate_key, original_node_id, updated_at
		FROM positions WHERE container_id = ? AND node_type = ?
		ORDER BY node_id`
	rows, err := r.db.QueryContext(ctx, query, containerID, string(nodeType))
	if err != nil {
		return nil, fmt.Errorf("listing positions: %w", err)
	}
	defer rows.Close()

	var positions []*domain.Position
	for rows.Next() {
		var p domain.Position
		var nodeType string
		var isDup int
		var originalID sql.NullInt64
		var updatedAt string
		if err := rows.Scan(&p.ContainerID, &nodeType, &p.NodeID, &p.RelY, &isDup, &p.DuplicateKey, &originalID, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning position: %w", err)
		}
		p.NodeType = domain.NodeType(nodeType)
		p.IsDuplicate = intToBool(isDup)
		if originalID.Valid {
			v := originalID.Int64
			p.OriginalNodeID = &v
		}
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		positions = append(positions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating positions: %w", err)
	}
	return positions, nil
}

func (r *SQLitePositionRepo) DeleteByContainer(ctx context.Context, containerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM positions WHERE container_id = ?`, containerID)
	if err != nil {
		return fmt.Errorf("deleting positions: %w", err)
	}
	return nil
}
