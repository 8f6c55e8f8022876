package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shared-canvas/backend/internal/model"
)

// StrokeRepository provides data access for stored strokes.
//
// Strokes have no identifier on the wire; the table's rowid is internal
// only. All mutation by content goes through structural matching: equality
// of the canonical points JSON plus color, width and owning user.
type StrokeRepository struct {
	db *sql.DB
}

// NewStrokeRepository creates a new StrokeRepository.
func NewStrokeRepository(db *sql.DB) *StrokeRepository {
	return &StrokeRepository{db: db}
}

// Insert appends one stroke. No dedup: inserting a structural duplicate
// creates a second row.
func (r *StrokeRepository) Insert(ctx context.Context, stroke *model.Stroke) error {
	pointsJSON, err := stroke.PointsToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize points: %w", err)
	}

	query := `
		INSERT INTO strokes (points, color, width, user_id)
		VALUES (?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query, pointsJSON, stroke.Color, stroke.Width, stroke.User)
	if err != nil {
		return fmt.Errorf("failed to insert stroke: %w", err)
	}

	return nil
}

// All returns every stored stroke in insertion order. This is the snapshot
// used for full client resynchronization.
func (r *StrokeRepository) All(ctx context.Context) ([]*model.Stroke, error) {
	query := `
		SELECT points, color, width, user_id
		FROM strokes
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query strokes: %w", err)
	}
	defer rows.Close()

	strokes := make([]*model.Stroke, 0)
	for rows.Next() {
		stroke := &model.Stroke{}
		var pointsJSON string

		if err := rows.Scan(&pointsJSON, &stroke.Color, &stroke.Width, &stroke.User); err != nil {
			return nil, fmt.Errorf("failed to scan stroke: %w", err)
		}

		if err := stroke.PointsFromJSON(pointsJSON); err != nil {
			return nil, fmt.Errorf("failed to parse points: %w", err)
		}

		strokes = append(strokes, stroke)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strokes: %w", err)
	}

	return strokes, nil
}

// DeleteByUser removes every stroke owned by the given user. Deleting for a
// user with no strokes is a no-op, never an error.
func (r *StrokeRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := `DELETE FROM strokes WHERE user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete strokes for user: %w", err)
	}

	return nil
}

// DeleteOne removes at most one stroke structurally matching the given
// stroke. Duplicate rows lose a single member; a match that no longer
// exists is a no-op.
func (r *StrokeRepository) DeleteOne(ctx context.Context, stroke *model.Stroke) error {
	pointsJSON, err := stroke.PointsToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize points: %w", err)
	}

	query := `
		DELETE FROM strokes
		WHERE id IN (
			SELECT id FROM strokes
			WHERE points = ? AND color = ? AND width = ? AND user_id = ?
			LIMIT 1
		)
	`

	if _, err := r.db.ExecContext(ctx, query, pointsJSON, stroke.Color, stroke.Width, stroke.User); err != nil {
		return fmt.Errorf("failed to delete stroke: %w", err)
	}

	return nil
}

// Count returns the number of stored strokes.
func (r *StrokeRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM strokes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count strokes: %w", err)
	}
	return count, nil
}
