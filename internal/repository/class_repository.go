package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/timetabler-core/internal/models"
)

// ClassRepository loads the class roster for Domain Snapshot construction.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ListClasses returns every class row, ordered by id.
func (r *ClassRepository) ListClasses(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT id, label, grade, size, home_room, created_at, updated_at FROM classes ORDER BY id ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}
