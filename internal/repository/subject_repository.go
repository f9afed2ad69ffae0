package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/timetabler-core/internal/models"
)

// SubjectRepository loads the subject catalog for Domain Snapshot
// construction.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListSubjects returns every subject row, ordered by id.
func (r *SubjectRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, name, code, color, created_at, updated_at FROM subjects ORDER BY id ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}
