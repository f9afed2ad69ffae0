package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/timetabler-core/internal/models"
)

// TeacherRepository loads the teacher roster for Domain Snapshot
// construction. Trimmed from the teacher's paginated List/FindByID/
// ExistsByEmail CRUD surface to the one read the core actually needs.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// ListTeachers returns every teacher row, ordered by id for deterministic
// snapshot construction.
func (r *TeacherRepository) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, display_name, short_code, max_hours_per_week, part_time, created_at, updated_at FROM teachers ORDER BY id ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}
