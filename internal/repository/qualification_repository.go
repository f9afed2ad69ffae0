package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grundschule/timetabler-core/internal/models"
)

// QualificationRepository loads teacher-subject qualifications. Adapted
// from the teacher's teacher_assignment_repository.go join/Exists/Create
// shape, generalized from a (teacher, class, subject, term) assignment to
// the core's (teacher, subject) qualification relation.
type QualificationRepository struct {
	db *sqlx.DB
}

// NewQualificationRepository constructs a new qualification repository.
func NewQualificationRepository(db *sqlx.DB) *QualificationRepository {
	return &QualificationRepository{db: db}
}

// ListQualifications returns every teacher-subject qualification row.
func (r *QualificationRepository) ListQualifications(ctx context.Context) ([]models.TeacherSubject, error) {
	const query = `SELECT id, teacher_id, subject_id, level, allowed_grades, max_hours_per_week, certified_from, certified_until FROM teacher_subjects ORDER BY teacher_id ASC, subject_id ASC`
	var rows []models.TeacherSubject
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list teacher qualifications: %w", err)
	}
	return rows, nil
}

// Exists checks whether a (teacher, subject) qualification already exists,
// matching the uniqueness invariant of spec.md §3.
func (r *QualificationRepository) Exists(ctx context.Context, teacherID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, subjectID); err != nil {
		return false, nil
	}
	return true, nil
}

// Create inserts a new qualification row.
func (r *QualificationRepository) Create(ctx context.Context, q *models.TeacherSubject) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	const query = `INSERT INTO teacher_subjects (id, teacher_id, subject_id, level, allowed_grades, max_hours_per_week, certified_from, certified_until)
		VALUES (:id, :teacher_id, :subject_id, :level, :allowed_grades, :max_hours_per_week, :certified_from, :certified_until)`
	if _, err := r.db.NamedExecContext(ctx, query, q); err != nil {
		return fmt.Errorf("create teacher qualification: %w", err)
	}
	return nil
}
