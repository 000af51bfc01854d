package sqlpg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/kasongo/elimu/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Description      string         `db:"description"`
	TutorID          string         `db:"tutor_id"`
	CreatedAt        time.Time      `db:"created_at"`
	StudentsEnrolled pq.StringArray `db:"students_enrolled"`
}

func (r courseRow) toCourse() course.Course {
	return course.Course{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		Tutor:            r.TutorID,
		StudentsEnrolled: r.StudentsEnrolled,
		CreatedAt:        r.CreatedAt,
	}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO course (id, name, description, tutor_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, q, crs.ID, crs.Name, crs.Description, crs.Tutor, crs.CreatedAt); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	for _, studentID := range crs.StudentsEnrolled {
		if err = enroll(ctx, tx, crs.ID, studentID); err != nil {
			return course.Course{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return course.Course{}, errors.Wrap(err, "committing tx")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	const q = `
		SELECT c.id, c.name, c.description, c.tutor_id, c.created_at,
		       COALESCE(array_agg(e.student_id) FILTER (WHERE e.student_id IS NOT NULL), '{}') AS students_enrolled
		FROM course c
		LEFT JOIN course_enrollment e ON e.course_id = c.id
		WHERE c.id = $1
		GROUP BY c.id`
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "querying course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) EnrollStudent(ctx context.Context, courseID, studentID string) error {
	return enroll(ctx, repo.db, courseID, studentID)
}

func enroll(ctx context.Context, db sqlx.ExecerContext, courseID, studentID string) error {
	const q = `
		INSERT INTO course_enrollment (course_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	if _, err := db.ExecContext(ctx, q, courseID, studentID); err != nil {
		return errors.Wrap(err, "inserting enrollment")
	}
	return nil
}
