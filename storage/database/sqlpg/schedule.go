package sqlpg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/kasongo/elimu/core/schedule"
)

// postgres error codes surfaced as domain conflicts
const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

type requestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) schedule.RequestRepository {
	return &requestRepository{db: db}
}

type requestRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	TutorID   string    `db:"tutor_id"`
	CourseID  string    `db:"course_id"`
	Type      string    `db:"type"`
	Time      time.Time `db:"time"`
	Duration  int       `db:"duration"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (r requestRow) toRequest() schedule.ClassRequest {
	return schedule.ClassRequest{
		ID:        r.ID,
		Student:   r.StudentID,
		Tutor:     r.TutorID,
		Course:    r.CourseID,
		Type:      schedule.ClassType(r.Type),
		Time:      r.Time,
		Duration:  r.Duration,
		Status:    schedule.RequestStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

func (repo *requestRepository) CreateRequest(ctx context.Context, req schedule.ClassRequest) (schedule.ClassRequest, error) {
	const q = `
		INSERT INTO class_request (id, student_id, tutor_id, course_id, type, time, duration, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		req.ID, req.Student, req.Tutor, req.Course, req.Type, req.Time, req.Duration, req.Status, req.CreatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return schedule.ClassRequest{}, schedule.ErrDuplicateRequest
		}
		return schedule.ClassRequest{}, errors.Wrap(err, "inserting class request")
	}
	return req, nil
}

func (repo *requestRepository) GetRequestByID(ctx context.Context, id string) (schedule.ClassRequest, error) {
	var row requestRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM class_request WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return schedule.ClassRequest{}, schedule.ErrRequestNotFound
		}
		return schedule.ClassRequest{}, errors.Wrap(err, "querying class request")
	}
	return row.toRequest(), nil
}

func (repo *requestRepository) FindRequestInWindow(ctx context.Context, studentID string, w schedule.Window) (schedule.ClassRequest, error) {
	const q = `
		SELECT * FROM class_request
		WHERE student_id = $1 AND time >= $2 AND time < $3
		LIMIT 1`
	var row requestRow
	if err := repo.db.GetContext(ctx, &row, q, studentID, w.Start, w.End); err != nil {
		if err == sql.ErrNoRows {
			return schedule.ClassRequest{}, schedule.ErrRequestNotFound
		}
		return schedule.ClassRequest{}, errors.Wrap(err, "querying class request window")
	}
	return row.toRequest(), nil
}

func (repo *requestRepository) UpdateRequestStatus(ctx context.Context, id string, status schedule.RequestStatus) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE class_request SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return errors.Wrap(err, "updating class request status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.ErrRequestNotFound
	}
	return nil
}

func (repo *requestRepository) FilterPendingRequestsByTutor(ctx context.Context, tutorID string) ([]schedule.ClassRequest, error) {
	const q = `
		SELECT * FROM class_request
		WHERE tutor_id = $1 AND status = 'Pending'
		ORDER BY time`
	return repo.filter(ctx, q, tutorID)
}

func (repo *requestRepository) FilterPendingRequestsByStudent(ctx context.Context, studentID string) ([]schedule.ClassRequest, error) {
	const q = `
		SELECT * FROM class_request
		WHERE student_id = $1 AND status = 'Pending'
		ORDER BY time`
	return repo.filter(ctx, q, studentID)
}

func (repo *requestRepository) filter(ctx context.Context, query string, arg interface{}) ([]schedule.ClassRequest, error) {
	var rows []requestRow
	if err := repo.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, errors.Wrap(err, "querying class requests")
	}
	reqs := make([]schedule.ClassRequest, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.toRequest())
	}
	return reqs, nil
}

type classRepository struct {
	db *sqlx.DB
}

func NewClassRepository(db *sqlx.DB) schedule.ClassRepository {
	return &classRepository{db: db}
}

type classRow struct {
	ID           string         `db:"id"`
	Type         string         `db:"type"`
	CourseID     string         `db:"course_id"`
	TutorID      string         `db:"tutor_id"`
	StudentID    sql.NullString `db:"student_id"`
	Time         time.Time      `db:"time"`
	Duration     int            `db:"duration"`
	ClassLink    string         `db:"class_link"`
	Status       sql.NullString `db:"status"`
	ExpiresAt    sql.NullTime   `db:"expires_at"`
	CreatedAt    time.Time      `db:"created_at"`
	Participants pq.StringArray `db:"participants"`
}

func (r classRow) toClass() schedule.Class {
	cls := schedule.Class{
		ID:           r.ID,
		Type:         schedule.ClassType(r.Type),
		Course:       r.CourseID,
		Tutor:        r.TutorID,
		Student:      r.StudentID.String,
		Participants: r.Participants,
		Time:         r.Time,
		Duration:     r.Duration,
		ClassLink:    r.ClassLink,
		Status:       schedule.RequestStatus(r.Status.String),
		CreatedAt:    r.CreatedAt,
	}
	if r.ExpiresAt.Valid {
		cls.ExpiresAt = r.ExpiresAt.Time
	}
	return cls
}

// selectClasses aggregates group participants in one pass.
const selectClasses = `
	SELECT c.id, c.type, c.course_id, c.tutor_id, c.student_id, c.time, c.duration,
	       c.class_link, c.status, c.expires_at, c.created_at,
	       COALESCE(array_agg(p.student_id) FILTER (WHERE p.student_id IS NOT NULL), '{}') AS participants
	FROM class c
	LEFT JOIN class_participant p ON p.class_id = c.id`

func (repo *classRepository) CreateClass(ctx context.Context, cls schedule.Class) (schedule.Class, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return schedule.Class{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO class (id, type, course_id, tutor_id, student_id, time, duration, class_link, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = tx.ExecContext(ctx, q,
		cls.ID, cls.Type, cls.Course, cls.Tutor, nullString(cls.Student), cls.Time, cls.Duration,
		cls.ClassLink, nullString(string(cls.Status)), nullTime(cls.ExpiresAt), cls.CreatedAt)
	if err != nil {
		if pqCode(err) == pqExclusionViolation {
			return schedule.Class{}, schedule.ErrOverlappingClass
		}
		return schedule.Class{}, errors.Wrap(err, "inserting class")
	}

	if err = addParticipants(ctx, tx, cls.ID, cls.Participants); err != nil {
		return schedule.Class{}, err
	}
	if err = tx.Commit(); err != nil {
		return schedule.Class{}, errors.Wrap(err, "committing tx")
	}
	return cls, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls schedule.Class) (schedule.Class, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return schedule.Class{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	// identity columns (type, course, tutor, student) are fixed at creation
	const q = `
		UPDATE class
		SET time = $2, duration = $3, class_link = $4, status = $5, expires_at = $6
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, q,
		cls.ID, cls.Time, cls.Duration, cls.ClassLink, nullString(string(cls.Status)), nullTime(cls.ExpiresAt))
	if err != nil {
		if pqCode(err) == pqExclusionViolation {
			return schedule.Class{}, schedule.ErrOverlappingClass
		}
		return schedule.Class{}, errors.Wrap(err, "updating class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.Class{}, schedule.ErrClassNotFound
	}

	if err = addParticipants(ctx, tx, cls.ID, cls.Participants); err != nil {
		return schedule.Class{}, err
	}
	if err = tx.Commit(); err != nil {
		return schedule.Class{}, errors.Wrap(err, "committing tx")
	}
	return cls, nil
}

func addParticipants(ctx context.Context, tx *sqlx.Tx, classID string, participants []string) error {
	const q = `
		INSERT INTO class_participant (class_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	for _, studentID := range participants {
		if _, err := tx.ExecContext(ctx, q, classID, studentID); err != nil {
			return errors.Wrap(err, "inserting class participant")
		}
	}
	return nil
}

func (repo *classRepository) GetGroupClassByCourse(ctx context.Context, courseID string) (schedule.Class, error) {
	q := selectClasses + `
		WHERE c.course_id = $1 AND c.type = 'Group'
		GROUP BY c.id
		LIMIT 1`
	var row classRow
	if err := repo.db.GetContext(ctx, &row, q, courseID); err != nil {
		if err == sql.ErrNoRows {
			return schedule.Class{}, schedule.ErrClassNotFound
		}
		return schedule.Class{}, errors.Wrap(err, "querying group class")
	}
	return row.toClass(), nil
}

func (repo *classRepository) FilterGroupClassesInWindow(ctx context.Context, courseID string, w schedule.Window) ([]schedule.Class, error) {
	q := selectClasses + `
		WHERE c.course_id = $1 AND c.type = 'Group'
		  AND c.time < $3 AND c.time + make_interval(mins => c.duration) > $2
		GROUP BY c.id
		ORDER BY c.time`
	return repo.filter(ctx, q, courseID, w.Start, w.End)
}

func (repo *classRepository) FilterAcceptedClassesByTutor(ctx context.Context, tutorID string) ([]schedule.Class, error) {
	q := selectClasses + `
		WHERE c.tutor_id = $1 AND (c.type = 'Group' OR c.status = 'Accepted')
		GROUP BY c.id
		ORDER BY c.time`
	return repo.filter(ctx, q, tutorID)
}

func (repo *classRepository) FilterAcceptedClassesByStudent(ctx context.Context, studentID string) ([]schedule.Class, error) {
	q := selectClasses + `
		WHERE (c.type = 'Personal' AND c.student_id = $1 AND c.status = 'Accepted')
		   OR (c.type = 'Group' AND EXISTS (
		           SELECT 1 FROM class_participant cp
		           WHERE cp.class_id = c.id AND cp.student_id = $1))
		GROUP BY c.id
		ORDER BY c.time`
	return repo.filter(ctx, q, studentID)
}

func (repo *classRepository) FilterUpcomingGroupClassesByCourse(ctx context.Context, courseID string, now time.Time) ([]schedule.Class, error) {
	q := selectClasses + `
		WHERE c.course_id = $1 AND c.type = 'Group' AND c.time >= $2
		GROUP BY c.id
		ORDER BY c.time`
	return repo.filter(ctx, q, courseID, now)
}

func (repo *classRepository) FilterUpcomingGroupClassesByTutor(ctx context.Context, tutorID string, now time.Time) ([]schedule.Class, error) {
	q := selectClasses + `
		WHERE c.tutor_id = $1 AND c.type = 'Group' AND c.time >= $2
		GROUP BY c.id
		ORDER BY c.time`
	return repo.filter(ctx, q, tutorID, now)
}

func (repo *classRepository) FilterUpcomingGroupClassesByParticipant(ctx context.Context, studentID string, now time.Time) ([]schedule.Class, error) {
	q := selectClasses + `
		WHERE c.type = 'Group' AND c.time >= $2
		  AND EXISTS (
		          SELECT 1 FROM class_participant cp
		          WHERE cp.class_id = c.id AND cp.student_id = $1)
		GROUP BY c.id
		ORDER BY c.time`
	return repo.filter(ctx, q, studentID, now)
}

func (repo *classRepository) DeleteExpiredClasses(ctx context.Context, now time.Time) ([]string, error) {
	const q = `
		DELETE FROM class
		WHERE expires_at IS NOT NULL AND expires_at <= $1
		RETURNING id`
	var ids []string
	if err := repo.db.SelectContext(ctx, &ids, q, now); err != nil {
		return nil, errors.Wrap(err, "deleting expired classes")
	}
	return ids, nil
}

func (repo *classRepository) filter(ctx context.Context, query string, args ...interface{}) ([]schedule.Class, error) {
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]schedule.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.toClass())
	}
	return classes, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
