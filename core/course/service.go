package course

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound    = errors.New("course not found")
	ErrNotEnrolled = errors.New("you are not enrolled in this course")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		EnrollStudent(ctx context.Context, courseID, studentID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, crs Course) (Course, error) {
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Enroll(ctx context.Context, courseID, studentID string) error {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return err
	}
	return svc.repo.EnrollStudent(ctx, courseID, studentID)
}

// EnsureEnrolled is the enrollment guard consumed before any scheduling action:
// it resolves the course and fails unless the student is in its enrolled set.
func (svc *Service) EnsureEnrolled(ctx context.Context, courseID, studentID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Course{}, errors.Wrap(err, "finding course")
	}
	if !crs.IsEnrolled(studentID) {
		return Course{}, ErrNotEnrolled
	}
	return crs, nil
}
