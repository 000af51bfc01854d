package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kasongo/elimu/core"
	"github.com/kasongo/elimu/core/course"
	"github.com/kasongo/elimu/core/notification"
	"github.com/kasongo/elimu/core/user"
)

var (
	ErrRequestNotFound     = errors.New("class request not found")
	ErrRequestResolved     = errors.New("class request has already been resolved")
	ErrIncompleteReference = errors.New("class request references are incomplete")
	ErrDuplicateRequest    = errors.New("you have already made a request for this time or within the same hour")
	ErrOverlappingClass    = errors.New("a group class already exists within this time range")
	ErrPastTime            = errors.New("cannot create a class in the past")
	ErrNotCourseTutor      = errors.New("you are not authorized to create a group class for this course")
	ErrClassNotFound       = errors.New("class not found")
	ErrClassCreation       = errors.New("failed to create class")
)

type (
	RequestRepository interface {
		CreateRequest(ctx context.Context, req ClassRequest) (ClassRequest, error)
		GetRequestByID(ctx context.Context, id string) (ClassRequest, error)
		// FindRequestInWindow returns any request by the student whose stored
		// time falls within w; ErrRequestNotFound when there is none.
		FindRequestInWindow(ctx context.Context, studentID string, w Window) (ClassRequest, error)
		UpdateRequestStatus(ctx context.Context, id string, status RequestStatus) error
		FilterPendingRequestsByTutor(ctx context.Context, tutorID string) ([]ClassRequest, error)
		FilterPendingRequestsByStudent(ctx context.Context, studentID string) ([]ClassRequest, error)
	}

	ClassRepository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		// UpdateClass persists the class's mutable fields (time, duration,
		// link, status, expiry) and adds any new participants; identity
		// fields are fixed at creation.
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		// GetGroupClassByCourse returns the course's live group class;
		// ErrClassNotFound when there is none.
		GetGroupClassByCourse(ctx context.Context, courseID string) (Class, error)
		// FilterGroupClassesInWindow returns the course's group classes whose
		// windows intersect w per the half-open overlap rule.
		FilterGroupClassesInWindow(ctx context.Context, courseID string, w Window) ([]Class, error)
		FilterAcceptedClassesByTutor(ctx context.Context, tutorID string) ([]Class, error)
		// FilterAcceptedClassesByStudent unions Personal classes owned by the
		// student and Group classes they participate in.
		FilterAcceptedClassesByStudent(ctx context.Context, studentID string) ([]Class, error)
		FilterUpcomingGroupClassesByCourse(ctx context.Context, courseID string, now time.Time) ([]Class, error)
		FilterUpcomingGroupClassesByTutor(ctx context.Context, tutorID string, now time.Time) ([]Class, error)
		FilterUpcomingGroupClassesByParticipant(ctx context.Context, studentID string, now time.Time) ([]Class, error)
		// DeleteExpiredClasses removes classes with expires_at <= now and
		// returns the deleted IDs.
		DeleteExpiredClasses(ctx context.Context, now time.Time) ([]string, error)
	}

	// Notifier is the notification sink invoked on state transitions.
	Notifier interface {
		Notify(ctx context.Context, nn notification.NewNotification) (notification.Notification, error)
	}

	Service struct {
		requests RequestRepository
		classes  ClassRepository
		users    user.Repository
		courses  *course.Service
		notifier Notifier
		logger   core.Logger
	}
)

func NewService(
	requests RequestRepository,
	classes ClassRepository,
	users user.Repository,
	courses *course.Service,
	notifier Notifier,
	logger core.Logger,
) *Service {
	return &Service{
		requests: requests,
		classes:  classes,
		users:    users,
		courses:  courses,
		notifier: notifier,
		logger:   logger,
	}
}

// SendRequest submits a class request by a student against a course.
//
// The request commit and the tutor notification are separate, independent
// writes: a notification failure is surfaced to the caller but does not roll
// back the already-persisted request.
func (svc *Service) SendRequest(ctx context.Context, courseID, studentID string, ncr NewClassRequest) (ClassRequest, error) {
	start, err := ParseTime(ncr.Time)
	if err != nil {
		return ClassRequest{}, err
	}
	w := NewWindow(start, ncr.Duration)

	crs, err := svc.courses.EnsureEnrolled(ctx, courseID, studentID)
	if err != nil {
		return ClassRequest{}, err
	}

	// student-scoped: a student cannot hold two requests whose start times
	// collide within one window, across any course
	if _, err = svc.requests.FindRequestInWindow(ctx, studentID, w); err == nil {
		return ClassRequest{}, ErrDuplicateRequest
	} else if errors.Cause(err) != ErrRequestNotFound {
		return ClassRequest{}, errors.Wrap(err, "checking for duplicate request")
	}

	req := ClassRequest{
		ID:        uuid.NewString(),
		Student:   studentID,
		Tutor:     crs.Tutor,
		Course:    courseID,
		Type:      ncr.Type,
		Time:      start,
		Duration:  ncr.Duration,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	req, err = svc.requests.CreateRequest(ctx, req)
	if err != nil {
		return ClassRequest{}, errors.Wrap(err, "creating class request")
	}

	_, err = svc.notifier.Notify(ctx, notification.NewNotification{
		User: crs.Tutor,
		Type: notification.TypeClassRequestSent,
		Message: fmt.Sprintf(
			"You have received a class request from a student for the course: %s at %s.",
			crs.Name, start.UTC().Format(time.RFC3339),
		),
	})
	if err != nil {
		return req, errors.Wrap(err, "notifying tutor")
	}
	return req, nil
}

// HandleRequest records the tutor's decision on a pending request and, on
// acceptance, materializes the Class.
//
// The status mutation is terminal and committed before materialization: a
// failed class creation leaves the request Accepted and surfaces ErrClassCreation.
func (svc *Service) HandleRequest(ctx context.Context, requestID string, dec RequestDecision) (DecisionResult, error) {
	req, err := svc.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return DecisionResult{}, err
	}
	if req.Status != StatusPending {
		return DecisionResult{}, ErrRequestResolved
	}

	// referential integrity should make these impossible; verify anyway
	crs, err := svc.resolveReferences(ctx, req)
	if err != nil {
		return DecisionResult{}, err
	}

	if err = svc.requests.UpdateRequestStatus(ctx, req.ID, dec.Status); err != nil {
		return DecisionResult{}, errors.Wrap(err, "updating request status")
	}
	req.Status = dec.Status

	if dec.Status == StatusAccepted {
		if err = svc.materialize(ctx, req, dec.ClassLink); err != nil {
			svc.logger.Error(fmt.Sprintf("materializing class for request %s: %v", req.ID, err), err)
			return DecisionResult{}, ErrClassCreation
		}
	}

	verb := "rejected"
	if dec.Status == StatusAccepted {
		verb = "accepted"
	}
	_, err = svc.notifier.Notify(ctx, notification.NewNotification{
		User:    req.Student,
		Type:    notification.TypeClassRequestHandled,
		Message: fmt.Sprintf("Your class request for %s has been %s.", crs.Name, verb),
	})
	if err != nil {
		return DecisionResult{}, errors.Wrap(err, "notifying student")
	}

	return DecisionResult{
		Message: fmt.Sprintf("Class request %s successfully.", strings.ToLower(string(dec.Status))),
		Type:    req.Type,
	}, nil
}

func (svc *Service) resolveReferences(ctx context.Context, req ClassRequest) (course.Course, error) {
	if _, err := svc.users.GetUserByID(ctx, req.Student); err != nil {
		return course.Course{}, ErrIncompleteReference
	}
	if _, err := svc.users.GetUserByID(ctx, req.Tutor); err != nil {
		return course.Course{}, ErrIncompleteReference
	}
	crs, err := svc.courses.GetByID(ctx, req.Course)
	if err != nil {
		return course.Course{}, ErrIncompleteReference
	}
	return crs, nil
}

func (svc *Service) materialize(ctx context.Context, req ClassRequest, classLink string) error {
	now := time.Now().UTC()

	if req.Type == TypePersonal {
		cls := Class{
			ID:        uuid.NewString(),
			Type:      TypePersonal,
			Course:    req.Course,
			Tutor:     req.Tutor,
			Student:   req.Student,
			Time:      req.Time,
			Duration:  req.Duration,
			ClassLink: classLink,
			Status:    StatusAccepted,
			CreatedAt: now,
		}
		_, err := svc.classes.CreateClass(ctx, cls)
		return err
	}

	// Group: one live class per course; join it if it exists
	grp, err := svc.classes.GetGroupClassByCourse(ctx, req.Course)
	switch errors.Cause(err) {
	case nil:
		grp.AddParticipant(req.Student)
		if classLink != "" {
			grp.ClassLink = classLink
		}
		_, err = svc.classes.UpdateClass(ctx, grp)
		return err
	case ErrClassNotFound:
		grp = Class{
			ID:           uuid.NewString(),
			Type:         TypeGroup,
			Course:       req.Course,
			Tutor:        req.Tutor,
			Participants: []string{req.Student},
			Time:         req.Time,
			Duration:     req.Duration,
			ClassLink:    classLink,
			ExpiresAt:    now.Add(time.Duration(req.Duration) * time.Minute),
			CreatedAt:    now,
		}
		_, err = svc.classes.CreateClass(ctx, grp)
		return err
	default:
		return err
	}
}

// CreateGroupClass lets a tutor schedule a group session directly,
// independent of the request/accept flow.
func (svc *Service) CreateGroupClass(ctx context.Context, courseID, tutorID string, ngc NewGroupClass) (Class, error) {
	start, err := ParseTime(ngc.Time)
	if err != nil {
		return Class{}, err
	}
	now := time.Now().UTC()
	if start.Before(now) {
		return Class{}, ErrPastTime
	}

	crs, err := svc.courses.GetByID(ctx, courseID)
	if err != nil {
		return Class{}, errors.Wrap(err, "finding course")
	}
	if crs.Tutor != tutorID {
		return Class{}, ErrNotCourseTutor
	}

	w := NewWindow(start, ngc.Duration)
	overlapping, err := svc.classes.FilterGroupClassesInWindow(ctx, courseID, w)
	if err != nil {
		return Class{}, errors.Wrap(err, "checking for overlapping classes")
	}
	if len(overlapping) > 0 {
		return Class{}, ErrOverlappingClass
	}

	cls := Class{
		ID:           uuid.NewString(),
		Type:         TypeGroup,
		Course:       courseID,
		Tutor:        tutorID,
		Participants: []string{},
		Time:         start,
		Duration:     ngc.Duration,
		ClassLink:    ngc.ClassLink,
		ExpiresAt:    now.Add(time.Duration(ngc.Duration) * time.Minute),
		CreatedAt:    now,
	}
	cls, err = svc.classes.CreateClass(ctx, cls)
	if err != nil {
		return Class{}, errors.Wrap(err, "creating group class")
	}
	return cls, nil
}

// Read paths; pure projections.

func (svc *Service) PendingRequestsForTutor(ctx context.Context, tutorID string) ([]ClassRequest, error) {
	return svc.requests.FilterPendingRequestsByTutor(ctx, tutorID)
}

func (svc *Service) PendingRequestsForStudent(ctx context.Context, studentID string) ([]ClassRequest, error) {
	return svc.requests.FilterPendingRequestsByStudent(ctx, studentID)
}

// AcceptedClassesFor returns the caller's accepted classes: by tutor for
// tutors; Personal-owned plus Group-participating for everyone else.
func (svc *Service) AcceptedClassesFor(ctx context.Context, usr user.User) ([]Class, error) {
	if usr.IsTutor() {
		return svc.classes.FilterAcceptedClassesByTutor(ctx, usr.ID)
	}
	return svc.classes.FilterAcceptedClassesByStudent(ctx, usr.ID)
}

func (svc *Service) UpcomingGroupClassesForCourse(ctx context.Context, courseID string) ([]Class, error) {
	if _, err := svc.courses.GetByID(ctx, courseID); err != nil {
		return nil, errors.Wrap(err, "finding course")
	}
	return svc.classes.FilterUpcomingGroupClassesByCourse(ctx, courseID, time.Now().UTC())
}

func (svc *Service) UpcomingGroupClassesForTutor(ctx context.Context, tutorID string) ([]Class, error) {
	return svc.classes.FilterUpcomingGroupClassesByTutor(ctx, tutorID, time.Now().UTC())
}

func (svc *Service) UpcomingGroupClassesForStudent(ctx context.Context, studentID string) ([]Class, error) {
	return svc.classes.FilterUpcomingGroupClassesByParticipant(ctx, studentID, time.Now().UTC())
}
