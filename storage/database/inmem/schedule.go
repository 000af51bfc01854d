package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/kasongo/elimu/core/schedule"
)

type requestRepository struct {
	db *requestTable
}

func NewRequestRepository(db *DB) schedule.RequestRepository {
	return &requestRepository{db: db.request}
}

func (repo *requestRepository) CreateRequest(_ context.Context, req schedule.ClassRequest) (schedule.ClassRequest, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.t[req.ID] = &req
	return req, nil
}

func (repo *requestRepository) GetRequestByID(_ context.Context, id string) (schedule.ClassRequest, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if req, ok := repo.db.t[id]; ok {
		return *req, nil
	}
	return schedule.ClassRequest{}, schedule.ErrRequestNotFound
}

func (repo *requestRepository) FindRequestInWindow(_ context.Context, studentID string, w schedule.Window) (schedule.ClassRequest, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, req := range repo.db.t {
		if req.Student == studentID && w.Contains(req.Time) {
			return *req, nil
		}
	}
	return schedule.ClassRequest{}, schedule.ErrRequestNotFound
}

func (repo *requestRepository) UpdateRequestStatus(_ context.Context, id string, status schedule.RequestStatus) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	req, ok := repo.db.t[id]
	if !ok {
		return schedule.ErrRequestNotFound
	}
	req.Status = status
	return nil
}

func (repo *requestRepository) FilterPendingRequestsByTutor(_ context.Context, tutorID string) ([]schedule.ClassRequest, error) {
	return repo.filterPending(func(req schedule.ClassRequest) bool { return req.Tutor == tutorID })
}

func (repo *requestRepository) FilterPendingRequestsByStudent(_ context.Context, studentID string) ([]schedule.ClassRequest, error) {
	return repo.filterPending(func(req schedule.ClassRequest) bool { return req.Student == studentID })
}

func (repo *requestRepository) filterPending(match func(schedule.ClassRequest) bool) ([]schedule.ClassRequest, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var reqs []schedule.ClassRequest
	for _, req := range repo.db.t {
		if req.Status == schedule.StatusPending && match(*req) {
			reqs = append(reqs, *req)
		}
	}
	sortRequests(reqs)
	return reqs, nil
}

func sortRequests(reqs []schedule.ClassRequest) {
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Time.Before(reqs[j].Time) })
}

type classRepository struct {
	db *classTable
}

func NewClassRepository(db *DB) schedule.ClassRepository {
	return &classRepository{db: db.class}
}

func (repo *classRepository) CreateClass(_ context.Context, cls schedule.Class) (schedule.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.t[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, cls schedule.Class) (schedule.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[cls.ID]; !ok {
		return schedule.Class{}, schedule.ErrClassNotFound
	}
	repo.db.t[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) GetGroupClassByCourse(_ context.Context, courseID string) (schedule.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cls := range repo.db.t {
		if cls.Type == schedule.TypeGroup && cls.Course == courseID {
			return *cls, nil
		}
	}
	return schedule.Class{}, schedule.ErrClassNotFound
}

func (repo *classRepository) FilterGroupClassesInWindow(_ context.Context, courseID string, w schedule.Window) ([]schedule.Class, error) {
	return repo.filter(func(cls schedule.Class) bool {
		return cls.Type == schedule.TypeGroup && cls.Course == courseID && cls.Window().Overlaps(w)
	})
}

func (repo *classRepository) FilterAcceptedClassesByTutor(_ context.Context, tutorID string) ([]schedule.Class, error) {
	return repo.filter(func(cls schedule.Class) bool {
		return cls.Tutor == tutorID && (cls.Type == schedule.TypeGroup || cls.Status == schedule.StatusAccepted)
	})
}

func (repo *classRepository) FilterAcceptedClassesByStudent(_ context.Context, studentID string) ([]schedule.Class, error) {
	return repo.filter(func(cls schedule.Class) bool {
		switch cls.Type {
		case schedule.TypePersonal:
			return cls.Student == studentID && cls.Status == schedule.StatusAccepted
		case schedule.TypeGroup:
			return cls.HasParticipant(studentID)
		}
		return false
	})
}

func (repo *classRepository) FilterUpcomingGroupClassesByCourse(_ context.Context, courseID string, now time.Time) ([]schedule.Class, error) {
	return repo.filter(func(cls schedule.Class) bool {
		return cls.Type == schedule.TypeGroup && cls.Course == courseID && !cls.Time.Before(now)
	})
}

func (repo *classRepository) FilterUpcomingGroupClassesByTutor(_ context.Context, tutorID string, now time.Time) ([]schedule.Class, error) {
	return repo.filter(func(cls schedule.Class) bool {
		return cls.Type == schedule.TypeGroup && cls.Tutor == tutorID && !cls.Time.Before(now)
	})
}

func (repo *classRepository) FilterUpcomingGroupClassesByParticipant(_ context.Context, studentID string, now time.Time) ([]schedule.Class, error) {
	return repo.filter(func(cls schedule.Class) bool {
		return cls.Type == schedule.TypeGroup && cls.HasParticipant(studentID) && !cls.Time.Before(now)
	})
}

func (repo *classRepository) DeleteExpiredClasses(_ context.Context, now time.Time) ([]string, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var ids []string
	for id, cls := range repo.db.t {
		if !cls.ExpiresAt.IsZero() && !cls.ExpiresAt.After(now) {
			delete(repo.db.t, id)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (repo *classRepository) filter(match func(schedule.Class) bool) ([]schedule.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var classes []schedule.Class
	for _, cls := range repo.db.t {
		if match(*cls) {
			classes = append(classes, *cls)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Time.Before(classes[j].Time) })
	return classes, nil
}
