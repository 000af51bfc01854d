package inmemdb

import (
	"sync"

	"github.com/kasongo/elimu/core/course"
	"github.com/kasongo/elimu/core/notification"
	"github.com/kasongo/elimu/core/schedule"
	"github.com/kasongo/elimu/core/user"
)

type (
	DB struct {
		user         *userTable
		course       *courseTable
		request      *requestTable
		class        *classTable
		notification *notificationTable
	}

	userTable struct {
		t     map[string]*user.User
		mutex sync.RWMutex
	}

	courseTable struct {
		t     map[string]*course.Course
		mutex sync.RWMutex
	}

	requestTable struct {
		t     map[string]*schedule.ClassRequest
		mutex sync.RWMutex
	}

	classTable struct {
		t     map[string]*schedule.Class
		mutex sync.RWMutex
	}

	notificationTable struct {
		t     map[string]*notification.Notification
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{t: make(map[string]*user.User)},
		course:       &courseTable{t: make(map[string]*course.Course)},
		request:      &requestTable{t: make(map[string]*schedule.ClassRequest)},
		class:        &classTable{t: make(map[string]*schedule.Class)},
		notification: &notificationTable{t: make(map[string]*notification.Notification)},
	}
	return db, nil
}
