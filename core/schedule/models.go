package schedule

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kasongo/elimu/core"
)

type ClassType string

const (
	TypePersonal ClassType = "Personal"
	TypeGroup    ClassType = "Group"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusAccepted RequestStatus = "Accepted"
	StatusRejected RequestStatus = "Rejected"
)

// ClassRequest is a student's proposal for a Personal or Group session.
// It is created Pending and terminally mutated by the tutor's decision;
// resolved requests are never re-opened or deleted.
type ClassRequest struct {
	ID        string        `json:"id"`
	Student   string        `json:"student"`
	Tutor     string        `json:"tutor"`
	Course    string        `json:"course"`
	Type      ClassType     `json:"type"`
	Time      time.Time     `json:"time"`
	Duration  int           `json:"duration"` // minutes
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"` // UTC
}

func (r ClassRequest) Window() Window {
	return NewWindow(r.Time, r.Duration)
}

// Class is a scheduled live session. Personal classes require Student and
// Status; Group classes track Participants instead and are live from creation,
// expiring ExpiresAt (CreatedAt + Duration).
type Class struct {
	ID           string        `json:"id"`
	Type         ClassType     `json:"type"`
	Course       string        `json:"course"`
	Tutor        string        `json:"tutor"`
	Student      string        `json:"student,omitempty"`      // Personal only
	Participants []string      `json:"participants,omitempty"` // Group only
	Time         time.Time     `json:"time"`
	Duration     int           `json:"duration"` // minutes
	ClassLink    string        `json:"class_link,omitempty"`
	Status       RequestStatus `json:"status,omitempty"` // Personal only
	ExpiresAt    time.Time     `json:"expires_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"` // UTC
}

func (c Class) Window() Window {
	return NewWindow(c.Time, c.Duration)
}

func (c Class) HasParticipant(studentID string) bool {
	for _, id := range c.Participants {
		if id == studentID {
			return true
		}
	}
	return false
}

// AddParticipant adds a student with set semantics; duplicates are no-ops.
func (c *Class) AddParticipant(studentID string) {
	if !c.HasParticipant(studentID) {
		c.Participants = append(c.Participants, studentID)
	}
}

// NewClassRequest contains information needed to submit a ClassRequest.
type NewClassRequest struct {
	Type     ClassType `json:"type" validate:"required,oneof=Personal Group"`
	Time     string    `json:"time" validate:"required"`
	Duration int       `json:"duration" validate:"required,min=1"`
}

func (ncr *NewClassRequest) Validate(validate *validator.Validate) error {
	ncr.Time = core.CleanString(ncr.Time)
	return validate.Struct(ncr)
}

// RequestDecision is the tutor's accept/reject verdict on a pending request.
type RequestDecision struct {
	Status    RequestStatus `json:"status" validate:"required,oneof=Accepted Rejected"`
	ClassLink string        `json:"class_link" validate:"omitempty,url"`
}

func (rd *RequestDecision) Validate(validate *validator.Validate) error {
	rd.ClassLink = core.CleanString(rd.ClassLink)
	return validate.Struct(rd)
}

// DecisionResult is returned to the tutor after a decision lands.
type DecisionResult struct {
	Message string    `json:"message"`
	Type    ClassType `json:"type"`
}

// NewGroupClass contains information needed for a tutor to schedule a
// group session directly, outside the request/accept flow.
type NewGroupClass struct {
	Time      string `json:"time" validate:"required"`
	Duration  int    `json:"duration" validate:"required,min=1"`
	ClassLink string `json:"class_link" validate:"omitempty,url"`
}

func (ngc *NewGroupClass) Validate(validate *validator.Validate) error {
	ngc.Time = core.CleanString(ngc.Time)
	ngc.ClassLink = core.CleanString(ngc.ClassLink)
	return validate.Struct(ngc)
}
