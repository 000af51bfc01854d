package course

import "time"

type Course struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Tutor            string    `json:"tutor"`
	StudentsEnrolled []string  `json:"students_enrolled"`
	CreatedAt        time.Time `json:"created_at"` // UTC
}

// IsEnrolled reports whether the given student is in the course's enrolled set.
func (c Course) IsEnrolled(studentID string) bool {
	for _, id := range c.StudentsEnrolled {
		if id == studentID {
			return true
		}
	}
	return false
}
