package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kasongo/elimu/core"
	"github.com/kasongo/elimu/core/course"
	"github.com/kasongo/elimu/core/user"
)

// NewTestConfig returns a self-contained config suitable for tests.
func NewTestConfig() *core.Config {
	return &core.Config{
		Debug:     true,
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Elimu",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	name, tutorID string,
	studentIDs ...string,
) course.Course {
	t.Helper()

	crs := course.Course{
		ID:               uuid.NewString(),
		Name:             name,
		Tutor:            tutorID,
		StudentsEnrolled: studentIDs,
		CreatedAt:        time.Now().UTC(),
	}
	crs, err := repo.CreateCourse(context.Background(), crs)
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	return crs
}

// NewNopLogger returns a core.Logger that discards everything. Handy in
// TestMain where no *testing.T exists yet.
func NewNopLogger() core.Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// NewTestLogger returns a core.Logger that forwards everything to t.Log.
func NewTestLogger(t *testing.T) core.Logger {
	return testLogger{t: t}
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	if len(args) > 0 {
		l.t.Logf("%s: %s %v", level, msg, args)
	} else {
		l.t.Logf("%s: %s", level, msg)
	}
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) {
	l.log("FATAL", msg, args)
	l.t.FailNow()
}
