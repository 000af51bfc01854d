package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kasongo/elimu/core/schedule"
	testutil "github.com/kasongo/elimu/tests"
)

func TestSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	mkClass := func(typ schedule.ClassType, expiresAt time.Time) schedule.Class {
		cls := schedule.Class{
			ID:        uuid.NewString(),
			Type:      typ,
			Course:    f.course.ID,
			Tutor:     f.tutor.ID,
			Time:      now.Add(-time.Hour),
			Duration:  60,
			ExpiresAt: expiresAt,
			CreatedAt: now.Add(-time.Hour),
		}
		if typ == schedule.TypePersonal {
			cls.Student = f.student.ID
			cls.Status = schedule.StatusAccepted
		}
		cls, err := f.classes.CreateClass(ctx, cls)
		if err != nil {
			t.Fatalf("CreateClass(): %v", err)
		}
		return cls
	}

	expired := mkClass(schedule.TypeGroup, now.Add(-time.Minute))
	live := mkClass(schedule.TypeGroup, now.Add(time.Hour))
	personal := mkClass(schedule.TypePersonal, time.Time{}) // no expiry

	sweeper := schedule.NewSweeper(f.classes, testutil.NewTestLogger(t), time.Minute)
	sweeper.Sweep(ctx, now)

	if _, err := f.classes.GetGroupClassByCourse(ctx, f.course.ID); err != nil {
		t.Errorf("live group class was swept: %v", err)
	}

	remaining, err := f.classes.FilterAcceptedClassesByTutor(ctx, f.tutor.ID)
	if err != nil {
		t.Fatalf("FilterAcceptedClassesByTutor(): %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("len(remaining) = %d; want 2", len(remaining))
	}
	for _, cls := range remaining {
		if cls.ID == expired.ID {
			t.Errorf("class %s should have been swept", expired.ID)
		}
	}
	ids := map[string]bool{remaining[0].ID: true, remaining[1].ID: true}
	if !ids[live.ID] || !ids[personal.ID] {
		t.Errorf("remaining = %v; want %s and %s", ids, live.ID, personal.ID)
	}
}

func TestSweeper_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(t)
	now := time.Now().UTC()

	cls := schedule.Class{
		ID:        uuid.NewString(),
		Type:      schedule.TypeGroup,
		Course:    f.course.ID,
		Tutor:     f.tutor.ID,
		Time:      now.Add(-2 * time.Hour),
		Duration:  60,
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.Add(-2 * time.Hour),
	}
	if _, err := f.classes.CreateClass(ctx, cls); err != nil {
		t.Fatalf("CreateClass(): %v", err)
	}

	// the first sweep fires on start, no tick needed; the loop outlives the
	// test body so it gets a logger that never touches t
	schedule.NewSweeper(f.classes, testutil.NewNopLogger(), time.Hour).Start(ctx)

	deadline := time.After(2 * time.Second)
	for {
		if _, err := f.classes.GetGroupClassByCourse(context.Background(), f.course.ID); err == schedule.ErrClassNotFound {
			return
		}
		select {
		case <-deadline:
			t.Fatal("expired class still present after startup sweep")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
