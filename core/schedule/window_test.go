package schedule

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ParseTime(s)
	if err != nil {
		t.Fatalf("ParseTime(%q): %v", s, err)
	}
	return ts
}

func TestNewWindow(t *testing.T) {
	start := mustTime(t, "2025-01-01T10:00:00Z")
	w := NewWindow(start, 60)

	if !w.Start.Equal(start) {
		t.Errorf("Start = %v; want %v", w.Start, start)
	}
	if want := start.Add(time.Hour); !w.End.Equal(want) {
		t.Errorf("End = %v; want %v", w.End, want)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "RFC3339 UTC", in: "2025-01-01T10:00:00Z"},
		{name: "RFC3339 with offset", in: "2025-01-01T12:00:00+02:00"},
		{name: "empty", in: "", wantErr: true},
		{name: "date only", in: "2025-01-01", wantErr: true},
		{name: "no timezone", in: "2025-01-01T10:00:00", wantErr: true},
		{name: "garbage", in: "next tuesday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTime(tt.in)
			if tt.wantErr {
				if err != ErrInvalidTime {
					t.Errorf("err = %v; want ErrInvalidTime", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTime(%q): %v", tt.in, err)
			}
			if ts.Location() != time.UTC {
				t.Errorf("location = %v; want UTC", ts.Location())
			}
		})
	}

	// instants are normalized to UTC
	withOffset, _ := ParseTime("2025-01-01T12:00:00+02:00")
	utc, _ := ParseTime("2025-01-01T10:00:00Z")
	if !withOffset.Equal(utc) {
		t.Errorf("offset instant = %v; want %v", withOffset, utc)
	}
}

func TestWindowOverlaps(t *testing.T) {
	at := func(s string) time.Time { return mustTime(t, s) }

	tests := []struct {
		name string
		a, b Window
		want bool
	}{
		{
			name: "identical",
			a:    NewWindow(at("2025-01-01T10:00:00Z"), 60),
			b:    NewWindow(at("2025-01-01T10:00:00Z"), 60),
			want: true,
		},
		{
			name: "partial overlap",
			a:    NewWindow(at("2025-01-01T10:00:00Z"), 60),
			b:    NewWindow(at("2025-01-01T10:30:00Z"), 60),
			want: true,
		},
		{
			name: "contained",
			a:    NewWindow(at("2025-01-01T10:00:00Z"), 120),
			b:    NewWindow(at("2025-01-01T10:30:00Z"), 30),
			want: true,
		},
		{
			name: "back to back",
			a:    NewWindow(at("2025-01-01T10:00:00Z"), 60),
			b:    NewWindow(at("2025-01-01T11:00:00Z"), 60),
			want: false,
		},
		{
			name: "disjoint",
			a:    NewWindow(at("2025-01-01T10:00:00Z"), 60),
			b:    NewWindow(at("2025-01-01T12:00:00Z"), 60),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("a.Overlaps(b) = %v; want %v", got, tt.want)
			}
			// overlap is symmetric
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("b.Overlaps(a) = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	w := NewWindow(mustTime(t, "2025-01-01T10:00:00Z"), 60)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "start is included", at: w.Start, want: true},
		{name: "midpoint", at: w.Start.Add(30 * time.Minute), want: true},
		{name: "end is excluded", at: w.End, want: false},
		{name: "before", at: w.Start.Add(-time.Minute), want: false},
		{name: "after", at: w.End.Add(time.Minute), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v; want %v", tt.at, got, tt.want)
			}
		})
	}
}
