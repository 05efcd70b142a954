package notify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Window is a fixed wall-clock time of day at which a dispatch runs.
type Window struct {
	Hour   int
	Minute int
}

// Schedule holds the daily dispatch windows in a fixed location. Windows are
// derived from wall-clock time at each tick and never persisted.
type Schedule struct {
	windows []Window
	loc     *time.Location
}

// ParseSchedule parses a comma-separated list of HH:MM times, e.g.
// "10:00,20:00".
func ParseSchedule(spec string, loc *time.Location) (*Schedule, error) {
	if loc == nil {
		loc = time.Local
	}

	parts := strings.Split(spec, ",")
	windows := make([]Window, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		hm := strings.Split(part, ":")
		if len(hm) != 2 {
			return nil, fmt.Errorf("invalid dispatch time %q, expected HH:MM", part)
		}

		hour, err := strconv.Atoi(hm[0])
		if err != nil || hour < 0 || hour > 23 {
			return nil, fmt.Errorf("invalid hour in dispatch time %q", part)
		}
		minute, err := strconv.Atoi(hm[1])
		if err != nil || minute < 0 || minute > 59 {
			return nil, fmt.Errorf("invalid minute in dispatch time %q", part)
		}

		windows = append(windows, Window{Hour: hour, Minute: minute})
	}

	if len(windows) == 0 {
		return nil, fmt.Errorf("no dispatch times in %q", spec)
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Hour != windows[j].Hour {
			return windows[i].Hour < windows[j].Hour
		}
		return windows[i].Minute < windows[j].Minute
	})

	return &Schedule{windows: windows, loc: loc}, nil
}

// Next returns the earliest window instant strictly after now. Missed
// windows are not backfilled; a process that was down simply waits for the
// next scheduled instant.
func (s *Schedule) Next(now time.Time) time.Time {
	now = now.In(s.loc)

	for dayOffset := 0; ; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		for _, w := range s.windows {
			instant := time.Date(day.Year(), day.Month(), day.Day(), w.Hour, w.Minute, 0, 0, s.loc)
			if instant.After(now) {
				return instant
			}
		}
	}
}

// Previous returns the window instant immediately before the given one. The
// notifier uses it as the eligibility cutoff: a record notified at or after
// it already went out in the current cadence.
func (s *Schedule) Previous(window time.Time) time.Time {
	window = window.In(s.loc)

	for dayOffset := 0; ; dayOffset-- {
		day := window.AddDate(0, 0, dayOffset)
		for i := len(s.windows) - 1; i >= 0; i-- {
			w := s.windows[i]
			instant := time.Date(day.Year(), day.Month(), day.Day(), w.Hour, w.Minute, 0, 0, s.loc)
			if instant.Before(window) {
				return instant
			}
		}
	}
}
