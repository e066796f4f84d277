package domain

import "time"

// TimeEntry represents one stretch of tracked time against a project.
// A nil EndTime means the entry is currently running; at most one entry
// per owner may be running at any instant.
type TimeEntry struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	ProjectID   string     `json:"projectId"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Running reports whether the entry is still open.
func (e TimeEntry) Running() bool { return e.EndTime == nil }

// Duration returns the completed duration of the entry, or zero if it is
// still running. Live elapsed time for a running entry is Elapsed.
func (e TimeEntry) Duration() time.Duration {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

// Elapsed returns how much wall-clock time the entry covers as of now.
// For a completed entry this is its stored duration regardless of now.
// Never cached; callers re-evaluate at render time.
func Elapsed(e TimeEntry, now time.Time) time.Duration {
	if e.EndTime != nil {
		return e.EndTime.Sub(e.StartTime)
	}
	if now.Before(e.StartTime) {
		return 0
	}
	return now.Sub(e.StartTime)
}

// ActiveSession is the per-owner pointer to the single running entry.
// It is derived state: it must exist iff a TimeEntry with EntryID has a
// nil EndTime.
type ActiveSession struct {
	EntryID   string    `json:"entryId"`
	ProjectID string    `json:"projectId"`
	StartTime time.Time `json:"startTime"`
}

// TimeEntryWithProject joins an entry to its owning project for listings.
type TimeEntryWithProject struct {
	TimeEntry
	Project Project `json:"project"`
}

// ProjectWithStats is the read-side view of a project: total completed time
// plus the running entry when one belongs to this project. Recomputed on
// every read, never persisted.
type ProjectWithStats struct {
	Project
	TotalTime   time.Duration `json:"totalTime"`
	ActiveEntry *TimeEntry    `json:"activeEntry,omitempty"`
}

// CreateTimeEntryRequest starts tracking against a project. Entries are
// always created running.
type CreateTimeEntryRequest struct {
	ProjectID   string `json:"projectId"`
	Description string `json:"description,omitempty"`
}

// UpdateTimeEntryRequest carries a partial entry update; nil fields are
// left untouched. Setting EndTime on a running entry closes it.
type UpdateTimeEntryRequest struct {
	ProjectID   *string    `json:"projectId,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
}

// EditActiveRequest mutates the currently running entry in place.
type EditActiveRequest struct {
	ProjectID   *string `json:"projectId,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ClippedDuration returns how much of the entry's interval falls inside
// [windowStart, windowEnd). A running entry extends to now, still capped at
// windowEnd, so past-day queries treat it as ending with the day.
func ClippedDuration(e TimeEntry, windowStart, windowEnd, now time.Time) time.Duration {
	end := now
	if e.EndTime != nil {
		end = *e.EndTime
	}
	if end.After(windowEnd) {
		end = windowEnd
	}
	start := e.StartTime
	if start.Before(windowStart) {
		start = windowStart
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// Overlaps reports whether the entry's interval intersects
// [windowStart, windowEnd). A running entry is treated as extending to now.
func Overlaps(e TimeEntry, windowStart, windowEnd, now time.Time) bool {
	return ClippedDuration(e, windowStart, windowEnd, now) > 0
}

// DayWindow returns the half-open [00:00, 24:00) window of the calendar day
// containing t, in t's location.
func DayWindow(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// WeekWindow returns the half-open window of the ISO-style week containing t,
// starting Monday 00:00 in t's location.
func WeekWindow(t time.Time) (time.Time, time.Time) {
	start, _ := DayWindow(t)
	weekday := int(start.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	start = start.AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 7)
}
