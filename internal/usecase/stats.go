package usecase

import (
	"context"
	"time"

	"timekeeper/internal/domain"
)

// DaySummary aggregates one calendar day of tracked time. Each entry's
// interval is clipped to the day's window; a still-open entry extends to
// "now", or to the end of the day for past-day queries.
type DaySummary struct {
	Date    time.Time                     `json:"date"`
	Entries []domain.TimeEntryWithProject `json:"entries"`
	Total   time.Duration                 `json:"total"`
}

// ProjectsWithStats returns every project with its total completed time and
// a reference to the running entry when one belongs to it. Derived on every
// call; open entries contribute nothing to TotalTime.
func (e *Engine) ProjectsWithStats(ctx context.Context, owner string) ([]domain.ProjectWithStats, error) {
	projects, err := e.repo.ListProjects(ctx, owner)
	if err != nil {
		return nil, err
	}
	entries, err := e.repo.ListTimeEntries(ctx, owner)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]time.Duration, len(projects))
	running := make(map[string]*domain.TimeEntry, 1)
	for i := range entries {
		en := entries[i]
		if en.EndTime == nil {
			if _, ok := running[en.ProjectID]; !ok {
				running[en.ProjectID] = &entries[i]
			}
			continue
		}
		totals[en.ProjectID] += en.Duration()
	}

	out := make([]domain.ProjectWithStats, 0, len(projects))
	for _, p := range projects {
		out = append(out, domain.ProjectWithStats{
			Project:     p,
			TotalTime:   totals[p.ID],
			ActiveEntry: running[p.ID],
		})
	}
	return out, nil
}

// Day returns the timeline aggregation for the calendar day containing day.
// Entries are included when their interval overlaps the day's window, even
// when they started the day before.
func (e *Engine) Day(ctx context.Context, owner string, day time.Time) (DaySummary, error) {
	start, end := domain.DayWindow(day)
	now := e.clock.Now()

	joined, err := e.repo.ListTimeEntriesWithProject(ctx, owner)
	if err != nil {
		return DaySummary{}, err
	}

	summary := DaySummary{Date: start, Entries: []domain.TimeEntryWithProject{}}
	for _, je := range joined {
		d := domain.ClippedDuration(je.TimeEntry, start, end, now)
		if d == 0 {
			continue
		}
		summary.Entries = append(summary.Entries, je)
		summary.Total += d
	}
	return summary, nil
}

// TotalTracked sums tracked time clipped to [from, to). Open entries count
// up to "now" within the window.
func (e *Engine) TotalTracked(ctx context.Context, owner string, from, to time.Time) (time.Duration, error) {
	entries, err := e.repo.ListTimeEntries(ctx, owner)
	if err != nil {
		return 0, err
	}
	now := e.clock.Now()
	var total time.Duration
	for _, en := range entries {
		total += domain.ClippedDuration(en, from, to, now)
	}
	return total, nil
}

// TotalToday sums tracked time for the current calendar day.
func (e *Engine) TotalToday(ctx context.Context, owner string) (time.Duration, error) {
	start, end := domain.DayWindow(e.clock.Now())
	return e.TotalTracked(ctx, owner, start, end)
}

// TotalThisWeek sums tracked time for the current Monday-based week.
func (e *Engine) TotalThisWeek(ctx context.Context, owner string) (time.Duration, error) {
	start, end := domain.WeekWindow(e.clock.Now())
	return e.TotalTracked(ctx, owner, start, end)
}
