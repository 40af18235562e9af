package service

import (
	"strings"
	"time"

	"github.com/sakif/event-manager/internal/apperror"
	"github.com/sakif/event-manager/internal/model"
)

// dateLayouts are the accepted spellings of a date, tried in order. Stored
// events and filter criteria go through the same parser.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseDay returns the calendar day s names, as midnight UTC. The year,
// month and day are taken as written: "2024-03-01T23:30:00-05:00" is
// 2024-03-01, not the following day in UTC.
func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// eventMatcher is a parsed EventFilter.
type eventMatcher struct {
	title    string
	from     time.Time
	hasFrom  bool
	until    time.Time
	hasUntil bool
}

func newEventMatcher(f model.EventFilter) (*eventMatcher, error) {
	m := &eventMatcher{title: strings.ToLower(f.Title)}

	if f.StartDate != "" {
		day, ok := parseDay(f.StartDate)
		if !ok {
			return nil, apperror.ValidationFailed("startDate", "Invalid startDate: expected a date such as 2024-01-31.")
		}
		m.from, m.hasFrom = day, true
	}

	if f.EndDate != "" {
		day, ok := parseDay(f.EndDate)
		if !ok {
			return nil, apperror.ValidationFailed("endDate", "Invalid endDate: expected a date such as 2024-01-31.")
		}
		m.until, m.hasUntil = day, true
	}

	return m, nil
}

// match applies every active criterion (AND). Title is a case-insensitive
// substring; startDate keeps events starting on or after the day; endDate
// keeps events ending on or before the day. An event whose own date cannot
// be parsed never satisfies a date criterion.
func (m *eventMatcher) match(e *model.Event) bool {
	if m.title != "" && !strings.Contains(strings.ToLower(e.Title), m.title) {
		return false
	}

	if m.hasFrom {
		start, ok := parseDay(e.StartDate)
		if !ok || start.Before(m.from) {
			return false
		}
	}

	if m.hasUntil {
		end, ok := parseDay(e.EndDate)
		if !ok || end.After(m.until) {
			return false
		}
	}

	return true
}

// filterEvents returns the events matching f, in their original order.
// The result is never nil.
func filterEvents(events []model.Event, f model.EventFilter) ([]model.Event, error) {
	m, err := newEventMatcher(f)
	if err != nil {
		return nil, err
	}

	out := make([]model.Event, 0, len(events))
	for i := range events {
		if m.match(&events[i]) {
			out = append(out, events[i])
		}
	}
	return out, nil
}
