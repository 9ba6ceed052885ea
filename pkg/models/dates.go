package models

import (
	"fmt"
	"strings"
	"time"
)

// DateInterval is a calendar-date interval, inclusive at both ends.
type DateInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateInterval builds an interval from two calendar dates.
// It returns an error when end lies before start.
func NewDateInterval(start, end time.Time) (DateInterval, error) {
	start, end = CalendarDate(start), CalendarDate(end)
	if end.Before(start) {
		return DateInterval{}, fmt.Errorf("interval end %s before start %s",
			end.Format(DateLayout), start.Format(DateLayout))
	}
	return DateInterval{Start: start, End: end}, nil
}

// Contains reports whether the calendar date of t lies within the interval.
func (d DateInterval) Contains(t time.Time) bool {
	day := CalendarDate(t)
	return !day.Before(d.Start) && !day.After(d.End)
}

// Widen returns the interval extended by before days at the start and after days at the end.
func (d DateInterval) Widen(before, after int) DateInterval {
	return DateInterval{
		Start: d.Start.AddDate(0, 0, -before),
		End:   d.End.AddDate(0, 0, after),
	}
}

func (d DateInterval) String() string {
	return d.Start.Format(DateLayout) + ".." + d.End.Format(DateLayout)
}

// DateLayout is the ISO calendar-date layout used in payloads and output.
const DateLayout = "2006-01-02"

// CalendarDate drops the clock part of t, keeping its calendar date in UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var calendarDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	DateLayout,
	"02.01.2006",
	"2006/01/02",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// ParseCalendarDate parses the date formats document extraction commonly produces.
func ParseCalendarDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date value")
	}
	for _, layout := range calendarDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return CalendarDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
}
