// Package datelabel extracts calendar-date intervals from short human-written labels,
// such as project names that embed a date code.
//
// Supported codes, tried in this order:
//   - DD-DDMMYY  a day range within one month ("Gala 05-071225" = 5..7 Dec 2025)
//   - DDMMYY     a single day ("Dinner 150625" = 15 Jun 2025)
//   - MMYY       a whole month ("Roadshow 0625" = 1..30 Jun 2025)
//
// Years are two digits and always interpreted as 20YY. MMYY is a substring of the
// longer codes, so the longer codes must be tried first.
package datelabel

import (
	"regexp"
	"strconv"
	"time"

	"opsconsole/pkg/models"
)

var (
	rangePattern     = regexp.MustCompile(`(\d{2})-(\d{2})(\d{2})(\d{2})`)
	fullDatePattern  = regexp.MustCompile(`(\d{2})(\d{2})(\d{2})`)
	monthYearPattern = regexp.MustCompile(`(\d{2})(\d{2})`)
)

// Parse returns the interval encoded in label. The first code that textually matches
// decides the result: if it names an impossible date, ok is false and no shorter code
// is tried.
func Parse(label string) (interval models.DateInterval, ok bool) {
	if m := rangePattern.FindStringSubmatch(label); m != nil {
		return parseRange(m[1], m[2], m[3], m[4])
	}
	if m := fullDatePattern.FindStringSubmatch(label); m != nil {
		return parseFullDate(m[1], m[2], m[3])
	}
	if m := monthYearPattern.FindStringSubmatch(label); m != nil {
		return parseMonthYear(m[1], m[2])
	}
	return models.DateInterval{}, false
}

func parseRange(startDay, endDay, month, year string) (models.DateInterval, bool) {
	start, ok := makeDate(year, month, startDay)
	if !ok {
		return models.DateInterval{}, false
	}
	end, ok := makeDate(year, month, endDay)
	if !ok {
		return models.DateInterval{}, false
	}
	interval, err := models.NewDateInterval(start, end)
	if err != nil {
		return models.DateInterval{}, false
	}
	return interval, true
}

func parseFullDate(day, month, year string) (models.DateInterval, bool) {
	date, ok := makeDate(year, month, day)
	if !ok {
		return models.DateInterval{}, false
	}
	return models.DateInterval{Start: date, End: date}, true
}

func parseMonthYear(month, year string) (models.DateInterval, bool) {
	first, ok := makeDate(year, month, "01")
	if !ok {
		return models.DateInterval{}, false
	}
	// Day 0 of the following month is the last day of this one.
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return models.DateInterval{Start: first, End: last}, true
}

// makeDate builds a date from two-digit tokens, rejecting values time.Date would normalize.
func makeDate(yy, mm, dd string) (time.Time, bool) {
	year, _ := strconv.Atoi(yy)
	month, _ := strconv.Atoi(mm)
	day, _ := strconv.Atoi(dd)
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	date := time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}
