package datelabel

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		wantOK    bool
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"range wins over shorter codes", "05-071225", true, day(2025, 12, 5), day(2025, 12, 7)},
		{"range inside project name", "Gala Dinner 05-071225 Berlin", true, day(2025, 12, 5), day(2025, 12, 7)},
		{"full date", "150625", true, day(2025, 6, 15), day(2025, 6, 15)},
		{"month year", "0625 Event", true, day(2025, 6, 1), day(2025, 6, 30)},
		{"month year leap february", "Trade fair 0224", true, day(2024, 2, 1), day(2024, 2, 29)},
		{"month year december", "1225", true, day(2025, 12, 1), day(2025, 12, 31)},
		{"invalid month in range", "05-071325", false, time.Time{}, time.Time{}},
		{"invalid month in full date", "151325", false, time.Time{}, time.Time{}},
		{"invalid month in month year", "1325 Launch", false, time.Time{}, time.Time{}},
		{"day 31 in 30-day month", "310425", false, time.Time{}, time.Time{}},
		{"range end in 30-day month", "29-310625", false, time.Time{}, time.Time{}},
		{"range end before start", "07-051225", false, time.Time{}, time.Time{}},
		{"invalid range does not fall back to full date", "31-010625", false, time.Time{}, time.Time{}},
		{"invalid full date does not fall back to month year", "011325", false, time.Time{}, time.Time{}},
		{"day zero", "000625", false, time.Time{}, time.Time{}},
		{"no date code", "Annual General Meeting", false, time.Time{}, time.Time{}},
		{"empty", "", false, time.Time{}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.label)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v (got %v)", tt.label, ok, tt.wantOK, got)
			}
			if !ok {
				return
			}
			if !got.Start.Equal(tt.wantStart) || !got.End.Equal(tt.wantEnd) {
				t.Errorf("Parse(%q) = %s, want %s..%s", tt.label, got,
					tt.wantStart.Format("2006-01-02"), tt.wantEnd.Format("2006-01-02"))
			}
			if got.End.Before(got.Start) {
				t.Errorf("Parse(%q) end before start: %s", tt.label, got)
			}
		})
	}
}
