package dates

import (
	"testing"
	"time"
)

func TestService(t *testing.T) {
	s := Fixed(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	if got := s.Today(); got != "2026-01-01" {
		t.Errorf("Today = %q", got)
	}
	if got := s.Yesterday(); got != "2025-12-31" {
		t.Errorf("Yesterday = %q", got)
	}
	// 2026-01-01 is a Thursday, so it belongs to week 1 of 2026.
	if got := s.ISOWeek(); got != "2026-W01" {
		t.Errorf("ISOWeek = %q", got)
	}
}

func TestWeek_YearBoundary(t *testing.T) {
	// 2027-01-01 is a Friday and falls in the last ISO week of 2026.
	if got := Week(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)); got != "2026-W53" {
		t.Errorf("Week = %q", got)
	}
}

func TestParseDateArg(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"":           "2026-10-14",
		"today":      "2026-10-14",
		"Yesterday":  "2026-10-13",
		"tomorrow":   "2026-10-15",
		"2024-02-29": "2024-02-29",
	}
	for in, want := range cases {
		got, err := ParseDateArg(in, now)
		if err != nil {
			t.Errorf("ParseDateArg(%q): %v", in, err)
			continue
		}
		if got.Format(DateLayout) != want {
			t.Errorf("ParseDateArg(%q) = %s, want %s", in, got.Format(DateLayout), want)
		}
	}
	for _, bad := range []string{"2025-02-30", "14/10/2026", "next week"} {
		if _, err := ParseDateArg(bad, now); err == nil {
			t.Errorf("ParseDateArg(%q) should fail", bad)
		}
	}
}
