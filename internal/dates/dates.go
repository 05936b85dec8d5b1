// Package dates supplies today, yesterday and ISO week identifiers for notes.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the YYYY-MM-DD layout used in note frontmatter and filenames.
const DateLayout = "2006-01-02"

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Clock returns the current time.
type Clock func() time.Time

// Service formats dates relative to a clock.
type Service struct {
	now Clock
}

// New returns a Service over clock. A nil clock uses time.Now.
func New(clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{now: clock}
}

// Fixed returns a Service whose clock always reports t.
func Fixed(t time.Time) *Service {
	return New(func() time.Time { return t })
}

// Now returns the clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// Today returns today's date as YYYY-MM-DD.
func (s *Service) Today() string { return s.now().Format(DateLayout) }

// Yesterday returns yesterday's date as YYYY-MM-DD.
func (s *Service) Yesterday() string { return s.now().AddDate(0, 0, -1).Format(DateLayout) }

// ISOWeek returns the clock's ISO 8601 week as YYYY-Www. The week is always
// derived from the date itself.
func (s *Service) ISOWeek() string { return Week(s.now()) }

// Week formats t's ISO week as YYYY-Www.
func Week(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !dateRegex.MatchString(s) {
		return time.Time{}, fmt.Errorf("dates: invalid date %q", s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: invalid date %q: %w", s, err)
	}
	return t, nil
}

// ParseDateArg parses "today", "yesterday", "tomorrow" or YYYY-MM-DD relative
// to now. An empty argument means today.
func ParseDateArg(arg string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	}
	return ParseDate(arg)
}
