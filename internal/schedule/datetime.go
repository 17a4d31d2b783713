package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"athletics/internal/model"
)

const (
	// DateLayout renders GameEntry.Date, e.g. "Sep 5, 2026".
	DateLayout = "Jan 2, 2006"
	// TimeLayout renders GameEntry.Time, e.g. "7:00 PM".
	TimeLayout = "3:04 PM"
)

var dtstartRe = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})(?:T(\d{2})(\d{2}))?`)

// Start is a resolved DTSTART.
type Start struct {
	Date string
	Time string
	// Wall is the local wall-clock start expressed in UTC, for ordering.
	Wall time.Time
}

// ResolveStart renders a raw DTSTART value as a local date and time.
//
// A value ending in "Z" is an instant and is converted to loc. Any other
// value (TZID-qualified or floating) already holds the intended wall-clock
// digits and is rendered as-is. Values without a time of day get
// model.TimeTBD. ok is false when the date portion cannot be read.
func ResolveStart(value string, loc *time.Location) (Start, bool) {
	if loc == nil {
		loc = time.UTC
	}
	isUTC := strings.HasSuffix(value, "Z")
	m := dtstartRe.FindStringSubmatch(strings.TrimSuffix(value, "Z"))
	if m == nil {
		return Start{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hasTime := m[4] != ""
	var hour, minute int
	if hasTime {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
	}
	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 {
		return Start{}, false
	}

	wall := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if wall.Day() != day {
		// Feb 30 and friends.
		return Start{}, false
	}

	if isUTC {
		local := wall.In(loc)
		wall = time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), 0, 0, time.UTC)
	}

	s := Start{Date: wall.Format(DateLayout), Time: model.TimeTBD, Wall: wall}
	if hasTime {
		s.Time = wall.Format(TimeLayout)
	}
	return s, true
}
