package ics

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "athletics/internal/log"
)

// MaxOccurrences caps how many instances a single recurring event expands to.
const MaxOccurrences = 100

const (
	layoutUTC      = "20060102T150405Z"
	layoutFloating = "20060102T150405"
	layoutDate     = "20060102"
)

// Occurrences returns the DTSTART value of every instance of rec, in the same
// textual form as the record's own DTSTART (UTC, floating or date-only).
//
// A record without RRULE yields just its DTSTART. A recurring record whose
// start or rule cannot be understood also yields only its DTSTART, leaving
// the caller to decide whether that single value is usable. EXDATE values
// are removed from the expansion.
func Occurrences(rec Record) []string {
	raw := rec[PropDTStart]
	rule := rec[PropRRule]
	if raw == "" || rule == "" {
		return []string{raw}
	}

	start, layout, ok := parseStamp(raw)
	if !ok {
		return []string{raw}
	}

	opt, err := rrule.StrToROption(rule)
	if err != nil {
		appLog.Warn("ics: failed to parse RRULE, using first occurrence only", "rrule", rule, "err", err)
		return []string{raw}
	}
	opt.Dtstart = start
	if opt.Count <= 0 || opt.Count > MaxOccurrences {
		opt.Count = MaxOccurrences
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		appLog.Warn("ics: invalid RRULE, using first occurrence only", "rrule", rule, "err", err)
		return []string{raw}
	}

	var set rrule.Set
	set.RRule(r)
	for _, ex := range strings.Split(rec[PropExDate], ",") {
		if t, _, ok := parseStamp(strings.TrimSpace(ex)); ok {
			set.ExDate(t)
		}
	}

	out := make([]string, 0, 8)
	next := set.Iterator()
	for len(out) < MaxOccurrences {
		t, ok := next()
		if !ok {
			break
		}
		if layout == layoutUTC {
			t = t.UTC()
		}
		out = append(out, t.Format(layout))
	}
	if len(out) == 0 {
		// Every instance was excluded.
		return nil
	}
	return out
}

// parseStamp parses a DTSTART/EXDATE style value. Floating and date-only
// values are read as UTC wall-clock digits so that expansion never shifts
// them.
func parseStamp(v string) (time.Time, string, bool) {
	for _, layout := range []string{layoutUTC, layoutFloating, layoutDate} {
		if len(v) != len(layout) {
			continue
		}
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, layout, true
		}
	}
	return time.Time{}, "", false
}

// linkOverrides adds the RECURRENCE-ID of every override to the EXDATE of the
// recurring record sharing its UID. Records are updated in place.
func linkOverrides(recs []Record) {
	masters := make(map[string]Record)
	for _, r := range recs {
		uid := r[PropUID]
		if uid != "" && r[PropRRule] != "" && r[PropRecurrenceID] == "" {
			masters[uid] = r
		}
	}
	if len(masters) == 0 {
		return
	}

	for _, r := range recs {
		id := r[PropRecurrenceID]
		if id == "" {
			continue
		}
		master, ok := masters[r[PropUID]]
		if !ok {
			continue
		}
		master.set(PropExDate, inMasterForm(master, id, r[PropRecurrenceID+"_TZID"]), "")
	}
}

// inMasterForm rewrites a RECURRENCE-ID value into the textual form of the
// master's DTSTART (UTC or local wall clock) so EXDATE matching compares like
// with like.
func inMasterForm(master Record, id, idTZID string) string {
	t, layout, ok := parseStamp(id)
	if !ok {
		return id
	}
	_, masterLayout, ok := parseStamp(master[PropDTStart])
	if !ok || layout == masterLayout || layout == layoutDate || masterLayout == layoutDate {
		return id
	}

	switch {
	case masterLayout == layoutUTC:
		loc, err := time.LoadLocation(idTZID)
		if idTZID == "" || err != nil {
			return id
		}
		wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
		return wall.UTC().Format(layoutUTC)
	case layout == layoutUTC:
		tz := master[PropDTStartTZID]
		loc, err := time.LoadLocation(tz)
		if tz == "" || err != nil {
			return id
		}
		return t.In(loc).Format(layoutFloating)
	}
	return id
}
