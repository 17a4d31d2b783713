package ics

import (
	"bytes"
	"regexp"
	"strings"

	ical "github.com/arran4/golang-ical"

	appLog "athletics/internal/log"
)

// Record is one VEVENT reduced to its properties: upper-cased property name to
// trimmed raw value. A TZID parameter on a property is stored under the
// sidecar key "<NAME>_TZID". Repeated properties keep the last value, except
// EXDATE whose values are comma-joined.
type Record map[string]string

const (
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStartTZID = "DTSTART_TZID"
	PropDescription = "DESCRIPTION"
	PropLocation    = "LOCATION"
	PropStatus      = "STATUS"
	PropRRule       = "RRULE"
	PropExDate      = "EXDATE"
	PropUID         = "UID"

	// PropRecurrenceID marks a record that replaces one instance of the
	// series sharing its UID.
	PropRecurrenceID = "RECURRENCE-ID"
)

// Parse turns a calendar payload into event records. It never fails: a
// payload without any VEVENT yields no records.
//
// Well-formed calendars go through golang-ical. Payloads the library rejects
// (fragments without VCALENDAR, stray lines, truncated downloads) fall back to
// a line scanner that only looks at BEGIN:VEVENT ... END:VEVENT spans.
//
// An instance replaced by a RECURRENCE-ID record is added to its series'
// EXDATE, so only the replacement describes it.
func Parse(body []byte) []Record {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	recs, err := parseStrict(body)
	if err != nil || (len(recs) == 0 && bytes.Contains(body, []byte("BEGIN:VEVENT"))) {
		if err != nil {
			appLog.Debug("ics strict parse failed, using lenient scanner", "err", err)
		}
		recs = parseLenient(string(body))
	}
	linkOverrides(recs)
	return recs
}

func parseStrict(body []byte) ([]Record, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := cal.Events()
	out := make([]Record, 0, len(events))
	for _, ev := range events {
		rec := make(Record)
		for _, p := range ev.Properties {
			var tzid string
			if tz, ok := p.ICalParameters["TZID"]; ok && len(tz) > 0 {
				tzid = tz[0]
			}
			rec.set(p.IANAToken, p.Value, tzid)
		}
		out = append(out, rec)
	}
	return out, nil
}

var (
	veventRe = regexp.MustCompile(`(?s)BEGIN:VEVENT(.*?)END:VEVENT`)
	tzidRe   = regexp.MustCompile(`(?i)TZID=([^;:]+)`)
)

// Unfold normalizes line endings to "\n" and joins folded continuation lines
// (a line break followed by a space or tab).
func Unfold(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\n ", "")
	return strings.ReplaceAll(text, "\n\t", "")
}

func parseLenient(text string) []Record {
	matches := veventRe.FindAllStringSubmatch(Unfold(text), -1)
	out := make([]Record, 0, len(matches))
	for _, m := range matches {
		rec := make(Record)
		for _, line := range strings.Split(m[1], "\n") {
			ci := strings.Index(line, ":")
			if ci == -1 {
				continue
			}
			nameFull := strings.TrimSpace(line[:ci])
			var tzid string
			if tm := tzidRe.FindStringSubmatch(nameFull); tm != nil {
				tzid = tm[1]
			}
			base, params, _ := strings.Cut(nameFull, ";")
			value := line[ci+1:]
			if isText(base, params) {
				value = ical.FromText(value)
			}
			rec.set(base, value, tzid)
		}
		out = append(out, rec)
	}
	return out
}

// nonTextProps are the properties whose default value type is not TEXT.
// TEXT values are unescaped the way golang-ical does it.
var nonTextProps = map[string]bool{
	"ATTACH": true, "TZURL": true, "URL": true, "GEO": true,
	"PERCENT-COMPLETE": true, "PRIORITY": true, "REPEAT": true, "SEQUENCE": true,
	"COMPLETED": true, "DTEND": true, "DUE": true, PropDTStart: true,
	PropRecurrenceID: true, PropExDate: true, "RDATE": true, "CREATED": true,
	"DTSTAMP": true, "LAST-MODIFIED": true, "DURATION": true, "TRIGGER": true,
	"FREEBUSY": true, "TZOFFSETFROM": true, "TZOFFSETTO": true,
	"ATTENDEE": true, "ORGANIZER": true,
}

var valueParamRe = regexp.MustCompile(`(?i)(?:^|;)VALUE=([^;]+)`)

func isText(name, params string) bool {
	if m := valueParamRe.FindStringSubmatch(params); m != nil {
		return strings.EqualFold(strings.TrimSpace(m[1]), "TEXT")
	}
	return !nonTextProps[strings.ToUpper(strings.TrimSpace(name))]
}

func (r Record) set(name, value, tzid string) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return
	}
	value = strings.TrimSpace(value)
	if name == PropExDate && r[name] != "" {
		value = r[name] + "," + value
	}
	r[name] = value
	if tzid != "" {
		r[name+"_TZID"] = strings.Trim(strings.TrimSpace(tzid), `"`)
	}
}
