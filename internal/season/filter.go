package season

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"athletics/internal/model"
)

// Level is a schedule level filter.
type Level string

const (
	Varsity Level = "Varsity"
	JV      Level = "JV"
	// Both shows every game, Freshman included.
	Both Level = "Both"
)

// ParseLevel reads a level filter, case-insensitively. Empty means Varsity.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "varsity":
		return Varsity, true
	case "jv":
		return JV, true
	case "both":
		return Both, true
	default:
		return "", false
	}
}

// GameLevel derives the level of a stored game from its event type: "JV",
// "Freshman" or "Varsity".
func GameLevel(eventType string) string {
	lower := strings.ToLower(eventType)
	switch {
	case strings.Contains(lower, "jv"), strings.Contains(lower, "junior varsity"):
		return "JV"
	case strings.Contains(lower, "freshman"), strings.Contains(lower, "frosh"):
		return "Freshman"
	default:
		return "Varsity"
	}
}

// Matches reports whether a game with the given event type passes the filter.
func (l Level) Matches(eventType string) bool {
	if l == Both {
		return true
	}
	return GameLevel(eventType) == string(l)
}

var (
	longDateRe  = regexp.MustCompile(`^(\w+)\s+(\d+),\s+(\d{4})$`)
	shortDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// ParseGameDate reads a stored GameEntry date ("Sep 5, 2026",
// "September 5, 2026" or "9/5/2026") as midnight in loc.
func ParseGameDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)

	var layouts []string
	if m := longDateRe.FindStringSubmatch(s); m != nil {
		s = m[1] + " " + m[2] + ", " + m[3]
		layouts = []string{"Jan 2, 2006", "January 2, 2006"}
	} else if shortDateRe.MatchString(s) {
		layouts = []string{"1/2/2006"}
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// KeysOf returns the distinct seasons of games, skipping unreadable dates.
func KeysOf(games []model.GameEntry) []Key {
	seen := make(map[Key]bool)
	var keys []Key
	for _, g := range games {
		d, ok := ParseGameDate(g.Date, time.UTC)
		if !ok {
			continue
		}
		k := KeyFor(d)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	Sort(keys)
	return keys
}

// Filter keeps the games in season k at level l, preserving order. Games
// with unreadable dates belong to no season and are dropped.
func Filter(games []model.GameEntry, k Key, l Level) []model.GameEntry {
	out := make([]model.GameEntry, 0, len(games))
	for _, g := range games {
		d, ok := ParseGameDate(g.Date, time.UTC)
		if !ok || KeyFor(d) != k || !l.Matches(g.EventType) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// UpcomingDays is the length of the ticker window after today.
const UpcomingDays = 14

// Upcoming collects games of catalog sports dated from today through
// today+UpcomingDays (inclusive) in loc, soonest first. Games on the same
// day are ordered by sport slug, then schedule order.
func Upcoming(sports map[string]model.SportRecord, now time.Time, loc *time.Location) []model.UpcomingGame {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	cutoff := today.AddDate(0, 0, UpcomingDays)

	out := make([]model.UpcomingGame, 0)
	for slug, rec := range sports {
		info, ok := model.LookupSport(slug)
		if !ok {
			continue
		}
		for _, g := range rec.Schedule {
			day, ok := ParseGameDate(g.Date, loc)
			if !ok || day.Before(today) || day.After(cutoff) {
				continue
			}
			out = append(out, model.UpcomingGame{Sport: slug, SportName: info.Name, Day: day, GameEntry: g})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].Sport < out[j].Sport
	})
	return out
}
