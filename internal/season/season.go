// Package season groups schedule dates into Fall, Winter and Spring seasons
// and filters schedules for display.
package season

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Kind is the part of the school year. Its value orders seasons that share
// a year: Spring < Fall < Winter.
type Kind int

const (
	Spring Kind = iota
	Fall
	Winter
)

func (k Kind) String() string {
	switch k {
	case Spring:
		return "Spring"
	case Fall:
		return "Fall"
	case Winter:
		return "Winter"
	default:
		return "Unknown"
	}
}

// Key identifies one season. Year is the calendar year the season starts in,
// so Winter 2025-26 has Year 2025.
type Key struct {
	Kind Kind
	Year int
}

// String renders "Fall 2025", "Winter 2025-26" or "Spring 2026".
func (k Key) String() string {
	if k.Kind == Winter {
		return fmt.Sprintf("Winter %d-%02d", k.Year, (k.Year+1)%100)
	}
	return fmt.Sprintf("%s %d", k.Kind, k.Year)
}

// SortValue orders keys chronologically.
func (k Key) SortValue() int {
	return k.Year*10 + int(k.Kind)
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(b []byte) error {
	parsed, ok := ParseKey(string(b))
	if !ok {
		return fmt.Errorf("season: invalid key %q", string(b))
	}
	*k = parsed
	return nil
}

var keyRe = regexp.MustCompile(`^(Fall|Winter|Spring) (\d{4})(?:-(\d{2}))?$`)

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, bool) {
	m := keyRe.FindStringSubmatch(s)
	if m == nil {
		return Key{}, false
	}
	year, _ := strconv.Atoi(m[2])
	switch m[1] {
	case "Fall":
		return Key{Fall, year}, m[3] == ""
	case "Spring":
		return Key{Spring, year}, m[3] == ""
	default:
		if m[3] == "" {
			return Key{}, false
		}
		next, _ := strconv.Atoi(m[3])
		if next != (year+1)%100 {
			return Key{}, false
		}
		return Key{Winter, year}, true
	}
}

// KeyFor returns the season containing the calendar date of t:
// Aug 1 to Nov 19 is Fall, Nov 20 to the end of February is Winter, and
// March through July is Spring.
func KeyFor(t time.Time) Key {
	year, month, day := t.Date()
	switch {
	case month >= time.March && month <= time.July:
		return Key{Spring, year}
	case month >= time.August && month <= time.October, month == time.November && day < 20:
		return Key{Fall, year}
	case month >= time.November:
		return Key{Winter, year}
	default:
		return Key{Winter, year - 1}
	}
}

const (
	windowMonthsBack  = 8
	windowMonthsAhead = 12
)

// Window lists every season touched between 8 months before and 12 months
// after now, oldest first. Each month is sampled on its first and last day
// so that months split between two seasons contribute both.
func Window(now time.Time) []Key {
	year, month, _ := now.Date()
	seen := make(map[Key]bool)
	var keys []Key
	for i := -windowMonthsBack; i <= windowMonthsAhead; i++ {
		first := time.Date(year, month+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		for _, d := range []time.Time{first, last} {
			k := KeyFor(d)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	Sort(keys)
	return keys
}

// Options merges the rolling Window with extra keys (typically the seasons
// of a sport's stored games), deduplicated and oldest first.
func Options(now time.Time, extra []Key) []Key {
	keys := Window(now)
	seen := make(map[Key]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range extra {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	Sort(keys)
	return keys
}

// Sort orders keys oldest first.
func Sort(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].SortValue() < keys[j].SortValue() })
}

// Default picks the earliest option that is not older than the season
// containing now, or the newest option if every one is in the past.
func Default(options []Key, now time.Time) (Key, bool) {
	if len(options) == 0 {
		return Key{}, false
	}
	current := KeyFor(now).SortValue()

	var best Key
	found := false
	latest := options[0]
	for _, k := range options {
		if k.SortValue() > latest.SortValue() {
			latest = k
		}
		if k.SortValue() >= current && (!found || k.SortValue() < best.SortValue()) {
			best = k
			found = true
		}
	}
	if found {
		return best, true
	}
	return latest, true
}

// Selection tracks the season a viewer is looking at. Until Choose is called
// the selection follows Default; after that it sticks.
type Selection struct {
	key    Key
	manual bool
}

// Choose records an explicit choice.
func (s *Selection) Choose(k Key) {
	s.key = k
	s.manual = true
}

// Manual reports whether Choose has been called.
func (s *Selection) Manual() bool {
	return s.manual
}

// Resolve returns the selected season. A manual choice is returned as-is,
// even if it is no longer among options.
func (s *Selection) Resolve(options []Key, now time.Time) (Key, bool) {
	if s.manual {
		return s.key, true
	}
	k, ok := Default(options, now)
	if ok {
		s.key = k
	}
	return k, ok
}
