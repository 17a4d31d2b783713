package schedule

import (
	"strings"
	"time"

	"athletics/internal/ics"
	"athletics/internal/model"
)

// Outcome is what happened to one calendar event.
type Outcome int

const (
	// Accepted events produce one or more games.
	Accepted Outcome = iota
	// Skipped events were understood but rejected: cancelled, missing
	// SUMMARY/DTSTART, or an unreadable date.
	Skipped
	// Unrecognized events matched no sport.
	Unrecognized
	// Excluded events belong to a sport other than the one requested.
	Excluded
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Skipped:
		return "skipped"
	case Unrecognized:
		return "unrecognized"
	case Excluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Game is one classified game before it is grouped into a schedule.
type Game struct {
	Sport string
	Entry model.GameEntry
	Wall  time.Time
}

// Classifier turns calendar events into games.
type Classifier struct {
	loc  *time.Location
	only string
}

// NewClassifier returns a Classifier rendering UTC times in loc. When only is
// non-empty, events for other sports are Excluded.
func NewClassifier(loc *time.Location, only string) *Classifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{loc: loc, only: only}
}

// Classify inspects one event. Recurring events yield one game per
// occurrence; occurrences with unreadable dates are dropped, and an event
// left with none is Skipped.
func (c *Classifier) Classify(rec ics.Record) (Outcome, []Game) {
	if strings.EqualFold(rec[ics.PropStatus], "CANCELLED") {
		return Skipped, nil
	}

	summary := rec[ics.PropSummary]
	if summary == "" || rec[ics.PropDTStart] == "" {
		return Skipped, nil
	}

	sport, ok := DetectSport(summary)
	if !ok {
		return Unrecognized, nil
	}
	if c.only != "" && sport != c.only {
		return Excluded, nil
	}

	opponent, homeAway := ParseOpponent(summary)
	if side, ok := LocationSide(rec[ics.PropLocation]); ok {
		homeAway = side
	}
	eventType := EventType(DetectLevel(summary), DetectCategory(summary, rec[ics.PropDescription]))

	var games []Game
	for _, raw := range ics.Occurrences(rec) {
		start, ok := ResolveStart(raw, c.loc)
		if !ok {
			continue
		}
		games = append(games, Game{
			Sport: sport,
			Wall:  start.Wall,
			Entry: model.GameEntry{
				Date:      start.Date,
				Time:      start.Time,
				Opponent:  opponent,
				HomeAway:  homeAway,
				EventType: eventType,
			},
		})
	}
	if len(games) == 0 {
		return Skipped, nil
	}
	return Accepted, games
}
