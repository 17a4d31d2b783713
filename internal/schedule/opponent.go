package schedule

import (
	"regexp"
	"strings"

	"athletics/internal/model"
)

var (
	// "- JV", "-Varsity". The trailing \b keeps "-Franklin" intact.
	dashLevelRe  = regexp.MustCompile(`(?i)\s*-\s*(?:varsity|jv|junior varsity|freshman|frosh|fr)\b\s*`)
	parenLevelRe = regexp.MustCompile(`(?i)\s*\([vjfr]{1,3}\)\s*`)

	awayRe = regexp.MustCompile(`(?i)\s+(?:@|at)\s+(.+)$`)
	homeRe = regexp.MustCompile(`(?i)\s+vs\.?\s+(.+)$`)

	locationSideRe = regexp.MustCompile(`(?i)^(home|away)(?:\s*[-–—].*)?$`)
)

// ParseOpponent extracts the opponent and Home/Away from an event summary.
//
// "X @ Y" and "X at Y" are away games against Y unless Y is literally
// "home"; "X vs. Y" is a home game. Anything else is a home game against the
// whole (level-stripped) summary.
func ParseOpponent(summary string) (opponent, homeAway string) {
	cleaned := dashLevelRe.ReplaceAllString(summary, " ")
	cleaned = strings.TrimSpace(parenLevelRe.ReplaceAllString(cleaned, " "))

	if m := awayRe.FindStringSubmatch(cleaned); m != nil {
		opp := strings.TrimSpace(m[1])
		if !strings.EqualFold(opp, "home") {
			return opp, model.Away
		}
	}
	if m := homeRe.FindStringSubmatch(cleaned); m != nil {
		return strings.TrimSpace(m[1]), model.Home
	}
	return cleaned, model.Home
}

// LocationSide reports whether a LOCATION value names the side outright:
// "Home", "Away", or either followed by a dash and a qualifier
// ("Away - Visitor Field").
func LocationSide(location string) (string, bool) {
	m := locationSideRe.FindStringSubmatch(strings.TrimSpace(location))
	if m == nil {
		return "", false
	}
	if strings.EqualFold(m[1], "away") {
		return model.Away, true
	}
	return model.Home, true
}
