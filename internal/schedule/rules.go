package schedule

import (
	"regexp"
	"strings"
)

// SportRule maps a sport slug to the summary substrings that identify it.
type SportRule struct {
	Slug     string
	Keywords []string
}

// SportRules is checked in order against the lower-cased summary; the first
// rule with a matching keyword wins. Gendered and multi-word rules come
// before the bare-word fallbacks below.
var SportRules = []SportRule{
	{"football", []string{"football"}},
	{"boys-basketball", []string{"boys basketball", "boys' basketball", "boys bball"}},
	{"girls-basketball", []string{"girls basketball", "girls' basketball", "girls bball"}},
	{"boys-soccer", []string{"boys soccer", "boys' soccer"}},
	{"girls-soccer", []string{"girls soccer", "girls' soccer"}},
	{"field-hockey", []string{"field hockey"}},
	{"baseball", []string{"baseball"}},
	{"softball", []string{"softball"}},
	{"volleyball", []string{"volleyball"}},
	{"track-field", []string{"track & field", "track and field", "track/field", "indoor track", "outdoor track"}},
	{"boys-wrestling", []string{"boys wrestling", "boys' wrestling"}},
	{"girls-wrestling", []string{"girls wrestling", "girls' wrestling"}},
	{"lacrosse", []string{"lacrosse"}},
	{"cross-country", []string{"cross country", "cross-country", " xc "}},
	{"swimming", []string{"swimming", " swim "}},
}

// fallbackRules apply when no SportRules entry matched. A bare "wrestling"
// is assumed to be the boys team.
var fallbackRules = []SportRule{
	{"boys-wrestling", []string{"wrestling"}},
	{"swimming", []string{"swimming"}},
	{"lacrosse", []string{"lacrosse"}},
	{"cross-country", []string{"cross country", "cross-country"}},
	{"track-field", []string{"track"}},
}

// DetectSport returns the sport slug for an event summary.
func DetectSport(summary string) (string, bool) {
	lower := strings.ToLower(summary)
	if slug, ok := matchRules(SportRules, lower); ok {
		return slug, true
	}
	return matchRules(fallbackRules, lower)
}

func matchRules(rules []SportRule, lower string) (string, bool) {
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Slug, true
			}
		}
	}
	return "", false
}

const (
	LevelVarsity  = "Varsity"
	LevelJV       = "JV"
	LevelFreshman = "Freshman"
)

type patternRule struct {
	re    *regexp.Regexp
	label string
}

var levelRules = []patternRule{
	{regexp.MustCompile(`\(jv\)|jv\s|jv$|\bjunior varsity\b`), LevelJV},
	{regexp.MustCompile(`\(fr\)|\bfrosh\b|\bfreshman\b`), LevelFreshman},
	{regexp.MustCompile(`\(v\)|\bvarsity\b`), LevelVarsity},
}

// DetectLevel returns JV, Freshman or Varsity when the summary says so, and
// "" otherwise. Display code treats "" as Varsity.
func DetectLevel(summary string) string {
	return firstLabel(levelRules, strings.ToLower(summary))
}

const (
	CategoryPlayoff    = "Playoff"
	CategoryTournament = "Tournament"
	CategoryScrimmage  = "Scrimmage"
	CategoryNonLeague  = "Non-League"
	CategoryLeague     = "League"
)

var categoryRules = []patternRule{
	{regexp.MustCompile(`playoff|post.?season`), CategoryPlayoff},
	{regexp.MustCompile(`tournament|tourney`), CategoryTournament},
	{regexp.MustCompile(`scrimmage`), CategoryScrimmage},
	{regexp.MustCompile(`non.league`), CategoryNonLeague},
	{regexp.MustCompile(`league`), CategoryLeague},
}

// DetectCategory classifies an event from its summary and description.
func DetectCategory(summary, description string) string {
	return firstLabel(categoryRules, strings.ToLower(summary+" "+description))
}

// EventType joins level and category, dropping empty parts.
func EventType(level, category string) string {
	switch {
	case level == "":
		return category
	case category == "":
		return level
	default:
		return level + " " + category
	}
}

func firstLabel(rules []patternRule, text string) string {
	for _, r := range rules {
		if r.re.MatchString(text) {
			return r.label
		}
	}
	return ""
}
