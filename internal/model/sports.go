package model

// Sport describes one program the site has a page for.
type Sport struct {
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Season string `json:"season"`
}

// Sports is the catalog of programs, in menu order.
var Sports = []Sport{
	{"football", "Football", "Fall"},
	{"boys-basketball", "Boys Basketball", "Winter"},
	{"girls-basketball", "Girls Basketball", "Winter"},
	{"boys-soccer", "Boys Soccer", "Fall"},
	{"girls-soccer", "Girls Soccer", "Fall"},
	{"field-hockey", "Field Hockey", "Fall"},
	{"baseball", "Baseball", "Spring"},
	{"softball", "Softball", "Spring"},
	{"volleyball", "Volleyball", "Fall"},
	{"track-field", "Track & Field", "Spring"},
	{"boys-wrestling", "Boys Wrestling", "Winter"},
	{"girls-wrestling", "Girls Wrestling", "Winter"},
	{"lacrosse", "Lacrosse", "Spring"},
	{"cross-country", "Cross Country", "Fall"},
	{"swimming", "Swimming", "Winter"},
}

// LookupSport finds a catalog entry by slug.
func LookupSport(slug string) (Sport, bool) {
	for _, s := range Sports {
		if s.Slug == slug {
			return s, true
		}
	}
	return Sport{}, false
}
