package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athletics/internal/model"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"": Varsity, "varsity": Varsity, "JV": JV, "both": Both, " Both ": Both}
	for in, want := range tests {
		got, ok := ParseLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseLevel("freshman")
	assert.False(t, ok)
}

func TestGameLevel(t *testing.T) {
	assert.Equal(t, "JV", GameLevel("JV League"))
	assert.Equal(t, "JV", GameLevel("Junior Varsity"))
	assert.Equal(t, "Freshman", GameLevel("Freshman Scrimmage"))
	assert.Equal(t, "Varsity", GameLevel("Varsity Playoff"))
	assert.Equal(t, "Varsity", GameLevel("League"))
	assert.Equal(t, "Varsity", GameLevel(""))
}

func TestParseGameDate(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	for _, s := range []string{"Sep 5, 2026", "September 5, 2026", "9/5/2026", "09/05/2026", " Sep  5, 2026 "} {
		d, ok := ParseGameDate(s, ny)
		require.True(t, ok, s)
		assert.Equal(t, time.Date(2026, time.September, 5, 0, 0, 0, 0, ny), d, s)
	}
	for _, s := range []string{"", "TBD", "2026-09-05", "Sep 31, 2026", "13/1/2026", "Foo 5, 2026"} {
		_, ok := ParseGameDate(s, ny)
		assert.False(t, ok, s)
	}
}

var schedule = []model.GameEntry{
	{Date: "Nov 19, 2025", Opponent: "A", EventType: "League"},
	{Date: "Nov 20, 2025", Opponent: "B", EventType: "JV League"},
	{Date: "Feb 15, 2026", Opponent: "C"},
	{Date: "Dec 1, 2025", Opponent: "D", EventType: "Freshman"},
	{Date: "TBD", Opponent: "E"},
}

func TestKeysOf(t *testing.T) {
	assert.Equal(t, []Key{{Fall, 2025}, {Winter, 2025}}, KeysOf(schedule))
}

func TestFilter(t *testing.T) {
	winter := Key{Winter, 2025}

	opponents := func(games []model.GameEntry) []string {
		out := []string{}
		for _, g := range games {
			out = append(out, g.Opponent)
		}
		return out
	}

	assert.Equal(t, []string{"C"}, opponents(Filter(schedule, winter, Varsity)))
	assert.Equal(t, []string{"B"}, opponents(Filter(schedule, winter, JV)))
	assert.Equal(t, []string{"B", "C", "D"}, opponents(Filter(schedule, winter, Both)))
	assert.Equal(t, []string{"A"}, opponents(Filter(schedule, Key{Fall, 2025}, Both)))
	assert.Empty(t, Filter(schedule, Key{Spring, 2026}, Both))
}

func TestUpcoming(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 11pm on Sep 30 in New York is already Oct 1 in UTC.
	now := time.Date(2026, time.October, 1, 3, 0, 0, 0, time.UTC)

	sports := map[string]model.SportRecord{
		"football": {Schedule: []model.GameEntry{
			{Date: "Sep 29, 2026", Opponent: "past"},
			{Date: "Sep 30, 2026", Opponent: "today"},
			{Date: "Oct 14, 2026", Opponent: "last day"},
			{Date: "Oct 15, 2026", Opponent: "too late"},
			{Date: "TBD", Opponent: "unknown"},
		}},
		"boys-soccer": {Schedule: []model.GameEntry{
			{Date: "Oct 3, 2026", Opponent: "soccer"},
			{Date: "Sep 30, 2026", Opponent: "soccer today"},
		}},
		"quidditch": {Schedule: []model.GameEntry{{Date: "Oct 2, 2026", Opponent: "not in catalog"}}},
	}

	got := Upcoming(sports, now, ny)
	var opponents []string
	for _, g := range got {
		opponents = append(opponents, g.Opponent)
	}
	assert.Equal(t, []string{"soccer today", "today", "soccer", "last day"}, opponents)
	assert.Equal(t, "Boys Soccer", got[0].SportName)
	assert.Equal(t, "boys-soccer", got[0].Sport)
}

func TestUpcoming_Empty(t *testing.T) {
	got := Upcoming(nil, time.Now(), nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
