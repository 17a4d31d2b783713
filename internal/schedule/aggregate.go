package schedule

import (
	"sort"

	"athletics/internal/ics"
	"athletics/internal/model"
)

// SportCount is the number of games written for one sport.
type SportCount struct {
	Sport string `json:"sport"`
	Count int    `json:"count"`
}

// Summary is the outcome of aggregating one feed.
type Summary struct {
	// Schedules holds the new, date-ordered schedule of every sport that had
	// at least one game in the feed. Other sports are absent.
	Schedules map[string][]model.GameEntry

	// Imported lists the sports in Schedules in the order they first
	// appeared in the feed.
	Imported     []SportCount
	Unrecognized int
	Skipped      int
	// Total is the number of VEVENT blocks in the feed.
	Total int
}

// Aggregate classifies every record and groups the games by sport, each
// sport sorted by start. Games starting at the same moment keep feed order.
func Aggregate(recs []ics.Record, c *Classifier) Summary {
	sum := Summary{
		Schedules: make(map[string][]model.GameEntry),
		Total:     len(recs),
	}

	grouped := make(map[string][]Game)
	var order []string

	for _, rec := range recs {
		outcome, games := c.Classify(rec)
		switch outcome {
		case Skipped:
			sum.Skipped++
		case Unrecognized:
			sum.Unrecognized++
		case Accepted:
			for _, g := range games {
				if _, seen := grouped[g.Sport]; !seen {
					order = append(order, g.Sport)
				}
				grouped[g.Sport] = append(grouped[g.Sport], g)
			}
		}
	}

	for _, sport := range order {
		games := grouped[sport]
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].Wall.Before(games[j].Wall)
		})

		entries := make([]model.GameEntry, len(games))
		for i, g := range games {
			entries[i] = g.Entry
		}
		sum.Schedules[sport] = entries
		sum.Imported = append(sum.Imported, SportCount{Sport: sport, Count: len(entries)})
	}

	if sum.Imported == nil {
		sum.Imported = []SportCount{}
	}
	return sum
}
