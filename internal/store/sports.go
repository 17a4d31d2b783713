package store

import (
	"path/filepath"

	"github.com/gobuffalo/nulls"

	"athletics/internal/model"
)

// SportsFile holds every sport's record keyed by slug.
const SportsFile = "sportsData.json"

type sportsDoc = map[string]model.SportRecord

// SportsStore persists per-sport schedules, rosters and program info.
type SportsStore struct {
	doc *Document[sportsDoc]
}

func NewSportsStore(dataDir string) *SportsStore {
	return &SportsStore{
		doc: NewDocument(filepath.Join(dataDir, SportsFile), func() sportsDoc { return sportsDoc{} }),
	}
}

// All returns every stored sport record.
func (s *SportsStore) All() (map[string]model.SportRecord, error) {
	all, err := s.doc.Load()
	if all == nil {
		all = sportsDoc{}
	}
	return all, err
}

// Get returns one sport's record.
func (s *SportsStore) Get(slug string) (model.SportRecord, bool, error) {
	all, err := s.doc.Load()
	if err != nil {
		return model.SportRecord{}, false, err
	}
	rec, ok := all[slug]
	return rec, ok, nil
}

// ReplaceSchedules overwrites the schedule of every sport in schedules with a
// single write. Sports not in schedules, and every other field of the
// touched sports, are left alone.
func (s *SportsStore) ReplaceSchedules(schedules map[string][]model.GameEntry) error {
	if len(schedules) == 0 {
		return nil
	}
	return s.update(func(all sportsDoc) {
		for slug, games := range schedules {
			rec := all[slug]
			rec.Schedule = games
			all[slug] = rec
		}
	})
}

// SetSchedule replaces one sport's schedule.
func (s *SportsStore) SetSchedule(slug string, games []model.GameEntry) error {
	return s.ReplaceSchedules(map[string][]model.GameEntry{slug: games})
}

// SetRoster replaces one sport's roster.
func (s *SportsStore) SetRoster(slug string, roster []model.RosterEntry) error {
	return s.update(func(all sportsDoc) {
		rec := all[slug]
		rec.Roster = roster
		all[slug] = rec
	})
}

// InfoUpdate changes program info. Fields that are not Valid keep their
// stored value.
type InfoUpdate struct {
	Coach       nulls.String `json:"coach"`
	CoachEmail  nulls.String `json:"coachEmail"`
	Description nulls.String `json:"description"`
	Image       nulls.String `json:"image"`
}

// UpdateInfo merges u into one sport's record.
func (s *SportsStore) UpdateInfo(slug string, u InfoUpdate) error {
	return s.update(func(all sportsDoc) {
		rec := all[slug]
		if u.Coach.Valid {
			rec.Coach = u.Coach.String
		}
		if u.CoachEmail.Valid {
			rec.CoachEmail = u.CoachEmail.String
		}
		if u.Description.Valid {
			rec.Description = u.Description.String
		}
		if u.Image.Valid {
			rec.Image = u.Image.String
		}
		all[slug] = rec
	})
}

func (s *SportsStore) update(fn func(all sportsDoc)) error {
	return s.doc.Update(func(all *sportsDoc) error {
		if *all == nil {
			*all = sportsDoc{}
		}
		fn(*all)
		return nil
	})
}
