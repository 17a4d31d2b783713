package model

import (
	"encoding/json"
	"time"
)

const (
	Home = "Home"
	Away = "Away"

	// TimeTBD is stored when an event has no time-of-day component.
	TimeTBD = "TBD"
)

// GameEntry is one row of a persisted sport schedule.
type GameEntry struct {
	// Date is human readable, e.g. "Sep 5, 2026". Never empty once persisted.
	Date string `json:"date"`
	// Time is "7:00 PM" style or TimeTBD.
	Time     string `json:"time"`
	Opponent string `json:"opponent"`
	// HomeAway is Home or Away.
	HomeAway string `json:"homeAway"`
	// EventType is the space-joined level and category, e.g. "JV League".
	// It may be empty.
	EventType string `json:"eventType"`
}

// RosterEntry is one athlete on a sport roster.
type RosterEntry struct {
	Number   string `json:"number"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Year     string `json:"year"`
}

// SportRecord is the persisted document for one sport. Fields this program
// does not know about are kept in extra and written back untouched.
type SportRecord struct {
	Schedule    []GameEntry   `json:"schedule"`
	Roster      []RosterEntry `json:"roster"`
	Coach       string        `json:"coach,omitempty"`
	CoachEmail  string        `json:"coachEmail,omitempty"`
	Description string        `json:"description,omitempty"`
	Image       string        `json:"image,omitempty"`

	extra map[string]json.RawMessage
}

var sportRecordKeys = []string{"schedule", "roster", "coach", "coachEmail", "description", "image"}

type sportRecordAlias SportRecord

func (r *SportRecord) UnmarshalJSON(data []byte) error {
	var alias sportRecordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := unknownFields(data, sportRecordKeys)
	if err != nil {
		return err
	}
	*r = SportRecord(alias)
	r.extra = extra
	return nil
}

func (r SportRecord) MarshalJSON() ([]byte, error) {
	alias := sportRecordAlias(r)
	if alias.Schedule == nil {
		alias.Schedule = []GameEntry{}
	}
	if alias.Roster == nil {
		alias.Roster = []RosterEntry{}
	}
	return mergeFields(alias, r.extra)
}

// Settings is the persisted site settings document. Branding fields and the
// feed configuration are typed; anything else (theme, stats, social links) is
// carried through as raw JSON.
type Settings struct {
	SchoolName     string `json:"schoolName"`
	Mascot         string `json:"mascot"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	Logo           string `json:"logo"`
	ICalURL        string `json:"icalUrl,omitempty"`
	Timezone       string `json:"timezone,omitempty"`

	extra map[string]json.RawMessage
}

var settingsKeys = []string{"schoolName", "mascot", "primaryColor", "secondaryColor", "logo", "icalUrl", "timezone"}

type settingsAlias Settings

func (s *Settings) UnmarshalJSON(data []byte) error {
	var alias settingsAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := unknownFields(data, settingsKeys)
	if err != nil {
		return err
	}
	*s = Settings(alias)
	s.extra = extra
	return nil
}

func (s Settings) MarshalJSON() ([]byte, error) {
	return mergeFields(settingsAlias(s), s.extra)
}

// Extra returns the raw value of a field this program does not model.
func (s Settings) Extra(key string) (json.RawMessage, bool) {
	v, ok := s.extra[key]
	return v, ok
}

// UpcomingGame is a GameEntry placed on the cross-sport ticker.
type UpcomingGame struct {
	Sport     string    `json:"sport"`
	SportName string    `json:"sportName"`
	Day       time.Time `json:"day"`
	GameEntry
}

func unknownFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func mergeFields(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, typed := fields[k]; !typed {
			fields[k] = raw
		}
	}
	return json.Marshal(fields)
}
