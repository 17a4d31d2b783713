package store

import (
	"encoding/json"
	"path/filepath"

	"athletics/internal/apperr"
	"athletics/internal/model"
)

const SettingsFile = "settings.json"

// DefaultSettings is served until an administrator saves settings.
func DefaultSettings() model.Settings {
	return model.Settings{
		SchoolName:     "Lancaster Catholic High School",
		Mascot:         "Crusaders",
		PrimaryColor:   "#581C87",
		SecondaryColor: "#FBBF24",
		Logo:           "/lchs-banner-logo.png",
	}
}

// SettingsStore persists site branding and the schedule feed settings.
type SettingsStore struct {
	doc *Document[model.Settings]
}

func NewSettingsStore(dataDir string) *SettingsStore {
	return &SettingsStore{
		doc: NewDocument(filepath.Join(dataDir, SettingsFile), DefaultSettings),
	}
}

// Get returns the stored settings, or DefaultSettings before the first save.
func (s *SettingsStore) Get() (model.Settings, error) {
	return s.doc.Load()
}

// Update merges a JSON object into the stored settings. Top-level keys in
// patch replace stored ones; keys absent from patch keep their stored value.
func (s *SettingsStore) Update(patch json.RawMessage) (model.Settings, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil || fields == nil {
		return model.Settings{}, apperr.FromErr(apperr.ErrBadRequest, "settings must be a JSON object", err, nil)
	}

	var out model.Settings
	err := s.doc.Update(func(cur *model.Settings) error {
		data, err := json.Marshal(cur)
		if err != nil {
			return err
		}
		merged := make(map[string]json.RawMessage)
		if err := json.Unmarshal(data, &merged); err != nil {
			return err
		}
		for k, v := range fields {
			merged[k] = v
		}
		data, err = json.Marshal(merged)
		if err != nil {
			return err
		}

		var next model.Settings
		if err := json.Unmarshal(data, &next); err != nil {
			return apperr.FromErr(apperr.ErrBadRequest, "invalid settings", err, nil)
		}
		*cur = next
		out = next
		return nil
	})
	return out, err
}
