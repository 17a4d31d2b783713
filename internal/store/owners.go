package store

import (
	"path/filepath"
	"sort"

	"athletics/internal/auth"
)

const OwnersFile = "pageOwners.json"

type ownersDoc = map[string]auth.PasswordHash

// OwnerStore persists page-owner credentials keyed by sport slug.
type OwnerStore struct {
	doc *Document[ownersDoc]
}

func NewOwnerStore(dataDir string) *OwnerStore {
	return &OwnerStore{
		doc: NewDocument(filepath.Join(dataDir, OwnersFile), func() ownersDoc { return ownersDoc{} }),
	}
}

// Sports lists the sports that have an owner, sorted.
func (s *OwnerStore) Sports() ([]string, error) {
	owners, err := s.doc.Load()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(owners))
	for sport := range owners {
		out = append(out, sport)
	}
	sort.Strings(out)
	return out, nil
}

func (s *OwnerStore) Get(sport string) (auth.PasswordHash, bool, error) {
	owners, err := s.doc.Load()
	if err != nil {
		return auth.PasswordHash{}, false, err
	}
	h, ok := owners[sport]
	return h, ok, nil
}

func (s *OwnerStore) Set(sport string, h auth.PasswordHash) error {
	return s.doc.Update(func(owners *ownersDoc) error {
		if *owners == nil {
			*owners = ownersDoc{}
		}
		(*owners)[sport] = h
		return nil
	})
}

// Remove deletes a sport's owner. Removing a missing owner is not an error.
func (s *OwnerStore) Remove(sport string) error {
	return s.doc.Update(func(owners *ownersDoc) error {
		delete(*owners, sport)
		return nil
	})
}

// Stores bundles the documents under one data directory.
type Stores struct {
	Sports   *SportsStore
	Settings *SettingsStore
	Owners   *OwnerStore
}

// Open returns the stores rooted at dataDir. Files are created on first
// write.
func Open(dataDir string) *Stores {
	return &Stores{
		Sports:   NewSportsStore(dataDir),
		Settings: NewSettingsStore(dataDir),
		Owners:   NewOwnerStore(dataDir),
	}
}
