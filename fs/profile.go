package fs

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/fwojciec/youte"
)

// Ensure ProfileStore implements youte.ProfileService at compile time.
var _ youte.ProfileService = (*ProfileStore)(nil)

// ProfileStore keeps API key profiles in a JSON file. Every change rewrites
// the whole file atomically.
type ProfileStore struct {
	mu   sync.Mutex
	path string
}

type profileFile struct {
	Profiles []*youte.Profile `json:"profiles"`
}

// NewProfileStore creates a ProfileStore backed by the file at path.
// The file is created on the first change.
func NewProfileStore(path string) *ProfileStore {
	return &ProfileStore{path: path}
}

// Path returns the backing file path.
func (s *ProfileStore) Path() string {
	return s.path
}

func (s *ProfileStore) CreateProfile(ctx context.Context, p *youte.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return err
	}
	for _, existing := range profiles {
		if existing.Name == p.Name {
			return youte.Errorf(youte.ECONFLICT, "profile %q already exists", p.Name)
		}
		if existing.Key == p.Key {
			return youte.Errorf(youte.ECONFLICT, "API key already stored as %q", existing.Name)
		}
	}

	profile := *p
	profile.Default = len(profiles) == 0
	profiles = append(profiles, &profile)
	if err := s.save(profiles); err != nil {
		return err
	}
	p.Default = profile.Default
	return nil
}

func (s *ProfileStore) FindProfiles(ctx context.Context) ([]*youte.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *ProfileStore) FindProfile(ctx context.Context, name string) (*youte.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if (name == "" && p.Default) || (name != "" && p.Name == name) {
			return p, nil
		}
	}
	if name == "" {
		return nil, youte.Errorf(youte.ENOTFOUND, "no default API key configured")
	}
	return nil, youte.Errorf(youte.ENOTFOUND, "profile %q not found", name)
}

func (s *ProfileStore) SetDefault(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return err
	}
	found := false
	for _, p := range profiles {
		p.Default = p.Name == name
		found = found || p.Default
	}
	if !found {
		return youte.Errorf(youte.ENOTFOUND, "profile %q not found", name)
	}
	return s.save(profiles)
}

func (s *ProfileStore) DeleteProfile(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return err
	}
	kept := profiles[:0]
	for _, p := range profiles {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(profiles) {
		return youte.Errorf(youte.ENOTFOUND, "profile %q not found", name)
	}
	return s.save(kept)
}

func (s *ProfileStore) load() ([]*youte.Profile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var f profileFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, youte.WrapError(youte.ECONFIG, err, "profile file %s is malformed", s.path)
	}
	sort.Slice(f.Profiles, func(i, j int) bool { return f.Profiles[i].Name < f.Profiles[j].Name })
	return f.Profiles, nil
}

func (s *ProfileStore) save(profiles []*youte.Profile) error {
	data, err := json.MarshalIndent(profileFile{Profiles: profiles}, "", "  ")
	if err != nil {
		return err
	}

	f, err := CreateAtomic(s.path)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Abort()
		return err
	}
	// Temporary files are created 0600, which the key file keeps.
	return f.Commit()
}
