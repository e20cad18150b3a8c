package youte

import "context"

// Profile is a named API key.
type Profile struct {
	Name    string `json:"name"`
	Key     string `json:"key"`
	Default bool   `json:"default,omitempty"`
}

// Validate returns an error if the profile contains invalid fields.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return Errorf(EINVALID, "profile name required")
	}
	if p.Key == "" {
		return Errorf(EINVALID, "profile key required")
	}
	return nil
}

// ProfileService manages stored API keys.
type ProfileService interface {
	// CreateProfile stores a new key.
	// Returns ECONFLICT if the name or the key already exists.
	CreateProfile(ctx context.Context, p *Profile) error

	// FindProfiles returns all profiles ordered by name.
	FindProfiles(ctx context.Context) ([]*Profile, error)

	// FindProfile returns the named profile, or the default one when name
	// is empty. Returns ENOTFOUND if there is no such profile.
	FindProfile(ctx context.Context, name string) (*Profile, error)

	// SetDefault marks the named profile as the default.
	// Returns ENOTFOUND if the profile does not exist.
	SetDefault(ctx context.Context, name string) error

	// DeleteProfile removes the named profile.
	// Returns ENOTFOUND if the profile does not exist.
	DeleteProfile(ctx context.Context, name string) error
}
