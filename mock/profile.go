package mock

import (
	"context"

	"github.com/fwojciec/youte"
)

var _ youte.ProfileService = (*ProfileService)(nil)

// ProfileService is a mock implementation of youte.ProfileService.
type ProfileService struct {
	CreateProfileFn func(ctx context.Context, p *youte.Profile) error
	FindProfilesFn  func(ctx context.Context) ([]*youte.Profile, error)
	FindProfileFn   func(ctx context.Context, name string) (*youte.Profile, error)
	SetDefaultFn    func(ctx context.Context, name string) error
	DeleteProfileFn func(ctx context.Context, name string) error
}

func (s *ProfileService) CreateProfile(ctx context.Context, p *youte.Profile) error {
	return s.CreateProfileFn(ctx, p)
}

func (s *ProfileService) FindProfiles(ctx context.Context) ([]*youte.Profile, error) {
	return s.FindProfilesFn(ctx)
}

func (s *ProfileService) FindProfile(ctx context.Context, name string) (*youte.Profile, error) {
	return s.FindProfileFn(ctx, name)
}

func (s *ProfileService) SetDefault(ctx context.Context, name string) error {
	return s.SetDefaultFn(ctx, name)
}

func (s *ProfileService) DeleteProfile(ctx context.Context, name string) error {
	return s.DeleteProfileFn(ctx, name)
}
