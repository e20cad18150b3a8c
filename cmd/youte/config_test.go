package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/youte"
	main "github.com/fwojciec/youte/cmd/youte"
	"github.com/fwojciec/youte/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigAddKeyCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("stores the key", func(t *testing.T) {
		t.Parallel()

		var created *youte.Profile
		profiles := &mock.ProfileService{
			CreateProfileFn: func(_ context.Context, p *youte.Profile) error {
				p.Default = true
				created = p
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Profiles: profiles}

		err := (&main.ConfigAddKeyCmd{Name: "work", Key: "AIza123"}).Run(deps)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "work", created.Name)
		assert.Equal(t, "AIza123", created.Key)
		assert.Contains(t, stdout.String(), `Added key "work" (default)`)
	})

	t.Run("marks a later key as default on request", func(t *testing.T) {
		t.Parallel()

		var defaulted string
		profiles := &mock.ProfileService{
			CreateProfileFn: func(context.Context, *youte.Profile) error { return nil },
			SetDefaultFn: func(_ context.Context, name string) error {
				defaulted = name
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Profiles: profiles}

		err := (&main.ConfigAddKeyCmd{Name: "home", Key: "AIza456", Default: true}).Run(deps)
		require.NoError(t, err)
		assert.Equal(t, "home", defaulted)
		assert.Contains(t, stdout.String(), "(default)")
	})

	t.Run("reports duplicate keys", func(t *testing.T) {
		t.Parallel()

		profiles := &mock.ProfileService{
			CreateProfileFn: func(context.Context, *youte.Profile) error {
				return youte.Errorf(youte.ECONFLICT, "API key already stored as %q", "work")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Profiles: profiles}

		err := (&main.ConfigAddKeyCmd{Name: "again", Key: "AIza123"}).Run(deps)
		assert.Equal(t, youte.ECONFLICT, youte.ErrorCode(err))
		assert.Contains(t, stderr.String(), `already stored as "work"`)
	})
}

func TestConfigListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("masks keys and marks the default", func(t *testing.T) {
		t.Parallel()

		profiles := &mock.ProfileService{
			FindProfilesFn: func(context.Context) ([]*youte.Profile, error) {
				return []*youte.Profile{
					{Name: "home", Key: "AIzaHOME9876"},
					{Name: "work", Key: "AIzaWORK1234", Default: true},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Profiles: profiles}

		require.NoError(t, (&main.ConfigListCmd{}).Run(deps))
		assert.Contains(t, stdout.String(), "home  ****9876\n")
		assert.Contains(t, stdout.String(), "work  ****1234  (default)\n")
		assert.NotContains(t, stdout.String(), "AIza")
	})

	t.Run("explains how to add a key", func(t *testing.T) {
		t.Parallel()

		profiles := &mock.ProfileService{
			FindProfilesFn: func(context.Context) ([]*youte.Profile, error) { return nil, nil },
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Profiles: profiles}

		require.NoError(t, (&main.ConfigListCmd{}).Run(deps))
		assert.Contains(t, stdout.String(), "youte config add-key")
	})
}

func TestConfigRemoveCmd_Run(t *testing.T) {
	t.Parallel()

	profiles := &mock.ProfileService{
		DeleteProfileFn: func(_ context.Context, name string) error {
			return youte.Errorf(youte.ENOTFOUND, "profile %q not found", name)
		},
	}

	stderr := &bytes.Buffer{}
	deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Profiles: profiles}

	err := (&main.ConfigRemoveCmd{Name: "gone"}).Run(deps)
	assert.Equal(t, youte.ENOTFOUND, youte.ErrorCode(err))
	assert.Contains(t, stderr.String(), `profile "gone" not found`)
}
