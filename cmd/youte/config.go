package main

import (
	"fmt"

	"github.com/fwojciec/youte"
)

// Run executes the config add-key command.
func (c *ConfigAddKeyCmd) Run(deps *Dependencies) error {
	p := &youte.Profile{Name: c.Name, Key: c.Key}
	if err := deps.Profiles.CreateProfile(deps.Ctx, p); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}

	if c.Default && !p.Default {
		if err := deps.Profiles.SetDefault(deps.Ctx, c.Name); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
			return err
		}
		p.Default = true
	}

	if p.Default {
		fmt.Fprintf(deps.Stdout, "Added key %q (default)\n", c.Name)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Added key %q\n", c.Name)
	return nil
}

// Run executes the config list command.
func (c *ConfigListCmd) Run(deps *Dependencies) error {
	profiles, err := deps.Profiles.FindProfiles(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}

	if len(profiles) == 0 {
		fmt.Fprintln(deps.Stdout, "No API keys stored. Use 'youte config add-key' to add one.")
		return nil
	}

	for _, p := range profiles {
		marker := ""
		if p.Default {
			marker = "  (default)"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s%s\n", p.Name, maskKey(p.Key), marker)
	}
	return nil
}

// maskKey hides all but the last four characters of a key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// Run executes the config set-default command.
func (c *ConfigSetDefaultCmd) Run(deps *Dependencies) error {
	if err := deps.Profiles.SetDefault(deps.Ctx, c.Name); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Default key is now %q\n", c.Name)
	return nil
}

// Run executes the config remove command.
func (c *ConfigRemoveCmd) Run(deps *Dependencies) error {
	if err := deps.Profiles.DeleteProfile(deps.Ctx, c.Name); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed key %q\n", c.Name)
	return nil
}
