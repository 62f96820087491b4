package main

import (
	"errors"
	"fmt"
	"os"
)

// Run executes the init command.
func (c *InitCmd) Run(deps *Dependencies) error {
	if deps.ConfigPath == "" {
		return errors.New("no config path: pass --config")
	}

	if _, err := os.Stat(deps.ConfigPath); err == nil && !c.Force {
		return fmt.Errorf("config %q already exists, use --force to overwrite", deps.ConfigPath)
	}

	if err := deps.Config.Save(deps.ConfigPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Wrote %s\n", deps.ConfigPath)
	return nil
}
