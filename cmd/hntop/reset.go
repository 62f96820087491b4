package main

import "fmt"

// Run executes the reset command.
func (c *ResetCmd) Run(deps *Dependencies) error {
	vm := deps.NewModel()
	defer vm.Close()

	vm.LoadPrefs()
	dismissed, opened := len(vm.Dismissed()), len(vm.Opened())
	vm.Reset()

	fmt.Fprintf(deps.Stdout, "Cleared %d dismissed and %d opened stories\n", dismissed, opened)
	return nil
}
