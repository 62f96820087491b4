// Package ui provides the Bubble Tea TUI for hntop.
package ui

import "github.com/abelbrown/hntop/internal/viewmodel"

// StoriesLoaded is sent when the fetch started by Initialize completes.
type StoriesLoaded struct {
	Result viewmodel.Result
}

// URLOpened is sent after an attempt to open a story link.
// Copied is true when the browser could not be launched and the URL went to
// the clipboard instead.
type URLOpened struct {
	ID     string
	URL    string
	Copied bool
	Err    error
}
