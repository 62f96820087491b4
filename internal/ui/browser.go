package ui

import (
	"errors"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// OpenURLInBrowser launches the platform's default browser.
func OpenURLInBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// CopyURLToClipboard writes url to the system clipboard.
func CopyURLToClipboard(url string) error {
	return clipboard.WriteAll(url)
}

// openURLCmd tries the browser first and falls back to the clipboard.
func openURLCmd(id, url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		var errs []error
		if openFn != nil {
			err := openFn(url)
			if err == nil {
				return URLOpened{ID: id, URL: url}
			}
			errs = append(errs, err)
		}
		if copyFn != nil {
			err := copyFn(url)
			if err == nil {
				return URLOpened{ID: id, URL: url, Copied: true}
			}
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			errs = append(errs, errors.New("no browser or clipboard available"))
		}
		return URLOpened{ID: id, URL: url, Err: errors.Join(errs...)}
	}
}
