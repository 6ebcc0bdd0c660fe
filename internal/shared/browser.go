package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var (
	getRuntime = func() string { return runtime.GOOS }
	startCmd   = func(name string, args ...string) error { return exec.Command(name, args...).Start() }
)

// browserCommand returns the opener program and arguments for goos.
func browserCommand(goos, link string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{link}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{link}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// OpenBrowser opens link (a share link or the web UI) in the default browser.
//
// Only http and https URLs are accepted.
func OpenBrowser(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: not a web URL: %q", ErrInvalidArgument, link)
	}

	name, args, err := browserCommand(getRuntime(), u.String())
	if err != nil {
		return err
	}

	if err := startCmd(name, args...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
