package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Swappable in tests to exercise per-platform branches.
var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser launches the user's default browser at url. RadioWash uses it
// to hand the OAuth login page to the user without them copying a URL.
func OpenBrowser(url string) error {
	platform := getRuntime()

	var cmd *exec.Cmd
	switch platform {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("no browser launcher for platform %s", platform)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
