package cmd

import (
	"os/exec"
	"strings"

	"github.com/ghgrab/cli/logger"
)

// ghToken asks the gh CLI for its stored token. Any failure (gh not
// installed, not logged in) means the run proceeds unauthenticated.
func ghToken() string {
	gh, err := exec.LookPath("gh")
	if err != nil {
		return ""
	}

	out, err := exec.Command(gh, "auth", "token").Output()
	if err != nil {
		logger.Debug("gh auth token failed", "error", err)
		return ""
	}

	token := strings.TrimSpace(string(out))
	if token != "" {
		logger.Debug("using token from gh CLI")
	}
	return token
}
