package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/ghgrab/cli/logger"
)

// fileConfig is the optional on-disk configuration. The file is JSONC
// (JSON with comments and trailing commas) so it can be annotated by hand.
type fileConfig struct {
	Token  string `json:"token"`  // GitHub token
	Output string `json:"output"` // base directory for downloads
}

// configFilePath returns the per-user config location,
// e.g. ~/.config/ghgrab/config.jsonc on Linux
func configFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ghgrab", "config.jsonc"), nil
}

// loadConfig reads the config file if present. A missing or unreadable file
// yields an empty config; a present but malformed one is reported and
// otherwise ignored.
func loadConfig() fileConfig {
	path, err := configFilePath()
	if err != nil {
		return fileConfig{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}
	}

	cfg, err := parseConfig(data)
	if err != nil {
		logger.Warn("ignoring malformed config file", "path", path, "error", err)
		return fileConfig{}
	}
	logger.Debug("loaded config file", "path", path)
	return cfg
}

// parseConfig standardizes JSONC to plain JSON, then decodes it
func parseConfig(data []byte) (fileConfig, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, err
	}
	var cfg fileConfig
	if err := json.Unmarshal(std, &cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

// resolveToken picks the first credential available: the flag, the
// GITHUB_TOKEN environment variable, the config file, then the gh CLI.
// Empty means unauthenticated.
func resolveToken(flag string, cfg fileConfig) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("GITHUB_TOKEN"); env != "" {
		return env
	}
	if cfg.Token != "" {
		return cfg.Token
	}
	return ghToken()
}
