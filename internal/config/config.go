package config

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
)

// Load reads and merges configuration. With an explicit path only that
// file is read; otherwise the user-level file
// (~/.config/prcomments/prcomments.jsonc) is deep-merged with the
// repo-level one (<repo>/.prcomments.jsonc). Environment variables apply
// last in both cases.
func Load(explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	if explicitPath != "" {
		m, err := loadJSONC(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", explicitPath, err)
		}
		if err := mergeIntoConfig(&cfg, m); err != nil {
			return nil, fmt.Errorf("merging config: %w", err)
		}
		applyEnvOverrides(&cfg)
		return &cfg, nil
	}

	if userPath := UserConfigPath(); userPath != "" {
		if userMap, err := loadJSONC(userPath); err == nil {
			if err := mergeIntoConfig(&cfg, userMap); err != nil {
				return nil, fmt.Errorf("merging user config: %w", err)
			}
		}
	}

	if repoRoot := findRepoRoot(); repoRoot != "" {
		repoPath := filepath.Join(repoRoot, ".prcomments.jsonc")
		if repoMap, err := loadJSONC(repoPath); err == nil {
			if err := mergeIntoConfig(&cfg, repoMap); err != nil {
				return nil, fmt.Errorf("merging repo config: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// UserConfigPath returns the user-level config file path, or empty if the
// user config dir cannot be resolved.
func UserConfigPath() string {
	userDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(userDir, "prcomments", "prcomments.jsonc")
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jsonData := jsonc.ToJSON(data)
	var m map[string]any
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig marshals the config to a map, deep-merges the source map
// over it, then unmarshals back to the Config struct.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// findRepoRoot finds the git repository root via git rev-parse.
func findRepoRoot() string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if out := os.Getenv("PRCOMMENTS_OUTPUT"); out != "" {
		cfg.Output.Path = out
	}
}

// RepoRoot returns the detected git repository root, or empty string if
// not in a repo.
func RepoRoot() string {
	return findRepoRoot()
}
