package config

// Config is the top-level prcomments configuration.
type Config struct {
	Output OutputConfig `json:"output"`
	GitHub GitHubConfig `json:"github"`
	Cache  CacheConfig  `json:"cache"`
}

// OutputConfig controls where the markdown report is written.
type OutputConfig struct {
	// Path is the default output file, overridable with -o/--output.
	Path string `json:"path"`
}

// GitHubConfig holds API access settings. Everything works without a
// token on public repositories; a token raises rate limits and enables
// resolved-thread markers.
type GitHubConfig struct {
	Token string `json:"token"`

	// APIURL overrides the REST endpoint, mainly for testing against a
	// local server. Must end in a slash.
	APIURL string `json:"api_url"`
}

// CacheConfig controls the commit-pinned file-content cache.
type CacheConfig struct {
	Enabled bool `json:"enabled"`

	// Dir overrides the cache location; defaults to the user cache dir.
	Dir string `json:"dir"`
}

// DefaultConfig returns the built-in defaults, before any file or
// environment overrides.
func DefaultConfig() Config {
	return Config{
		Output: OutputConfig{Path: "pr_comments.md"},
		Cache:  CacheConfig{Enabled: true},
	}
}
