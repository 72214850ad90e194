package watcher

import "time"

type WatcherConfig struct {
	Enabled        bool          `json:"enabled" yaml:"enabled"`
	DebounceWindow time.Duration `json:"debounce_window" yaml:"debounce_window"`
	MaxBatchSize   int           `json:"max_batch_size" yaml:"max_batch_size"`
	IgnorePatterns []string      `json:"ignore_patterns" yaml:"ignore_patterns"`
	WatchHidden    bool          `json:"watch_hidden" yaml:"watch_hidden"`
}

// DefaultWatcherConfig watches hidden files too, since generated projects
// keep their settings in .env.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Enabled:        true,
		DebounceWindow: 300 * time.Millisecond,
		MaxBatchSize:   100,
		IgnorePatterns: []string{
			"**/.git",
			"**/.git/**",
			"**/node_modules",
			"**/node_modules/**",
			"**/.idea/**",
			"**/*.log",
			"**/dist/**",
			"**/build/**",
			"**/coverage/**",
			"**/.DS_Store",
		},
		WatchHidden: true,
	}
}
