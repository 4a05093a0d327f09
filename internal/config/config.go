package config

import "time"

// Config represents the application configuration
type Config struct {
	Embedding EmbeddingConfig `toml:"embedding"`
	History   HistoryConfig   `toml:"history"`
	Output    OutputConfig    `toml:"output"`
	Learn     LearnConfig     `toml:"learn"`
}

// EmbeddingConfig contains embedding service settings
type EmbeddingConfig struct {
	Endpoint       string `toml:"endpoint"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the embedding request timeout as a duration
func (e EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// HistoryConfig contains scoring history database settings
type HistoryConfig struct {
	Path string `toml:"path"`
}

// OutputConfig contains default output file locations
type OutputConfig struct {
	MatchesPath  string `toml:"matches_path"`
	DetailedPath string `toml:"detailed_path"`
	WeightsPath  string `toml:"weights_path"`
}

// LearnConfig contains weight learning thresholds
type LearnConfig struct {
	MinEvents   int `toml:"min_events"`
	MinPositive int `toml:"min_positive"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Endpoint:       "http://localhost:8642",
			Model:          "all-MiniLM-L6-v2",
			TimeoutSeconds: 60,
		},
		History: HistoryConfig{
			Path: "~/.local/share/guidematch/guidematch.db",
		},
		Output: OutputConfig{
			MatchesPath:  "matches.csv",
			DetailedPath: "matches_detailed.csv",
			WeightsPath:  "weights.json",
		},
		Learn: LearnConfig{
			MinEvents:   20,
			MinPositive: 2,
		},
	}
}
