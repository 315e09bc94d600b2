package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	Index       IndexConfig       `yaml:"index"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Matchmaking MatchmakingConfig `yaml:"matchmaking"`
	Auth        AuthConfig        `yaml:"auth"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// StorageConfig holds the flat-file layout
type StorageConfig struct {
	DataDir     string `yaml:"data_dir"`
	PlayersFile string `yaml:"players_file"`
	SavesDir    string `yaml:"saves_dir"`
	MaxSaves    int    `yaml:"max_saves"`
}

// PlayersPath returns the location of the global id list
func (c *StorageConfig) PlayersPath() string {
	return filepath.Join(c.DataDir, c.PlayersFile)
}

// SavesPath returns the directory holding save-state files
func (c *StorageConfig) SavesPath() string {
	return filepath.Join(c.DataDir, c.SavesDir)
}

// IndexConfig holds username index sizing
type IndexConfig struct {
	BucketCount int `yaml:"bucket_count"`
}

// LeaderboardConfig holds leaderboard-specific configuration
type LeaderboardConfig struct {
	Capacity int `yaml:"capacity"`
}

// MatchmakingConfig sizes the game room structures
type MatchmakingConfig struct {
	QueueCapacity  int `yaml:"queue_capacity"`
	BufferCapacity int `yaml:"buffer_capacity"`
}

// AuthConfig controls credential storage and password policy
type AuthConfig struct {
	HashPasswords     bool `yaml:"hash_passwords"`
	BcryptCost        int  `yaml:"bcrypt_cost"`
	MinPasswordLength int  `yaml:"min_password_length"`
	MaxPasswordLength int  `yaml:"max_password_length"`

	// AllowWeakPasswords skips the strength policy; the zero value enforces it
	AllowWeakPasswords bool `yaml:"allow_weak_passwords"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SlogLevel parses the configured level, falling back to info
func (c *LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MetricsConfig holds the textfile exporter location; empty disables it
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Storage defaults
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.PlayersFile == "" {
		c.Storage.PlayersFile = "AllPlayers.txt"
	}
	if c.Storage.SavesDir == "" {
		c.Storage.SavesDir = "saves"
	}
	if c.Storage.MaxSaves == 0 {
		c.Storage.MaxSaves = 100
	}

	// 53 is prime; keeps chains short for small directories
	if c.Index.BucketCount == 0 {
		c.Index.BucketCount = 53
	}

	if c.Leaderboard.Capacity == 0 {
		c.Leaderboard.Capacity = 10
	}

	if c.Matchmaking.QueueCapacity == 0 {
		c.Matchmaking.QueueCapacity = 20
	}
	if c.Matchmaking.BufferCapacity == 0 {
		c.Matchmaking.BufferCapacity = 20
	}

	// Auth defaults
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Auth.MinPasswordLength == 0 {
		c.Auth.MinPasswordLength = 8
	}
	if c.Auth.MaxPasswordLength == 0 {
		c.Auth.MaxPasswordLength = 15
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// DefaultConfig returns a configuration with all defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
