package config

import (
	"errors"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultLogLevel       = "info"
	defaultUnreadInterval = 30 * time.Second
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	Unread  UnreadConfig  `toml:"unread"`
}

type StorageConfig struct {
	DatabasePath string `toml:"database_path"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

type UnreadConfig struct {
	PollSeconds int `toml:"poll_seconds"`
}

func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: defaultLogLevel,
		},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func loadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return toml.Unmarshal(data, out)
}

// ResolveDatabasePath returns the configured bbolt path, or the default
// under the data directory when the config file leaves it blank.
func (c Config) ResolveDatabasePath() (string, error) {
	if path := strings.TrimSpace(c.Storage.DatabasePath); path != "" {
		return path, nil
	}
	return DatabasePath()
}

// ResolveLogPath returns the configured log file path, or the default
// under the data directory.
func (c Config) ResolveLogPath() (string, error) {
	if path := strings.TrimSpace(c.Logging.Path); path != "" {
		return path, nil
	}
	return LogPath()
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return defaultLogLevel
	}
	return level
}

func (c Config) UnreadInterval() time.Duration {
	if c.Unread.PollSeconds <= 0 {
		return defaultUnreadInterval
	}
	return time.Duration(c.Unread.PollSeconds) * time.Second
}
