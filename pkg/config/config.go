package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for chipatlas
type Config struct {
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Results ResultsConfig `mapstructure:"results"`
	Server  ServerConfig  `mapstructure:"server"`
	Quiet   bool          `mapstructure:"quiet"`
}

// FetchConfig holds archive download options
type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ResultsConfig holds result export options
type ResultsConfig struct {
	Dir string `mapstructure:"dir"`
}

// ServerConfig holds tool server options
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

var defaultConfig = Config{
	Fetch: FetchConfig{
		// Archive dumps run to hundreds of MB; matches the archive's
		// observed worst-case transfer time.
		Timeout: parseDurationDefault("60s"),
	},
	Results: ResultsConfig{
		Dir: "", // resolved lazily against the chipatlas home
	},
	Server: ServerConfig{
		Port: 8750,
	},
	Quiet: false,
}

// LoadConfig loads configuration from defaults, an optional config file, and
// CHIP_ATLAS_* environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("fetch.timeout", defaultConfig.Fetch.Timeout)
	v.SetDefault("results.dir", defaultConfig.Results.Dir)
	v.SetDefault("server.port", defaultConfig.Server.Port)
	v.SetDefault("quiet", defaultConfig.Quiet)

	// Configuration file search paths
	v.SetConfigName("chipatlas")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := AtlasHome(); err == nil {
		v.AddConfigPath(home)
	}

	// Environment variables: CHIP_ATLAS_FETCH_TIMEOUT, CHIP_ATLAS_RESULTS_DIR, ...
	v.SetEnvPrefix("CHIP_ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; defaults apply when absent
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	return &config, nil
}

// parseDurationDefault is a helper to create default duration values from string literal
func parseDurationDefault(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// AtlasHome returns the chipatlas home directory where metadata dumps are cached.
func AtlasHome() (string, error) {
	// Check environment variable first
	if home := os.Getenv("CHIP_ATLAS_HOME"); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}

	// Directory name kept compatible with earlier releases of the tool
	return filepath.Join(homeDir, "Chip_Atlasmcp"), nil
}

// EnsureAtlasHome creates the chipatlas home directory if it doesn't exist
func EnsureAtlasHome() (string, error) {
	homeDir, err := AtlasHome()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create chipatlas home directory: %v", err)
	}

	return homeDir, nil
}

// ResultsDir returns the directory where filtered exports are written.
func (c *Config) ResultsDir() (string, error) {
	if c != nil && c.Results.Dir != "" {
		return c.Results.Dir, nil
	}
	home, err := AtlasHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "results"), nil
}

// EnsureResultsDir creates the results directory if it doesn't exist
func (c *Config) EnsureResultsDir() (string, error) {
	dir, err := c.ResultsDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create results directory: %v", err)
	}
	return dir, nil
}
