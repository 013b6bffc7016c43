package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const maxWalkDepth = 25

// configNames are looked up in the working directory and its parents.
var configNames = []string{"collections.yaml", "collections.yml"}

// Config is the merged configuration: flags > env > config file > defaults.
type Config struct {
	Catalog  string         `mapstructure:"catalog"`
	Queries  string         `mapstructure:"queries"`
	Dialect  string         `mapstructure:"dialect"`
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig selects the execution database.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"catalog": "catalog",
	"queries": "queries",
	"dialect": "dialect",
	"driver":  "database.driver",
	"db":      "database.dsn",
}

// LoadConfig merges the configuration for cmd. Environment variables use
// the COLLECTIONS_ prefix with dots replaced by underscores, e.g.
// COLLECTIONS_DATABASE_DSN.
//
// Returns the config, the config file used (empty if none) and any error.
func LoadConfig(cmd *cobra.Command, explicitPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("COLLECTIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, "", fmt.Errorf("binding flag %s: %w", flag, err)
			}
		}
	}

	configPath, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog", "catalog")
	v.SetDefault("queries", "queries.yaml")
	v.SetDefault("dialect", "")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "")
}

// findConfigFile validates explicitPath, or walks up from the working
// directory looking for a config file, stopping at a .git directory.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}
