package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultProfileID is the demo profile offered when the user has not
// configured one.
const DefaultProfileID = "adf2b2d4-d59f-4e6e-8382-24062ca88f72"

// ConfigFile is the optional ~/.jobagent/config.yaml. All fields are
// pointers so absence is distinguishable from a zero value.
type ConfigFile struct {
	Endpoint         *string `yaml:"endpoint,omitempty"`
	APIKey           *string `yaml:"api_key,omitempty"`
	Timeout          *int    `yaml:"timeout,omitempty"` // Seconds
	DefaultProfileID *string `yaml:"default_profile_id,omitempty"`
	Verbose          *bool   `yaml:"verbose,omitempty"`
}

// Config is the fully resolved runtime configuration.
type Config struct {
	Endpoint  string
	APIKey    string
	Timeout   time.Duration
	ProfileID string
	Verbose   bool
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".jobagent"), nil
}

func loadConfigFile() (*ConfigFile, error) {
	dir, err := configDir()
	if err != nil {
		// No home dir is not fatal; run on env alone.
		return &ConfigFile{}, nil
	}
	configPath := filepath.Join(dir, "config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			os.MkdirAll(dir, 0o755)
			return &ConfigFile{}, nil
		}
		return nil, err
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveConfig merges flags over environment over the config file.
// A missing API key is not an error here; it surfaces at send time
// (and eagerly in doctor).
func resolveConfig(cmd *cobra.Command, file *ConfigFile) Config {
	// .env sits alongside the process, mirroring local development
	// setups. Existing environment wins over .env entries.
	godotenv.Load()

	cfg := Config{
		Timeout:   0, // Client applies its default.
		ProfileID: DefaultProfileID,
	}

	if file.Endpoint != nil {
		cfg.Endpoint = *file.Endpoint
	}
	if file.APIKey != nil {
		cfg.APIKey = *file.APIKey
	}
	if file.Timeout != nil {
		cfg.Timeout = time.Duration(*file.Timeout) * time.Second
	}
	if file.DefaultProfileID != nil {
		cfg.ProfileID = *file.DefaultProfileID
	}
	if file.Verbose != nil {
		cfg.Verbose = *file.Verbose
	}

	if v := os.Getenv("API_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("JOBAGENT_PROFILE_ID"); v != "" {
		cfg.ProfileID = v
	}
	if v := os.Getenv("JOBAGENT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}

	if cmd != nil {
		if cmd.Flags().Changed("endpoint") {
			cfg.Endpoint, _ = cmd.Flags().GetString("endpoint")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.APIKey, _ = cmd.Flags().GetString("api-key")
		}
		if cmd.Flags().Changed("profile") {
			cfg.ProfileID, _ = cmd.Flags().GetString("profile")
		}
		if cmd.Flags().Changed("timeout") {
			secs, _ := cmd.Flags().GetInt("timeout")
			if secs > 0 {
				cfg.Timeout = time.Duration(secs) * time.Second
			}
		}
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			cfg.Verbose = true
		}
	}

	return cfg
}

// historyPaths returns the store locations under the config dir.
func historyPaths() (dbPath, jsonlPath string, err error) {
	dir, err := configDir()
	if err != nil {
		return "", "", err
	}
	return filepath.Join(dir, "history.db"), filepath.Join(dir, "history.jsonl"), nil
}
