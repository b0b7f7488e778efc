package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func testCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("endpoint", "", "")
	cmd.Flags().String("api-key", "", "")
	cmd.Flags().String("profile", "", "")
	cmd.Flags().Int("timeout", 0, "")
	cmd.Flags().Bool("verbose", false, "")
	return cmd
}

func TestResolveConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := resolveConfig(nil, &ConfigFile{})
		if cfg.Endpoint != "" || cfg.APIKey != "" {
			t.Errorf("expected empty endpoint/key, got %+v", cfg)
		}
		if cfg.ProfileID != DefaultProfileID {
			t.Errorf("profile = %q", cfg.ProfileID)
		}
		if cfg.Timeout != 0 {
			t.Errorf("timeout = %v, want 0 (client default)", cfg.Timeout)
		}
	})

	t.Run("File Values", func(t *testing.T) {
		file := &ConfigFile{
			Endpoint:         strptr("https://file.example/api"),
			APIKey:           strptr("file-key"),
			Timeout:          intptr(45),
			DefaultProfileID: strptr("prof-file"),
		}
		cfg := resolveConfig(nil, file)
		if cfg.Endpoint != "https://file.example/api" || cfg.APIKey != "file-key" {
			t.Errorf("file values not applied: %+v", cfg)
		}
		if cfg.Timeout != 45*time.Second {
			t.Errorf("timeout = %v", cfg.Timeout)
		}
		if cfg.ProfileID != "prof-file" {
			t.Errorf("profile = %q", cfg.ProfileID)
		}
	})

	t.Run("Env Overrides File", func(t *testing.T) {
		t.Setenv("API_ENDPOINT", "https://env.example/api")
		t.Setenv("API_KEY", "env-key")
		t.Setenv("JOBAGENT_PROFILE_ID", "prof-env")
		file := &ConfigFile{
			Endpoint: strptr("https://file.example/api"),
			APIKey:   strptr("file-key"),
		}
		cfg := resolveConfig(nil, file)
		if cfg.Endpoint != "https://env.example/api" {
			t.Errorf("endpoint = %q", cfg.Endpoint)
		}
		if cfg.APIKey != "env-key" {
			t.Errorf("key = %q", cfg.APIKey)
		}
		if cfg.ProfileID != "prof-env" {
			t.Errorf("profile = %q", cfg.ProfileID)
		}
	})

	t.Run("Flags Override Env", func(t *testing.T) {
		t.Setenv("API_ENDPOINT", "https://env.example/api")
		t.Setenv("API_KEY", "env-key")
		cmd := testCommand()
		if err := cmd.Flags().Set("endpoint", "https://flag.example/api"); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("timeout", "10"); err != nil {
			t.Fatal(err)
		}
		cfg := resolveConfig(cmd, &ConfigFile{})
		if cfg.Endpoint != "https://flag.example/api" {
			t.Errorf("endpoint = %q", cfg.Endpoint)
		}
		if cfg.APIKey != "env-key" {
			t.Errorf("untouched flag must not mask env, key = %q", cfg.APIKey)
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("timeout = %v", cfg.Timeout)
		}
	})
}
