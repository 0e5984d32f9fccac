package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/octoshim/octoshim/internal/paths"
)

func TestInit(t *testing.T) {
	viper.Reset()

	Init()

	// Check defaults are set
	if viper.GetString("provider") != paths.ProviderGitLab {
		t.Errorf("expected provider default %q, got %q", paths.ProviderGitLab, viper.GetString("provider"))
	}
	if viper.GetBool("passthrough") {
		t.Error("expected passthrough default false")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	viper.Reset()

	// Point OCTOSHIM_CONFIG_DIR at a temp dir to avoid loading system config
	tempDir := t.TempDir()
	t.Setenv("OCTOSHIM_CONFIG_DIR", tempDir)

	Init()

	// Load with no config file should not error
	cfg, err := Load("")
	if err != nil {
		t.Errorf("Load() with no config file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config to be returned")
	}
	if cfg.Provider != paths.ProviderGitLab {
		t.Errorf("expected default provider %q, got %q", paths.ProviderGitLab, cfg.Provider)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	viper.Reset()

	// Create temp config file
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte("provider: github\ncli_tool: /opt/forge/gh\npassthrough: true\n")
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		t.Fatal(err)
	}

	Init()

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider != "github" {
		t.Errorf("Provider = %q, want github", cfg.Provider)
	}
	if cfg.CLITool != "/opt/forge/gh" {
		t.Errorf("CLITool = %q, want /opt/forge/gh", cfg.CLITool)
	}
	if !cfg.Passthrough {
		t.Error("Passthrough = false, want true")
	}
}

func TestLoad_TOMLConfigFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := []byte("provider = \"gitlab\"\ninstance = \"gitlab.example.com\"\n")
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		t.Fatal(err)
	}

	Init()

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider != "gitlab" {
		t.Errorf("Provider = %q, want gitlab", cfg.Provider)
	}
	if cfg.Instance != "gitlab.example.com" {
		t.Errorf("Instance = %q, want gitlab.example.com", cfg.Instance)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	viper.Reset()
	Init()

	// Load with non-existent config file should error
	_, err := Load("/non/existent/path/config.yaml")
	if err == nil {
		t.Error("Load() with non-existent explicit path should error")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()

	tempDir := t.TempDir()
	t.Setenv("OCTOSHIM_CONFIG_DIR", tempDir)
	t.Setenv("OCTOSHIM_PROVIDER", "github")
	t.Setenv("OCTOSHIM_PASSTHROUGH", "1")

	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Provider != "github" {
		t.Errorf("Provider = %q, want github from env", cfg.Provider)
	}
	if !cfg.Passthrough {
		t.Error("Passthrough = false, want true from env")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "invalid provider",
			content: "provider: bitbucket\n",
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "invalid instance scheme",
			content: "instance: ftp://gitlab.example.com\n",
			wantErr: ErrInvalidInstance,
		},
		{
			name:    "invalid cli_tool path",
			content: "cli_tool: \".\"\n",
			wantErr: ErrInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			tempDir := t.TempDir()
			t.Setenv("OCTOSHIM_CONFIG_DIR", tempDir)
			Init()

			configPath := filepath.Join(tempDir, "bad.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			_, err := Load(configPath)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want wrapping %v", err, tt.wantErr)
			}
		})
	}
}

func TestInit_ClearsPreviousState(t *testing.T) {
	// 1. Setup a specific config file
	dir := t.TempDir()
	fileA := filepath.Join(dir, "config_a.yaml")
	if err := os.WriteFile(fileA, []byte("provider: github\n"), 0600); err != nil {
		t.Fatal(err)
	}

	// 2. Initialize and Load specific file
	viper.Reset()
	Init()
	cfgA, err := Load(fileA)
	if err != nil {
		t.Fatalf("First Load failed: %v", err)
	}
	if cfgA.Provider != "github" {
		t.Fatalf("First Load Provider = %q, want github", cfgA.Provider)
	}

	// 3. Setup a default config file in a different directory
	dirB := t.TempDir()
	t.Setenv("OCTOSHIM_CONFIG_DIR", dirB)
	fileB := filepath.Join(dirB, "config.yaml")
	if err := os.WriteFile(fileB, []byte("provider: gitlab\ninstance: gitlab.example.com\n"), 0600); err != nil {
		t.Fatal(err)
	}

	// 4. Re-Initialize. This SHOULD clear the specific file from step 2.
	Init()

	// 5. Load with empty path. Should pick up fileB from OCTOSHIM_CONFIG_DIR.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Second Load failed: %v", err)
	}

	// 6. Verify we got config B
	if cfg.Provider != "gitlab" || cfg.Instance != "gitlab.example.com" {
		t.Errorf("Expected config from default path (fileB), got provider=%q instance=%q", cfg.Provider, cfg.Instance)
		if viper.ConfigFileUsed() == fileA {
			t.Errorf("Still using fileA: %s", viper.ConfigFileUsed())
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != paths.ProviderGitLab {
		t.Errorf("Default().Provider = %q, want %q", cfg.Provider, paths.ProviderGitLab)
	}
	if cfg.Passthrough {
		t.Error("Default().Passthrough = true, want false")
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("Default() config should validate cleanly, got %v", errs)
	}
}
