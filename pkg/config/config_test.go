package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validatedConfig struct {
	Port int `yaml:"port"`
}

func (c *validatedConfig) Validate() error {
	if c.Port <= 0 {
		return os.ErrInvalid
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "name: ansuz\nport: 8080\n")
	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "ansuz" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_CONFIG_NAME", "from-env")
	path := writeConfig(t, "name: ${TEST_CONFIG_NAME}\n")
	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("Name = %q, want %q", cfg.Name, "from-env")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg testConfig
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_RunsValidator(t *testing.T) {
	path := writeConfig(t, "port: 0\n")
	var cfg validatedConfig
	if err := Load(path, &cfg); err == nil {
		t.Error("expected validation error")
	}
}
