package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name" toml:"name"`
	Dir  string `yaml:"dir" toml:"dir"`
}

func (s *sample) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_YAMLWithEnv(t *testing.T) {
	t.Setenv("INKWELL_TEST_DIR", "/srv/vault")
	p := writeFile(t, "c.yaml", "name: demo\ndir: ${INKWELL_TEST_DIR}\n")
	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "demo" || s.Dir != "/srv/vault" {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_TOML(t *testing.T) {
	p := writeFile(t, "c.toml", "name = \"demo\"\ndir = \"vault\"\n")
	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Dir != "vault" {
		t.Errorf("dir = %q", s.Dir)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	p := writeFile(t, "c.yaml", "dir: x\n")
	var s sample
	err := Load(p, &s)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadOptional_MissingKeepsDefaults(t *testing.T) {
	s := sample{Name: "default"}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "default" {
		t.Errorf("name = %q", s.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Fatal("expected error for missing file")
	}
}
