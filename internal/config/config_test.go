package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile_Valid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlists.yaml")
	os.WriteFile(path, []byte("biologics:\n  - adalimumab\n  - etanercept\ndiseases:\n  - rheumatoid arthritis\n"), 0644)

	var c Config
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if len(c.Biologics) != 2 {
		t.Fatalf("expected 2 biologics, got %d", len(c.Biologics))
	}
	if c.Biologics[0] != "adalimumab" || c.Biologics[1] != "etanercept" {
		t.Errorf("unexpected biologics: %v", c.Biologics)
	}
	if len(c.Diseases) != 1 || c.Diseases[0] != "rheumatoid arthritis" {
		t.Errorf("unexpected diseases: %v", c.Diseases)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	var c Config
	if err := c.LoadFromFile("/nonexistent/allowlists.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlists.yaml")
	os.WriteFile(path, []byte("biologics: {not a list"), 0644)

	var c Config
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	c := Config{DSN: "postgresql://localhost/biologics"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	c = Config{}
	if err := c.Validate(); err == nil {
		t.Error("expected error for missing DSN")
	}

	c = Config{DSN: "x", TargetDate: "2025-13"}
	if err := c.Validate(); err == nil {
		t.Error("expected error for invalid target date")
	}
}

func TestParseTargetDate(t *testing.T) {
	got, err := ParseTargetDate("2025-07")
	if err != nil {
		t.Fatalf("ParseTargetDate: %v", err)
	}
	if got.Year() != 2025 || int(got.Month()) != 7 {
		t.Errorf("ParseTargetDate(2025-07) = %v", got)
	}

	if _, err := ParseTargetDate("July 2025"); err == nil {
		t.Error("expected error for malformed date")
	}
}
