package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.UserAgent != "Blogfront/1.0" {
		t.Errorf("Expected user agent 'Blogfront/1.0', got '%s'", cfg.UserAgent)
	}
	if cfg.Version != GetVersion() {
		t.Errorf("Expected version '%s', got '%s'", GetVersion(), cfg.Version)
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadArgsTrimsBaseURLs(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--env-file", "",
		"--api-base-url", "https://api.example.com/",
		"--base-url", "https://blog.example.com/",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("Expected API base URL 'https://api.example.com', got '%s'", cfg.APIBaseURL)
	}
	if cfg.BaseUrl != "https://blog.example.com" {
		t.Errorf("Expected base URL 'https://blog.example.com', got '%s'", cfg.BaseUrl)
	}
}

func TestLoadArgsFromEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://blog-api:5000")
	t.Setenv("PORT", "9090")

	cfg, err := LoadArgs([]string{"--env-file", ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIBaseURL != "http://blog-api:5000" {
		t.Errorf("Expected API base URL from environment, got '%s'", cfg.APIBaseURL)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
}

func TestLoadArgsFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "PLACEHOLDER_IMAGE_URL=https://img.example.com/placeholder.png\nTHEMES_FILE=themes.yml\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("PLACEHOLDER_IMAGE_URL")
		os.Unsetenv("THEMES_FILE")
	})

	cfg, err := LoadArgs([]string{"--env-file=" + path})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.PlaceholderImageURL != "https://img.example.com/placeholder.png" {
		t.Errorf("Expected placeholder from env file, got '%s'", cfg.PlaceholderImageURL)
	}
	if cfg.ThemesFile != "themes.yml" {
		t.Errorf("Expected themes file from env file, got '%s'", cfg.ThemesFile)
	}
}

func TestLoadArgsRejectsInvalidAPIBaseURL(t *testing.T) {
	tests := []string{
		"ftp://api.example.com",
		"api.example.com",
		"http://",
	}

	for _, value := range tests {
		if _, err := LoadArgs([]string{"--env-file", "", "--api-base-url", value}); err == nil {
			t.Errorf("Expected error for API base URL '%s'", value)
		}
	}
}

func TestEnvFileFromArgs(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{nil, ".env"},
		{[]string{"--port", "1"}, ".env"},
		{[]string{"--env-file", "prod.env"}, "prod.env"},
		{[]string{"--env-file=stage.env"}, "stage.env"},
	}

	for _, tt := range tests {
		if got := envFileFromArgs(tt.args); got != tt.expected {
			t.Errorf("Expected env file '%s' for %v, got '%s'", tt.expected, tt.args, got)
		}
	}
}
