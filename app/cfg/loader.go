package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Upstream blog API
	APIBaseURL string `long:"api-base-url" env:"API_BASE_URL" default:"http://localhost:5000" description:"Base URL of the blog API (e.g., https://api.example.com)"`
	UserAgent  string `long:"user-agent" env:"USER_AGENT" default:"Blogfront/1.0" description:"User agent string for HTTP requests"`

	// Application configuration
	Port                string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl             string `long:"base-url" env:"BASE_URL" description:"Public base URL of this site (e.g., https://blog.example.com)"`
	ThemesFile          string `long:"themes-file" env:"THEMES_FILE" description:"YAML file with category gradients (optional)"`
	PlaceholderImageURL string `long:"placeholder-image" env:"PLACEHOLDER_IMAGE_URL" description:"Cover image used when a post has none"`
	APIAccessKey        string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the JSON endpoints (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for displayed dates (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	EnvFile  string `long:"env-file" default:".env" description:"Dotenv file loaded before reading the environment"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. Variables from the dotenv file
// never override ones already set in the process environment.
func LoadArgs(args []string) (*Cfg, error) {
	if err := loadEnvFile(envFileFromArgs(args)); err != nil {
		return nil, err
	}

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	apiBaseURL, err := normalizeBaseURL(raw.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}

	cfg := &Cfg{
		APIBaseURL:          apiBaseURL,
		UserAgent:           raw.UserAgent,
		Port:                raw.Port,
		BaseUrl:             strings.TrimRight(raw.BaseUrl, "/"),
		ThemesFile:          raw.ThemesFile,
		PlaceholderImageURL: raw.PlaceholderImageURL,
		APIAccessKey:        raw.APIAccessKey,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// envFileFromArgs finds --env-file before flag parsing, since the dotenv file
// has to be applied before go-flags reads the environment.
func envFileFromArgs(args []string) string {
	for i, arg := range args {
		if value, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return value
		}
		if arg == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ".env"
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	fmt.Printf("Environment loaded from %s\n", path)
	return nil
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("host is required")
	}

	return trimmed, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
