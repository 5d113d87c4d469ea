package theme

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Uncategorized is the theme key used when a post has no known category.
const Uncategorized = "uncategorized"

// Table maps post categories to header gradients. It is built once at
// startup and read concurrently afterwards.
type Table struct {
	gradients map[string]string // theme key -> gradient classes
	keys      map[string]string // lowercased category -> theme key
	featured  string
}

type fileConfig struct {
	Featured      string            `yaml:"featured"`
	Uncategorized string            `yaml:"uncategorized"`
	Categories    map[string]string `yaml:"categories"`
}

var defaultConfig = fileConfig{
	Featured:      "from-red-500 via-orange-500 to-yellow-500",
	Uncategorized: "from-orange-400 via-red-500 to-pink-500",
	Categories: map[string]string{
		"Technology": "from-blue-500 via-purple-500 to-indigo-500",
		"Design":     "from-pink-500 via-rose-500 to-red-500",
		"Marketing":  "from-green-500 via-emerald-500 to-teal-500",
		"Business":   "from-gray-600 via-gray-700 to-gray-800",
		"Lifestyle":  "from-purple-400 via-pink-400 to-red-400",
	},
}

// Default returns the built-in table.
func Default() *Table {
	return newTable(defaultConfig)
}

// Load reads a YAML theme file. Entries in the file override or extend the
// built-in categories. An empty path yields the built-in table.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(fc); err != nil {
		return nil, fmt.Errorf("invalid theme file %s: %w", path, err)
	}

	merged := fileConfig{
		Featured:      defaultConfig.Featured,
		Uncategorized: defaultConfig.Uncategorized,
		Categories:    make(map[string]string, len(defaultConfig.Categories)+len(fc.Categories)),
	}
	for category, gradient := range defaultConfig.Categories {
		merged.Categories[category] = gradient
	}
	for category, gradient := range fc.Categories {
		merged.Categories[strings.TrimSpace(category)] = strings.TrimSpace(gradient)
	}
	if fc.Featured != "" {
		merged.Featured = strings.TrimSpace(fc.Featured)
	}
	if fc.Uncategorized != "" {
		merged.Uncategorized = strings.TrimSpace(fc.Uncategorized)
	}

	table := newTable(merged)
	slog.Debug("Theme table loaded", "path", path, "categories", len(merged.Categories))

	return table, nil
}

func validate(fc fileConfig) error {
	for category, gradient := range fc.Categories {
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("category name is required")
		}
		if strings.EqualFold(strings.TrimSpace(category), Uncategorized) {
			return fmt.Errorf("category %q is reserved", category)
		}
		if strings.TrimSpace(gradient) == "" {
			return fmt.Errorf("gradient for category %q is required", category)
		}
	}
	return nil
}

func newTable(fc fileConfig) *Table {
	t := &Table{
		gradients: make(map[string]string, len(fc.Categories)+1),
		keys:      make(map[string]string, len(fc.Categories)),
		featured:  fc.Featured,
	}
	for category, gradient := range fc.Categories {
		t.gradients[category] = gradient
		t.keys[strings.ToLower(category)] = category
	}
	t.gradients[Uncategorized] = fc.Uncategorized
	return t
}

// Key returns the theme key for category, matching case-insensitively.
// Unknown or empty categories map to Uncategorized.
func (t *Table) Key(category string) string {
	if key, ok := t.keys[strings.ToLower(strings.TrimSpace(category))]; ok {
		return key
	}
	return Uncategorized
}

// Gradient returns the gradient classes for a theme key.
func (t *Table) Gradient(key string) string {
	if gradient, ok := t.gradients[key]; ok {
		return gradient
	}
	return t.gradients[Uncategorized]
}

// Featured returns the gradient used for highlighted cards.
func (t *Table) Featured() string {
	return t.featured
}

func (t *Table) Count() int {
	return len(t.keys)
}
