package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	ErrNoCategories    = errors.New("taxonomy has no categories")
	ErrNoSources       = errors.New("taxonomy has no sources")
	ErrBadVersion      = errors.New("taxonomy version must be at least 1")
	ErrDuplicateName   = errors.New("duplicate category")
	ErrUnknownCategory = errors.New("unknown category")
)

// Config is the one place category, subcategory and source lists come from.
type Config struct {
	Version       int        `yaml:"version" json:"version"`
	Categories    []Category `yaml:"categories" json:"categories"`
	Sources       []string   `yaml:"sources" json:"sources"`
	DefaultSource string     `yaml:"default_source" json:"default_source"`
	DefaultTasks  []string   `yaml:"default_tasks" json:"default_tasks"`
}

type Category struct {
	Name          string   `yaml:"name" json:"name"`
	Subcategories []string `yaml:"subcategories" json:"subcategories"`
}

// Default returns the built-in taxonomy.
func Default() Config {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded default is invalid: %v", err))
	}
	return cfg
}

// Load reads a taxonomy file, or the built-in one when path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read taxonomy: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse taxonomy: %w", err)
	}
	if cfg.DefaultSource == "" && len(cfg.Sources) > 0 {
		cfg.DefaultSource = cfg.Sources[0]
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Version < 1 {
		return ErrBadVersion
	}
	if len(c.Categories) == 0 {
		return ErrNoCategories
	}
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	seen := map[string]bool{}
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if seen[cat.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateName, cat.Name)
		}
		seen[cat.Name] = true
	}
	if !c.HasSource(c.DefaultSource) {
		return fmt.Errorf("default source %q is not a source", c.DefaultSource)
	}
	return nil
}

func (c Config) CategoryNames() []string {
	out := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		out[i] = cat.Name
	}
	return out
}

// HasCategory is an exact match: categories are an enumeration.
func (c Config) HasCategory(name string) bool {
	_, ok := c.category(name)
	return ok
}

func (c Config) HasSource(name string) bool {
	for _, s := range c.Sources {
		if s == name {
			return true
		}
	}
	return false
}

func (c Config) DefaultCategory() string {
	return c.Categories[0].Name
}

// Subcategories returns the static list for a category.
func (c Config) Subcategories(category string) []string {
	cat, ok := c.category(category)
	if !ok {
		return nil
	}
	return cat.Subcategories
}

// DefaultSubcategory picks the first stored name, then the first static
// one, then "Other".
func (c Config) DefaultSubcategory(category string, stored []string) string {
	for _, s := range stored {
		if s != "" {
			return s
		}
	}
	if subs := c.Subcategories(category); len(subs) > 0 {
		return subs[0]
	}
	return "Other"
}

// CanonicalCategory maps free text like "needs" onto a configured category.
func (c Config) CanonicalCategory(name string) (string, bool) {
	return Match(c.CategoryNames(), name)
}

func (c Config) category(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}
