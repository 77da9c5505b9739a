package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "kettlegraph.yaml"

// Environment variables that override kettlegraph.yaml.
const (
	EnvOutput        = "KETTLEGRAPH_OUTPUT"
	EnvMaxPaths      = "KETTLEGRAPH_MAX_PATHS"
	EnvCatalogURL    = "KETTLEGRAPH_CATALOG_URL"
	EnvCatalogSchema = "KETTLEGRAPH_CATALOG_SCHEMA"
	EnvCatalogAuth   = "KETTLEGRAPH_CATALOG_AUTH"
	EnvCatalogCloud  = "KETTLEGRAPH_CATALOG_INSTANCE"
	EnvAWSRegion     = "AWS_REGION"
)

type CatalogConfig struct {
	Connection string `yaml:"connection"`
	Schema     string `yaml:"schema"`

	// Auth is standard, aws-iam, azure or google.
	Auth      string `yaml:"auth,omitempty"`
	AWSRegion string `yaml:"aws_region,omitempty"`
	Instance  string `yaml:"instance,omitempty"` // Cloud SQL project:region:instance
}

type ProjectConfig struct {
	Output   string        `yaml:"output"`
	MaxPaths int           `yaml:"max_paths"`
	Catalog  CatalogConfig `yaml:"catalog"`
}

// Default returns the configuration used when no file exists.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Output:  kettle.DefaultOutputFormat,
		Catalog: CatalogConfig{Schema: kettle.DefaultCatalogSchema},
	}
}

// Load reads kettlegraph.yaml from dir. Fields the file leaves out keep
// their defaults.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v: %w", configPath, err, kettle.ErrInvalidConfig)
	}
	return cfg, nil
}

// LoadOrDefault is Load that falls back to Default when the file is absent.
func LoadOrDefault(dir string) (*ProjectConfig, error) {
	cfg, err := Load(dir)
	if errors.Is(err, ErrConfigNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overlays non-empty environment variables read through lookup
// (usually os.LookupEnv).
func (c *ProjectConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Output = v
	}
	if v, ok := lookup(EnvMaxPaths); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q is not an integer: %w", EnvMaxPaths, v, kettle.ErrInvalidConfig)
		}
		c.MaxPaths = n
	}
	if v, ok := lookup(EnvCatalogURL); ok && v != "" {
		c.Catalog.Connection = v
	}
	if v, ok := lookup(EnvCatalogSchema); ok && v != "" {
		c.Catalog.Schema = v
	}
	if v, ok := lookup(EnvCatalogAuth); ok && v != "" {
		c.Catalog.Auth = v
	}
	if v, ok := lookup(EnvCatalogCloud); ok && v != "" {
		c.Catalog.Instance = v
	}
	// AWS_REGION is a fallback; the file wins over the SDK-wide variable.
	if v, ok := lookup(EnvAWSRegion); ok && v != "" && c.Catalog.AWSRegion == "" {
		c.Catalog.AWSRegion = v
	}
	return nil
}

// Validate reports every problem at once.
func (c *ProjectConfig) Validate() error {
	var errs []error

	switch c.Output {
	case "text", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("output must be text, json or yaml, got %q", c.Output))
	}
	if c.MaxPaths < 0 {
		errs = append(errs, fmt.Errorf("max_paths must not be negative, got %d", c.MaxPaths))
	}
	if c.Catalog.Schema == "" {
		errs = append(errs, errors.New("catalog.schema must not be empty"))
	} else if !isIdentifier(c.Catalog.Schema) {
		errs = append(errs, fmt.Errorf("catalog.schema %q is not a plain SQL identifier", c.Catalog.Schema))
	}

	switch c.Catalog.Auth {
	case "", "standard", "aws-iam", "azure", "google":
	default:
		errs = append(errs, fmt.Errorf("catalog.auth must be standard, aws-iam, azure or google, got %q", c.Catalog.Auth))
	}
	if c.Catalog.Auth == "google" && c.Catalog.Instance == "" {
		errs = append(errs, errors.New("catalog.instance is required for google auth"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", kettle.ErrInvalidConfig, errors.Join(errs...))
}

// isIdentifier accepts lowercase unquoted PostgreSQL identifiers.
func isIdentifier(s string) bool {
	if len(s) == 0 || len(s) > 63 {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
