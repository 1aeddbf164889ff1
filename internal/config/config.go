package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level site configuration loaded from docsite.yaml.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Content   ContentConfig   `yaml:"content"`
	Platforms PlatformsConfig `yaml:"platforms"`
	Output    OutputConfig    `yaml:"output"`
	Serve     ServeConfig     `yaml:"serve"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig carries site-wide presentation metadata.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// ContentConfig locates authored content on disk or in a git repository.
type ContentConfig struct {
	Dir       string     `yaml:"dir"`
	StaticDir string     `yaml:"static_dir,omitempty"`
	Layouts   string     `yaml:"layouts,omitempty"` // optional override of the built-in layouts
	Git       *GitSource `yaml:"git,omitempty"`
}

// GitSource configures an optional remote content repository fetched before discovery.
type GitSource struct {
	URL     string `yaml:"url"`
	Branch  string `yaml:"branch,omitempty"`
	WorkDir string `yaml:"work_dir,omitempty"`
}

// PlatformsConfig declares the platform tags pages and fragments may target.
type PlatformsConfig struct {
	Supported []string          `yaml:"supported"`
	Default   string            `yaml:"default"`
	Labels    map[string]string `yaml:"labels,omitempty"`
}

// OutputConfig controls where the rendered site is written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
}

// ServeConfig controls the development server.
type ServeConfig struct {
	Port       int  `yaml:"port"`
	LiveReload bool `yaml:"live_reload"`
}

// LoggingConfig selects slog handler level and format.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Load reads, expands, unmarshals, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand ${VAR} references so secrets and machine-local paths can live in .env.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const exampleConfig = `# docsite configuration
site:
  title: "Documentation"
  description: "Project documentation"
  base_url: "http://localhost:8080"

content:
  dir: ./content
  static_dir: ./static

platforms:
  supported: [js, ts, python]
  default: js
  labels:
    js: JavaScript
    ts: TypeScript
    python: Python

output:
  directory: ./site
  clean: true

serve:
  port: 8080
  live_reload: true

logging:
  level: info
  format: text
`

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
