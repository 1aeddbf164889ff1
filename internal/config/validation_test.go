package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{
		Site:      SiteConfig{Title: "Docs"},
		Platforms: PlatformsConfig{Supported: []string{"js", "ts"}, Default: "js"},
	}
	cfg.applyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty title",
			mutate:  func(c *Config) { c.Site.Title = "  " },
			wantErr: "title",
		},
		{
			name:    "duplicate platform",
			mutate:  func(c *Config) { c.Platforms.Supported = []string{"js", "js"} },
			wantErr: "duplicate platform",
		},
		{
			name:    "default not supported",
			mutate:  func(c *Config) { c.Platforms.Default = "swift" },
			wantErr: "default platform",
		},
		{
			name:    "label for unknown platform",
			mutate:  func(c *Config) { c.Platforms.Labels = map[string]string{"rust": "Rust"} },
			wantErr: "unknown platform",
		},
		{
			name:    "empty git url",
			mutate:  func(c *Config) { c.Content.Git = &GitSource{} },
			wantErr: "content.git.url",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Serve.Port = 70000 },
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	require.Equal(t, LogLevelDebug, NormalizeLogLevel("DEBUG"))
	require.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	require.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
}

func TestPlatformLabel(t *testing.T) {
	cfg := validConfig()
	cfg.Platforms.Labels = map[string]string{"js": "JavaScript"}
	require.Equal(t, "JavaScript", cfg.PlatformLabel("js"))
	require.Equal(t, "ts", cfg.PlatformLabel("ts"))
}
