package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate checks the configuration for conditions that would otherwise
// surface as confusing failures mid-build. It fails fast at load time.
func Validate(cfg *Config) error {
	v := &configValidator{cfg: cfg}
	return v.validate()
}

type configValidator struct {
	cfg *Config
}

func (v *configValidator) validate() error {
	if err := v.validateSite(); err != nil {
		return err
	}
	if err := v.validatePlatforms(); err != nil {
		return err
	}
	if err := v.validateContent(); err != nil {
		return err
	}
	return v.validateServe()
}

func (v *configValidator) validateSite() error {
	if strings.TrimSpace(v.cfg.Site.Title) == "" {
		return errors.New("site title cannot be empty")
	}
	return nil
}

func (v *configValidator) validatePlatforms() error {
	p := v.cfg.Platforms
	if len(p.Supported) == 0 {
		return errors.New("platforms.supported cannot be empty")
	}

	seen := make(map[string]bool, len(p.Supported))
	for _, tag := range p.Supported {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return errors.New("platform tag cannot be empty")
		}
		if seen[tag] {
			return fmt.Errorf("duplicate platform tag: %s", tag)
		}
		seen[tag] = true
	}

	if !seen[p.Default] {
		return fmt.Errorf("default platform %q is not in platforms.supported", p.Default)
	}

	for tag := range p.Labels {
		if !seen[tag] {
			return fmt.Errorf("label declared for unknown platform %q", tag)
		}
	}
	return nil
}

func (v *configValidator) validateContent() error {
	if strings.TrimSpace(v.cfg.Content.Dir) == "" {
		return errors.New("content.dir cannot be empty")
	}
	if g := v.cfg.Content.Git; g != nil && strings.TrimSpace(g.URL) == "" {
		return errors.New("content.git.url cannot be empty when git source is configured")
	}
	return nil
}

func (v *configValidator) validateServe() error {
	if v.cfg.Serve.Port < 1 || v.cfg.Serve.Port > 65535 {
		return fmt.Errorf("serve.port out of range: %d", v.cfg.Serve.Port)
	}
	return nil
}

// IsSupportedPlatform reports whether tag is one of the configured platforms.
func (c *Config) IsSupportedPlatform(tag string) bool {
	return slices.Contains(c.Platforms.Supported, tag)
}

// PlatformLabel returns the display label for a platform tag, falling back
// to the tag itself.
func (c *Config) PlatformLabel(tag string) string {
	if l, ok := c.Platforms.Labels[tag]; ok {
		return l
	}
	return tag
}
