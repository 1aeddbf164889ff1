package config

// applyDefaults fills zero-valued fields after unmarshal. Validation runs
// afterwards, so defaults never mask an invalid explicit value.
func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Documentation Site"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "./content"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./site"
	}
	if len(c.Platforms.Supported) == 0 {
		c.Platforms.Supported = []string{"default"}
	}
	if c.Platforms.Default == "" {
		c.Platforms.Default = c.Platforms.Supported[0]
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = 8080
	}
	if c.Content.Git != nil && c.Content.Git.Branch == "" {
		c.Content.Git.Branch = "main"
	}
	if c.Content.Git != nil && c.Content.Git.WorkDir == "" {
		c.Content.Git.WorkDir = ".docsite-content"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = string(LogLevelInfo)
	}
	if c.Logging.Format == "" {
		c.Logging.Format = string(LogFormatText)
	}
}
