package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var exportFormats = map[string]struct{}{
	"docx": {},
	"pdf":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranslate(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return errors.New("server.url must be set")
	}
	parsed, err := url.Parse(c.Server.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.url %q is not a valid absolute URL", c.Server.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.url scheme %q is not supported", parsed.Scheme)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateTranslate() error {
	if c.Translate.DefaultTarget == "" {
		return errors.New("translate.default_target must be set")
	}
	if len(c.Translate.Targets) == 0 {
		return errors.New("translate.targets must list at least one language")
	}
	for _, target := range c.Translate.Targets {
		if target == c.Translate.DefaultTarget {
			return nil
		}
	}
	return fmt.Errorf("translate.default_target %q is not in translate.targets", c.Translate.DefaultTarget)
}

func (c *Config) validateExport() error {
	if _, ok := exportFormats[c.Export.DefaultFormat]; !ok {
		return fmt.Errorf("export.default_format %q must be one of docx, pdf", c.Export.DefaultFormat)
	}
	return nil
}

func (c *Config) validateWatch() error {
	if !c.Watch.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Watch.Dir) == "" {
		return errors.New("watch.dir must be set when watch.enabled is true")
	}
	if c.Watch.SettleMillis < 0 {
		return errors.New("watch.settle_millis must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
