package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeNCCI(); err != nil {
		return err
	}
	c.normalizeAuth()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.WebBind = strings.TrimSpace(c.Paths.WebBind)
	if c.Paths.WebBind == "" {
		c.Paths.WebBind = Default().Paths.WebBind
	}
	return nil
}

func (c *Config) normalizeNCCI() error {
	c.NCCI.BaseURL = strings.TrimSpace(c.NCCI.BaseURL)
	if value, ok := os.LookupEnv("BASE_NCCI_F1_URL"); ok && strings.TrimSpace(value) != "" {
		c.NCCI.BaseURL = strings.TrimSpace(value)
	}
	if c.NCCI.BaseURL == "" {
		c.NCCI.BaseURL = defaultBaseURL
	}
	if c.NCCI.RequestTimeout <= 0 {
		c.NCCI.RequestTimeout = Default().NCCI.RequestTimeout
	}
	if strings.TrimSpace(c.NCCI.DebugDir) != "" {
		expanded, err := expandPath(c.NCCI.DebugDir)
		if err != nil {
			return fmt.Errorf("ncci.debug_dir: %w", err)
		}
		c.NCCI.DebugDir = expanded
	} else {
		c.NCCI.DebugDir = ""
	}
	return nil
}

func (c *Config) normalizeAuth() {
	if value, ok := os.LookupEnv("APP_PASSWORD"); ok && strings.TrimSpace(value) != "" {
		c.Auth.Password = strings.TrimSpace(value)
	}
	if c.Auth.Password == "" {
		c.Auth.Password = Default().Auth.Password
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "text":
		c.Logging.Format = "text"
	case "json":
	default:
		c.Logging.Format = "text"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = Default().Logging.Level
	}
}
