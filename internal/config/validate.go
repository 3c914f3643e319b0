package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/drweldonhawaii/rvu-web-app/internal/release"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateNCCI(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.WebBind); err != nil {
		return fmt.Errorf("paths.web_bind %q is not a host:port address: %w", c.Paths.WebBind, err)
	}
	return nil
}

func (c *Config) validateNCCI() error {
	if c.NCCI.BaseURL == "" {
		return errors.New("ncci.base_url must be set (or set BASE_NCCI_F1_URL)")
	}
	if _, err := release.NewTemplate(c.NCCI.BaseURL); err != nil {
		return fmt.Errorf("ncci.base_url: %w", err)
	}
	if c.NCCI.RequestTimeout <= 0 {
		return errors.New("ncci.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateAuth() error {
	if strings.TrimSpace(c.Auth.Password) == "" {
		return errors.New("auth.password must be set (or set APP_PASSWORD)")
	}
	return nil
}
