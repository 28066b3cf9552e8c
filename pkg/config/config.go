// Package config loads repository-local settings from
// .gnew/config.yaml layered under GNEW_* environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config wraps a viper instance scoped to one repository. Commands
// construct it once at entry; there is no package-level state.
type Config struct {
	v *viper.Viper
}

// Load reads .gnew/config.yaml if present. A missing config file is
// not an error; environment variables and defaults still apply.
func Load(gnewDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(gnewDir, "config.yaml"))
	v.SetConfigType("yaml")

	v.SetEnvPrefix("GNEW")
	v.AutomaticEnv()

	v.SetDefault("author", "")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return &Config{v: v}, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return &Config{v: v}, nil
		}
		return nil, err
	}
	return &Config{v: v}, nil
}

// Author resolves the commit author display name:
// GNEW_AUTHOR / config "author" → $USER → "unknown".
func (c *Config) Author() string {
	if a := c.v.GetString("author"); a != "" {
		return a
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
