package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	outputTable = "table"
	outputCards = "cards"
	outputJSON  = "json"
	outputAuto  = "auto"
)

// cliConfig is read from ~/.config/mediajournal/journalctl.toml when present.
type cliConfig struct {
	APIURL      string `toml:"api_url"`
	Output      string `toml:"output"`
	SessionFile string `toml:"session_file"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		APIURL:      "http://localhost:5000",
		Output:      outputAuto,
		SessionFile: "~/.config/mediajournal/session.json",
	}
}

func defaultConfigPath() (string, error) {
	return expandPath("~/.config/mediajournal/journalctl.toml")
}

// loadCLIConfig reads path (or the default location). A missing file yields
// the defaults.
func loadCLIConfig(path string) (cliConfig, error) {
	cfg := defaultCLIConfig()
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	path, err := expandPath(path)
	if err != nil {
		return cfg, err
	}

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return cfg, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *cliConfig) normalize() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return fmt.Errorf("api_url must be set")
	}
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	if c.Output == "" {
		c.Output = outputAuto
	}
	if err := checkOutput(c.Output); err != nil {
		return err
	}
	p, err := expandPath(c.SessionFile)
	if err != nil {
		return err
	}
	c.SessionFile = p
	return nil
}

func checkOutput(o string) error {
	switch o {
	case outputAuto, outputTable, outputCards, outputJSON:
		return nil
	}
	return fmt.Errorf("unknown output %q (want auto, table, cards or json)", o)
}

func expandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Clean(p), nil
}
