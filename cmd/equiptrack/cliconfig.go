package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	transportUDS  = "uds"
	transportHTTP = "http"

	defaultServer = "http://127.0.0.1:8080"
	defaultSocket = "/tmp/equiptrack.sock"
)

// cliConfig says how the CLI reaches a running server. It lives in
// ~/.equiptrack/config.json and is written by `equiptrack config`.
type cliConfig struct {
	Transport string `json:"transport"`
	Server    string `json:"server"`
	Socket    string `json:"socket"`
}

func (c cliConfig) withDefaults() cliConfig {
	if c.Transport == "" {
		c.Transport = transportUDS
	}
	if c.Server == "" {
		c.Server = defaultServer
	}
	if c.Socket == "" {
		c.Socket = defaultSocket
	}
	return c
}

func (c cliConfig) validate() error {
	switch c.Transport {
	case transportUDS, transportHTTP:
		return nil
	}
	return fmt.Errorf("unknown transport %q", c.Transport)
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".equiptrack", "config.json"), nil
}

func loadConfig() (cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return cliConfig{}, err
	}
	var cfg cliConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg.withDefaults(), nil
	case err != nil:
		return cliConfig{}, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return cliConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	return cfg, nil
}

func saveConfig(cfg cliConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := jsonMarshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
