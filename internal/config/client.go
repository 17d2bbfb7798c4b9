package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultAPIURL = "http://localhost:8080"

// ClientConfig is what the storycards CLI remembers between runs.
type ClientConfig struct {
	APIURL string `yaml:"api_url"`
	Token  string `yaml:"token,omitempty"`
}

// DefaultClientPath is ~/.config/storycards/client.yaml (or the platform
// equivalent of os.UserConfigDir).
func DefaultClientPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locating user config dir: %w", err)
	}
	return filepath.Join(dir, "storycards", "client.yaml"), nil
}

// LoadClient reads the CLI config at path, then lets STORYCARDS_API_URL and
// STORYCARDS_TOKEN override it. A missing file is fine.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := ClientConfig{APIURL: DefaultAPIURL}
	if path != "" {
		if err := readYAML(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	setString(&cfg.APIURL, "STORYCARDS_API_URL")
	setString(&cfg.Token, "STORYCARDS_TOKEN")
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &cfg, nil
}

// SaveClient writes cfg to path. The file holds a bearer token, so it is
// readable by the owner only.
func SaveClient(path string, cfg *ClientConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: creating %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encoding client config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
