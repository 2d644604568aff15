package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LegacyConfig is the config.yaml layout of earlier replybot releases, which
// kept the access token next to the responses.
type LegacyConfig struct {
	InstanceURL string   `yaml:"instance_url"`
	APIToken    string   `yaml:"api_token"`
	Responses   []string `yaml:"responses"`
}

// LoadLegacyConfig reads and parses a legacy config.yaml.
func LoadLegacyConfig(path string) (*LegacyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading legacy config: %w", err)
	}
	return ParseLegacyYAML(data)
}

// ParseLegacyYAML parses a legacy config.yaml document. The instance URL is
// required; the token and responses may be empty.
func ParseLegacyYAML(data []byte) (*LegacyConfig, error) {
	legacy := &LegacyConfig{}
	if err := yaml.Unmarshal(data, legacy); err != nil {
		return nil, fmt.Errorf("parsing legacy config YAML: %w", err)
	}

	if legacy.InstanceURL == "" {
		return nil, errors.New("legacy config has no instance_url")
	}

	return legacy, nil
}

// Apply copies the instance URL and responses into cfg. The token is not
// part of Config and must be stored with the credentials manager.
func (l *LegacyConfig) Apply(cfg *Config) {
	cfg.Instance.URL = l.InstanceURL
	cfg.Reply.Responses = append([]string(nil), l.Responses...)
}
