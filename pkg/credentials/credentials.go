// Package credentials stores per-instance access tokens in credentials.toml
// inside the .replybot/ directory.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/replybot/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0

	// EnvAccessToken overrides any stored token.
	EnvAccessToken = "REPLYBOT_ACCESS_TOKEN"
)

// ErrNoToken is returned by ResolveToken when no token is available from any
// source.
var ErrNoToken = errors.New("no access token: pass --token, set " + EnvAccessToken + " or run 'replybot auth set'")

// Manager manages reading and writing credentials.toml in the .replybot/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .replybot/ directory; otherwise the standard dotdir resolution
// applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:   currentVersion,
				Instances: make(map[string]InstanceCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Instances == nil {
		creds.Instances = make(map[string]InstanceCredential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetToken stores an access token for the given instance host.
func (m *Manager) SetToken(host, token string) error {
	host = normalizeHost(host)
	if host == "" {
		return errors.New("instance host is required")
	}

	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Instances[host] = InstanceCredential{AccessToken: token}

	return m.Save(creds)
}

// GetToken returns the stored access token for the given instance host.
// Returns an empty string if no token is stored.
func (m *Manager) GetToken(host string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	return creds.Instances[normalizeHost(host)].AccessToken, nil
}

// RemoveToken deletes the stored token for an instance host.
func (m *Manager) RemoveToken(host string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Instances, normalizeHost(host))

	return m.Save(creds)
}

// ListInstances returns the hosts that have stored tokens.
func (m *Manager) ListInstances() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	hosts := make([]string, 0, len(creds.Instances))
	for host := range creds.Instances {
		hosts = append(hosts, host)
	}

	sort.Strings(hosts)

	return hosts, nil
}

// ResolveToken picks the access token for host. The flag value wins, then the
// REPLYBOT_ACCESS_TOKEN environment variable, then the stored token.
func (m *Manager) ResolveToken(flagValue, host string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if env := os.Getenv(EnvAccessToken); env != "" {
		return env, nil
	}

	token, err := m.GetToken(host)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoToken
	}

	return token, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// normalizeHost accepts either a bare host or a full instance URL.
func normalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host, _, _ = strings.Cut(host, "/")
	return host
}
