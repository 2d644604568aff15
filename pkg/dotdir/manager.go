// Package dotdir resolves the .replybot/ directory that holds config.toml,
// credentials.toml and the default SQLite reply ledger.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the name of the replybot directory.
const DirName = ".replybot"

// dirMode keeps credentials.toml out of reach of other users.
const dirMode = 0o700

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to the .replybot/ directory, creating it
// if needed. Order of precedence:
//  1. Provided override
//  2. Local ./.replybot/ dir
//  3. Home ~/.replybot/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	dir := overrideDir
	if dir == "" {
		local, ok, err := m.local()
		if err != nil {
			return "", err
		}
		if ok {
			dir = local
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("getting home directory: %w", err)
			}
			dir = filepath.Join(home, DirName)
		}
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", fmt.Errorf("creating replybot directory %s: %w", dir, err)
	}
	return filepath.Abs(dir)
}

// InitLocal creates ./.replybot/ in the working directory. created is false
// when the directory already existed.
func (m *Manager) InitLocal() (dir string, created bool, err error) {
	dir, ok, err := m.local()
	if err != nil || ok {
		return dir, false, err
	}
	if err := os.Mkdir(dir, dirMode); err != nil {
		return "", false, fmt.Errorf("creating %s directory: %w", DirName, err)
	}
	return dir, true, nil
}

// local returns the ./.replybot/ path and whether it exists as a directory.
func (m *Manager) local() (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, DirName)
	info, err := os.Stat(dir)
	return dir, err == nil && info.IsDir(), nil
}
