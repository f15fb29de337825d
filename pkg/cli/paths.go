package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the tio directory structure
type Paths struct {
	// HomeDir is the user's home directory
	HomeDir string

	// Base, when set, replaces ~/.tio as the base directory, e.g. the
	// directory of a config file given with --config.
	Base string
}

// NewPaths returns the paths under the current user's home directory.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// PathsAt returns the paths rooted at base instead of ~/.tio. An empty
// base selects the current user's home directory.
func PathsAt(base string) (*Paths, error) {
	if base == "" {
		return NewPaths()
	}
	return &Paths{Base: base}, nil
}

// BaseDir returns the base tio directory (~/.tio)
func (p *Paths) BaseDir() string {
	if p.Base != "" {
		return p.Base
	}
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// Resolve returns p joined to the base directory unless it is absolute.
func (p *Paths) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir(), path)
}

// ConfigFile returns the config file path (~/.tio/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// DataDir returns the data directory (~/.tio/data)
func (p *Paths) DataDir() string {
	return filepath.Join(p.BaseDir(), "data")
}

// ObjectDir returns the default local object store root (~/.tio/data/objects)
func (p *Paths) ObjectDir() string {
	return filepath.Join(p.DataDir(), "objects")
}

// KVDir returns the default badger directory (~/.tio/data/kv)
func (p *Paths) KVDir() string {
	return filepath.Join(p.DataDir(), "kv")
}

// EnsureDataDir creates the data directory if it doesn't exist
func (p *Paths) EnsureDataDir() error {
	return os.MkdirAll(p.DataDir(), 0755)
}
