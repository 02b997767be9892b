package connector

import (
	"fmt"
	"os"
	"path/filepath"
)

// Connector identifies a connector under test and the files that changed
// relative to the diffed branch.
type Connector struct {
	TechnicalName string
	CodeDirectory string
	ModifiedFiles []string
}

// FromDirectory builds a Connector from its source directory. The technical
// name is derived from the directory base name.
func FromDirectory(path string) (Connector, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Connector{}, fmt.Errorf("resolve connector path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Connector{}, fmt.Errorf("connector directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return Connector{}, fmt.Errorf("connector path %s is not a directory", abs)
	}
	return Connector{
		TechnicalName: filepath.Base(abs),
		CodeDirectory: abs,
	}, nil
}

// WithModifiedFiles returns a copy of the connector carrying the given
// modified file list.
func (c Connector) WithModifiedFiles(files []string) Connector {
	c.ModifiedFiles = append([]string(nil), files...)
	return c
}

func (c Connector) String() string {
	return c.TechnicalName
}
