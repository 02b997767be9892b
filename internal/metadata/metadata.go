// Package metadata reads the connector descriptor file and exposes its
// declared fields. Accessors re-read the file on every call so that callers
// always observe the on-disk state; callers needing a consistent view should
// snapshot with Load.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	convoyerrors "github.com/convoy-ci/convoy/pkg/errors"
)

// FileName is the fixed descriptor file name expected at the connector's
// source root.
const FileName = "metadata.yaml"

// TestSuiteOption declares one enabled test suite in the descriptor.
type TestSuiteOption struct {
	Suite string `yaml:"suite"`
}

// Data is the `data` section of the connector descriptor.
type Data struct {
	DockerRepository           string            `yaml:"dockerRepository"`
	DockerImageTag             string            `yaml:"dockerImageTag"`
	ConnectorTestSuitesOptions []TestSuiteOption `yaml:"connectorTestSuitesOptions"`
}

type document struct {
	Data *Data `yaml:"data"`
}

// Accessor locates and parses the descriptor for a single connector.
type Accessor struct {
	codeDirectory string
}

// NewAccessor creates an Accessor rooted at the connector's code directory.
func NewAccessor(codeDirectory string) *Accessor {
	return &Accessor{codeDirectory: codeDirectory}
}

// Path returns the expected descriptor location.
func (a *Accessor) Path() string {
	return filepath.Join(a.codeDirectory, FileName)
}

// Load reads and parses the descriptor, returning its data section.
func (a *Accessor) Load() (*Data, error) {
	path := a.Path()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, convoyerrors.NewMetadataNotFoundError(path, err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, convoyerrors.NewMetadataParseError(path, "", err)
	}
	if doc.Data == nil {
		return nil, convoyerrors.NewMetadataParseError(path, "missing data section", nil)
	}
	return doc.Data, nil
}

// DockerRepository returns the declared image repository.
func (a *Accessor) DockerRepository() (string, error) {
	data, err := a.Load()
	if err != nil {
		return "", err
	}
	if data.DockerRepository == "" {
		return "", convoyerrors.NewMissingMetadataFieldError("dockerRepository", a.Path())
	}
	return data.DockerRepository, nil
}

// DockerImageTag returns the declared image tag.
func (a *Accessor) DockerImageTag() (string, error) {
	data, err := a.Load()
	if err != nil {
		return "", err
	}
	if data.DockerImageTag == "" {
		return "", convoyerrors.NewMissingMetadataFieldError("dockerImageTag", a.Path())
	}
	return data.DockerImageTag, nil
}

// DockerImage returns the combined repository:tag image reference.
func (a *Accessor) DockerImage() (string, error) {
	repository, err := a.DockerRepository()
	if err != nil {
		return "", err
	}
	tag, err := a.DockerImageTag()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s", repository, tag), nil
}

// EnabledTestSuites returns the suite names declared under
// connectorTestSuitesOptions. An absent field yields an empty list.
func (a *Accessor) EnabledTestSuites() ([]string, error) {
	data, err := a.Load()
	if err != nil {
		return nil, err
	}
	suites := make([]string, 0, len(data.ConnectorTestSuitesOptions))
	for _, option := range data.ConnectorTestSuitesOptions {
		suites = append(suites, option.Suite)
	}
	return suites, nil
}
