package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat indicates no loader recognizes the file.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// ErrNotObject indicates the document root is not an id -> record mapping.
var ErrNotObject = errors.New("dataset root is not a mapping")

// Loader reads one on-disk dataset format.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string) (*Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// LoadDataset selects a loader based on the file extension.
func LoadDataset(path string) (*Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			ds, err := l.Load(path)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
			}
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads the dataset at path and reshapes it once. The returned table is
// meant to be shared by every view for the lifetime of the load.
func Load(path string) (*Table, error) {
	ds, err := LoadDataset(path)
	if err != nil {
		return nil, err
	}
	return Reshape(ds), nil
}

type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

func (jsonLoader) Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseJSON(filepath.Base(path), data)
}

type yamlLoader struct{}

func (yamlLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func (yamlLoader) Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseYAML(filepath.Base(path), data)
}

func init() {
	Register(jsonLoader{})
	Register(yamlLoader{})
	Register(csvLoader{})
	Register(xlsxLoader{})
}
