package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// FileReader backs Reader with a flat string map loaded from a YAML file,
// for deployments that prefer a config file over environment variables.
type FileReader struct {
	values map[string]string
}

// LoadFileReader reads and parses a YAML file of the form `KEY: value`.
func LoadFileReader(path string) (*FileReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}

	return &FileReader{values: values}, nil
}

func (f *FileReader) Get(key string) (string, bool) {
	if f == nil {
		return "", false
	}
	v, ok := f.values[key]
	return v, ok
}

// ChainReader tries each Reader in order, returning the first hit. It lets
// callers layer a FileReader over EnvReader (or vice versa) without
// changing the Reader contract.
type ChainReader []Reader

func (c ChainReader) Get(key string) (string, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if v, ok := r.Get(key); ok {
			return v, true
		}
	}
	return "", false
}
