package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// runManifest describes a headless batch: which files to translate and
// optional overrides applied on top of the persisted settings for this run
// only (nothing is written back).
type runManifest struct {
	Engine    string         `yaml:"engine,omitempty"`
	LangIn    string         `yaml:"lang_in,omitempty"`
	LangOut   string         `yaml:"lang_out,omitempty"`
	OutputDir string         `yaml:"output_dir,omitempty"`
	Pages     string         `yaml:"pages,omitempty"` // Page range for every file, e.g. "1,3-5".
	Files     []manifestFile `yaml:"files"`
}

type manifestFile struct {
	Name string `yaml:"name,omitempty"` // Defaults to the path's base name.
	Path string `yaml:"path"`
}

// loadManifest reads and validates a YAML run manifest.
func loadManifest(path string) (runManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runManifest{}, fmt.Errorf("manifest: %w", err)
	}

	var m runManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return runManifest{}, fmt.Errorf("manifest: parse %s: %w", path, err)
	}

	for i, f := range m.Files {
		if f.Path == "" {
			return runManifest{}, fmt.Errorf("manifest: file %d has no path", i)
		}
	}

	return m, nil
}
