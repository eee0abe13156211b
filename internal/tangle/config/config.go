// Package config loads the optional per-project .tangle.yml file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultOutDir is the default scope for post-tangle cache cleanup.
const DefaultOutDir = "dist"

// DefaultExcludeDirs are the directory names skipped during document
// discovery when no explicit paths are given on the command line.
var DefaultExcludeDirs = []string{"node_modules", "scripts", "dist"}

// Config is project-level configuration, optionally overridden by
// .tangle.yml at the project root.
type Config struct {
	OutDir      string   `yaml:"outDir,omitempty"`
	ExcludeDirs []string `yaml:"excludeDirs,omitempty"`
	NoClean     bool     `yaml:"noClean,omitempty"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		OutDir:      DefaultOutDir,
		ExcludeDirs: append([]string(nil), DefaultExcludeDirs...),
	}
}

// Load reads and merges .tangle.yml at path over the built-in defaults. A
// missing file is not an error: Default() is returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, err
	}

	if fileCfg.OutDir != "" {
		cfg.OutDir = fileCfg.OutDir
	}
	if len(fileCfg.ExcludeDirs) > 0 {
		cfg.ExcludeDirs = fileCfg.ExcludeDirs
	}
	cfg.NoClean = fileCfg.NoClean

	return cfg, nil
}
