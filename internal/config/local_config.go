package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the subset of config.yaml read straight from a data
// directory, bypassing viper. `ce init` uses it to report what an existing
// directory is already configured with.
type LocalConfig struct {
	Backend string `yaml:"backend,omitempty"`
	DB      string `yaml:"db,omitempty"`
	Actor   string `yaml:"actor,omitempty"`
	ID      struct {
		Prefix string `yaml:"prefix,omitempty"`
		Length int    `yaml:"length,omitempty"`
	} `yaml:"id,omitempty"`
}

// LoadLocalConfig parses dataDir/config.yaml. A missing or unparsable file
// yields an empty LocalConfig, never nil.
func LoadLocalConfig(dataDir string) *LocalConfig {
	data, err := os.ReadFile(filepath.Join(dataDir, "config.yaml")) // #nosec G304 - path from data dir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}
	return &cfg
}

// WriteLocalConfig writes a fresh config.yaml into dataDir. Existing files
// are left alone.
func WriteLocalConfig(dataDir string, cfg *LocalConfig) error {
	path := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	header := []byte("# collaboreats project settings; see `ce config list`\n")
	return os.WriteFile(path, append(header, data...), 0o600)
}
