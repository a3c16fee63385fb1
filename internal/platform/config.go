package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional per-vault configuration file.
const ConfigFile = "snapnote.yaml"

// FileConfig mirrors snapnote.yaml. Explicit options always win over it.
type FileConfig struct {
	Adapter    string `yaml:"adapter,omitempty"`
	ImageDir   string `yaml:"image_dir,omitempty"`
	SystemDir  string `yaml:"system_dir,omitempty"`
	Versioning *bool  `yaml:"versioning,omitempty"`
	LogLevel   string `yaml:"log_level,omitempty"`
}

// LoadConfig reads snapnote.yaml from dir. A missing file yields a zero config.
func LoadConfig(dir string) (FileConfig, error) {
	var cfg FileConfig

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}
	if cfg.LogLevel != "" {
		if _, err := ParseLevel(cfg.LogLevel); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// SaveConfig writes cfg as snapnote.yaml inside dir.
func SaveConfig(dir string, cfg FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFile), data, 0644)
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return level, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}

// apply fills the options the caller did not set explicitly.
func (c FileConfig) apply(o *options) {
	if o.adapter == "" {
		o.adapter = c.Adapter
	}
	if _, ok := o.config["image_dir"]; !ok && c.ImageDir != "" {
		o.config["image_dir"] = c.ImageDir
	}
	if _, ok := o.config["system_dir"]; !ok && c.SystemDir != "" {
		o.config["system_dir"] = c.SystemDir
	}
	if _, ok := o.config["versioning"]; !ok && c.Versioning != nil {
		o.config["versioning"] = *c.Versioning
	}
	if o.logger == nil && c.LogLevel != "" {
		level, _ := ParseLevel(c.LogLevel)
		o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
}
