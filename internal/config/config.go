// Package config loads the todo-manager configuration with viper.
//
// Sources, lowest precedence first: built-in defaults, the global file
// (~/.config/todo-manager.yml), the project file (./tm.config.yml), an
// explicit file, TODO_MANAGER_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/todo-manager/internal/entity"
)

const (
	GlobalFileName  = "todo-manager.yml"
	ProjectFileName = "tm.config.yml"
	EnvPrefix       = "TODO_MANAGER"
)

// Storage types.
const (
	StorageYAML   = "yaml"
	StorageSQLite = "sqlite"
)

// Config is the effective configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`
	View    ViewConfig    `mapstructure:"view" yaml:"view" json:"view"`

	// Files lists the configuration files that were read, in order.
	Files []string `mapstructure:"-" yaml:"-" json:"files"`
}

type StorageConfig struct {
	Type string `mapstructure:"type" yaml:"type" json:"type"`
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

type ViewConfig struct {
	AllowColor bool   `mapstructure:"allowColor" yaml:"allowColor" json:"allowColor"`
	DateFormat string `mapstructure:"dateFormat" yaml:"dateFormat" json:"dateFormat"`
}

// DefaultConfig returns the built-in defaults. The storage path is left
// unexpanded.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{Type: StorageYAML, Path: "~/.todo-manager"},
		View:    ViewConfig{AllowColor: true, DateFormat: "2006-01-02 15:04"},
	}
}

// Options locate the configuration sources. Empty HomeDir and WorkDir fall
// back to the user's home and the current directory.
type Options struct {
	HomeDir string
	WorkDir string
	// File is read last, after the global and project files. It must exist.
	File string
	// Flags are bound to keys by FlagKeys; only flags that were set count.
	Flags *pflag.FlagSet
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"storage-type": "storage.type",
	"storage-path": "storage.path",
}

// GlobalConfigPath returns the path of the global configuration file.
func GlobalConfigPath(home string) string {
	return filepath.Join(home, ".config", GlobalFileName)
}

// ProjectConfigPath returns the path of the project configuration file.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, ProjectFileName)
}

// Load merges every source into a Config.
func Load(opts Options) (*Config, error) {
	home, err := dirOr(opts.HomeDir, os.UserHomeDir)
	if err != nil {
		return nil, fmt.Errorf("home directory: %w", err)
	}
	wd, err := dirOr(opts.WorkDir, os.Getwd)
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, DefaultConfig())

	var files []string
	for _, path := range []string{GlobalConfigPath(home), ProjectConfigPath(wd)} {
		read, err := mergeFile(v, path, false)
		if err != nil {
			return nil, err
		}
		if read {
			files = append(files, path)
		}
	}
	if opts.File != "" {
		if _, err := mergeFile(v, opts.File, true); err != nil {
			return nil, err
		}
		files = append(files, opts.File)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	cfg.Files = files
	cfg.Storage.Path = expandHome(cfg.Storage.Path, home)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageYAML, StorageSQLite:
	default:
		return entity.NewInvalidInputError(fmt.Sprintf("unknown storage type %q (want %s or %s)", c.Storage.Type, StorageYAML, StorageSQLite))
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return entity.NewInvalidInputError("storage path is empty")
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("view.allowColor", cfg.View.AllowColor)
	v.SetDefault("view.dateFormat", cfg.View.DateFormat)
}

// mergeFile merges path into v. A missing file is skipped unless required.
func mergeFile(v *viper.Viper, path string, required bool) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("config file %s: %w", path, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("config file %s is a directory", path)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return false, fmt.Errorf("read config %s: %w", path, err)
	}
	return true, nil
}

func dirOr(dir string, fallback func() (string, error)) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return fallback()
}

func expandHome(path, home string) string {
	switch {
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:])
	}
	return path
}
