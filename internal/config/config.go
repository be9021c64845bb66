package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/btools-dev/btools/internal/branding"
	"github.com/btools-dev/btools/internal/errors"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized configuration keys.
const (
	KeyTemplatesDir    = "templates_dir"
	KeyDefaultTemplate = "default_template"
	KeyAuthor          = "author"
	KeyVerbosity       = "verbosity"
)

var defaults = map[string]any{
	KeyTemplatesDir:    "",
	KeyDefaultTemplate: "vanilla",
	KeyAuthor:          "",
	KeyVerbosity:       0,
}

// Keys returns the recognized configuration keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dir returns the config directory (~/.btools/). The HOME variable under the
// branding env prefix (BTOOLS_HOME) overrides it.
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("home")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.btools/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// A missing config file is not an error. An unreadable or malformed one is
// reported, and defaults plus environment values still apply.
func Load() error {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err == nil || stderrors.As(err, &notFound) || stderrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	path := FilePath()
	return errors.Wrap(errors.CodeValidation, "Invalid config file: "+path, err, map[string]any{"path": path})
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return errors.Validation(
			fmt.Sprintf("Unknown config key %q. Valid keys: %s", key, strings.Join(Keys(), ", ")),
			map[string]any{"key": key},
		)
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// TemplatesDir returns the directory holding custom templates, or "" to use
// the templates built into the binary.
func TemplatesDir() string { return viper.GetString(KeyTemplatesDir) }

// DefaultTemplate returns the template used when create gets no --template.
func DefaultTemplate() string { return viper.GetString(KeyDefaultTemplate) }

// Author returns the default author for new projects.
func Author() string { return viper.GetString(KeyAuthor) }

// Verbosity returns the configured log verbosity.
func Verbosity() int { return viper.GetInt(KeyVerbosity) }
