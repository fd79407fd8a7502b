/*
Package config manages TOML config for WordBridge.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/wordbridge/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Dict   DictConfig   `toml:"dict"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// EngineConfig has engine creation options.
type EngineConfig struct {
	BasePath        string `toml:"base_path"`
	InstallOnCreate bool   `toml:"install_on_create"`
}

// DictConfig holds dictionary options applied after creation.
type DictConfig struct {
	Active   string `toml:"active"`
	Learning bool   `toml:"learning"`
}

// ServerConfig holds transport bounds.
type ServerConfig struct {
	MaxRequestStrings int `toml:"max_request_strings"`
	MaxStringLength   int `toml:"max_string_length"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ChainSuggestions bool `toml:"chain_suggestions"`
	ShowPackages     bool `toml:"show_packages"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", utils.AppName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", utils.AppName)
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordbridge/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			BasePath:        "data",
			InstallOnCreate: true,
		},
		Dict: DictConfig{
			Active:   "",
			Learning: true,
		},
		Server: ServerConfig{
			MaxRequestStrings: 16,
			MaxStringLength:   1024,
		},
		CLI: CliConfig{
			ChainSuggestions: true,
			ShowPackages:     false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Keys missing from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// binding reads one key of a section into the config.
type binding struct {
	section, key string
	apply        func(table map[string]any, key string, c *Config) bool
}

func stringKey(set func(*Config, string)) func(map[string]any, string, *Config) bool {
	return func(t map[string]any, key string, c *Config) bool {
		v, ok := utils.ExtractString(t, key)
		if ok {
			set(c, v)
		}
		return ok
	}
}

func boolKey(set func(*Config, bool)) func(map[string]any, string, *Config) bool {
	return func(t map[string]any, key string, c *Config) bool {
		v, ok := utils.ExtractBool(t, key)
		if ok {
			set(c, v)
		}
		return ok
	}
}

func intKey(set func(*Config, int)) func(map[string]any, string, *Config) bool {
	return func(t map[string]any, key string, c *Config) bool {
		v, ok := utils.ExtractInt64(t, key)
		if ok {
			set(c, v)
		}
		return ok
	}
}

var bindings = []binding{
	{"engine", "base_path", stringKey(func(c *Config, v string) { c.Engine.BasePath = v })},
	{"engine", "install_on_create", boolKey(func(c *Config, v bool) { c.Engine.InstallOnCreate = v })},
	{"dict", "active", stringKey(func(c *Config, v string) { c.Dict.Active = v })},
	{"dict", "learning", boolKey(func(c *Config, v bool) { c.Dict.Learning = v })},
	{"server", "max_request_strings", intKey(func(c *Config, v int) { c.Server.MaxRequestStrings = v })},
	{"server", "max_string_length", intKey(func(c *Config, v int) { c.Server.MaxStringLength = v })},
	{"cli", "chain_suggestions", boolKey(func(c *Config, v bool) { c.CLI.ChainSuggestions = v })},
	{"cli", "show_packages", boolKey(func(c *Config, v bool) { c.CLI.ShowPackages = v })},
}

// tryPartialParse keeps every well-typed key it can read and defaults the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	table, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	for _, b := range bindings {
		section, ok := utils.ExtractSection(table, b.section)
		if !ok {
			continue
		}
		if _, present := section[b.key]; present && !b.apply(section, b.key, config) {
			log.Warnf("Config key %s.%s has the wrong type, keeping default", b.section, b.key)
		}
	}
	return config, nil
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the dictionary options and saves to file
func (c *Config) Update(configPath string, active *string, learning *bool) error {
	if active != nil {
		c.Dict.Active = *active
	}
	if learning != nil {
		c.Dict.Learning = *learning
	}
	return SaveConfig(c, configPath)
}
