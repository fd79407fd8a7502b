package utils

import (
	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadTOMLFile decodes configPath into v. Keys the struct does not know are
// logged at debug level.
func LoadTOMLFile(configPath string, v any) error {
	meta, err := toml.DecodeFile(configPath, v)
	if err != nil {
		log.Warnf("TOML parsing error in %s: %v. Attempting partial recovery...", configPath, err)
		return err
	}
	for _, key := range meta.Undecoded() {
		log.Debugf("Ignoring unknown key %q in %s", key.String(), configPath)
	}
	return nil
}

// ParseTOMLWithRecovery decodes configPath into a generic table so that
// well-typed keys survive when the file does not match the config struct.
func ParseTOMLWithRecovery(configPath string) (map[string]any, error) {
	table := make(map[string]any)
	if _, err := toml.DecodeFile(configPath, &table); err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v", configPath, err)
		return nil, err
	}
	return table, nil
}

func extract[T any](data map[string]any, key string) (T, bool) {
	v, ok := data[key].(T)
	return v, ok
}

// ExtractSection returns the table stored under sectionName.
func ExtractSection(data map[string]any, sectionName string) (map[string]any, bool) {
	return extract[map[string]any](data, sectionName)
}

// ExtractInt64 returns an integer key. TOML integers decode as int64.
func ExtractInt64(data map[string]any, key string) (int, bool) {
	v, ok := extract[int64](data, key)
	return int(v), ok
}

// ExtractBool returns a boolean key.
func ExtractBool(data map[string]any, key string) (bool, bool) {
	return extract[bool](data, key)
}

// ExtractString returns a string key.
func ExtractString(data map[string]any, key string) (string, bool) {
	return extract[string](data, key)
}
