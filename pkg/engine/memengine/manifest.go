package memengine

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/wordbridge/pkg/engine"
	"github.com/charmbracelet/log"
)

// PackagesDir is the directory under the base path scanned for package manifests.
const PackagesDir = "packages"

// PackageSpec describes an installable package, usually read from a TOML manifest:
//
//	name = "enggb"
//
//	[[components]]
//	id = 257
//	type = "dictionary"
//	version = 3
//
//	[components.dictionary]
//	file_name = "enggb"
//	display_name = "English (UK)"
//	language = "en-GB-x-dict"
//
//	[components.dictionary.words]
//	hello = 120
//	help = 90
type PackageSpec struct {
	Name       string          `toml:"name"`
	Components []ComponentSpec `toml:"components"`
}

// ComponentSpec describes one component of a package.
type ComponentSpec struct {
	ID         uint32          `toml:"id"`
	Type       string          `toml:"type"`
	Version    uint32          `toml:"version"`
	Dictionary *DictionarySpec `toml:"dictionary"`
}

// DictionarySpec carries the dictionary details and its word list.
type DictionarySpec struct {
	FileName    string         `toml:"file_name"`
	DisplayName string         `toml:"display_name"`
	Language    string         `toml:"language"`
	Words       map[string]int `toml:"words"`
}

func (c ComponentSpec) componentType() engine.ComponentType {
	switch c.Type {
	case "engine":
		return engine.ComponentEngine
	case "dictionary":
		return engine.ComponentDictionary
	default:
		return engine.ComponentOther
	}
}

// DictionaryPackage is a shorthand for a package holding a single dictionary.
func DictionaryPackage(name string, id uint32, words map[string]int) PackageSpec {
	return PackageSpec{
		Name: name,
		Components: []ComponentSpec{{
			ID:      id,
			Type:    "dictionary",
			Version: 1,
			Dictionary: &DictionarySpec{
				FileName:    name,
				DisplayName: name,
				Words:       words,
			},
		}},
	}
}

// LoadManifest reads one package manifest.
func LoadManifest(path string) (PackageSpec, error) {
	var spec PackageSpec
	if _, err := toml.DecodeFile(path, &spec); err != nil {
		return PackageSpec{}, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	if spec.Name == "" {
		return PackageSpec{}, fmt.Errorf("manifest %s has no package name", path)
	}
	for i, c := range spec.Components {
		if c.componentType() == engine.ComponentDictionary && c.Dictionary == nil {
			return PackageSpec{}, fmt.Errorf("manifest %s: component %d is a dictionary without details", path, i)
		}
	}
	return spec, nil
}

// LoadManifests reads every *.toml file in dir, sorted by file name.
// Broken manifests are skipped with a warning.
func LoadManifests(dir string) ([]PackageSpec, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for manifests: %w", err)
	}
	sort.Strings(files)

	specs := make([]PackageSpec, 0, len(files))
	for _, f := range files {
		spec, err := LoadManifest(f)
		if err != nil {
			log.Warnf("Skipping package manifest: %v", err)
			continue
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
