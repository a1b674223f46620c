// Package config handles build settings loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// Config holds all build settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Include IncludeConfig `yaml:"include"`
	Import  ImportConfig  `yaml:"import"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig controls how scenes are written as mesh files.
type ExportConfig struct {
	MeshDir             string `yaml:"mesh_dir"`
	SwapYZ              bool   `yaml:"swap_yz"`
	SelectedOnly        bool   `yaml:"selected_only"`
	ExcludeHiddenRender bool   `yaml:"exclude_hidden_render"`
	ParseMaterialName   bool   `yaml:"parse_material_name"`
	SortMode            string `yaml:"sort_mode"` // SORTORDER, GROUPNAMEASC or GROUPNAMEDESC
	LegacyEncoding      bool   `yaml:"legacy_encoding"`
}

// IncludeConfig controls the C++ include listing.
type IncludeConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path defaults to <mesh_dir>/<source name>.h.
	Path            string `yaml:"path"`
	OuterNamespace  string `yaml:"outer_namespace"`
	VertsPattern    string `yaml:"verts_pattern"`
	IDPattern       string `yaml:"id_pattern"`
	LocationPattern string `yaml:"location_pattern"`
}

// ImportConfig controls how mesh files are read back into scenes.
type ImportConfig struct {
	SwapYZ         bool `yaml:"swap_yz"`
	LegacyEncoding bool `yaml:"legacy_encoding"`
	// Binary writes .glb instead of .gltf when no output name is given.
	Binary bool `yaml:"binary"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	BuildLog string `yaml:"build_log"`
	Verbose  bool   `yaml:"verbose"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			MeshDir:             ".",
			SwapYZ:              true,
			SelectedOnly:        false,
			ExcludeHiddenRender: true,
			ParseMaterialName:   false,
			SortMode:            string(mesh.SortByOrder),
		},
		Include: IncludeConfig{
			Enabled:         false,
			OuterNamespace:  "bl",
			VertsPattern:    "{}Verts",
			IDPattern:       "{}Id",
			LocationPattern: "{}Location",
		},
		Import: ImportConfig{
			SwapYZ: true,
		},
		Logging: LoggingConfig{
			Level:    "info",
			BuildLog: "",
			Verbose:  false,
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if _, err := mesh.ParseSortMode(c.Export.SortMode); err != nil {
		return fmt.Errorf("export.sort_mode: %w", err)
	}
	if c.Export.MeshDir == "" {
		return fmt.Errorf("export.mesh_dir is empty")
	}
	return nil
}
