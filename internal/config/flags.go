package config

import "github.com/spf13/pflag"

// Flag names bound by BindFlags.
const (
	FlagConfig        = "config"
	FlagMeshDir       = "mesh-dir"
	FlagSwapYZ        = "swap-yz"
	FlagSelected      = "selected"
	FlagIncludeHidden = "include-hidden"
	FlagParseMaterial = "parse-material-name"
	FlagSort          = "sort"
	FlagLegacy        = "legacy-encoding"
	FlagInclude       = "include"
	FlagIncludePath   = "include-path"
	FlagNamespace     = "namespace"
	FlagLogLevel      = "log-level"
	FlagBuildLog      = "build-log"
	FlagVerbose       = "verbose"
	FlagDebug         = "debug"
)

// BindFlags registers the command-line overrides on fs. Only flags the user
// actually set override the file values.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagConfig, "", "Path to config file")
	fs.String(FlagMeshDir, d.Export.MeshDir, "Directory mesh files are written to")
	fs.Bool(FlagSwapYZ, d.Export.SwapYZ, "Swap the Y and Z axes (Z-up host to Y-up Orbiter)")
	fs.Bool(FlagSelected, d.Export.SelectedOnly, "Export only selected objects of the active scene")
	fs.Bool(FlagIncludeHidden, !d.Export.ExcludeHiddenRender, "Export objects hidden from render")
	fs.Bool(FlagParseMaterial, d.Export.ParseMaterialName, "Cut material names at the first underscore")
	fs.String(FlagSort, d.Export.SortMode, "Group order: SORTORDER, GROUPNAMEASC or GROUPNAMEDESC")
	fs.Bool(FlagLegacy, false, "Read and write mesh files as Windows-1252")
	fs.Bool(FlagInclude, d.Include.Enabled, "Write a C++ include file")
	fs.String(FlagIncludePath, "", "Include file path")
	fs.String(FlagNamespace, d.Include.OuterNamespace, "Outer namespace of the include file")
	fs.String(FlagLogLevel, d.Logging.Level, "Console log level")
	fs.String(FlagBuildLog, "", "Write a build log to this file")
	fs.Bool(FlagVerbose, d.Logging.Verbose, "Record debug detail in the build log")
	fs.Bool(FlagDebug, false, "Enable debug logging")
}

// ConfigPath returns the explicit config path if provided via --config.
func ConfigPath(fs *pflag.FlagSet) string {
	if fs == nil {
		return ""
	}
	path, _ := fs.GetString(FlagConfig)
	return path
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, fs *pflag.FlagSet) {
	if fs == nil {
		return
	}
	str := func(name string, dst *string) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	boolean := func(name string, dst *bool) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst, _ = fs.GetBool(name)
		}
	}

	str(FlagMeshDir, &cfg.Export.MeshDir)
	boolean(FlagSwapYZ, &cfg.Export.SwapYZ)
	boolean(FlagSwapYZ, &cfg.Import.SwapYZ)
	boolean(FlagSelected, &cfg.Export.SelectedOnly)
	if f := fs.Lookup(FlagIncludeHidden); f != nil && f.Changed {
		v, _ := fs.GetBool(FlagIncludeHidden)
		cfg.Export.ExcludeHiddenRender = !v
	}
	boolean(FlagParseMaterial, &cfg.Export.ParseMaterialName)
	str(FlagSort, &cfg.Export.SortMode)
	boolean(FlagLegacy, &cfg.Export.LegacyEncoding)
	boolean(FlagLegacy, &cfg.Import.LegacyEncoding)
	boolean(FlagInclude, &cfg.Include.Enabled)
	str(FlagIncludePath, &cfg.Include.Path)
	if f := fs.Lookup(FlagIncludePath); f != nil && f.Changed {
		cfg.Include.Enabled = true
	}
	str(FlagNamespace, &cfg.Include.OuterNamespace)
	str(FlagLogLevel, &cfg.Logging.Level)
	str(FlagBuildLog, &cfg.Logging.BuildLog)
	boolean(FlagVerbose, &cfg.Logging.Verbose)

	if debug, _ := fs.GetBool(FlagDebug); debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Verbose = true
	}
}
