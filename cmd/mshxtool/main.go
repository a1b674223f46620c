// mshxtool converts between glTF scenes and Orbiter MSHX1 mesh files.
//
// Usage:
//
//	mshxtool export <scene.gltf|scene.glb>   Write one .msh per scene
//	mshxtool import <mesh.msh>               Write the mesh as glTF
//	mshxtool info <mesh.msh>                 Show groups, materials and textures
//	mshxtool config init                     Write the default settings file
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/Faultbox/orbiter-mshx/internal/config"
	"github.com/Faultbox/orbiter-mshx/internal/logger"
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

func main() {
	root := newRootCmd()
	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mshxtool",
		Short: "Orbiter mesh exporter and importer",
		Long: `mshxtool - Orbiter MSHX1 mesh tools

Exports glTF scenes to Orbiter .msh files with an optional C++ include
listing, and imports .msh files back into glTF.

Settings are read from ./mshx.yaml or the user config directory; flags
override the file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			fileCfg := logger.FileConfig{}
			if cfg.Logging.BuildLog != "" {
				fileCfg = logger.DefaultFileConfig(cfg.Logging.BuildLog)
				fileCfg.Verbose = cfg.Logging.Verbose
			}
			return logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(newExportCmd(), newImportCmd(), newInfoCmd(), newConfigCmd())
	return root
}
