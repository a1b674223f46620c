package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/orbiter-mshx/internal/importer"
)

func newImportCmd() *cobra.Command {
	var (
		output string
		binary bool
		panel  bool
	)

	cmd := &cobra.Command{
		Use:   "import <mesh.msh>",
		Short: "Convert an Orbiter mesh file to glTF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := importer.OptionsFromConfig(cfg.Import)
			opts.Panel2D = panel
			if binary {
				opts.Binary = true
			}

			path, err := importer.ImportToFile(args[0], output, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .gltf or .glb file (default: next to the mesh)")
	cmd.Flags().BoolVar(&binary, "binary", false, "Write .glb when no output is given")
	cmd.Flags().BoolVar(&panel, "panel", false, "Treat the mesh as a 2D panel (not supported)")
	return cmd
}
