package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/orbiter-mshx/internal/exporter"
	"github.com/Faultbox/orbiter-mshx/internal/scene"
)

func newExportCmd() *cobra.Command {
	var opts scene.LoadOptions

	cmd := &cobra.Command{
		Use:   "export <scene.gltf|scene.glb>",
		Short: "Export glTF scenes as Orbiter mesh files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenes, err := scene.LoadGLTF(args[0], opts)
			if err != nil {
				return err
			}

			s, err := exporter.NewSession(cfg, args[0])
			if err != nil {
				return err
			}
			results, err := s.ExportAll(scenes)
			if cerr := s.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "%s: %d groups, %d materials, %d textures -> %s\n",
					r.Scene, len(r.Groups), len(r.Layout.Materials), len(r.Layout.Textures), r.Path)
				for _, name := range r.Skipped {
					fmt.Fprintf(out, "  skipped %s\n", name)
				}
			}
			if p := s.IncludePath(); p != "" {
				fmt.Fprintf(out, "include -> %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Scene, "scene", "", "Export only the scene with this name")
	cmd.Flags().BoolVar(&opts.KeepSeams, "keep-seams", false, "Do not weld vertices that share a position")
	return cmd
}
