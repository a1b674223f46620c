package main

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/Faultbox/orbiter-mshx/pkg/formats"
)

func newInfoCmd() *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "info <mesh.msh>",
		Short: "Display mesh file information",
		Long:  "Display the groups, materials and textures of an Orbiter mesh file. --dump prints the parsed file structure.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formats.ImportFile(args[0], formats.ReadOptions{LegacyEncoding: cfg.Import.LegacyEncoding})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dump {
				sc := spew.NewDefaultConfig()
				sc.DisableCapacities = true
				sc.DisablePointerAddresses = true
				sc.Fdump(out, f)
				return nil
			}
			return printInfo(out, args[0], f)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Dump the parsed file structure")
	return cmd
}

func printInfo(w io.Writer, path string, f *formats.File) error {
	fmt.Fprintf(w, "File:       %s\n", path)
	fmt.Fprintf(w, "Groups:     %d\n", len(f.Groups))
	fmt.Fprintf(w, "Materials:  %d\n", f.MaterialCount())
	fmt.Fprintf(w, "Textures:   %d\n", f.TextureCount())
	fmt.Fprintln(w)

	for i, g := range f.Groups {
		layout, _ := g.Layout()
		label := g.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(w, "  [%d] %-20s mat %-3d tex %-3d flag %-6s %5d verts %5d tris  %s\n",
			i, label, g.MaterialIndex, g.TextureIndex, flagText(g), g.NumVertices, g.NumTriangles, layout)
	}

	if f.MaterialCount() > 0 {
		fmt.Fprintln(w)
		for i := 1; i < len(f.Materials); i++ {
			m, err := f.Materials[i].Decode()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  material %d: %s diffuse %.3v power %.1f\n", i, m.Name, m.Diffuse, m.SpecularPower)
		}
	}
	if f.TextureCount() > 0 {
		fmt.Fprintln(w)
		for i := 1; i < len(f.Textures); i++ {
			t := f.Textures[i]
			dyn := ""
			if t.Dynamic {
				dyn = " (dynamic)"
			}
			fmt.Fprintf(w, "  texture %d: %s%s\n", i, t.Path, dyn)
		}
	}
	return nil
}

func flagText(g formats.Group) string {
	if g.FlagText != "" {
		return g.FlagText
	}
	return "0"
}
