package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Faultbox/orbiter-mshx/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}

	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to a config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := path
			var err error
			if target == "" {
				target = filepath.Join(config.ConfigDir(), "config.yaml")
				err = cfg.Save()
			} else {
				err = cfg.SaveTo(target)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", target)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "Config file to write (default: user config directory)")

	cmd.AddCommand(initCmd)
	return cmd
}
