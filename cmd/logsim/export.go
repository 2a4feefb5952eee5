// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"github.com/db47h/logsim"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.hdl]...",
		Short: "Export the preset library as YAML",
		Long:  `Loads the given HDL files and writes the whole preset library, compiled truth tables included, to standard output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, nil)
			if err != nil {
				return err
			}
			if _, err = loadFiles(e.lib, args); err != nil {
				return err
			}
			return logsim.EncodeLibrary(cmd.OutOrStdout(), e.lib)
		},
	}
}
