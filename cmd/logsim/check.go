// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.hdl>...",
		Short: "Check chip definitions",
		Long:  `Loads the given HDL files, checks every chip for wiring errors and feedback loops and reports how each chip is evaluated.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, nil)
			if err != nil {
				return err
			}
			ps, err := loadFiles(e.lib, args)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "CHIP\tSTRATEGY\tINPUTS\tOUTPUTS")
			for _, p := range ps {
				fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", p.Name(), p.Strategy(),
					strings.Join(p.Inputs(), ","), strings.Join(p.Outputs(), ","))
			}
			return w.Flush()
		},
	}
}
