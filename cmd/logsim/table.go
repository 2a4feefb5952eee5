// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/db47h/logsim"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table <file.hdl> <chip>",
		Short: "Print the truth table of a chip",
		Long:  `Loads the given HDL file and prints the truth table of a combinational chip, one row per input combination. Input i is bit i of the row number.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, nil)
			if err != nil {
				return err
			}
			if _, err = loadFiles(e.lib, args[:1]); err != nil {
				return err
			}
			p, err := e.lib.Get(args[1])
			if err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), p)
		},
	}
}

func printTable(w io.Writer, p *logsim.Preset) error {
	if p.Stateful() {
		return errors.Errorf("%s is sequential", p.Name())
	}
	ins, outs := p.Inputs(), p.Outputs()
	if len(ins) > logsim.HardMaxCompileInputs {
		return errors.Errorf("%s: too many inputs (%d)", p.Name(), len(ins))
	}
	fmt.Fprintf(w, "%s | %s\n", strings.Join(ins, " "), strings.Join(outs, " "))

	t := p.Table()
	in := make([]logsim.Signal, len(ins))
	var b strings.Builder
	for v := uint64(0); v < 1<<uint(len(ins)); v++ {
		var row uint64
		if t != nil {
			row = t.Lookup(v)
		} else {
			for i := range in {
				in[i] = logsim.Signal(v>>uint(i)) & 1
			}
			out, err := p.Eval(in)
			if err != nil {
				return err
			}
			for j, s := range out {
				row |= uint64(s) << uint(j)
			}
		}
		b.Reset()
		for i, n := range ins {
			writeBit(&b, v>>uint(i)&1, len(n))
		}
		b.WriteString("| ")
		for j, n := range outs {
			writeBit(&b, row>>uint(j)&1, len(n))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return errors.Wrap(err, "write table")
		}
	}
	return nil
}

// writeBit writes bit v left aligned in a column of the given width.
func writeBit(b *strings.Builder, v uint64, width int) {
	b.WriteByte('0' + byte(v))
	b.WriteString(strings.Repeat(" ", width))
}
