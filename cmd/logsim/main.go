// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command logsim loads, inspects and serves logic circuits.
//
//	logsim check adder.hdl
//	logsim table adder.hdl Adder2
//	logsim export adder.hdl > adder.yaml
//	logsim serve --config logsim.yaml
//
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "logsim:", err)
		os.Exit(1)
	}
}
