// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/db47h/logsim"
	"github.com/db47h/logsim/hwtest"
)

const orSrc = `
chip Or {
	in a, b;
	out out;
	g: OR;
	a -> g.0;
	b -> g.1;
	g -> out;
}

// De Morgan
chip NandOr {
	in a, b;
	out out;
	na: NOT;
	nb: NOT;
	g: NAND;
	a -> na;
	b -> nb;
	na -> g.0;
	nb -> g.1;
	g -> out;
}
`

func TestComparePresets(t *testing.T) {
	l := logsim.NewLibrary()
	ps, err := l.LoadHDLString("or.hdl", orSrc)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePresets(t, ps[0], ps[1])
	hwtest.CheckTable(t, ps[1], []uint64{0, 1, 1, 1})
}

func TestComparePresets_random(t *testing.T) {
	// 14 inputs: graph strategy against a compiled table
	var b strings.Builder
	b.WriteString("chip Wide { in a[14]; out out; g: XOR(14);\n")
	for i := 0; i < 14; i++ {
		fmt.Fprintf(&b, "\ta[%d] -> g.%d;\n", i, i)
	}
	b.WriteString("\tg -> out;\n}\n")
	src := b.String()

	direct := logsim.NewLibrary()
	graph := logsim.NewLibrary(logsim.WithMaxCompileInputs(8))
	pd, err := direct.LoadHDLString("wide.hdl", src)
	if err != nil {
		t.Fatal(err)
	}
	pg, err := graph.LoadHDLString("wide.hdl", src)
	if err != nil {
		t.Fatal(err)
	}
	if pd[0].Strategy() != logsim.Direct || pg[0].Strategy() != logsim.Graph {
		t.Fatalf("strategies: got %v and %v", pd[0].Strategy(), pg[0].Strategy())
	}
	hwtest.ComparePresets(t, pd[0], pg[0])
}
