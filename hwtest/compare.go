// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing presets.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/db47h/logsim"
)

// ExhaustiveInputs is the largest input count for which presets are compared
// on every input combination. Larger presets are compared on random inputs.
//
const ExhaustiveInputs = 12

func inputString(names []string, in []logsim.Signal) string {
	var b strings.Builder
	for i, n := range names {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n)
		b.WriteRune('=')
		b.WriteString(in[i].String())
	}
	return b.String()
}

func setBits(in []logsim.Signal, v uint64) {
	for i := range in {
		in[i] = logsim.Signal(v>>uint(i)) & 1
	}
}

// ComparePresets takes two presets and compares their outputs given the same
// inputs. Both presets must have the same input and output names.
//
// Presets with up to ExhaustiveInputs inputs are compared on all input
// combinations, others on all Low, all High and 1<<ExhaustiveInputs random
// combinations.
//
func ComparePresets(t testing.TB, p1, p2 *logsim.Preset) {
	t.Helper()

	if !slices.Equal(p1.Inputs(), p2.Inputs()) {
		t.Fatalf("%s inputs %v != %s inputs %v", p1.Name(), p1.Inputs(), p2.Name(), p2.Inputs())
	}
	if !slices.Equal(p1.Outputs(), p2.Outputs()) {
		t.Fatalf("%s outputs %v != %s outputs %v", p1.Name(), p1.Outputs(), p2.Name(), p2.Outputs())
	}

	names := p1.Inputs()
	in := make([]logsim.Signal, len(names))
	check := func() {
		t.Helper()
		o1, err := p1.Eval(in)
		if err != nil {
			t.Fatal(err)
		}
		o2, err := p2.Eval(in)
		if err != nil {
			t.Fatal(err)
		}
		for i, n := range p1.Outputs() {
			if o1[i] != o2[i] {
				t.Fatalf("\n%s: %s => %s=%v\n%s: got %v", p1.Name(), inputString(names, in), n, o1[i], p2.Name(), o2[i])
			}
		}
	}

	start := time.Now()
	var n int
	if len(in) <= ExhaustiveInputs {
		n = 1 << uint(len(in))
		for v := 0; v < n; v++ {
			setBits(in, uint64(v))
			check()
		}
	} else {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		setBits(in, 0)
		check()
		setBits(in, ^uint64(0))
		check()
		n = 1 << ExhaustiveInputs
		for i := 0; i < n; i++ {
			setBits(in, rnd.Uint64())
			check()
		}
		n += 2
	}
	t.Logf("%s/%s: %d input vectors in %v", p1.Name(), p2.Name(), n, time.Since(start))
}

// CheckTable checks the outputs of p for every input combination. want[v] is
// the expected output vector for input vector v, where input i is bit i of v
// and output j is bit j of want[v].
//
func CheckTable(t testing.TB, p *logsim.Preset, want []uint64) {
	t.Helper()

	k := len(p.Inputs())
	if len(want) != 1<<uint(k) {
		t.Fatalf("%s: %d inputs need %d rows, got %d", p.Name(), k, 1<<uint(k), len(want))
	}
	in := make([]logsim.Signal, k)
	for v, w := range want {
		setBits(in, uint64(v))
		out, err := p.Eval(in)
		if err != nil {
			t.Fatal(err)
		}
		var got uint64
		for j, s := range out {
			got |= uint64(s) << uint(j)
		}
		if got != w {
			t.Errorf("%s: %s => %s, want %s", p.Name(), inputString(p.Inputs(), in), bits(got, len(out)), bits(w, len(out)))
		}
	}
}

func bits(v uint64, n int) string {
	return fmt.Sprintf("%0*b", max(n, 1), v)
}
