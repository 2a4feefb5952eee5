// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/db47h/logsim/internal/hdl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const src = `// test
chip Mux {
	in a, b, sel[1];
	out out;
	n: NOT;
	g: AND(3); // trailing comment
	sel[0] -> n, g.2;
	g.0 -> out;
}
`

func newParser(t *testing.T) *hdl.Parser {
	t.Helper()
	p, err := hdl.NewParser()
	require.NoError(t, err)
	return p
}

func TestParse(t *testing.T) {
	f, err := newParser(t).ParseString("mux.hdl", src)
	require.NoError(t, err)
	require.Len(t, f.Chips, 1)
	c := f.Chips[0]
	assert.Equal(t, "Mux", c.Name)
	assert.Equal(t, 2, c.Pos.Line)
	require.Len(t, c.Stmts, 6)

	in := c.Stmts[0].In
	require.Len(t, in, 3)
	assert.Equal(t, "a", in[0].Name)
	assert.Zero(t, in[0].Width)
	assert.Equal(t, "sel", in[2].Name)
	assert.Equal(t, 1, in[2].Width)
	require.Len(t, c.Stmts[1].Out, 1)
	assert.Equal(t, "out", c.Stmts[1].Out[0].Name)

	pt := c.Stmts[2].Part
	require.NotNil(t, pt)
	assert.Equal(t, "n", pt.Name)
	assert.Equal(t, "NOT", pt.Kind)
	assert.Nil(t, pt.Arg)
	pt = c.Stmts[3].Part
	require.NotNil(t, pt.Arg)
	assert.Equal(t, 3, *pt.Arg)

	w := c.Stmts[4].Wire
	require.NotNil(t, w)
	assert.Equal(t, "sel", w.Src.Name)
	require.NotNil(t, w.Src.Bit)
	assert.Equal(t, 0, *w.Src.Bit)
	require.Len(t, w.Dst, 2)
	assert.Nil(t, w.Dst[0].Pin)
	assert.Equal(t, 2, *w.Dst[1].Pin)
	assert.Equal(t, 7, w.Pos.Line)

	w = c.Stmts[5].Wire
	assert.Equal(t, 0, *w.Src.Pin)
	assert.Equal(t, "out", w.Dst[0].Name)
}

func TestParse_errors(t *testing.T) {
	p := newParser(t)
	for _, s := range []string{
		"chip {}",
		"chip X { in ; }",
		"chip X { a -> ; }",
		"chip X { a: ; }",
		"chip X { a[x] -> b; }",
		"chip X {",
		"module X {}",
	} {
		_, err := p.ParseString("bad.hdl", s)
		if assert.Error(t, err, s) {
			assert.Contains(t, err.Error(), "bad.hdl:1:", s)
		}
	}
	f, err := p.ParseString("empty.hdl", "// nothing\n")
	require.NoError(t, err)
	assert.Empty(t, f.Chips)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mux.hdl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	p := newParser(t)
	f, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Chips, 1)

	_, err = p.ParseFile(filepath.Join(t.TempDir(), "missing.hdl"))
	assert.Error(t, err)
}
