// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl parses circuit descriptions.
//
// A source file is a list of chip definitions:
//
//	// 1 bit half adder
//	chip HalfAdder {
//		in a, b;
//		out sum, carry;
//		x: XOR;
//		c: AND(2);
//		a -> x.0, c.0;
//		b -> x.1, c.1;
//		x -> sum;
//		c -> carry;
//	}
//
// in and out declare the chip boundary in pin order; a[4] declares a 4 bit
// bus. A part declaration "name: KIND(arg)" adds a device. Wires connect a
// source to one or more targets; part.N refers to pin N of a part and bus[i]
// to bit i of a bus.
//
package hdl

import (
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// Lexer tokenizes circuit descriptions.
//
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[{}();:,.\[\]]`},
})

// File is a parsed source file.
//
type File struct {
	Pos   lexer.Position
	Chips []*Chip `parser:"@@*"`
}

// Chip is a chip definition.
//
type Chip struct {
	Pos   lexer.Position
	Name  string  `parser:"\"chip\" @Ident \"{\""`
	Stmts []*Stmt `parser:"@@* \"}\""`
}

// Stmt is a statement in a chip body. Exactly one field is set.
//
type Stmt struct {
	Pos  lexer.Position
	In   []*Port `parser:"  \"in\" @@ ( \",\" @@ )* \";\""`
	Out  []*Port `parser:"| \"out\" @@ ( \",\" @@ )* \";\""`
	Part *Part   `parser:"| @@ \";\""`
	Wire *Wire   `parser:"| @@ \";\""`
}

// Port declares a boundary pin or bus.
//
type Port struct {
	Pos   lexer.Position
	Name  string `parser:"@Ident"`
	Width int    `parser:"( \"[\" @Int \"]\" )?"`
}

// Part declares a device.
//
type Part struct {
	Pos  lexer.Position
	Name string `parser:"@Ident \":\""`
	Kind string `parser:"@Ident"`
	Arg  *int   `parser:"( \"(\" @Int \")\" )?"`
}

// Wire connects one source pin to target pins.
//
type Wire struct {
	Pos lexer.Position
	Src *Ref   `parser:"@@ \"->\""`
	Dst []*Ref `parser:"@@ ( \",\" @@ )*"`
}

// Ref is a pin reference: a boundary pin name, a bus bit name[i] or a part
// pin name.N. A part name alone refers to pin 0.
//
type Ref struct {
	Pos  lexer.Position
	Name string `parser:"@Ident"`
	Pin  *int   `parser:"( \".\" @Int )?"`
	Bit  *int   `parser:"( \"[\" @Int \"]\" )?"`
}

// Parser parses circuit descriptions.
//
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser returns a new parser.
//
func NewParser() (*Parser, error) {
	p, err := participle.Build[File](
		participle.Lexer(Lexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build parser")
	}
	return &Parser{parser: p}, nil
}

// Parse parses a file read from r. filename is only used in error messages
// and positions.
//
func (p *Parser) Parse(filename string, r io.Reader) (*File, error) {
	f, err := p.parser.Parse(filename, r)
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}
	return f, nil
}

// ParseString parses src.
//
func (p *Parser) ParseString(filename, src string) (*File, error) {
	f, err := p.parser.ParseString(filename, src)
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}
	return f, nil
}

// ParseFile parses the named file.
//
func (p *Parser) ParseFile(filename string) (*File, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer r.Close()
	return p.Parse(filename, r)
}
