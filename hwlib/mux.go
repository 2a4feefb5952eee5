// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

// Mux is a multiplexer.
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: if sel == 0 { out = a } else { out = b }
//
// DMux is a demultiplexer.
//
//	Inputs: v, sel
//	Outputs: a, b
//	Function: if sel == 0 { a = v; b = 0 } else { a = 0; b = v }
//
// Mux4Way is a 4-way multiplexer.
//
//	Inputs: a, b, c, d, sel[2]
//	Outputs: out
//	Function: out = a, b, c or d for sel = 0, 1, 2 or 3
//
// DMux4Way is a 4-way demultiplexer.
//
//	Inputs: v, sel[2]
//	Outputs: a, b, c, d
//	Function: routes v to a, b, c or d for sel = 0, 1, 2 or 3. Other
//	outputs are 0.
//
const muxHDL = `
chip Mux {
	in a, b, sel;
	out out;
	ns: NOT;
	wa: AND;
	wb: AND;
	o: OR;
	sel -> ns, wb.1;
	a -> wa.0;
	ns -> wa.1;
	b -> wb.0;
	wa -> o.0;
	wb -> o.1;
	o -> out;
}

chip DMux {
	in v, sel;
	out a, b;
	ns: NOT;
	wa: AND;
	wb: AND;
	sel -> ns, wb.1;
	v -> wa.0, wb.0;
	ns -> wa.1;
	wa -> a;
	wb -> b;
}

chip Mux4Way {
	in a, b, c, d, sel[2];
	out out;
	m0: Mux;
	m1: Mux;
	m: Mux;
	a -> m0.0;
	b -> m0.1;
	c -> m1.0;
	d -> m1.1;
	sel[0] -> m0.2, m1.2;
	m0 -> m.0;
	m1 -> m.1;
	sel[1] -> m.2;
	m -> out;
}

chip DMux4Way {
	in v, sel[2];
	out a, b, c, d;
	m: DMux;
	m0: DMux;
	m1: DMux;
	v -> m.0;
	sel[1] -> m.1;
	m.0 -> m0.0;
	m.1 -> m1.0;
	sel[0] -> m0.1, m1.1;
	m0.0 -> a;
	m0.1 -> b;
	m1.0 -> c;
	m1.1 -> d;
}
`
