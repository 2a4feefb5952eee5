// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

// Eq:
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = 1 if a == b
//
// Majority3:
//
//	Inputs: a, b, c
//	Outputs: out
//	Function: out = 1 if at least two inputs are 1
//
// Parity4:
//
//	Inputs: v[4]
//	Outputs: odd
//	Function: odd = v[0] ^ v[1] ^ v[2] ^ v[3]
//
const gatesHDL = `
chip Eq {
	in a, b;
	out out;
	g: XNOR;
	a -> g.0;
	b -> g.1;
	g -> out;
}

chip Majority3 {
	in a, b, c;
	out out;
	ab: AND;
	bc: AND;
	ac: AND;
	o: OR(3);
	a -> ab.0, ac.0;
	b -> ab.1, bc.0;
	c -> bc.1, ac.1;
	ab -> o.0;
	bc -> o.1;
	ac -> o.2;
	o -> out;
}

chip Parity4 {
	in v[4];
	out odd;
	x: XOR(4);
	v[0] -> x.0;
	v[1] -> x.1;
	v[2] -> x.2;
	v[3] -> x.3;
	x -> odd;
}
`
