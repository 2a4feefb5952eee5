// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

// HalfAdder:
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = LSB of a + b, c = MSB of a + b
//
// FullAdder:
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = LSB of a + b + cin, cout = MSB of a + b + cin
//
// Adder4 is a 4 bit adder.
//
//	Inputs: a[4], b[4]
//	Outputs: s[4], c
//	Function: s = a + b, c = carry
//
// Inc4 is a 4 bit incrementer.
//
//	Inputs: a[4]
//	Outputs: s[4], c
//	Function: s = a + 1, c = carry
//
const arithHDL = `
chip HalfAdder {
	in a, b;
	out s, c;
	x: XOR;
	n: AND;
	a -> x.0, n.0;
	b -> x.1, n.1;
	x -> s;
	n -> c;
}

chip FullAdder {
	in a, b, cin;
	out s, cout;
	h0: HalfAdder;
	h1: HalfAdder;
	o: OR;
	a -> h0.0;
	b -> h0.1;
	h0.0 -> h1.0;
	cin -> h1.1;
	h1.0 -> s;
	h0.1 -> o.0;
	h1.1 -> o.1;
	o -> cout;
}

chip Adder4 {
	in a[4], b[4];
	out s[4], c;
	f0: HalfAdder;
	f1: FullAdder;
	f2: FullAdder;
	f3: FullAdder;
	a[0] -> f0.0;
	b[0] -> f0.1;
	f0.0 -> s[0];
	f0.1 -> f1.2;
	a[1] -> f1.0;
	b[1] -> f1.1;
	f1.0 -> s[1];
	f1.1 -> f2.2;
	a[2] -> f2.0;
	b[2] -> f2.1;
	f2.0 -> s[2];
	f2.1 -> f3.2;
	a[3] -> f3.0;
	b[3] -> f3.1;
	f3.0 -> s[3];
	f3.1 -> c;
}

chip Inc4 {
	in a[4];
	out s[4], c;
	one: const(1);
	h0: HalfAdder;
	h1: HalfAdder;
	h2: HalfAdder;
	h3: HalfAdder;
	one -> h0.1;
	a[0] -> h0.0;
	h0.0 -> s[0];
	h0.1 -> h1.1;
	a[1] -> h1.0;
	h1.0 -> s[1];
	h1.1 -> h2.1;
	a[2] -> h2.0;
	h2.0 -> s[2];
	h2.1 -> h3.1;
	a[3] -> h3.0;
	h3.0 -> s[3];
	h3.1 -> c;
}
`
