// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

// ShiftRegister4 is a 4 stage shift register.
//
//	Inputs: d
//	Outputs: q[4]
//	Function: q[0](t) = d(t-1), q[i](t) = q[i-1](t-1) where t is the tick count.
//
// Blinker is a free running clock.
//
//	Outputs: out
//	Function: out toggles every tick, starting low.
//
const dffHDL = `
chip ShiftRegister4 {
	in d;
	out q[4];
	f0: dff;
	f1: dff;
	f2: dff;
	f3: dff;
	d -> f0;
	f0 -> f1, q[0];
	f1 -> f2, q[1];
	f2 -> f3, q[2];
	f3 -> q[3];
}

chip Blinker {
	out out;
	clk: clock(1);
	clk -> out;
}
`
