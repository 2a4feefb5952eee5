// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package logsim is a digital logic circuit simulator.

Circuits are built in a Scene by adding devices (primitive gates, scene
input and output terminals, constants, switches, clocks, flip-flops, lights
and chips) and connecting output pins to input pins with links. Every input
pin is driven by at most one link; unconnected inputs read Low.

An evaluation pass (Propagate or Evaluate) updates devices in level order:
a device is evaluated after all the devices driving it, so a single pass
settles a circuit without feedback loops. Scenes with a loop can still be
edited, but evaluating them fails with a *CycleError naming the loop.
Stateful devices only change on Tick.

A validated scene can be promoted to a Preset, an immutable circuit that other
scenes instantiate with Chip. Combinational presets with few enough inputs are
compiled to a truth table (the Direct strategy); others keep evaluating their
frozen scene (the Graph strategy). Presets are registered by name in a
Library, which also loads chip definitions written in a small HDL:

	l := logsim.NewLibrary()
	_, err := l.LoadHDLString("xor.hdl", `
	chip Xor2 {
		in a, b;
		out out;
		x: XOR;
		a -> x.0;
		b -> x.1;
		x -> out;
	}`)

Scenes, presets and libraries are serialized to YAML with EncodeScene,
EncodePreset and EncodeLibrary.
*/
package logsim
