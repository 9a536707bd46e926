// Package viz draws a tiltbox run in the terminal using Bubble Tea.
//
//   - [Model]: live view driving an engine at a fixed tick rate
//   - [Menu]: preset picker that starts a live view
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//
// # Key Bindings
//
//	Arrows/HJKL - Tilt the box
//	C           - Level the box
//	Space       - Pause/Resume
//	R           - Reset bodies
//	+/-         - Grow/shrink the arena (resets)
//	T           - Cycle color themes
//	?           - Show help overlay
//	Q           - Quit
package viz
