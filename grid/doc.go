// Package grid owns the character-cell grid of the simulated terminal and
// rasterizes it into the offscreen static buffer (the first render pass).
//
// Grid dimensions derive from the viewport and font metrics only. Resize and
// face changes recompute them; listeners hear about each distinct (cols, rows)
// exactly once, and degenerate zero-size results are ignored.
package grid
