// @lixen: #focus{sys[term,io,output]}
// Package terminal is the text frontend: a tcell screen where every cell
// is one pixel of the composite. The grid is laid out with grid.BlockFace,
// so the composite has one pixel per cell; Present colors each cell from
// its pixel and prints the glyph found at the curvature-mapped source cell.
package terminal
