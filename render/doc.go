// Package render implements the dynamic pass: it turns the static text image
// of a frame into the displayed CRT composite. The compositor reads the noise
// texture and the previous composite; everything else is per-frame input.
package render
