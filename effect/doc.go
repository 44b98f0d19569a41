// Package effect is the CRT artifact library: pure transforms over normalized
// screen coordinates, colors and a shared noise texture.
//
// Every function is a function of its arguments only. A zero amount is a
// no-op that returns the input unchanged, which keeps golden-frame tests
// stable when a profile disables an artifact.
package effect
