// Package pipeline implements the deterministic composition that turns a
// decoded source image plus one set of edit parameters into the final pixel
// buffer.
//
// # Stage Order
//
// The stage order is fixed and observable in the output geometry:
//
//  1. Tone + rotation: brightness and contrast are applied to the source
//     pixels and composited with a lossless 90-degree-multiple rotation.
//     Rotations of 90 and 270 degrees swap the canvas width and height.
//  2. Center crop: the crop region is computed against the rotated buffer,
//     never the original. The region is always centered and never exceeds
//     the rotated bounds.
//  3. Output: a fresh buffer sized to the crop region receives an exact
//     copy of that region.
//
// Cropping after rotation matters: a 1:1 crop of a 1000x500 source yields a
// different region depending on whether the source was rotated first.
//
// # Tone Semantics
//
// Brightness and contrast are percentage scalars where 100 is the identity.
// They map onto bild's normalized change model, change = (value-100)/100,
// which is multiplicative and monotonic, so 0 is fully dark / fully flat
// and 200 doubles the intensity / contrast spread. A value of exactly 100
// skips the filter entirely, guaranteeing bit-identity with the input for
// that stage.
//
// # Determinism
//
// Render is a pure function: identical inputs produce byte-identical
// buffers, with no side effects and no partial results on failure.
package pipeline
