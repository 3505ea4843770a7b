// Package glyph rasterizes a string into a tightly cropped, single-channel
// bitmap.
//
// Each rune is shaped by a [Shaper] into a coverage bitmap plus its top
// bearing and advance. Glyph rows are composited into a sparse map keyed by
// their offset from a shared baseline, so glyphs with ascenders and
// descenders line up without knowing the string's vertical extent up front.
// Overlapping antialiased edges are blended additively and clamped at 255.
// Once every rune is placed, the sparse rows are flattened top to bottom into
// a [Bitmap] whose width is the longest row and whose height is the number of
// rows touched.
//
// A rune that fails to shape is skipped (the cursor does not move) and
// logged; Rasterize itself never fails.
package glyph
