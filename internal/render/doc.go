// Package render projects engine memory onto a grid of colored, hex
// annotated cells.
//
// A [Pipeline] owns one [VisualCell] per memory address. Every
// [Pipeline.Update] reads the engine's value, age, owner and pc count arrays
// straight from its linear memory, rebuilds every cell, draws the
// [Selections] on top and hands the result to its [Surface] in a single
// Paint call. Surfaces never redraw on their own.
//
// Main types:
//   - [Geometry]: cell size, spacing and margin, and the mapping between
//     surface coordinates and addresses
//   - [GlyphAtlas]: the 256 hex glyphs in a dark and a light variant
//   - [VisualCell]: tint, glyph and overlays of one address
//   - [Selections]: the inspected addresses and their decoded instructions
package render
