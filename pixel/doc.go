// Package pixel defines how raster samples are stored and addressed.
//
// # Overview
//
// A [DataBuffer] is pure storage: one or more banks of a single primitive
// element type, each with its own element offset. A [SampleModel] maps a
// pixel coordinate and band onto buffer elements. A [Raster] pairs exactly
// one SampleModel with one DataBuffer and places it at an origin.
//
// # Layouts
//
//   - [ComponentSampleModel]: pixel or band interleaved with explicit
//     pixel stride, scanline stride, per-band offsets and bank indices.
//   - [BandedSampleModel]: every band in its own bank, pixel stride 1.
//   - [MultiPixelPackedSampleModel]: one band, several pixels packed into
//     each storage element, most significant bits first.
//   - [SinglePixelPackedSampleModel]: one storage element per pixel, each
//     band occupying a contiguous bit mask.
//
// # Errors
//
// Coordinates outside the model bounds return an error wrapping
// [ErrOutOfRange]. Structural mismatches return [ErrFormat]. Paths a layout
// does not specialise return [ErrUnsupported].
//
// # Thread Safety
//
// Sample models are immutable and safe for concurrent use. DataBuffer is
// not synchronised; concurrent writers must coordinate externally.
package pixel
