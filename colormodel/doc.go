// Package colormodel interprets raster samples as colors.
//
// A [ColorModel] converts between the samples of one pixel and
// non-premultiplied 8-bit sRGB (packed 0xAARRGGBB), normalized float
// components and unnormalized integer components. [DirectColorModel]
// reads a packed integer pixel through per-component bit masks;
// [ComponentColorModel] reads one sample per component.
//
// Models are immutable. CoerceData rewrites a raster in place to switch
// alpha premultiplication and returns the model describing the result.
package colormodel
