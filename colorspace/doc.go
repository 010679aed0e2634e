// Package colorspace defines color spaces, ICC profile headers and the
// color management (CMM) contract the image operators call into.
//
// The built-in spaces [SRGB], [LinearRGB], [LinearGray], [CIEXYZ] and
// [CIELab] convert natively through D50 XYZ. [ICCColorSpace] wraps a
// [Profile] and converts through transforms created by a [CMM]. The
// [ReferenceCMM] only understands profiles synthesised from built-in spaces
// by [ProfileOf]; install a full CMM with [SetDefaultCMM] to interpret
// arbitrary ICC data.
package colorspace
