// Package op applies whole-image operators to rasters and images.
//
// Four operators are provided:
//
//   - [AffineTransformOp] resamples through an affine matrix with nearest,
//     bilinear or bicubic interpolation.
//   - [RescaleOp] computes src*scale + offset per band and clamps to the
//     destination range.
//   - [LookupOp] maps samples through byte or short tables.
//   - [ColorConvertOp] converts between color spaces and ICC profile
//     chains.
//
// Each has a FilterRaster method working on raw bands and a FilterImage
// method that interprets samples through the image's color model. A nil
// destination is allocated. Operators are immutable after construction and
// safe for concurrent use.
//
// Example:
//
//	rot, err := op.NewAffineTransformOp(op.Rotate(math.Pi/6), op.Bilinear)
//	if err != nil {
//	    return err
//	}
//	out, err := rot.FilterImage(img, nil)
//
// Operators first offer work to the accelerator registered with
// [imaging.RegisterAccelerator], or the one given with [WithAccelerator].
package op
