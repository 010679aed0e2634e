package imaging

import (
	"fmt"
	"image"

	"github.com/gogpu/imaging/colormodel"
	"github.com/gogpu/imaging/colorspace"
	"github.com/gogpu/imaging/pixel"
)

// ImageType names a predefined combination of color model and sample
// layout.
type ImageType uint8

// Predefined image types.
const (
	// TypeCustom is any image built with NewImage.
	TypeCustom ImageType = iota

	// TypeIntRGB packs 8-bit RGB into the low 24 bits of an int32.
	TypeIntRGB

	// TypeIntARGB packs 8-bit ARGB into an int32.
	TypeIntARGB

	// TypeIntARGBPre is TypeIntARGB with premultiplied color.
	TypeIntARGBPre

	// TypeIntBGR packs 8-bit RGB with blue in bits 16..23.
	TypeIntBGR

	// Type3ByteBGR stores B, G, R bytes per pixel.
	Type3ByteBGR

	// Type4ByteABGR stores A, B, G, R bytes per pixel.
	Type4ByteABGR

	// Type4ByteABGRPre is Type4ByteABGR with premultiplied color.
	Type4ByteABGRPre

	// TypeByteGray stores one linear gray byte per pixel.
	TypeByteGray

	// TypeUShortGray stores one linear gray ushort per pixel.
	TypeUShortGray

	// TypeByteBinary packs 1-bit black and white pixels eight to a byte.
	TypeByteBinary
)

var typeNames = [...]string{
	TypeCustom:       "custom",
	TypeIntRGB:       "int RGB",
	TypeIntARGB:      "int ARGB",
	TypeIntARGBPre:   "int ARGB premultiplied",
	TypeIntBGR:       "int BGR",
	Type3ByteBGR:     "3 byte BGR",
	Type4ByteABGR:    "4 byte ABGR",
	Type4ByteABGRPre: "4 byte ABGR premultiplied",
	TypeByteGray:     "byte gray",
	TypeUShortGray:   "ushort gray",
	TypeByteBinary:   "byte binary",
}

func (t ImageType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("ImageType(%d)", t)
}

func (t ImageType) withPremultiplied(premultiplied bool) ImageType {
	switch {
	case t == TypeIntARGB && premultiplied:
		return TypeIntARGBPre
	case t == TypeIntARGBPre && !premultiplied:
		return TypeIntARGB
	case t == Type4ByteABGR && premultiplied:
		return Type4ByteABGRPre
	case t == Type4ByteABGRPre && !premultiplied:
		return Type4ByteABGR
	}
	return t
}

// NewImageOfType allocates a zeroed w by h image of a predefined type.
func NewImageOfType(t ImageType, w, h int) (*Image, error) {
	return newImageOfType(t, image.Rect(0, 0, w, h))
}

func newImageOfType(t ImageType, bounds image.Rectangle) (*Image, error) {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrFormat, w, h)
	}
	var (
		cm  colormodel.ColorModel
		sm  pixel.SampleModel
		err error
	)
	switch t {
	case TypeIntRGB:
		cm, err = direct(24, 0xff0000, 0xff00, 0xff, 0, false)
	case TypeIntARGB:
		cm, err = direct(32, 0xff0000, 0xff00, 0xff, 0xff000000, false)
	case TypeIntARGBPre:
		cm, err = direct(32, 0xff0000, 0xff00, 0xff, 0xff000000, true)
	case TypeIntBGR:
		cm, err = direct(24, 0xff, 0xff00, 0xff0000, 0, false)
	case Type3ByteBGR:
		cm, err = colormodel.NewComponentColorModel(colorspace.SRGB, []int{8, 8, 8}, false, false,
			colormodel.Opaque, pixel.TypeByte)
		if err == nil {
			sm, err = pixel.NewPixelInterleavedSampleModel(pixel.TypeByte, w, h, 3, 3*w, []int{2, 1, 0})
		}
	case Type4ByteABGR, Type4ByteABGRPre:
		cm, err = colormodel.NewComponentColorModel(colorspace.SRGB, []int{8, 8, 8, 8}, true,
			t == Type4ByteABGRPre, colormodel.Translucent, pixel.TypeByte)
		if err == nil {
			sm, err = pixel.NewPixelInterleavedSampleModel(pixel.TypeByte, w, h, 4, 4*w, []int{3, 2, 1, 0})
		}
	case TypeByteGray:
		cm, err = colormodel.NewComponentColorModel(colorspace.LinearGray, []int{8}, false, false,
			colormodel.Opaque, pixel.TypeByte)
	case TypeUShortGray:
		cm, err = colormodel.NewComponentColorModel(colorspace.LinearGray, []int{16}, false, false,
			colormodel.Opaque, pixel.TypeUShort)
	case TypeByteBinary:
		cm, err = colormodel.NewComponentColorModel(colorspace.LinearGray, []int{1}, false, false,
			colormodel.Opaque, pixel.TypeByte)
		if err == nil {
			sm, err = pixel.NewMultiPixelPackedSampleModel(pixel.TypeByte, w, h, 1)
		}
	default:
		return nil, fmt.Errorf("%w: image type %v", ErrUnsupported, t)
	}
	if err != nil {
		return nil, err
	}
	if sm == nil {
		if sm, err = cm.CompatibleSampleModel(w, h); err != nil {
			return nil, err
		}
	}
	r, err := pixel.NewWritableRaster(sm, bounds.Min)
	if err != nil {
		return nil, err
	}
	img, err := NewImage(cm, r)
	if err != nil {
		return nil, err
	}
	img.typ = t
	return img, nil
}

func direct(bits int, r, g, b, a uint32, premultiplied bool) (colormodel.ColorModel, error) {
	return colormodel.NewDirectColorModelWith(colorspace.SRGB, bits, r, g, b, a, premultiplied, pixel.TypeInt)
}
