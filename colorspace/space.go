package colorspace

import (
	"math"

	icolor "github.com/gogpu/imaging/internal/color"
)

// ColorSpace identifies how the components of a color are interpreted.
//
// Component slices have NumComponents entries in the space's natural
// range [MinValue, MaxValue]. The RGB side of ToRGB/FromRGB is sRGB in
// [0,1]; the XYZ side of ToCIEXYZ/FromCIEXYZ is CIE XYZ relative to the D50
// white point, the ICC profile connection space.
type ColorSpace interface {
	Type() Type
	NumComponents() int
	Name(component int) string
	MinValue(component int) float32
	MaxValue(component int) float32
	ToRGB(c []float32) []float32
	FromRGB(rgb []float32) []float32
	ToCIEXYZ(c []float32) []float32
	FromCIEXYZ(xyz []float32) []float32
}

// D50 white point.
var D50 = [3]float32{0.9642, 1.0, 0.8249}

// xyzMax is the largest value an ICC XYZNumber can encode.
const xyzMax = 1 + 32767.0/32768.0

// rgbToXYZ converts linear sRGB primaries to D50 XYZ (Bradford adapted).
var rgbToXYZ = [9]float32{
	0.4360747, 0.3850649, 0.1430804,
	0.2225045, 0.7168786, 0.0606169,
	0.0139322, 0.0971045, 0.7141733,
}

var xyzToRGB = invert3(rgbToXYZ)

func invert3(m [9]float32) [9]float32 {
	a := [9]float64{}
	for i, v := range m {
		a[i] = float64(v)
	}
	det := a[0]*(a[4]*a[8]-a[5]*a[7]) - a[1]*(a[3]*a[8]-a[5]*a[6]) + a[2]*(a[3]*a[7]-a[4]*a[6])
	inv := [9]float64{
		a[4]*a[8] - a[5]*a[7], a[2]*a[7] - a[1]*a[8], a[1]*a[5] - a[2]*a[4],
		a[5]*a[6] - a[3]*a[8], a[0]*a[8] - a[2]*a[6], a[2]*a[3] - a[0]*a[5],
		a[3]*a[7] - a[4]*a[6], a[1]*a[6] - a[0]*a[7], a[0]*a[4] - a[1]*a[3],
	}
	var out [9]float32
	for i, v := range inv {
		out[i] = float32(v / det)
	}
	return out
}

func mul3(m *[9]float32, v []float32) []float32 {
	return []float32{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// ID names a built-in color space.
type ID uint8

// Built-in color spaces.
const (
	IDsRGB ID = iota
	IDLinearRGB
	IDLinearGray
	IDCIEXYZ
	IDCIELab
)

// Builtin is one of the color spaces this package implements natively.
type Builtin struct {
	id    ID
	typ   Type
	names []string
	min   []float32
	max   []float32
}

// The built-in color spaces. They are singletons: compare them by
// identity.
var (
	SRGB = &Builtin{id: IDsRGB, typ: TypeRGB,
		names: []string{"Red", "Green", "Blue"},
		min:   []float32{0, 0, 0}, max: []float32{1, 1, 1}}
	LinearRGB = &Builtin{id: IDLinearRGB, typ: TypeRGB,
		names: []string{"Red", "Green", "Blue"},
		min:   []float32{0, 0, 0}, max: []float32{1, 1, 1}}
	LinearGray = &Builtin{id: IDLinearGray, typ: TypeGray,
		names: []string{"Gray"},
		min:   []float32{0}, max: []float32{1}}
	CIEXYZ = &Builtin{id: IDCIEXYZ, typ: TypeXYZ,
		names: []string{"X", "Y", "Z"},
		min:   []float32{0, 0, 0}, max: []float32{xyzMax, xyzMax, xyzMax}}
	CIELab = &Builtin{id: IDCIELab, typ: TypeLab,
		names: []string{"L", "a", "b"},
		min:   []float32{0, -128, -128}, max: []float32{100, 127, 127}}
)

// Get returns the built-in space for id, or nil.
func Get(id ID) *Builtin {
	switch id {
	case IDsRGB:
		return SRGB
	case IDLinearRGB:
		return LinearRGB
	case IDLinearGray:
		return LinearGray
	case IDCIEXYZ:
		return CIEXYZ
	case IDCIELab:
		return CIELab
	}
	return nil
}

// IsSRGB reports whether cs is the built-in sRGB space.
func IsSRGB(cs ColorSpace) bool {
	b, ok := cs.(*Builtin)
	return ok && b == SRGB
}

// IsLinearRGB reports whether cs is the built-in linear RGB space.
func IsLinearRGB(cs ColorSpace) bool {
	b, ok := cs.(*Builtin)
	return ok && b == LinearRGB
}

// ID returns the built-in identifier.
func (b *Builtin) ID() ID { return b.id }

// Type returns the family of the space.
func (b *Builtin) Type() Type { return b.typ }

// NumComponents returns the number of color components.
func (b *Builtin) NumComponents() int { return len(b.names) }

// Name returns the name of a component.
func (b *Builtin) Name(i int) string { return b.names[i] }

// MinValue returns the smallest value of a component.
func (b *Builtin) MinValue(i int) float32 { return b.min[i] }

// MaxValue returns the largest value of a component.
func (b *Builtin) MaxValue(i int) float32 { return b.max[i] }

// String returns the space name.
func (b *Builtin) String() string {
	return [...]string{"sRGB", "LinearRGB", "LinearGray", "CIEXYZ", "CIELab"}[b.id]
}

// ToRGB converts components of b to sRGB.
func (b *Builtin) ToRGB(c []float32) []float32 {
	switch b.id {
	case IDsRGB:
		return []float32{icolor.Clamp01(c[0]), icolor.Clamp01(c[1]), icolor.Clamp01(c[2])}
	case IDLinearRGB:
		return []float32{encode(c[0]), encode(c[1]), encode(c[2])}
	case IDLinearGray:
		g := encode(c[0])
		return []float32{g, g, g}
	}
	return SRGB.FromCIEXYZ(b.ToCIEXYZ(c))
}

// FromRGB converts sRGB components to b.
func (b *Builtin) FromRGB(rgb []float32) []float32 {
	switch b.id {
	case IDsRGB:
		return []float32{icolor.Clamp01(rgb[0]), icolor.Clamp01(rgb[1]), icolor.Clamp01(rgb[2])}
	case IDLinearRGB:
		return []float32{decode(rgb[0]), decode(rgb[1]), decode(rgb[2])}
	}
	return b.FromCIEXYZ(SRGB.ToCIEXYZ(rgb))
}

// ToCIEXYZ converts components of b to D50 XYZ.
func (b *Builtin) ToCIEXYZ(c []float32) []float32 {
	switch b.id {
	case IDsRGB:
		return mul3(&rgbToXYZ, []float32{decode(c[0]), decode(c[1]), decode(c[2])})
	case IDLinearRGB:
		return mul3(&rgbToXYZ, []float32{
			icolor.Clamp01(c[0]), icolor.Clamp01(c[1]), icolor.Clamp01(c[2])})
	case IDLinearGray:
		g := icolor.Clamp01(c[0])
		return []float32{g * D50[0], g, g * D50[2]}
	case IDCIEXYZ:
		return []float32{c[0], c[1], c[2]}
	}
	return labToXYZ(c)
}

// FromCIEXYZ converts D50 XYZ to components of b, clipping to the range of
// the space.
func (b *Builtin) FromCIEXYZ(xyz []float32) []float32 {
	switch b.id {
	case IDsRGB:
		l := mul3(&xyzToRGB, xyz)
		return []float32{encode(l[0]), encode(l[1]), encode(l[2])}
	case IDLinearRGB:
		l := mul3(&xyzToRGB, xyz)
		return []float32{icolor.Clamp01(l[0]), icolor.Clamp01(l[1]), icolor.Clamp01(l[2])}
	case IDLinearGray:
		return []float32{icolor.Clamp01(xyz[1])}
	case IDCIEXYZ:
		return []float32{clampTo(xyz[0], 0, xyzMax), clampTo(xyz[1], 0, xyzMax), clampTo(xyz[2], 0, xyzMax)}
	}
	return xyzToLab(xyz)
}

func encode(l float32) float32 { return icolor.LinearToSRGB(icolor.Clamp01(l)) }
func decode(s float32) float32 { return icolor.SRGBToLinear(icolor.Clamp01(s)) }

func clampTo(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

const (
	labEpsilon = 216.0 / 24389.0
	labKappa   = 24389.0 / 27.0
)

func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return (labKappa*t + 16) / 116
}

func labFInv(f float64) float64 {
	if f3 := f * f * f; f3 > labEpsilon {
		return f3
	}
	return (116*f - 16) / labKappa
}

func xyzToLab(xyz []float32) []float32 {
	fx := labF(float64(xyz[0] / D50[0]))
	fy := labF(float64(xyz[1] / D50[1]))
	fz := labF(float64(xyz[2] / D50[2]))
	return []float32{
		clampTo(float32(116*fy-16), 0, 100),
		clampTo(float32(500*(fx-fy)), -128, 127),
		clampTo(float32(200*(fy-fz)), -128, 127),
	}
}

func labToXYZ(lab []float32) []float32 {
	fy := (float64(lab[0]) + 16) / 116
	fx := fy + float64(lab[1])/500
	fz := fy - float64(lab[2])/200
	return []float32{
		float32(labFInv(fx)) * D50[0],
		float32(labFInv(fy)) * D50[1],
		float32(labFInv(fz)) * D50[2],
	}
}

// Normalize maps natural component values of cs into [0,1].
func Normalize(cs ColorSpace, c []float32) []float32 {
	out := make([]float32, len(c))
	for i, v := range c {
		lo, hi := cs.MinValue(i), cs.MaxValue(i)
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// Denormalize maps [0,1] values back into the natural range of cs.
func Denormalize(cs ColorSpace, n []float32) []float32 {
	out := make([]float32, len(n))
	for i, v := range n {
		lo, hi := cs.MinValue(i), cs.MaxValue(i)
		out[i] = lo + v*(hi-lo)
	}
	return out
}

// Convert converts c from src to dst through CIE XYZ. Identical spaces
// return a copy.
func Convert(src, dst ColorSpace, c []float32) []float32 {
	if src == dst {
		return append([]float32(nil), c...)
	}
	if IsSRGB(dst) {
		return src.ToRGB(c)
	}
	if IsSRGB(src) {
		return dst.FromRGB(c)
	}
	return dst.FromCIEXYZ(src.ToCIEXYZ(c))
}
