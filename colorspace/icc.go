package colorspace

import (
	"fmt"

	"github.com/gogpu/imaging/pixel"
)

// ICCColorSpace is a color space described by an ICC profile. Conversions
// go through transforms built once by a CMM at construction. The CMM
// resolves Lab connection spaces, so both transforms meet at XYZ.
type ICCColorSpace struct {
	profile *Profile
	ncomp   int
	min     []float32
	max     []float32
	toPCS   Transform
	fromPCS Transform
}

// NewICCColorSpace creates a color space for p using cmm, or the default
// CMM when cmm is nil.
func NewICCColorSpace(p *Profile, cmm CMM) (*ICCColorSpace, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil profile", pixel.ErrFormat)
	}
	if cmm == nil {
		cmm = DefaultCMM()
	}
	cs := &ICCColorSpace{profile: p, ncomp: p.NumComponents()}
	cs.min = make([]float32, cs.ncomp)
	cs.max = make([]float32, cs.ncomp)
	for i := range cs.ncomp {
		cs.max[i] = 1
	}
	switch p.colorSpace {
	case TypeLab:
		copy(cs.min, CIELab.min)
		copy(cs.max, CIELab.max)
	case TypeXYZ:
		copy(cs.max, CIEXYZ.max)
	}

	var err error
	if cs.toPCS, err = cmm.CreateTransform(p, p.intent, In); err != nil {
		return nil, err
	}
	if cs.fromPCS, err = cmm.CreateTransform(p, p.intent, Out); err != nil {
		return nil, err
	}
	return cs, nil
}

// Profile returns the underlying profile.
func (cs *ICCColorSpace) Profile() *Profile { return cs.profile }

// Type returns the family of the profile's data color space.
func (cs *ICCColorSpace) Type() Type { return cs.profile.colorSpace }

// NumComponents returns the number of color components.
func (cs *ICCColorSpace) NumComponents() int { return cs.ncomp }

// Name returns a generic component name.
func (cs *ICCColorSpace) Name(i int) string {
	if b := cs.profile.builtin; b != nil {
		return b.Name(i)
	}
	return fmt.Sprintf("Unnamed color component(%d)", i)
}

// MinValue returns the smallest value of a component.
func (cs *ICCColorSpace) MinValue(i int) float32 { return cs.min[i] }

// MaxValue returns the largest value of a component.
func (cs *ICCColorSpace) MaxValue(i int) float32 { return cs.max[i] }

// ToCIEXYZ converts components to D50 XYZ. A failing CMM yields zeros.
func (cs *ICCColorSpace) ToCIEXYZ(c []float32) []float32 {
	pcs := make([]float32, cs.toPCS.NumOutComponents())
	if err := cs.toPCS.Convert(Normalize(cs, c), pcs, 1); err != nil {
		return make([]float32, 3)
	}
	return Denormalize(CIEXYZ, pcs)
}

// FromCIEXYZ converts D50 XYZ to components. A failing CMM yields zeros.
func (cs *ICCColorSpace) FromCIEXYZ(xyz []float32) []float32 {
	pcs := Normalize(CIEXYZ, xyz)
	dev := make([]float32, cs.ncomp)
	if err := cs.fromPCS.Convert(pcs, dev, 1); err != nil {
		return make([]float32, cs.ncomp)
	}
	return Denormalize(cs, dev)
}

// ToRGB converts components to sRGB.
func (cs *ICCColorSpace) ToRGB(c []float32) []float32 {
	return SRGB.FromCIEXYZ(cs.ToCIEXYZ(c))
}

// FromRGB converts sRGB to components.
func (cs *ICCColorSpace) FromRGB(rgb []float32) []float32 {
	return cs.FromCIEXYZ(SRGB.ToCIEXYZ(rgb))
}
