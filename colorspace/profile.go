package colorspace

import (
	"fmt"

	"seehuhn.de/go/icc"

	"github.com/gogpu/imaging/pixel"
)

// ProfileClass is the device class declared in a profile header.
type ProfileClass uint8

// Profile classes.
const (
	ClassInput ProfileClass = iota
	ClassDisplay
	ClassOutput
	ClassDeviceLink
	ClassColorSpace
	ClassAbstract
	ClassNamedColor
)

var classSignatures = [...]string{"scnr", "mntr", "prtr", "link", "spac", "abst", "nmcl"}

var iccClasses = map[icc.ProfileClass]ProfileClass{
	icc.InputDeviceProfile:   ClassInput,
	icc.DisplayDeviceProfile: ClassDisplay,
	icc.OutputDeviceProfile:  ClassOutput,
	icc.DeviceLinkProfile:    ClassDeviceLink,
	icc.ColorSpaceProfile:    ClassColorSpace,
	icc.AbstractProfile:      ClassAbstract,
	icc.NamedColorProfile:    ClassNamedColor,
}

func (c ProfileClass) String() string {
	if int(c) < len(classSignatures) {
		return classSignatures[c]
	}
	return fmt.Sprintf("ProfileClass(%d)", c)
}

func (c ProfileClass) iccClass() icc.ProfileClass {
	for k, v := range iccClasses {
		if v == c {
			return k
		}
	}
	return 0
}

// RenderingIntent selects how out-of-gamut colors are mapped.
type RenderingIntent uint8

// Rendering intents with their ICC header codes.
const (
	Perceptual RenderingIntent = iota
	RelativeColorimetric
	Saturation
	AbsoluteColorimetric
)

func (i RenderingIntent) String() string {
	switch i {
	case Perceptual:
		return "perceptual"
	case RelativeColorimetric:
		return "relative colorimetric"
	case Saturation:
		return "saturation"
	case AbsoluteColorimetric:
		return "absolute colorimetric"
	}
	return fmt.Sprintf("RenderingIntent(%d)", i)
}

// Profile is a decoded ICC profile plus the header fields the operators
// need. Profiles synthesised from built-in spaces also carry the space.
type Profile struct {
	raw        *icc.Profile
	class      ProfileClass
	colorSpace Type
	pcs        Type
	intent     RenderingIntent
	builtin    *Builtin
}

// ParseProfile decodes raw ICC profile data. Tags are kept for a CMM to
// interpret.
func ParseProfile(data []byte) (*Profile, error) {
	raw, err := icc.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pixel.ErrFormat, err)
	}
	return fromICC(raw)
}

// FromICC wraps an already decoded profile. The profile must not be
// modified afterwards.
func FromICC(raw *icc.Profile) (*Profile, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil profile", pixel.ErrFormat)
	}
	return fromICC(raw)
}

func fromICC(raw *icc.Profile) (*Profile, error) {
	p := &Profile{raw: raw}
	var ok bool
	if p.class, ok = iccClasses[raw.Class]; !ok {
		return nil, fmt.Errorf("%w: unknown ICC profile class %v", pixel.ErrFormat, raw.Class)
	}
	if p.colorSpace, ok = iccSpaces[raw.ColorSpace]; !ok {
		return nil, fmt.Errorf("%w: unknown ICC data color space %v", pixel.ErrFormat, raw.ColorSpace)
	}
	if p.pcs, ok = iccSpaces[raw.PCS]; !ok {
		return nil, fmt.Errorf("%w: unknown ICC connection space %v", pixel.ErrFormat, raw.PCS)
	}

	// The intent is the low half of the 4-byte header field.
	intent := uint32(raw.RenderingIntent) & 0xffff
	if intent > uint32(AbsoluteColorimetric) {
		return nil, fmt.Errorf("%w: unknown rendering intent %d", pixel.ErrFormat, intent)
	}
	p.intent = RenderingIntent(intent)
	return p, nil
}

// Class returns the declared device class.
func (p *Profile) Class() ProfileClass { return p.class }

// ColorSpaceType returns the family of the data color space.
func (p *Profile) ColorSpaceType() Type { return p.colorSpace }

// PCSType returns the family of the profile connection space.
func (p *Profile) PCSType() Type { return p.pcs }

// RenderingIntent returns the intent declared in the header.
func (p *Profile) RenderingIntent() RenderingIntent { return p.intent }

// NumComponents returns the component count of the data color space.
func (p *Profile) NumComponents() int { return p.colorSpace.NumComponents() }

// ICC returns the decoded profile. Callers must not modify it.
func (p *Profile) ICC() *icc.Profile { return p.raw }

// Data encodes the profile.
func (p *Profile) Data() ([]byte, error) {
	data, err := p.raw.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: encode ICC profile: %v", pixel.ErrFormat, err)
	}
	return data, nil
}

// Builtin returns the built-in space the profile was synthesised from, or
// nil for parsed profiles.
func (p *Profile) Builtin() *Builtin { return p.builtin }

// SameAs reports whether p and q describe the same profile: the same
// built-in space or equal header fields and tag data.
func (p *Profile) SameAs(q *Profile) bool {
	if p == q {
		return true
	}
	if p == nil || q == nil {
		return false
	}
	if p.builtin != nil || q.builtin != nil {
		return p.builtin == q.builtin
	}
	return p.raw.Equal(q.raw)
}

// WithIntent returns a copy of p declaring a different rendering intent.
func (p *Profile) WithIntent(intent RenderingIntent) *Profile {
	c := *p
	raw := *p.raw
	raw.RenderingIntent = icc.RenderingIntent(intent)
	c.raw = &raw
	c.intent = intent
	return &c
}

var builtinProfiles = map[*Builtin]*Profile{}

func init() {
	for _, b := range []*Builtin{SRGB, LinearRGB, LinearGray, CIEXYZ, CIELab} {
		builtinProfiles[b] = synthesizeProfile(b)
	}
}

func synthesizeProfile(b *Builtin) *Profile {
	class := ClassDisplay
	if b.typ == TypeXYZ || b.typ == TypeLab {
		class = ClassColorSpace
	}
	return &Profile{
		raw: &icc.Profile{
			Version:         icc.Version4_4_0,
			Class:           class.iccClass(),
			ColorSpace:      b.typ.iccSpace(),
			PCS:             icc.PCSXYZSpace,
			RenderingIntent: icc.Perceptual,
			TagData:         map[icc.TagType][]byte{},
		},
		class:      class,
		colorSpace: b.typ,
		pcs:        TypeXYZ,
		intent:     Perceptual,
		builtin:    b,
	}
}

// ProfileOf returns the profile describing a color space: the profile of an
// ICCColorSpace, or a synthesised profile for a built-in space. Other
// implementations have no profile and return nil.
func ProfileOf(cs ColorSpace) *Profile {
	switch s := cs.(type) {
	case *Builtin:
		return builtinProfiles[s]
	case *ICCColorSpace:
		return s.profile
	}
	return nil
}
