package colorspace

import (
	"fmt"

	"seehuhn.de/go/icc"
)

// Type is the family a color space belongs to. Operators compare types to
// decide whether two spaces need an intermediate conversion.
type Type uint8

// Color space families.
const (
	TypeXYZ Type = iota
	TypeLab
	TypeLuv
	TypeYCbCr
	TypeYxy
	TypeRGB
	TypeGray
	TypeHSV
	TypeHLS
	TypeCMYK
	TypeCMY
	Type2CLR
	Type3CLR
	Type4CLR
	Type5CLR
	Type6CLR
	Type7CLR
	Type8CLR
	Type9CLR
	TypeACLR
	TypeBCLR
	TypeCCLR
	TypeDCLR
	TypeECLR
	TypeFCLR
)

var typeNames = [...]string{
	"XYZ", "Lab", "Luv", "YCbCr", "Yxy", "RGB", "Gray", "HSV", "HLS", "CMYK", "CMY",
	"2CLR", "3CLR", "4CLR", "5CLR", "6CLR", "7CLR", "8CLR",
	"9CLR", "ACLR", "BCLR", "CCLR", "DCLR", "ECLR", "FCLR",
}

// String returns the family name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// NumComponents returns the component count implied by the family.
func (t Type) NumComponents() int {
	switch t {
	case TypeGray:
		return 1
	case TypeCMYK, Type4CLR:
		return 4
	case Type2CLR:
		return 2
	}
	if t >= Type5CLR && t <= TypeFCLR {
		return int(t-Type5CLR) + 5
	}
	return 3
}

// iccSpaces maps ICC color space signatures to families.
var iccSpaces = map[icc.ColorSpace]Type{
	icc.CIEXYZSpace:  TypeXYZ,
	icc.CIELabSpace:  TypeLab,
	icc.CIELuvSpace:  TypeLuv,
	icc.YCbCrSpace:   TypeYCbCr,
	icc.CIEYxySpace:  TypeYxy,
	icc.RGBSpace:     TypeRGB,
	icc.GraySpace:    TypeGray,
	icc.HSVSpace:     TypeHSV,
	icc.HLSSpace:     TypeHLS,
	icc.CMYKSpace:    TypeCMYK,
	icc.CMYSpace:     TypeCMY,
	icc.Color2Space:  Type2CLR,
	icc.Color3Space:  Type3CLR,
	icc.Color4Space:  Type4CLR,
	icc.Color5Space:  Type5CLR,
	icc.Color6Space:  Type6CLR,
	icc.Color7Space:  Type7CLR,
	icc.Color8Space:  Type8CLR,
	icc.Color9Space:  Type9CLR,
	icc.Color10Space: TypeACLR,
	icc.Color11Space: TypeBCLR,
	icc.Color12Space: TypeCCLR,
	icc.Color13Space: TypeDCLR,
	icc.Color14Space: TypeECLR,
	icc.Color15Space: TypeFCLR,
}

func (t Type) iccSpace() icc.ColorSpace {
	for sig, typ := range iccSpaces {
		if typ == t {
			return sig
		}
	}
	return 0
}
