package imaging

import (
	"errors"

	"github.com/gogpu/imaging/pixel"
)

// Error taxonomy shared by every package of the module. Errors are wrapped
// with context at the point of detection; test with errors.Is.
var (
	// ErrOutOfRange reports a coordinate or band outside declared bounds.
	ErrOutOfRange = pixel.ErrOutOfRange

	// ErrFormat reports a structural mismatch between arguments.
	ErrFormat = pixel.ErrFormat

	// ErrUnsupported reports a path not specialised for a data or transfer
	// type.
	ErrUnsupported = pixel.ErrUnsupported

	// ErrNonInvertible reports an affine matrix with a near-zero
	// determinant.
	ErrNonInvertible = errors.New("imaging: non-invertible transform")
)
