package op

import "github.com/gogpu/imaging"

// ErrNonInvertible is returned by NewAffineTransformOp for a matrix whose
// determinant is below machine epsilon in magnitude.
var ErrNonInvertible = imaging.ErrNonInvertible
