package imaging

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/imaging/pixel"
)

// ErrNotAccelerated is returned by an Accelerator that does not handle an
// operation. Callers fall back to the portable implementation; it is not a
// failure.
var ErrNotAccelerated = errors.New("imaging: operation not accelerated")

// OpKind identifies an image operator for accelerator capability checks.
type OpKind uint32

const (
	// OpAffine is a geometric affine transform.
	OpAffine OpKind = 1 << iota

	// OpRescale is a per-band linear rescale.
	OpRescale

	// OpLookup is a table lookup.
	OpLookup

	// OpColorConvert is a color space conversion.
	OpColorConvert
)

func (k OpKind) String() string {
	switch k {
	case OpAffine:
		return "affine"
	case OpRescale:
		return "rescale"
	case OpLookup:
		return "lookup"
	case OpColorConvert:
		return "colorconvert"
	}
	return fmt.Sprintf("OpKind(%d)", uint32(k))
}

// Operation is an image operator as seen by an accelerator. Accelerators
// type-assert to the concrete operator types they understand.
type Operation interface {
	Kind() OpKind
}

// Accelerator is an optional native fast path for image operators.
//
// An accelerator either writes the whole destination and returns nil, or
// returns ErrNotAccelerated without touching it. Any other error is logged
// and the portable implementation runs. Output must match the portable
// implementation.
type Accelerator interface {
	// Name identifies the accelerator in logs.
	Name() string

	// CanAccelerate is a fast capability check made before any Filter call.
	CanAccelerate(kind OpKind) bool

	// FilterImage applies op to color-aware images.
	FilterImage(op Operation, src, dst *Image) error

	// FilterRaster applies op to rasters without color interpretation.
	FilterRaster(op Operation, src, dst *pixel.Raster) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator installs a as the process-wide accelerator used by
// operators that were not given one explicitly. Passing nil removes the
// current accelerator.
//
// Accelerator packages usually register from init:
//
//	import _ "github.com/gogpu/imaging/accel/ximage"
func RegisterAccelerator(a Accelerator) {
	accelMu.Lock()
	accel = a
	accelMu.Unlock()
	if a != nil {
		propagateLogger(a, Logger())
		Logger().Debug("imaging: accelerator registered", "name", a.Name())
	}
}

// RegisteredAccelerator returns the process-wide accelerator, or nil.
func RegisteredAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// AccelerateImage offers op to a. It reports whether a wrote dst.
func AccelerateImage(a Accelerator, op Operation, src, dst *Image) bool {
	if a == nil || !a.CanAccelerate(op.Kind()) {
		return false
	}
	return handled(a, op, a.FilterImage(op, src, dst))
}

// AccelerateRaster offers op to a. It reports whether a wrote dst.
func AccelerateRaster(a Accelerator, op Operation, src, dst *pixel.Raster) bool {
	if a == nil || !a.CanAccelerate(op.Kind()) {
		return false
	}
	return handled(a, op, a.FilterRaster(op, src, dst))
}

func handled(a Accelerator, op Operation, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotAccelerated):
		Logger().Debug("imaging: accelerator declined", "name", a.Name(), "op", op.Kind())
	default:
		Logger().Warn("imaging: accelerator failed, using portable path",
			"name", a.Name(), "op", op.Kind(), slog.Any("err", err))
	}
	return false
}
