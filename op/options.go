package op

import (
	"github.com/gogpu/imaging"
	"github.com/gogpu/imaging/colorspace"
)

// Option configures an operator at construction.
//
// Example:
//
//	// Portable implementation only, four goroutines.
//	o, err := op.NewAffineTransformOp(m, op.Bilinear,
//	    op.WithoutAcceleration(), op.WithParallelism(4))
type Option func(*options)

type options struct {
	accel       imaging.Accelerator
	noAccel     bool
	cmm         colorspace.CMM
	parallelism int
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// accelerator returns the accelerator to try, or nil.
func (o *options) accelerator() imaging.Accelerator {
	if o.noAccel {
		return nil
	}
	if o.accel != nil {
		return o.accel
	}
	return imaging.RegisteredAccelerator()
}

// colorManager returns the CMM for color conversion.
func (o *options) colorManager() colorspace.CMM {
	if o.cmm != nil {
		return o.cmm
	}
	return colorspace.DefaultCMM()
}

// WithAccelerator tries a before the portable implementation instead of
// the registered accelerator.
func WithAccelerator(a imaging.Accelerator) Option {
	return func(o *options) {
		o.accel = a
	}
}

// WithoutAcceleration always runs the portable implementation.
func WithoutAcceleration() Option {
	return func(o *options) {
		o.noAccel = true
	}
}

// WithCMM sets the color management module used to build transforms.
// The default is colorspace.DefaultCMM.
func WithCMM(c colorspace.CMM) Option {
	return func(o *options) {
		o.cmm = c
	}
}

// WithParallelism bounds the goroutines used per call. Zero or negative
// means GOMAXPROCS; 1 runs on the calling goroutine.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}
