package colorspace

import (
	"fmt"
	"sync/atomic"

	"seehuhn.de/go/icc"

	"github.com/gogpu/imaging/pixel"
)

// Direction is the role a profile plays inside a transform chain.
type Direction uint8

// Directions. In maps device values to the connection space, Out maps the
// connection space to device values and Simulation does both in turn.
const (
	In Direction = iota
	Out
	Simulation
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	case Simulation:
		return "simulation"
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// Transform converts pixels between two color encodings. Values on both
// sides are normalized to [0,1] per component. The connection side of a
// single-profile transform is D50 XYZ scaled by the largest XYZNumber.
type Transform interface {
	NumInComponents() int
	NumOutComponents() int

	// Convert converts n pixels. src holds n*NumInComponents values and dst
	// receives n*NumOutComponents values.
	Convert(src, dst []float32, n int) error
}

// CMM is the color management module: it builds transforms from profiles
// and composes them into chains.
type CMM interface {
	CreateTransform(p *Profile, intent RenderingIntent, dir Direction) (Transform, error)
	Compose(stages ...Transform) (Transform, error)
}

var defaultCMM atomic.Pointer[CMM]

// DefaultCMM returns the process-wide CMM. It is the reference CMM unless
// SetDefaultCMM installed another one.
func DefaultCMM() CMM {
	if c := defaultCMM.Load(); c != nil {
		return *c
	}
	return ReferenceCMM{}
}

// SetDefaultCMM installs the process-wide CMM. nil restores the reference
// CMM.
func SetDefaultCMM(c CMM) {
	if c == nil {
		defaultCMM.Store(nil)
		return
	}
	defaultCMM.Store(&c)
}

// ReferenceCMM transforms between the built-in color spaces through D50
// XYZ. Other profiles are interpreted with seehuhn.de/go/icc: matrix/TRC,
// gray TRC and LUT based profiles are supported.
type ReferenceCMM struct{}

// CreateTransform returns the single-profile transform for p.
func (ReferenceCMM) CreateTransform(p *Profile, intent RenderingIntent, dir Direction) (Transform, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil profile", pixel.ErrFormat)
	}
	if dir > Simulation {
		return nil, fmt.Errorf("%w: direction %v", pixel.ErrFormat, dir)
	}
	if p.builtin != nil {
		return &builtinTransform{space: p.builtin, dir: dir}, nil
	}
	t, err := icc.NewTransform(p.raw, icc.RenderingIntent(intent))
	if err != nil {
		return nil, fmt.Errorf("%w: %v profile: %v", pixel.ErrUnsupported, p.colorSpace, err)
	}
	if (dir != Out && !t.CanToXYZ()) || (dir != In && !t.CanFromXYZ()) {
		return nil, fmt.Errorf("%w: %v profile cannot be used in direction %v",
			pixel.ErrUnsupported, p.class, dir)
	}
	return &iccTransform{t: t, ncomp: t.Channels(), dir: dir}, nil
}

// Compose chains stages so the output of each feeds the next.
func (ReferenceCMM) Compose(stages ...Transform) (Transform, error) {
	return Chain(stages...)
}

// Chain composes transforms in order. Adjacent component counts must
// match. A single stage is returned unchanged.
func Chain(stages ...Transform) (Transform, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: empty transform chain", pixel.ErrFormat)
	}
	for i := 1; i < len(stages); i++ {
		if stages[i-1].NumOutComponents() != stages[i].NumInComponents() {
			return nil, fmt.Errorf("%w: stage %d produces %d components, stage %d expects %d",
				pixel.ErrFormat, i-1, stages[i-1].NumOutComponents(), i, stages[i].NumInComponents())
		}
	}
	if len(stages) == 1 {
		return stages[0], nil
	}
	return chain(stages), nil
}

type chain []Transform

func (c chain) NumInComponents() int  { return c[0].NumInComponents() }
func (c chain) NumOutComponents() int { return c[len(c)-1].NumOutComponents() }

func (c chain) Convert(src, dst []float32, n int) error {
	cur := src
	for i, t := range c {
		var next []float32
		if i == len(c)-1 {
			next = dst
		} else {
			next = make([]float32, n*t.NumOutComponents())
		}
		if err := t.Convert(cur, next, n); err != nil {
			return err
		}
		cur = next
	}
	return nil
}

// builtinTransform maps between a built-in space and normalized D50 XYZ.
type builtinTransform struct {
	space *Builtin
	dir   Direction
}

func (t *builtinTransform) NumInComponents() int {
	if t.dir == In {
		return t.space.NumComponents()
	}
	return 3
}

func (t *builtinTransform) NumOutComponents() int {
	if t.dir == Out {
		return t.space.NumComponents()
	}
	return 3
}

func (t *builtinTransform) Convert(src, dst []float32, n int) error {
	in, out := t.NumInComponents(), t.NumOutComponents()
	if len(src) < n*in || len(dst) < n*out {
		return fmt.Errorf("%w: %d pixels need %d source and %d destination values",
			pixel.ErrOutOfRange, n, n*in, n*out)
	}
	for i := range n {
		px := src[i*in : (i+1)*in]
		var res []float32
		switch t.dir {
		case In:
			res = Normalize(CIEXYZ, t.space.ToCIEXYZ(Denormalize(t.space, px)))
		case Out:
			res = Normalize(t.space, t.space.FromCIEXYZ(Denormalize(CIEXYZ, px)))
		default:
			dev := t.space.FromCIEXYZ(Denormalize(CIEXYZ, px))
			res = Normalize(CIEXYZ, t.space.ToCIEXYZ(dev))
		}
		copy(dst[i*out:], res)
	}
	return nil
}

// iccTransform maps between the device space of a decoded profile and
// normalized D50 XYZ.
type iccTransform struct {
	t     *icc.Transform
	ncomp int
	dir   Direction
}

func (t *iccTransform) NumInComponents() int {
	if t.dir == In {
		return t.ncomp
	}
	return 3
}

func (t *iccTransform) NumOutComponents() int {
	if t.dir == Out {
		return t.ncomp
	}
	return 3
}

func (t *iccTransform) Convert(src, dst []float32, n int) error {
	in, out := t.NumInComponents(), t.NumOutComponents()
	if len(src) < n*in || len(dst) < n*out {
		return fmt.Errorf("%w: %d pixels need %d source and %d destination values",
			pixel.ErrOutOfRange, n, n*in, n*out)
	}
	// A Workspace is not safe for concurrent use; Convert may be.
	ws := &icc.Workspace{}
	dev := make([]float64, t.ncomp)
	for i := range n {
		px := src[i*in : (i+1)*in]
		res := dst[i*out : (i+1)*out]
		if t.dir == In {
			for k, v := range px {
				dev[k] = float64(v)
			}
		} else {
			t.t.FromXYZ(float64(px[0])*xyzMax, float64(px[1])*xyzMax, float64(px[2])*xyzMax, dev, ws)
		}
		if t.dir == Out {
			for k, v := range dev {
				res[k] = clampTo(float32(v), 0, 1)
			}
			continue
		}
		x, y, z := t.t.ToXYZ(dev, ws)
		res[0] = clampTo(float32(x/xyzMax), 0, 1)
		res[1] = clampTo(float32(y/xyzMax), 0, 1)
		res[2] = clampTo(float32(z/xyzMax), 0, 1)
	}
	return nil
}
