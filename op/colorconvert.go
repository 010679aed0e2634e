package op

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/imaging"
	"github.com/gogpu/imaging/colormodel"
	"github.com/gogpu/imaging/colorspace"
	"github.com/gogpu/imaging/internal/parallel"
	"github.com/gogpu/imaging/pixel"
)

// ColorConvertOp converts pixels between color spaces.
//
// Color spaces backed by a profile (built-in spaces and ICCColorSpace) are
// converted by a transform the CMM builds from the profile chain. Other
// color spaces round trip through CIE XYZ per pixel. When source and
// destination resolve to the same profile the pixels are copied without a
// transform.
//
// The operator remembers the last transform it built, keyed by the source
// and destination profiles. It is safe for concurrent use.
type ColorConvertOp struct {
	spaces   []colorspace.ColorSpace
	profiles []*colorspace.Profile
	opts     options

	mu         sync.Mutex
	cachedFrom *colorspace.Profile
	cachedTo   *colorspace.Profile
	cached     colorspace.Transform
}

// NewColorConvertOp creates an operator that converts an image into the
// color space of the destination image it is given.
func NewColorConvertOp(opts ...Option) *ColorConvertOp {
	return &ColorConvertOp{opts: newOptions(opts)}
}

// NewColorConvertOpTo creates an operator converting images to cs. A nil
// destination image is allocated in cs.
func NewColorConvertOpTo(cs colorspace.ColorSpace, opts ...Option) (*ColorConvertOp, error) {
	if cs == nil {
		return nil, fmt.Errorf("%w: nil color space", pixel.ErrFormat)
	}
	return &ColorConvertOp{spaces: []colorspace.ColorSpace{cs}, opts: newOptions(opts)}, nil
}

// NewColorConvertOpBetween creates an operator converting from src to dst.
// It is required for FilterRaster with color spaces.
func NewColorConvertOpBetween(src, dst colorspace.ColorSpace, opts ...Option) (*ColorConvertOp, error) {
	if src == nil || dst == nil {
		return nil, fmt.Errorf("%w: nil color space", pixel.ErrFormat)
	}
	return &ColorConvertOp{spaces: []colorspace.ColorSpace{src, dst}, opts: newOptions(opts)}, nil
}

// NewColorConvertOpProfiles creates an operator converting through a chain
// of profiles. On images the chain runs from the source image's profile
// through profiles to the destination's. On rasters the first and last
// profiles give the source and destination.
func NewColorConvertOpProfiles(profiles []*colorspace.Profile, opts ...Option) (*ColorConvertOp, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: empty profile list", pixel.ErrFormat)
	}
	if slices.Contains(profiles, nil) {
		return nil, fmt.Errorf("%w: nil profile in list", pixel.ErrFormat)
	}
	return &ColorConvertOp{profiles: slices.Clone(profiles), opts: newOptions(opts)}, nil
}

// Kind implements imaging.Operation.
func (o *ColorConvertOp) Kind() imaging.OpKind { return imaging.OpColorConvert }

// Profiles returns the profile chain given at construction.
func (o *ColorConvertOp) Profiles() []*colorspace.Profile { return slices.Clone(o.profiles) }

// ColorSpaces returns the color spaces given at construction.
func (o *ColorConvertOp) ColorSpaces() []colorspace.ColorSpace { return slices.Clone(o.spaces) }

// plan is a resolved conversion: a CMM transform, a CIE XYZ round trip
// through spaces, or neither for a straight copy.
type plan struct {
	transform colorspace.Transform
	spaces    []colorspace.ColorSpace
}

func (p plan) identity() bool { return p.transform == nil && len(p.spaces) < 2 }

// convert maps n pixels of normalized source components to normalized
// destination components.
func (p plan) convert(src, dst []float32, n, inN, outN int) error {
	switch {
	case p.transform != nil:
		return p.transform.Convert(src, dst, n)
	case p.identity():
		copy(dst, src[:n*inN])
		return nil
	}
	first, last := p.spaces[0], p.spaces[len(p.spaces)-1]
	for i := range n {
		c := colorspace.Denormalize(first, src[i*inN:(i+1)*inN])
		for j := 1; j < len(p.spaces); j++ {
			c = colorspace.Convert(p.spaces[j-1], p.spaces[j], c)
		}
		copy(dst[i*outN:(i+1)*outN], colorspace.Normalize(last, c))
	}
	return nil
}

// chainFor returns the color spaces a conversion from src to dst passes
// through, without repeated neighbours.
func (o *ColorConvertOp) chainFor(src, dst colorspace.ColorSpace) []colorspace.ColorSpace {
	chain := append([]colorspace.ColorSpace{src}, o.spaces...)
	chain = append(chain, dst)
	return slices.CompactFunc(chain, func(a, b colorspace.ColorSpace) bool {
		pa, pb := colorspace.ProfileOf(a), colorspace.ProfileOf(b)
		if pa != nil && pb != nil {
			return pa.SameAs(pb)
		}
		return a == b
	})
}

// planSpaces resolves a chain of color spaces.
func (o *ColorConvertOp) planSpaces(chain []colorspace.ColorSpace) (plan, error) {
	if len(chain) < 2 {
		return plan{}, nil
	}
	profiles := make([]*colorspace.Profile, len(chain))
	for i, cs := range chain {
		if profiles[i] = colorspace.ProfileOf(cs); profiles[i] == nil {
			return plan{spaces: chain}, nil
		}
	}
	return o.planProfiles(profiles)
}

// planProfiles resolves a chain of profiles, reusing the cached transform
// when the end points match the last call.
func (o *ColorConvertOp) planProfiles(chain []*colorspace.Profile) (plan, error) {
	chain = slices.CompactFunc(slices.Clone(chain), (*colorspace.Profile).SameAs)
	if len(chain) < 2 {
		return plan{}, nil
	}
	from, to := chain[0], chain[len(chain)-1]

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cached != nil && o.cachedFrom.SameAs(from) && o.cachedTo.SameAs(to) {
		imaging.Logger().Debug("op: color transform cache hit")
		return plan{transform: o.cached}, nil
	}
	t, err := buildTransform(o.opts.colorManager(), chain)
	if err != nil {
		return plan{}, err
	}
	imaging.Logger().Debug("op: color transform built", "profiles", len(chain))
	o.cachedFrom, o.cachedTo, o.cached = from, to, t
	return plan{transform: t}, nil
}

// buildTransform composes one transform per profile. The first profile
// converts into the connection space, the last out of it and the ones in
// between simulate, except that an abstract profile restarts as an input
// with perceptual intent. Each stage uses the intent of the profile before
// it; the first uses its own.
func buildTransform(cmm colorspace.CMM, chain []*colorspace.Profile) (colorspace.Transform, error) {
	stages := make([]colorspace.Transform, len(chain))
	intent := chain[0].RenderingIntent()
	dir := colorspace.In
	for i, p := range chain {
		switch {
		case i == len(chain)-1:
			dir = colorspace.Out
		case dir == colorspace.Simulation && p.Class() == colorspace.ClassAbstract:
			intent = colorspace.Perceptual
			dir = colorspace.In
		}
		t, err := cmm.CreateTransform(p, intent, dir)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		stages[i] = t
		intent = p.RenderingIntent()
		dir = colorspace.Simulation
	}
	return cmm.Compose(stages...)
}

// FilterImage converts src into dst. A nil dst is allocated with 8-bit
// components in the operator's target color space.
func (o *ColorConvertOp) FilterImage(src, dst *imaging.Image) (*imaging.Image, error) {
	var err error
	if dst == nil {
		if dst, err = o.allocate(src); err != nil {
			return nil, err
		}
	}
	if imaging.AccelerateImage(o.opts.accelerator(), o, src, dst) {
		return dst, nil
	}
	srcCS, dstCS := src.Model().ColorSpace(), dst.Model().ColorSpace()

	var p plan
	if o.profiles != nil {
		p, err = o.planImageProfiles(srcCS, dstCS)
	} else {
		p, err = o.planSpaces(o.chainFor(srcCS, dstCS))
	}
	if err != nil {
		return nil, err
	}
	if p.identity() && sameRepresentation(src, dst) {
		s, d, err := commonViews(src.Raster(), dst.Raster())
		if err != nil {
			return nil, err
		}
		if s.Parent() != d.Parent() {
			if err := d.SetRect(s); err != nil {
				return nil, err
			}
		}
		return dst, nil
	}
	return dst, convertImage(p, src, dst, o.opts.parallelism)
}

func (o *ColorConvertOp) planImageProfiles(srcCS, dstCS colorspace.ColorSpace) (plan, error) {
	ps, pd := colorspace.ProfileOf(srcCS), colorspace.ProfileOf(dstCS)
	if ps == nil || pd == nil {
		return plan{}, fmt.Errorf("%w: profile chain needs profile backed source and destination color spaces",
			pixel.ErrUnsupported)
	}
	chain := append([]*colorspace.Profile{ps}, o.profiles...)
	return o.planProfiles(append(chain, pd))
}

func (o *ColorConvertOp) allocate(src *imaging.Image) (*imaging.Image, error) {
	var cs colorspace.ColorSpace
	switch {
	case len(o.spaces) > 0:
		cs = o.spaces[len(o.spaces)-1]
	case len(o.profiles) > 0:
		icc, err := colorspace.NewICCColorSpace(o.profiles[len(o.profiles)-1], o.opts.colorManager())
		if err != nil {
			return nil, err
		}
		cs = icc
	default:
		return nil, fmt.Errorf("%w: no destination color space", pixel.ErrFormat)
	}
	sm := src.Model()
	cm, err := colormodel.NewComponentColorModel(cs, nil, sm.HasAlpha(), false, sm.Transparency(), pixel.TypeByte)
	if err != nil {
		return nil, err
	}
	r, err := cm.CompatibleRaster(src.Width(), src.Height())
	if err != nil {
		return nil, err
	}
	return imaging.NewImage(cm, r)
}

// convertImage converts the overlap of src into dst row by row. Alpha is
// carried over, or set opaque when src has none.
func convertImage(p plan, src, dst *imaging.Image, workers int) error {
	scm, dcm := src.Model(), dst.Model()
	srcCS, dstCS := scm.ColorSpace(), dcm.ColorSpace()
	inN, outN := scm.NumColorComponents(), dcm.NumColorComponents()
	w, h := min(src.Width(), dst.Width()), min(src.Height(), dst.Height())
	sb, db := src.Bounds().Min, dst.Bounds().Min

	return parallel.Rows(h, workers, func(y0, y1 int) error {
		in := make([]float32, w*inN)
		out := make([]float32, w*outN)
		alpha := make([]float32, w)
		var comps []float32
		var data any
		for y := y0; y < y1; y++ {
			for x := range w {
				var err error
				if data, err = src.Raster().DataElements(sb.X+x, sb.Y+y, data); err != nil {
					return err
				}
				if comps, err = scm.NormalizedComponents(data, comps); err != nil {
					return err
				}
				a := float32(1)
				if scm.HasAlpha() {
					a = comps[inN]
				}
				alpha[x] = a
				if scm.IsAlphaPremultiplied() {
					for i := range inN {
						comps[i] = unpremultiply(comps[i], a, srcCS.MinValue(i), srcCS.MaxValue(i))
					}
				}
				copy(in[x*inN:], colorspace.Normalize(srcCS, comps[:inN]))
			}
			if err := p.convert(in, out, w, inN, outN); err != nil {
				return err
			}
			px := make([]float32, dcm.NumComponents())
			var ddata any
			for x := range w {
				a := alpha[x]
				copy(px, colorspace.Denormalize(dstCS, out[x*outN:(x+1)*outN]))
				if dcm.IsAlphaPremultiplied() {
					for i := range outN {
						px[i] *= a
					}
				}
				if dcm.HasAlpha() {
					px[outN] = a
				}
				var err error
				if ddata, err = dcm.DataElementsFromNormalized(px, ddata); err != nil {
					return err
				}
				if err := dst.Raster().SetDataElements(db.X+x, db.Y+y, ddata); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// unpremultiply divides a natural component value by alpha, clamped to
// the range of the component.
func unpremultiply(v, a, lo, hi float32) float32 {
	if a == 0 {
		return 0
	}
	return min(max(v/a, lo), hi)
}

// FilterRaster converts the samples of src from the first color space or
// profile to the last. Band counts must match the component counts of
// those spaces. A nil dst is allocated pixel interleaved with src's data
// type.
func (o *ColorConvertOp) FilterRaster(src, dst *pixel.Raster) (*pixel.Raster, error) {
	var from, to colorspace.ColorSpace
	switch {
	case len(o.spaces) == 2:
		from, to = o.spaces[0], o.spaces[1]
	case len(o.profiles) >= 2:
		var err error
		if from, err = colorspace.NewICCColorSpace(o.profiles[0], o.opts.colorManager()); err != nil {
			return nil, err
		}
		if to, err = colorspace.NewICCColorSpace(o.profiles[len(o.profiles)-1], o.opts.colorManager()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: raster conversion needs source and destination color spaces", pixel.ErrFormat)
	}
	inN, outN := from.NumComponents(), to.NumComponents()
	if src.NumBands() != inN {
		return nil, fmt.Errorf("%w: source has %d bands, color space %d components",
			pixel.ErrFormat, src.NumBands(), inN)
	}
	var err error
	if dst == nil {
		if dst, err = pixel.NewInterleavedRaster(src.DataType(), src.Width(), src.Height(), outN,
			src.Bounds().Min); err != nil {
			return nil, err
		}
	}
	if dst.NumBands() != outN {
		return nil, fmt.Errorf("%w: destination has %d bands, color space %d components",
			pixel.ErrFormat, dst.NumBands(), outN)
	}
	if imaging.AccelerateRaster(o.opts.accelerator(), o, src, dst) {
		return dst, nil
	}

	var p plan
	if len(o.profiles) >= 2 {
		p, err = o.planProfiles(o.profiles)
	} else {
		p, err = o.planSpaces(o.chainFor(from, to))
	}
	if err != nil {
		return nil, err
	}
	s, d, err := commonViews(src, dst)
	if err != nil {
		return nil, err
	}
	if p.identity() && src.DataType() == dst.DataType() {
		if src != dst {
			if err := d.SetRect(s); err != nil {
				return nil, err
			}
		}
		return dst, nil
	}
	return dst, convertRaster(p, s, d, from, to, o.opts.parallelism)
}

// sampleScale maps raw samples of band b to [0,1]: integral samples by
// their bit depth, floating samples by the range of cs.
type sampleScale struct {
	lo, span []float32
}

func newSampleScale(r *pixel.Raster, cs colorspace.ColorSpace) sampleScale {
	nb := r.NumBands()
	s := sampleScale{lo: make([]float32, nb), span: make([]float32, nb)}
	for b := range nb {
		switch dt := r.DataType(); {
		case dt.IsFloating():
			s.lo[b] = cs.MinValue(b)
			s.span[b] = cs.MaxValue(b) - s.lo[b]
		case dt == pixel.TypeShort:
			s.span[b] = 1<<15 - 1
		default:
			bits := r.SampleModel().SampleSize(b)
			s.span[b] = float32(uint64(1)<<bits - 1)
		}
	}
	return s
}

func convertRaster(p plan, s, d *pixel.Raster, from, to colorspace.ColorSpace, workers int) error {
	w, inN, outN := s.Width(), s.NumBands(), d.NumBands()
	ss, ds := newSampleScale(s, from), newSampleScale(d, to)
	floating := d.DataType().IsFloating()
	return parallel.Rows(s.Height(), workers, func(y0, y1 int) error {
		in := make([]float32, w*inN)
		out := make([]float32, w*outN)
		var row []float64
		dstRow := make([]float64, w*outN)
		for y := y0; y < y1; y++ {
			var err error
			if row, err = s.PixelsDouble(0, y, w, 1, row); err != nil {
				return err
			}
			for i, v := range row {
				b := i % inN
				in[i] = (float32(v) - ss.lo[b]) / ss.span[b]
			}
			if err := p.convert(in, out, w, inN, outN); err != nil {
				return err
			}
			for i, v := range out {
				b := i % outN
				r := ds.lo[b] + v*ds.span[b]
				if !floating {
					r = float32(int(min(max(r, 0), ds.span[b]) + 0.5))
				}
				dstRow[i] = float64(r)
			}
			if err := d.SetPixelsDouble(0, y, w, 1, dstRow); err != nil {
				return err
			}
		}
		return nil
	})
}
