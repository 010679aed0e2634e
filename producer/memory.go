package producer

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/gogpu/imaging"
	"github.com/gogpu/imaging/colormodel"
	"github.com/gogpu/imaging/pixel"
)

// MemoryImageSource produces an image from a pixel array held in memory.
//
// A static source delivers the whole image to each consumer as it is added
// and then drops it. After the StaticImageDone signal a consumer that did
// not remove itself also receives StatusError.
//
// An animated source (see SetAnimated) keeps its consumers and re-sends
// regions on NewPixels calls.
//
// All methods are safe for concurrent use. The lock is not held while
// consumers are called, so consumers may call back into the source.
type MemoryImageSource struct {
	mu          sync.Mutex
	width       int
	height      int
	cm          colormodel.ColorModel
	bytes       []uint8
	ints        []uint32
	offset      int
	scan        int
	props       map[string]any
	consumers   []ImageConsumer
	animating   bool
	fullBuffers bool
}

// frame is the state a delivery works from, copied under the lock.
type frame struct {
	width, height int
	cm            colormodel.ColorModel
	bytes         []uint8
	ints          []uint32
	offset, scan  int
	props         map[string]any
	animating     bool
	fullBuffers   bool
}

// NewMemoryImageSource creates a source over byte pixels. A nil cm means
// colormodel.RGBDefault.
func NewMemoryImageSource(w, h int, cm colormodel.ColorModel, pix []uint8, off, scan int,
	props map[string]any) (*MemoryImageSource, error) {
	return newSource(w, h, cm, pix, nil, len(pix), off, scan, props)
}

// NewIntMemoryImageSource creates a source over packed int pixels. A nil
// cm means colormodel.RGBDefault.
func NewIntMemoryImageSource(w, h int, cm colormodel.ColorModel, pix []uint32, off, scan int,
	props map[string]any) (*MemoryImageSource, error) {
	return newSource(w, h, cm, nil, pix, len(pix), off, scan, props)
}

func newSource(w, h int, cm colormodel.ColorModel, bytes []uint8, ints []uint32, n, off, scan int,
	props map[string]any) (*MemoryImageSource, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", pixel.ErrFormat, w, h)
	}
	if err := checkBuffer(n, w, h, off, scan); err != nil {
		return nil, err
	}
	if cm == nil {
		cm = colormodel.RGBDefault()
	}
	if props == nil {
		props = map[string]any{}
	}
	return &MemoryImageSource{
		width:  w,
		height: h,
		cm:     cm,
		bytes:  bytes,
		ints:   ints,
		offset: off,
		scan:   scan,
		props:  maps.Clone(props),
	}, nil
}

func checkBuffer(n, w, h, off, scan int) error {
	if off < 0 || scan < w {
		return fmt.Errorf("%w: offset %d and scan %d for width %d", pixel.ErrFormat, off, scan, w)
	}
	if need := off + (h-1)*scan + w; need > n {
		return fmt.Errorf("%w: %dx%d pixels need %d elements, have %d", pixel.ErrFormat, w, h, need, n)
	}
	return nil
}

func (s *MemoryImageSource) snapshot() (frame, []ImageConsumer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return frame{
		width:       s.width,
		height:      s.height,
		cm:          s.cm,
		bytes:       s.bytes,
		ints:        s.ints,
		offset:      s.offset,
		scan:        s.scan,
		props:       s.props,
		animating:   s.animating,
		fullBuffers: s.fullBuffers,
	}, slices.Clone(s.consumers)
}

// AddConsumer registers ic and delivers the current image to it.
// Registering a consumer twice has no effect.
func (s *MemoryImageSource) AddConsumer(ic ImageConsumer) {
	s.mu.Lock()
	if slices.Contains(s.consumers, ic) {
		s.mu.Unlock()
		return
	}
	s.consumers = append(s.consumers, ic)
	s.mu.Unlock()

	f, _ := s.snapshot()
	s.initConsumer(ic, f)
	s.sendPixels(ic, f, 0, 0, f.width, f.height)
	if !s.IsConsumer(ic) {
		return
	}
	if f.animating {
		ic.ImageComplete(SingleFrameDone)
		return
	}
	ic.ImageComplete(StaticImageDone)
	if s.IsConsumer(ic) {
		ic.ImageComplete(StatusError)
		s.RemoveConsumer(ic)
	}
}

// IsConsumer reports whether ic is registered.
func (s *MemoryImageSource) IsConsumer(ic ImageConsumer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.consumers, ic)
}

// RemoveConsumer unregisters ic. Removing an unknown consumer has no
// effect.
func (s *MemoryImageSource) RemoveConsumer(ic ImageConsumer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.consumers, ic); i >= 0 {
		s.consumers = slices.Delete(s.consumers, i, i+1)
	}
}

// StartProduction is AddConsumer.
func (s *MemoryImageSource) StartProduction(ic ImageConsumer) {
	s.AddConsumer(ic)
}

// RequestTopDownLeftRightResend does nothing: the data is always delivered
// top down and left to right.
func (s *MemoryImageSource) RequestTopDownLeftRightResend(ImageConsumer) {}

// SetAnimated switches between a static and an animated source. A source
// that stops animating signals StaticImageDone to every consumer, then
// StatusError to those still registered, and drops them all.
func (s *MemoryImageSource) SetAnimated(animated bool) {
	s.mu.Lock()
	s.animating = animated
	var done []ImageConsumer
	if !animated {
		done = slices.Clone(s.consumers)
	}
	s.mu.Unlock()

	for _, ic := range done {
		ic.ImageComplete(StaticImageDone)
		if s.IsConsumer(ic) {
			ic.ImageComplete(StatusError)
		}
	}
	for _, ic := range done {
		s.RemoveConsumer(ic)
	}
}

// SetFullBufferUpdates makes an animated source always send the whole
// buffer instead of the changed region. Registered consumers get the new
// hints.
func (s *MemoryImageSource) SetFullBufferUpdates(full bool) {
	s.mu.Lock()
	if s.fullBuffers == full {
		s.mu.Unlock()
		return
	}
	s.fullBuffers = full
	s.mu.Unlock()

	f, consumers := s.snapshot()
	if !f.animating {
		return
	}
	for _, ic := range consumers {
		if s.IsConsumer(ic) {
			ic.SetHints(animatedHints(full))
		}
	}
}

func animatedHints(full bool) Hints {
	if full {
		return TopDownLeftRight | CompleteScanLines
	}
	return RandomPixelOrder
}

// NewPixels re-sends the whole buffer to animated consumers and signals
// the end of a frame.
func (s *MemoryImageSource) NewPixels() {
	s.NewPixelsRegion(0, 0, s.Width(), s.Height(), true)
}

// NewPixelsRegion re-sends the rectangle (x, y, w, h) to animated
// consumers, clipped to the image, or the whole buffer with full buffer
// updates. With frameNotify each consumer also gets SingleFrameDone. A
// static source ignores the call.
func (s *MemoryImageSource) NewPixelsRegion(x, y, w, h int, frameNotify bool) {
	f, consumers := s.snapshot()
	if !f.animating {
		return
	}
	if f.fullBuffers {
		x, y, w, h = 0, 0, f.width, f.height
	} else {
		if x < 0 {
			w += x
			x = 0
		}
		if y < 0 {
			h += y
			y = 0
		}
		w = min(w, f.width-x)
		h = min(h, f.height-y)
	}
	if (w <= 0 || h <= 0) && !frameNotify {
		return
	}
	for _, ic := range consumers {
		if w > 0 && h > 0 {
			s.sendPixels(ic, f, x, y, w, h)
		}
		if frameNotify && s.IsConsumer(ic) {
			ic.ImageComplete(SingleFrameDone)
		}
	}
}

// NewPixelsBuffer replaces the byte pixel buffer and model, then re-sends
// the whole image.
func (s *MemoryImageSource) NewPixelsBuffer(pix []uint8, cm colormodel.ColorModel, off, scan int) error {
	return s.replace(pix, nil, len(pix), cm, off, scan)
}

// NewIntPixelsBuffer replaces the int pixel buffer and model, then
// re-sends the whole image.
func (s *MemoryImageSource) NewIntPixelsBuffer(pix []uint32, cm colormodel.ColorModel, off, scan int) error {
	return s.replace(nil, pix, len(pix), cm, off, scan)
}

func (s *MemoryImageSource) replace(bytes []uint8, ints []uint32, n int, cm colormodel.ColorModel,
	off, scan int) error {
	if cm == nil {
		return fmt.Errorf("%w: nil color model", pixel.ErrFormat)
	}
	s.mu.Lock()
	if err := checkBuffer(n, s.width, s.height, off, scan); err != nil {
		s.mu.Unlock()
		return err
	}
	s.bytes, s.ints = bytes, ints
	s.cm, s.offset, s.scan = cm, off, scan
	s.mu.Unlock()

	s.NewPixels()
	return nil
}

// Width returns the image width.
func (s *MemoryImageSource) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// Height returns the image height.
func (s *MemoryImageSource) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

func (s *MemoryImageSource) initConsumer(ic ImageConsumer, f frame) {
	if s.IsConsumer(ic) {
		ic.SetDimensions(f.width, f.height)
	}
	if s.IsConsumer(ic) {
		ic.SetProperties(f.props)
	}
	if s.IsConsumer(ic) {
		ic.SetColorModel(f.cm)
	}
	if s.IsConsumer(ic) {
		h := TopDownLeftRight | CompleteScanLines | SinglePass | SingleFrame
		if f.animating {
			h = animatedHints(f.fullBuffers)
		}
		ic.SetHints(h)
	}
}

func (s *MemoryImageSource) sendPixels(ic ImageConsumer, f frame, x, y, w, h int) {
	if !s.IsConsumer(ic) {
		return
	}
	off := f.offset + y*f.scan + x
	if f.bytes != nil {
		ic.SetBytePixels(x, y, w, h, f.cm, f.bytes, off, f.scan)
	} else {
		ic.SetIntPixels(x, y, w, h, f.cm, f.ints, off, f.scan)
	}
	imaging.Logger().Debug("producer: pixels sent", "x", x, "y", y, "w", w, "h", h)
}
