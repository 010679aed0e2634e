package producer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/imaging/colormodel"
)

// ErrIncomplete is returned by PixelCollector.Collect when the producer
// did not finish the image.
var ErrIncomplete = errors.New("producer: image incomplete")

// PixelCollector is an ImageConsumer that gathers a producer's image into
// non-premultiplied 0xAARRGGBB pixels.
type PixelCollector struct {
	producer ImageProducer

	mu     sync.Mutex
	width  int
	height int
	props  map[string]any
	cm     colormodel.ColorModel
	pixels []uint32
	status Status
	err    error
}

// NewPixelCollector creates a collector for p.
func NewPixelCollector(p ImageProducer) *PixelCollector {
	return &PixelCollector{producer: p}
}

// Collect runs production and returns the pixels in row-major order. The
// collector removes itself from the producer once the first frame or the
// static image is done.
func (c *PixelCollector) Collect() ([]uint32, error) {
	c.producer.StartProduction(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.err != nil:
		return nil, c.err
	case c.status == StaticImageDone || c.status == SingleFrameDone:
		return c.pixels, nil
	case c.status == 0:
		return nil, ErrIncomplete
	}
	return nil, fmt.Errorf("%w: %v", ErrIncomplete, c.status)
}

// Width returns the delivered width.
func (c *PixelCollector) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

// Height returns the delivered height.
func (c *PixelCollector) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Properties returns the delivered properties.
func (c *PixelCollector) Properties() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props
}

// ColorModel returns the last color model the producer announced.
func (c *PixelCollector) ColorModel() colormodel.ColorModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cm
}

// SetDimensions implements ImageConsumer.
func (c *PixelCollector) SetDimensions(w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = w, h
	c.pixels = make([]uint32, w*h)
}

// SetProperties implements ImageConsumer.
func (c *PixelCollector) SetProperties(props map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.props = props
}

// SetColorModel implements ImageConsumer.
func (c *PixelCollector) SetColorModel(cm colormodel.ColorModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cm = cm
}

// SetHints implements ImageConsumer.
func (c *PixelCollector) SetHints(Hints) {}

// SetBytePixels implements ImageConsumer.
func (c *PixelCollector) SetBytePixels(x, y, w, h int, cm colormodel.ColorModel, pix []uint8, off, scan int) {
	data := make([]uint8, 1)
	c.store(x, y, w, h, func(i int) (uint32, error) {
		data[0] = pix[off+i]
		return cm.RGBData(data)
	}, scan)
}

// SetIntPixels implements ImageConsumer.
func (c *PixelCollector) SetIntPixels(x, y, w, h int, cm colormodel.ColorModel, pix []uint32, off, scan int) {
	c.store(x, y, w, h, func(i int) (uint32, error) {
		return cm.RGB(pix[off+i])
	}, scan)
}

// store converts the rectangle with rgb, which takes the index of a pixel
// relative to the rectangle's first element.
func (c *PixelCollector) store(x, y, w, h int, rgb func(i int) (uint32, error), scan int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	for j := range h {
		for i := range w {
			px, py := x+i, y+j
			if px < 0 || py < 0 || px >= c.width || py >= c.height {
				continue
			}
			v, err := rgb(j*scan + i)
			if err != nil {
				c.err = fmt.Errorf("producer: pixel (%d,%d): %w", px, py, err)
				return
			}
			c.pixels[py*c.width+px] = v
		}
	}
}

// ImageComplete implements ImageConsumer.
func (c *PixelCollector) ImageComplete(status Status) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	c.producer.RemoveConsumer(c)
}
