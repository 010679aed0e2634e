package producer

import (
	"fmt"
	"strings"

	"github.com/gogpu/imaging/colormodel"
)

// Hints describe the order in which a producer delivers pixels.
type Hints uint32

// Delivery hints.
const (
	RandomPixelOrder Hints = 1 << iota
	TopDownLeftRight
	CompleteScanLines
	SinglePass
	SingleFrame
)

var hintNames = [...]string{"random", "tdlr", "scanlines", "single-pass", "single-frame"}

func (h Hints) String() string {
	var parts []string
	for i, name := range hintNames {
		if h&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Status is passed to ImageConsumer.ImageComplete.
type Status uint8

// Completion statuses.
const (
	StatusError Status = iota + 1
	SingleFrameDone
	StaticImageDone
	ImageAborted
)

func (s Status) String() string {
	switch s {
	case StatusError:
		return "error"
	case SingleFrameDone:
		return "single frame done"
	case StaticImageDone:
		return "static image done"
	case ImageAborted:
		return "aborted"
	}
	return fmt.Sprintf("Status(%d)", s)
}

// ImageConsumer receives pixels pushed by an ImageProducer. Calls arrive
// synchronously on the goroutine that triggered the delivery, in the order
// SetDimensions, SetProperties, SetColorModel, SetHints, pixel calls,
// ImageComplete.
//
// Pixel calls describe a w by h rectangle at (x, y). The pixel at (i, j)
// of the rectangle is pix[off + (j-y)*scan + (i-x)].
//
// A consumer may remove itself from its producer inside any call; no call
// reaches it afterwards.
type ImageConsumer interface {
	SetDimensions(w, h int)
	SetProperties(props map[string]any)
	SetColorModel(cm colormodel.ColorModel)
	SetHints(h Hints)
	SetBytePixels(x, y, w, h int, cm colormodel.ColorModel, pix []uint8, off, scan int)
	SetIntPixels(x, y, w, h int, cm colormodel.ColorModel, pix []uint32, off, scan int)
	ImageComplete(status Status)
}

// ImageProducer pushes image data to registered consumers. Consumers are
// compared with ==, so their dynamic types must be comparable.
type ImageProducer interface {
	AddConsumer(ic ImageConsumer)
	IsConsumer(ic ImageConsumer) bool
	RemoveConsumer(ic ImageConsumer)
	StartProduction(ic ImageConsumer)
	RequestTopDownLeftRightResend(ic ImageConsumer)
}
