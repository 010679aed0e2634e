package producer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/imaging/colormodel"
	"github.com/gogpu/imaging/pixel"
)

// recorder logs consumer calls. It removes itself from src when a call
// with the name in removeOn arrives.
type recorder struct {
	src      *MemoryImageSource
	removeOn string
	events   []string
}

func (r *recorder) log(name, format string, args ...any) {
	r.events = append(r.events, name+" "+fmt.Sprintf(format, args...))
	if name == r.removeOn {
		r.src.RemoveConsumer(r)
	}
}

func (r *recorder) SetDimensions(w, h int) { r.log("dims", "%dx%d", w, h) }
func (r *recorder) SetProperties(props map[string]any) { r.log("props", "%d", len(props)) }
func (r *recorder) SetColorModel(colormodel.ColorModel) { r.log("model", "") }
func (r *recorder) SetHints(h Hints) { r.log("hints", "%v", h) }
func (r *recorder) ImageComplete(s Status) { r.log("complete", "%v", s) }

func (r *recorder) SetBytePixels(x, y, w, h int, _ colormodel.ColorModel, _ []uint8, off, scan int) {
	r.log("bytes", "%d,%d %dx%d off=%d scan=%d", x, y, w, h, off, scan)
}

func (r *recorder) SetIntPixels(x, y, w, h int, _ colormodel.ColorModel, _ []uint32, off, scan int) {
	r.log("ints", "%d,%d %dx%d off=%d scan=%d", x, y, w, h, off, scan)
}

func newIntSource(t *testing.T) *MemoryImageSource {
	t.Helper()
	src, err := NewIntMemoryImageSource(3, 2, nil, make([]uint32, 8), 1, 4, map[string]any{"k": 1})
	if err != nil {
		t.Fatal(err)
	}
	return src
}

var staticSequence = []string{
	"dims 3x2",
	"props 1",
	"model ",
	"hints tdlr|scanlines|single-pass|single-frame",
	"ints 0,0 3x2 off=1 scan=4",
	"complete static image done",
	"complete error",
}

func TestStaticDelivery(t *testing.T) {
	src := newIntSource(t)
	src.SetAnimated(false)

	for i := range 2 {
		r := &recorder{src: src}
		src.AddConsumer(r)
		if diff := cmp.Diff(staticSequence, r.events); diff != "" {
			t.Errorf("consumer %d events (-want +got):\n%s", i, diff)
		}
		if src.IsConsumer(r) {
			t.Errorf("consumer %d still registered after static delivery", i)
		}
	}
}

func TestConsumerRemovesItself(t *testing.T) {
	tests := []struct {
		on   string
		want []string
	}{
		{"model", []string{"dims 3x2", "props 1", "model "}},
		{"ints", staticSequence[:5]},
		{"complete", staticSequence[:6]},
	}
	for _, tt := range tests {
		t.Run(tt.on, func(t *testing.T) {
			src := newIntSource(t)
			r := &recorder{src: src, removeOn: tt.on}
			src.AddConsumer(r)
			if diff := cmp.Diff(tt.want, r.events); diff != "" {
				t.Errorf("events (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnimatedDelivery(t *testing.T) {
	src := newIntSource(t)
	src.SetAnimated(true)
	r := &recorder{src: src}
	src.AddConsumer(r)
	src.AddConsumer(r)

	src.NewPixelsRegion(1, -1, 5, 2, true)
	src.NewPixelsRegion(5, 0, 1, 1, false)
	src.SetFullBufferUpdates(true)
	src.NewPixelsRegion(1, 1, 1, 1, false)
	src.SetAnimated(false)

	want := []string{
		"dims 3x2",
		"props 1",
		"model ",
		"hints random",
		"ints 0,0 3x2 off=1 scan=4",
		"complete single frame done",
		"ints 1,0 2x1 off=2 scan=4",
		"complete single frame done",
		"hints tdlr|scanlines",
		"ints 0,0 3x2 off=1 scan=4",
		"complete static image done",
		"complete error",
	}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	if src.IsConsumer(r) {
		t.Error("consumer still registered after SetAnimated(false)")
	}
}

func TestNewPixelsBuffer(t *testing.T) {
	src := newIntSource(t)
	src.SetAnimated(true)
	r := &recorder{src: src}
	src.AddConsumer(r)
	r.events = nil

	cm, err := colormodel.NewDirectColorModel(24, 0xff0000, 0xff00, 0xff, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := src.NewIntPixelsBuffer(make([]uint32, 6), cm, 0, 3); err != nil {
		t.Fatal(err)
	}
	want := []string{"ints 0,0 3x2 off=0 scan=3", "complete single frame done"}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	if err := src.NewIntPixelsBuffer(make([]uint32, 5), cm, 0, 3); !errors.Is(err, pixel.ErrFormat) {
		t.Errorf("short buffer: err = %v, want ErrFormat", err)
	}
	if err := src.NewPixelsBuffer(make([]uint8, 6), nil, 0, 3); !errors.Is(err, pixel.ErrFormat) {
		t.Errorf("nil model: err = %v, want ErrFormat", err)
	}
}

func TestNewMemoryImageSourceErrors(t *testing.T) {
	tests := []struct {
		name      string
		w, h, n   int
		off, scan int
	}{
		{"zero width", 0, 1, 4, 0, 0},
		{"scan below width", 4, 1, 4, 0, 3},
		{"negative offset", 2, 1, 4, -1, 2},
		{"buffer too small", 2, 2, 3, 0, 2},
		{"offset past buffer", 2, 2, 4, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMemoryImageSource(tt.w, tt.h, nil, make([]uint8, tt.n), tt.off, tt.scan, nil)
			if !errors.Is(err, pixel.ErrFormat) {
				t.Errorf("err = %v, want ErrFormat", err)
			}
		})
	}
}

func TestHintsString(t *testing.T) {
	if got := (TopDownLeftRight | SingleFrame).String(); got != "tdlr|single-frame" {
		t.Errorf("String = %q", got)
	}
	if got := Hints(0).String(); got != "none" {
		t.Errorf("String = %q", got)
	}
}
