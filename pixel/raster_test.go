package pixel

import (
	"errors"
	"image"
	"slices"
	"testing"
)

func TestRasterOrigin(t *testing.T) {
	r, err := NewInterleavedRaster(TypeByte, 3, 2, 1, image.Pt(10, 20))
	if err != nil {
		t.Fatal(err)
	}
	if want := image.Rect(10, 20, 13, 22); r.Bounds() != want {
		t.Fatalf("Bounds = %v, want %v", r.Bounds(), want)
	}
	if err := r.SetSample(12, 21, 0, 7); err != nil {
		t.Fatal(err)
	}
	if got := r.DataBuffer().Elem(5); got != 7 {
		t.Errorf("buffer element 5 = %d, want 7", got)
	}
	if _, err := r.Sample(0, 0, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Sample outside origin: err = %v, want ErrOutOfRange", err)
	}
}

func TestNewRasterValidatesBuffer(t *testing.T) {
	sm, err := NewInterleavedSampleModel(TypeByte, 4, 4, 3)
	if err != nil {
		t.Fatal(err)
	}
	small, _ := NewDataBuffer(TypeByte, 10, 1)
	if _, err := NewRaster(sm, small, image.Point{}); !errors.Is(err, ErrFormat) {
		t.Errorf("small buffer: err = %v, want ErrFormat", err)
	}
	wrong, _ := NewDataBuffer(TypeUShort, 48, 1)
	if _, err := NewRaster(sm, wrong, image.Point{}); !errors.Is(err, ErrFormat) {
		t.Errorf("wrong type: err = %v, want ErrFormat", err)
	}

	banded, _ := NewBandedSampleModel(TypeByte, 2, 2, 3)
	twoBanks, _ := NewDataBuffer(TypeByte, 4, 2)
	if _, err := NewRaster(banded, twoBanks, image.Point{}); !errors.Is(err, ErrFormat) {
		t.Errorf("missing bank: err = %v, want ErrFormat", err)
	}
}

func TestCreateChildSharesBuffer(t *testing.T) {
	parent, err := NewInterleavedRaster(TypeByte, 4, 4, 3, image.Point{})
	if err != nil {
		t.Fatal(err)
	}
	child, err := parent.CreateChild(1, 1, 2, 2, 0, 0, []int{2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if child.NumBands() != 2 || child.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("child bands %d bounds %v", child.NumBands(), child.Bounds())
	}
	if child.Parent() != parent {
		t.Error("Parent not recorded")
	}
	if err := parent.SetPixel(2, 2, []int{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	px, err := child.Pixel(1, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(px, []int{3, 1}) {
		t.Errorf("child pixel = %v, want [3 1]", px)
	}
	if err := child.SetSample(0, 0, 1, 9); err != nil {
		t.Fatal(err)
	}
	if got, _ := parent.Sample(1, 1, 0); got != 9 {
		t.Errorf("parent sample = %d, want 9", got)
	}
	if _, err := child.Sample(2, 0, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("child read past its bounds: err = %v, want ErrOutOfRange", err)
	}
	if _, err := parent.CreateChild(3, 3, 2, 2, 0, 0, nil); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("child past parent: err = %v, want ErrOutOfRange", err)
	}
}

func TestCreateChildTranslated(t *testing.T) {
	parent, err := NewBandedRaster(TypeUShort, 5, 5, 1, image.Pt(-2, -2))
	if err != nil {
		t.Fatal(err)
	}
	child, err := parent.CreateChild(0, 0, 2, 2, 100, 100, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := child.SetSample(101, 100, 0, 4242); err != nil {
		t.Fatal(err)
	}
	if got, _ := parent.Sample(1, 0, 0); got != 4242 {
		t.Errorf("parent sample = %d, want 4242", got)
	}
}

func TestRasterSetRectAndCopy(t *testing.T) {
	src, err := NewPackedRaster(TypeByte, 4, 2, 2, image.Pt(1, 0))
	if err != nil {
		t.Fatal(err)
	}
	for x := 1; x < 5; x++ {
		if err := src.SetSample(x, 1, 0, x-1); err != nil {
			t.Fatal(err)
		}
	}
	dst, err := src.CompatibleRaster(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := dst.SetRect(src); err != nil {
		t.Fatal(err)
	}
	row, err := dst.Samples(0, 1, 3, 1, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(row, []int{0, 0, 1}) {
		t.Errorf("copied row = %v, want [0 0 1]", row)
	}

	c, err := src.Copy()
	if err != nil {
		t.Fatal(err)
	}
	if c.Bounds() != src.Bounds() {
		t.Errorf("copy bounds %v, want %v", c.Bounds(), src.Bounds())
	}
	_ = c.SetSample(4, 1, 0, 0)
	if got, _ := src.Sample(4, 1, 0); got != 3 {
		t.Errorf("copy shares storage: source sample = %d", got)
	}

	other, _ := NewInterleavedRaster(TypeByte, 2, 2, 3, image.Point{})
	if err := dst.SetRect(other); !errors.Is(err, ErrFormat) {
		t.Errorf("band mismatch: err = %v, want ErrFormat", err)
	}
}

func TestRasterDataElements(t *testing.T) {
	r, err := NewPackedMaskRaster(TypeInt, 2, 1, []uint32{0xff0000, 0xff00, 0xff}, image.Point{})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetDataElements(1, 0, []int32{0x123456}); err != nil {
		t.Fatal(err)
	}
	px, _ := r.Pixel(1, 0, nil)
	if !slices.Equal(px, []int{0x12, 0x34, 0x56}) {
		t.Errorf("Pixel = %#v", px)
	}
	if r.TransferType() != TypeInt || r.NumDataElements() != 1 {
		t.Errorf("transfer %v x %d", r.TransferType(), r.NumDataElements())
	}
}
