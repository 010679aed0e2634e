package op

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/image/math/f64"
)

const tolerance = 1e-10

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name       string
		m          f64.Aff3
		inX, inY   float64
		outX, outY float64
	}{
		{"identity", Identity(), 10, 20, 10, 20},
		{"translate", Translate(3, -4), 2, 8, 5, 4},
		{"scale", Scale(2, 0.5), 3, 8, 6, 4},
		{"rotate quarter turn", Rotate(math.Pi / 2), 1, 0, 0, 1},
		{"shear", Shear(1, 0), 2, 3, 5, 3},
		{"scale then translate", Multiply(Translate(1, 1), Scale(2, 2)), 1, 1, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := transformPoint(tt.m, tt.inX, tt.inY)
			if math.Abs(x-tt.outX) > tolerance || math.Abs(y-tt.outY) > tolerance {
				t.Errorf("transformPoint(%v, %v) = (%v, %v), want (%v, %v)",
					tt.inX, tt.inY, x, y, tt.outX, tt.outY)
			}
		})
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Multiply(Rotate(0.3), Multiply(Scale(2, 3), Translate(5, -1)))
	inv, ok := invert(m)
	if !ok {
		t.Fatal("invert reported singular matrix")
	}
	id := Multiply(m, inv)
	for i, want := range Identity() {
		if math.Abs(id[i]-want) > tolerance {
			t.Fatalf("m * inverse = %v, want identity", id)
		}
	}

	for _, m := range []f64.Aff3{Scale(0, 0), Scale(1e-20, 1e-20), {1, 2, 0, 2, 4, 0}, {math.NaN(), 0, 0, 0, 1, 0}} {
		if _, ok := invert(m); ok {
			t.Errorf("invert(%v) succeeded", m)
		}
	}
}

func TestIsIntegralScale(t *testing.T) {
	tests := []struct {
		m    f64.Aff3
		want bool
	}{
		{Identity(), true},
		{Multiply(Translate(0.5, 3), Scale(2, 3)), true},
		{Scale(1.5, 1), false},
		{Rotate(0.1), false},
		{Shear(0, 1), false},
	}
	for _, tt := range tests {
		if got := isIntegralScale(tt.m); got != tt.want {
			t.Errorf("isIntegralScale(%v) = %v, want %v", tt.m, got, tt.want)
		}
	}
}

func TestNewAffineTransformOpRejectsSingular(t *testing.T) {
	if _, err := NewAffineTransformOp(Scale(0, 0), NearestNeighbor); !errors.Is(err, ErrNonInvertible) {
		t.Errorf("singular matrix: err = %v, want ErrNonInvertible", err)
	}
	if _, err := NewAffineTransformOp(Identity(), Interpolation(9)); err == nil {
		t.Error("unknown interpolation accepted")
	}
}

func TestCubicWeightsSumToOne(t *testing.T) {
	for _, f := range []float64{0, 0.25, 0.5, 0.9} {
		w := cubicWeights(f)
		if s := w[0] + w[1] + w[2] + w[3]; math.Abs(s-1) > tolerance {
			t.Errorf("cubicWeights(%v) sum = %v", f, s)
		}
	}
	if w := cubicWeights(0); w[1] != 1 || w[0] != 0 || w[2] != 0 {
		t.Errorf("cubicWeights(0) = %v, want [0 1 0 0]", w)
	}
}
