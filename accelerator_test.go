package imaging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/imaging/pixel"
)

type mockOp struct{ kind OpKind }

func (o mockOp) Kind() OpKind { return o.kind }

type mockAccelerator struct {
	name     string
	canAccel OpKind
	err      error

	mu     sync.Mutex
	calls  int
	logger *slog.Logger
}

func (m *mockAccelerator) Name() string                   { return m.name }
func (m *mockAccelerator) CanAccelerate(kind OpKind) bool { return m.canAccel&kind != 0 }

func (m *mockAccelerator) FilterImage(Operation, *Image, *Image) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.err
}

func (m *mockAccelerator) FilterRaster(Operation, *pixel.Raster, *pixel.Raster) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.err
}

func (m *mockAccelerator) SetLogger(l *slog.Logger) {
	m.mu.Lock()
	m.logger = l
	m.mu.Unlock()
}

func (m *mockAccelerator) loggerValue() *slog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logger
}

func TestRegisterAccelerator(t *testing.T) {
	t.Cleanup(func() { RegisterAccelerator(nil) })

	if RegisteredAccelerator() != nil {
		t.Fatal("accelerator registered before the test")
	}
	a := &mockAccelerator{name: "first"}
	RegisterAccelerator(a)
	if RegisteredAccelerator() != a {
		t.Error("RegisteredAccelerator did not return the registered accelerator")
	}
	b := &mockAccelerator{name: "second"}
	RegisterAccelerator(b)
	if RegisteredAccelerator() != b {
		t.Error("second registration did not replace the first")
	}
	RegisterAccelerator(nil)
	if RegisteredAccelerator() != nil {
		t.Error("RegisterAccelerator(nil) did not clear the registry")
	}
}

func TestAccelerateOutcomes(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	tests := []struct {
		name      string
		canAccel  OpKind
		err       error
		want      bool
		wantCalls int
		wantLog   string
	}{
		{"handled", OpLookup, nil, true, 1, ""},
		{"incapable", OpAffine, nil, false, 0, ""},
		{"declined", OpLookup, ErrNotAccelerated, false, 1, "accelerator declined"},
		{"declined wrapped", OpLookup, errors.Join(ErrNotAccelerated), false, 1, "accelerator declined"},
		{"failed", OpLookup, errors.New("boom"), false, 1, "accelerator failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			a := &mockAccelerator{name: tt.name, canAccel: tt.canAccel, err: tt.err}
			if got := AccelerateRaster(a, mockOp{OpLookup}, nil, nil); got != tt.want {
				t.Errorf("AccelerateRaster = %v, want %v", got, tt.want)
			}
			if a.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", a.calls, tt.wantCalls)
			}
			if tt.wantLog != "" && !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log = %q, want %q", buf.String(), tt.wantLog)
			}
		})
	}

	if AccelerateImage(nil, mockOp{OpAffine}, nil, nil) {
		t.Error("nil accelerator reported handled")
	}
}

func TestOpKindString(t *testing.T) {
	if OpColorConvert.String() != "colorconvert" || OpKind(64).String() != "OpKind(64)" {
		t.Errorf("String = %q, %q", OpColorConvert, OpKind(64))
	}
}
