package pixel

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every imaging package.
var (
	// ErrOutOfRange is returned when a coordinate or band index lies outside
	// the declared bounds. Values are never clamped.
	ErrOutOfRange = errors.New("pixel: coordinate out of range")

	// ErrFormat is returned for structural mismatches detected at
	// construction or call time.
	ErrFormat = errors.New("pixel: format error")

	// ErrUnsupported is returned when a general code path is reached for a
	// data or transfer type the concrete variant does not specialise.
	ErrUnsupported = errors.New("pixel: unsupported operation")
)

func outOfRange(x, y, band int) error {
	return fmt.Errorf("%w: (%d, %d) band %d", ErrOutOfRange, x, y, band)
}

func formatError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrFormat}, args...)...)
}
