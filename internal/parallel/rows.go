// Package parallel splits row ranges across goroutines.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minRows is the smallest band worth a goroutine.
const minRows = 16

// Workers returns n, or GOMAXPROCS when n is not positive.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Rows calls fn over contiguous half-open bands [y0, y1) covering
// [0, height), running at most workers bands at once. It returns the first
// error; bands already started run to completion.
func Rows(height, workers int, fn func(y0, y1 int) error) error {
	if height <= 0 {
		return nil
	}
	workers = Workers(workers)
	bands := min(workers, (height+minRows-1)/minRows)
	if bands <= 1 {
		return fn(0, height)
	}
	step := (height + bands - 1) / bands
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += step {
		y1 := min(y0+step, height)
		g.Go(func() error { return fn(y0, y1) })
	}
	return g.Wait()
}
