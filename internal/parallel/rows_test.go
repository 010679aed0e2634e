package parallel

import (
	"errors"
	"sync"
	"testing"
)

func TestRowsCoversEveryRowOnce(t *testing.T) {
	for _, tt := range []struct {
		height, workers int
	}{
		{0, 4}, {1, 4}, {15, 8}, {100, 3}, {257, 0}, {64, 64},
	} {
		var mu sync.Mutex
		seen := make([]int, tt.height)
		err := Rows(tt.height, tt.workers, func(y0, y1 int) error {
			mu.Lock()
			defer mu.Unlock()
			for y := y0; y < y1; y++ {
				seen[y]++
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		for y, n := range seen {
			if n != 1 {
				t.Errorf("height %d workers %d: row %d visited %d times", tt.height, tt.workers, y, n)
			}
		}
	}
}

func TestRowsReturnsError(t *testing.T) {
	boom := errors.New("boom")
	err := Rows(200, 4, func(y0, _ int) error {
		if y0 == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestWorkers(t *testing.T) {
	if Workers(3) != 3 || Workers(0) < 1 {
		t.Errorf("Workers(3) = %d, Workers(0) = %d", Workers(3), Workers(0))
	}
}
