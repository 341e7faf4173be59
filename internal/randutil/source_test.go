package randutil

import (
	"sync"
	"testing"
)

func TestSeededSequencesRepeat(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v != %v", i, x, y)
		}
	}
}

func TestConcurrentDraws(t *testing.T) {
	r := New(0)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if v := r.Float64(); v < 0 || v >= 1 {
					t.Errorf("draw %v outside [0,1)", v)
					return
				}
			}
		}()
	}
	wg.Wait()
}
