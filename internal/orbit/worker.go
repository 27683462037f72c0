package orbit

import (
	"sync"

	"github.com/pnt/pntgo/internal/rinex"
)

// mapEpochs applies the broadcast orbit model to every epoch of the grid.
// Epochs are independent, so the grid is split into contiguous chunks and
// each chunk runs on its own goroutine writing a disjoint slice range.
func (p *Propagator) mapEpochs(times []float64, recs rinex.EphemerisSet) []State {
	states := make([]State, len(times))
	workers := p.workers(len(times))

	if workers <= 1 {
		for i, t := range times {
			states[i] = positionAt(t, recs)
		}
		return states
	}

	chunk := (len(times) + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < len(times); lo += chunk {
		hi := lo + chunk
		if hi > len(times) {
			hi = len(times)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				states[i] = positionAt(times[i], recs)
			}
		}(lo, hi)
	}
	wg.Wait()
	return states
}

// workers returns the effective fan-out width for a grid of n epochs.
func (p *Propagator) workers(n int) int {
	w := p.cfg.Workers
	if w < 1 {
		w = 1
	}
	if w > n {
		w = n
	}
	return w
}
