package coordinator

import "math/rand/v2"

// Chooser picks an index in [0, n).
type Chooser interface {
	Choose(n int) int
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(n int) int

// Choose calls f(n).
func (f ChooserFunc) Choose(n int) int {
	return f(n)
}

// RandomChooser picks indexes uniformly. It is not safe for concurrent use;
// the coordinator only calls it while holding its lock.
type RandomChooser struct {
	// rnd is the underlying source.
	rnd *rand.Rand
}

// NewRandomChooser returns a chooser seeded from the runtime's random source.
func NewRandomChooser() *RandomChooser {
	return NewSeededChooser(rand.Uint64())
}

// NewSeededChooser returns a deterministic chooser.
func NewSeededChooser(seed uint64) *RandomChooser {
	return &RandomChooser{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // Not security sensitive.
	}
}

// Choose returns a uniform index in [0, n).
func (r *RandomChooser) Choose(n int) int {
	return r.rnd.IntN(n)
}
