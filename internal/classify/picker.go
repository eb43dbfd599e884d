package classify

import (
	"math/rand"
	"sync"
)

// Picker chooses an index in [0, n). The fallback question pool goes through
// this seam so tests can make the choice deterministic.
type Picker interface {
	Pick(n int) int
}

type seededPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededPicker returns a pseudo-random picker with an explicit seed.
func NewSeededPicker(seed int64) Picker {
	return &seededPicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *seededPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}
