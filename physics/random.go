package physics

import (
	"math"
	"math/rand"
)

// Random is the random number source used by the scattering kernels. A
// Random must not be shared between goroutines.
type Random struct {
	gen *rand.Rand
}

// NewRandom creates a generator with the given seed.
func NewRandom(seed int64) *Random {
	return &Random{rand.New(rand.NewSource(seed))}
}

// Unit returns a uniform number in [0, 1).
func (r *Random) Unit() float32 { return float32(r.gen.Float64()) }

// Exponential returns an exponentially distributed number with the given
// mean.
func (r *Random) Exponential(mean float32) float32 {
	return float32(-float64(mean) * math.Log(1-r.gen.Float64()))
}

// Phi returns a uniform angle in [0, 2 pi).
func (r *Random) Phi() float32 { return float32(2 * math.Pi * r.gen.Float64()) }
