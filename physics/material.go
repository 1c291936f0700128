/*package physics contains simple scattering and interface kernels which
drive particles through materials. The models are not physically accurate:
they exist so that drivers can be exercised end to end.
*/
package physics

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/phil-mansfield/gotraj/particle"
)

// Channel IDs reported by Manager.NextScatterType. Zero means no event.
const (
	ElasticChannel   uint8 = 1
	InelasticChannel uint8 = 2
)

// Channel is one scattering process of a material.
type Channel interface {
	// ID returns the non-zero channel ID.
	ID() uint8
	// SamplePath draws a free path length, in nm.
	SamplePath(p *particle.Particle, rng *Random) float32
	// Execute performs a scattering event on particle i.
	Execute(man *particle.Manager, i int, rng *Random)
	// Info writes a short description of the model.
	Info(w io.Writer)
}

// Material is a homogeneous medium. Lengths are in nm and energies in eV.
type Material struct {
	Name string

	ElasticMFP, InelasticMFP float32
	// Fraction of the kinetic energy lost in an elastic event.
	ElasticLoss float32
	// Mean energy lost in an inelastic event.
	MeanLoss float32
	// Fraction of the inelastic loss given to a secondary electron.
	SecondaryFraction float32
	// Particles below Barrier terminate, and secondaries below it are not
	// created.
	Barrier   float32
	MaxEnergy float32

	once     sync.Once
	channels []Channel
}

// Check returns an error describing the first invalid parameter of m.
func (m *Material) Check() error {
	switch {
	case m.ElasticMFP <= 0:
		return fmt.Errorf("ElasticMFP of Material '%s' must be positive, but is %g", m.Name, m.ElasticMFP)
	case m.InelasticMFP <= 0:
		return fmt.Errorf("InelasticMFP of Material '%s' must be positive, but is %g", m.Name, m.InelasticMFP)
	case m.ElasticLoss < 0 || m.ElasticLoss >= 1:
		return fmt.Errorf("ElasticLoss of Material '%s' must be in range [0, 1), but is %g", m.Name, m.ElasticLoss)
	case m.MeanLoss <= 0:
		return fmt.Errorf("MeanLoss of Material '%s' must be positive, but is %g", m.Name, m.MeanLoss)
	case m.SecondaryFraction < 0 || m.SecondaryFraction > 1:
		return fmt.Errorf("SecondaryFraction of Material '%s' must be in range [0, 1], but is %g", m.Name, m.SecondaryFraction)
	case m.Barrier < 0:
		return fmt.Errorf("Barrier of Material '%s' must be non-negative, but is %g", m.Name, m.Barrier)
	case m.MaxEnergy <= m.Barrier:
		return fmt.Errorf("MaxEnergy of Material '%s' must be larger than Barrier, but is %g", m.Name, m.MaxEnergy)
	}
	return nil
}

// Channels returns the scattering channels of m, elastic first.
func (m *Material) Channels() []Channel {
	m.once.Do(func() {
		m.channels = []Channel{&Elastic{m}, &Inelastic{m}}
	})
	return m.channels
}

// CanReachVacuum returns true if a particle with energy e is energetic enough
// to keep moving through m.
func (m *Material) CanReachVacuum(e float32) bool { return e >= m.Barrier }

// Sample draws a free path for every channel of m and returns the shortest
// one together with its channel.
func (m *Material) Sample(p *particle.Particle, rng *Random) (dist float32, ch Channel) {
	dist = float32(math.Inf(+1))
	for _, c := range m.Channels() {
		d := c.SamplePath(p, rng)
		if d < dist {
			dist, ch = d, c
		}
	}
	return dist, ch
}

// Materials is an indexed collection of materials.
type Materials []*Material

// Get returns the material with index i, or nil if i is not a real material.
func (ms Materials) Get(i int) *Material {
	if i < 0 || i >= len(ms) {
		return nil
	}
	return ms[i]
}

// MaxEnergy returns the smallest MaxEnergy of all materials, i.e. the
// largest energy every material can simulate.
func (ms Materials) MaxEnergy() float32 {
	max := float32(math.Inf(+1))
	for _, m := range ms {
		if m.MaxEnergy < max {
			max = m.MaxEnergy
		}
	}
	return max
}
