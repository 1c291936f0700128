package physics

import (
	"fmt"
	"io"
	"math"

	"github.com/phil-mansfield/gotraj/geom"
	"github.com/phil-mansfield/gotraj/particle"
)

// Inelastic removes an exponentially distributed amount of energy from
// particles and gives part of it to a secondary electron.
type Inelastic struct {
	m *Material
}

func (in *Inelastic) ID() uint8 { return InelasticChannel }

func (in *Inelastic) SamplePath(p *particle.Particle, rng *Random) float32 {
	return rng.Exponential(in.m.InelasticMFP)
}

func (in *Inelastic) Execute(man *particle.Manager, i int, rng *Random) {
	p := man.At(i)

	// omega is the energy lost by the primary.
	omega := rng.Exponential(in.m.MeanLoss)
	if omega > p.KinEnergy {
		omega = p.KinEnergy
	}
	p.KinEnergy -= omega
	pos := p.Pos

	// p must not be used after this point: CreateSecondary may move the
	// ensemble in memory.
	if se := omega * in.m.SecondaryFraction; se > in.m.Barrier {
		man.CreateSecondary(i, particle.Particle{
			Pos:       pos,
			Dir:       randomDir(rng),
			KinEnergy: se,
		})
	}

	man.UpdateEdgeTag(i)
}

func (in *Inelastic) Info(w io.Writer) {
	fmt.Fprintf(w, " * Exponential inelastic model\n"+
		"   Options:\n"+
		"     - Mean energy loss: %g eV\n"+
		"     - Secondary fraction: %g\n", in.m.MeanLoss, in.m.SecondaryFraction)
}

// randomDir returns an isotropically distributed unit vector.
func randomDir(rng *Random) geom.Vec {
	cosTheta := 2*rng.Unit() - 1
	sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))
	sin, cos := math.Sincos(float64(rng.Phi()))
	return geom.Vec{
		sinTheta * float32(cos), sinTheta * float32(sin), cosTheta,
	}
}
