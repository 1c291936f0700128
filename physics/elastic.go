package physics

import (
	"fmt"
	"io"
	"math"

	"github.com/phil-mansfield/gotraj/geom"
	"github.com/phil-mansfield/gotraj/particle"
)

// Elastic deflects particles isotropically and removes a small, fixed
// fraction of their energy. It never creates secondaries.
type Elastic struct {
	m *Material
}

func (e *Elastic) ID() uint8 { return ElasticChannel }

func (e *Elastic) SamplePath(p *particle.Particle, rng *Random) float32 {
	return rng.Exponential(e.m.ElasticMFP)
}

func (e *Elastic) Execute(man *particle.Manager, i int, rng *Random) {
	p := man.At(i)

	cosTheta := 2*rng.Unit() - 1
	sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))

	dir := p.Dir.Normalised()
	normal := geom.MakeNormal(dir, rng.Phi())
	p.Dir = dir.Scale(cosTheta).Add(normal.Scale(sinTheta))

	p.KinEnergy -= p.KinEnergy * e.m.ElasticLoss

	man.UpdateEdgeTag(i)
}

func (e *Elastic) Info(w io.Writer) {
	fmt.Fprintf(w, " * Isotropic elastic model\n"+
		"   Options:\n"+
		"     - Energy loss fraction: %g\n", e.m.ElasticLoss)
}
