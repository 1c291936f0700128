package physics

import (
	"fmt"
	"io"

	"github.com/phil-mansfield/gotraj/geom"
	"github.com/phil-mansfield/gotraj/particle"
)

// Interface moves particles across the triangle they have just reached.
//
// Particles leaving a material for the vacuum need at least the material's
// Barrier energy and are reflected otherwise. Crossing an interface does not
// change a particle's energy or edge tag.
type Interface struct {
	Geometry  *geom.TriList
	Materials Materials
}

// Execute performs the crossing for particle i, which must have an
// intersect event pending.
func (in *Interface) Execute(man *particle.Manager, i int) {
	tri := in.Geometry.Triangle(man.LastTriangle(i))
	normal := tri.Normal()
	p := man.At(i)

	target := tri.MaterialIn
	if p.Dir.Dot(normal) > 0 {
		target = tri.MaterialOut
	}

	switch target {
	case geom.Detector:
		man.Detect(i)
	case geom.Terminator:
		man.Terminate(i)
	case geom.Mirror:
		p.Dir = geom.Reflect(p.Dir, normal)
	default:
		current := in.Materials.Get(man.MaterialIndex(i))
		if target == geom.Vacuum && current != nil &&
			p.KinEnergy < current.Barrier {
			p.Dir = geom.Reflect(p.Dir, normal)
			return
		}
		man.SetMaterialIndex(i, target)
	}
}

func (in *Interface) Info(w io.Writer) {
	fmt.Fprintf(w, " * Barrier interface model\n"+
		"   Options:\n"+
		"     - Triangles: %d\n", in.Geometry.Len())
}
