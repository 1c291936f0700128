/*package driver contains the drivers which advance an ensemble of particles
through a geometry.

CPU performs the individual physics steps. Trajectories wraps any Stepper
and reports energy deposits and terminations, along with the edge tags needed
to rebuild each cascade's topology.
*/
package driver

import (
	"fmt"
	"io"
	"math"

	"github.com/phil-mansfield/gotraj/geom"
	"github.com/phil-mansfield/gotraj/particle"
	"github.com/phil-mansfield/gotraj/physics"
)

// CPU is a single-threaded driver. Each CPU owns its own particles and
// random number generator; distinct CPUs may run in separate goroutines as
// long as they only share the (read-only) geometry and materials.
type CPU struct {
	particles *particle.Manager
	geometry  *geom.TriList
	materials physics.Materials
	inter     *physics.Interface
	rng       *physics.Random

	minEnergy float32
}

// NewCPU creates a driver for the given geometry and materials. Particles
// inside a material with less than minEnergy are terminated.
func NewCPU(
	geometry *geom.TriList, materials physics.Materials,
	minEnergy float32, seed int64,
) *CPU {
	return &CPU{
		particles: particle.NewManager(),
		geometry:  geometry,
		materials: materials,
		inter:     &physics.Interface{Geometry: geometry, Materials: materials},
		rng:       physics.NewRandom(seed),
		minEnergy: minEnergy,
	}
}

// Push adds primary particles to the driver and returns how many were added.
func (d *CPU) Push(ps []particle.Particle, tags []uint32) int {
	return d.particles.Push(ps, tags)
}

// Info writes a description of the physics models used by d.
func (d *CPU) Info(w io.Writer) {
	for i, m := range d.materials {
		fmt.Fprintf(w, "Material %d (%s):\n", i, m.Name)
		for _, ch := range m.Channels() { ch.Info(w) }
	}
	d.inter.Info(w)
}

// Store returns the particles owned by d.
func (d *CPU) Store() *particle.Manager { return d.particles }

// Trajectories returns a trajectory-reporting driver wrapping d.
func (d *CPU) Trajectories() *Trajectories {
	return NewTrajectories(d, d.particles)
}

// Prepare decides what the next event of particle i will be: a scattering
// event, an interface crossing, or termination.
func (d *CPU) Prepare(i int) {
	man := d.particles
	if !man.Active(i) {
		return
	}

	p := man.At(i)
	dist, channel := float32(math.Inf(+1)), uint8(0)

	if mat := d.materials.Get(man.MaterialIndex(i)); mat != nil {
		if p.KinEnergy < d.minEnergy || !mat.CanReachVacuum(p.KinEnergy) {
			man.Terminate(i)
			return
		}
		var ch physics.Channel
		dist, ch = mat.Sample(p, d.rng)
		channel = ch.ID()
	}

	isectDist, tri, ok := d.geometry.Intersect(
		p.Pos, p.Dir.Normalised(), man.LastTriangle(i),
	)
	if ok && isectDist < dist {
		man.SetIntersectEvent(i, tri, isectDist)
		return
	}

	if channel == 0 {
		// In vacuum with nothing ahead.
		man.Terminate(i)
		return
	}
	man.SetScatterEvent(i, channel, dist)
}

// Intersect performs the interface crossing of particle i, if one is due.
func (d *CPU) Intersect(i int) {
	if !d.particles.NextIntersect(i) {
		return
	}
	d.inter.Execute(d.particles, i)
}

// Scatter performs the scattering event of particle i, if one is due.
func (d *CPU) Scatter(i int) {
	man := d.particles
	if !man.NextScatter(i) {
		return
	}

	mat := d.materials.Get(man.MaterialIndex(i))
	id := man.NextScatterType(i)
	for _, ch := range mat.Channels() {
		if ch.ID() == id {
			ch.Execute(man, i, d.rng)
			break
		}
	}
	man.ForgetLastTriangle(i)
}

// FlushDetected calls fn for every detected particle and then marks it as
// terminated.
func (d *CPU) FlushDetected(fn func(p particle.Particle, tag uint32) error) error {
	return d.particles.FlushDetected(fn)
}

// FlushTerminated removes terminated particles from memory.
func (d *CPU) FlushTerminated() { d.particles.FlushTerminated() }

func (d *CPU) RunningCount() int  { return d.particles.RunningCount() }
func (d *CPU) DetectedCount() int { return d.particles.DetectedCount() }
