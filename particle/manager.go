package particle

import (
	"github.com/phil-mansfield/gotraj/geom"
)

// record holds everything the Manager knows about one particle.
type record struct {
	status      Status
	nextScatter uint8 // Channel ID of the next scattering event.
	material    int
	data        Particle
	primaryTag  uint32
	// Unique tag for this particle within its primary's cascade.
	secondaryTag uint32
	lastTriangle int
	// Tag of the edge the particle is currently travelling along. A particle
	// gets a new edge tag after every scattering event.
	edgeTag int
}

// cascade is the bookkeeping shared by a primary and all of its secondaries.
type cascade struct {
	nextSecondaryTag uint32
	runningCount     uint32
	nextEdgeTag      int
}

// Manager is an append-only ensemble of particles. Particles are only ever
// removed by FlushTerminated, which must not be called while a driver is
// iterating over the ensemble.
//
// Methods taking an index do no bounds checking beyond what the runtime
// does.
type Manager struct {
	ps       []record
	cascades map[uint32]*cascade
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		ps:       []record{},
		cascades: make(map[uint32]*cascade),
	}
}

// Push appends primary particles with the given tags to the ensemble and
// returns the number of particles actually pushed.
func (man *Manager) Push(ps []Particle, tags []uint32) int {
	n := len(ps)
	if len(tags) < n {
		n = len(tags)
	}

	for i := 0; i < n; i++ {
		man.ps = append(man.ps, record{
			status:       NoEvent,
			material:     geom.Vacuum,
			data:         ps[i],
			primaryTag:   tags[i],
			lastTriangle: geom.NoTriangle,
		})
		man.cascades[tags[i]] = &cascade{1, 1, 1}
	}

	return n
}

// TotalCount returns the number of particles stored, including inactive ones.
func (man *Manager) TotalCount() int { return len(man.ps) }

// RunningCount returns the number of particles which are neither detected nor
// terminated.
func (man *Manager) RunningCount() int {
	n := 0
	for i := range man.ps {
		if man.Active(i) {
			n++
		}
	}
	return n
}

// DetectedCount returns the number of detected particles which have not been
// flushed yet.
func (man *Manager) DetectedCount() int {
	n := 0
	for i := range man.ps {
		if man.ps[i].status == Detected {
			n++
		}
	}
	return n
}

// Get returns a snapshot of particle i.
func (man *Manager) Get(i int) Particle { return man.ps[i].data }

// Set replaces the data of particle i.
func (man *Manager) Set(i int, p Particle) { man.ps[i].data = p }

// At returns a pointer to the data of particle i. The pointer is invalidated
// by any call which appends to the ensemble.
func (man *Manager) At(i int) *Particle { return &man.ps[i].data }

// Exists returns true if there is a particle with index i.
func (man *Manager) Exists(i int) bool { return i >= 0 && i < len(man.ps) }

// Active returns true if particle i is neither detected nor terminated.
func (man *Manager) Active(i int) bool {
	switch man.ps[i].status {
	case Terminated, Detected:
		return false
	default:
		return true
	}
}

// Status returns the event state of particle i.
func (man *Manager) Status(i int) Status { return man.ps[i].status }

func (man *Manager) MaterialIndex(i int) int { return man.ps[i].material }

func (man *Manager) SetMaterialIndex(i, material int) {
	man.ps[i].material = material
}

func (man *Manager) PrimaryTag(i int) uint32 { return man.ps[i].primaryTag }

func (man *Manager) SecondaryTag(i int) uint32 { return man.ps[i].secondaryTag }

func (man *Manager) EdgeTag(i int) int { return man.ps[i].edgeTag }

// UpdateEdgeTag gives particle i the next edge tag of its cascade.
func (man *Manager) UpdateEdgeTag(i int) {
	c := man.cascades[man.ps[i].primaryTag]
	man.ps[i].edgeTag = c.nextEdgeTag
	c.nextEdgeTag++
}

// LastTriangle returns the index of the last triangle crossed by particle i,
// or geom.NoTriangle.
func (man *Manager) LastTriangle(i int) int { return man.ps[i].lastTriangle }

func (man *Manager) ForgetLastTriangle(i int) {
	man.ps[i].lastTriangle = geom.NoTriangle
}

// NextScatter returns true if the next event of particle i is a scattering
// event.
func (man *Manager) NextScatter(i int) bool {
	return man.ps[i].status == ScatterEvent
}

// NextScatterType returns the channel ID of the next scattering event.
func (man *Manager) NextScatterType(i int) uint8 { return man.ps[i].nextScatter }

// NextIntersect returns true if the next event of particle i is an interface
// crossing.
func (man *Manager) NextIntersect(i int) bool {
	return man.ps[i].status == IntersectEvent
}

// Terminated returns true if particle i has been terminated.
func (man *Manager) Terminated(i int) bool {
	return man.ps[i].status == Terminated
}

// CreateSecondary appends a new particle belonging to the cascade of
// particle primaryIdx. The secondary is placed in the same material and
// receives fresh secondary and edge tags.
func (man *Manager) CreateSecondary(primaryIdx int, p Particle) {
	tag := man.ps[primaryIdx].primaryTag
	c := man.cascades[tag]

	man.ps = append(man.ps, record{
		status:       NoEvent,
		material:     man.ps[primaryIdx].material,
		data:         p,
		primaryTag:   tag,
		secondaryTag: c.nextSecondaryTag,
		lastTriangle: geom.NoTriangle,
		edgeTag:      c.nextEdgeTag,
	})
	c.nextSecondaryTag++
	c.nextEdgeTag++
	c.runningCount++
}

func (man *Manager) Terminate(i int) {
	man.ps[i].status = Terminated
	man.cascades[man.ps[i].primaryTag].runningCount--
}

func (man *Manager) Detect(i int) {
	man.ps[i].status = Detected
	man.cascades[man.ps[i].primaryTag].runningCount--
}

// SetScatterEvent sets the next event of particle i to a scattering event of
// the given channel and moves the particle the given distance along its
// direction. Channel 0 means no event.
func (man *Manager) SetScatterEvent(i int, channel uint8, distance float32) {
	r := &man.ps[i]
	if channel != 0 {
		r.status = ScatterEvent
		r.nextScatter = channel
	} else {
		r.status = NoEvent
	}
	r.data.Pos = r.data.Pos.Add(r.data.Dir.Normalised().Scale(distance))
}

// SetIntersectEvent sets the next event of particle i to a crossing of the
// given triangle and moves the particle onto it.
func (man *Manager) SetIntersectEvent(i, triangle int, distance float32) {
	r := &man.ps[i]
	r.status = IntersectEvent
	r.lastTriangle = triangle
	r.data.Pos = r.data.Pos.Add(r.data.Dir.Normalised().Scale(distance))
}

// FlushDetected calls fn for every detected particle and marks it as
// terminated. Particles are not removed from memory. The first error
// returned by fn stops the flush.
func (man *Manager) FlushDetected(fn func(p Particle, tag uint32) error) error {
	for i := range man.ps {
		if man.ps[i].status != Detected {
			continue
		}
		if err := fn(man.ps[i].data, man.ps[i].primaryTag); err != nil {
			return err
		}
		man.ps[i].status = Terminated
	}
	return nil
}

// FlushTerminated removes terminated particles from memory, keeping the
// relative order of the remaining ones, and forgets finished cascades.
func (man *Manager) FlushTerminated() {
	j := 0
	for i := range man.ps {
		if man.ps[i].status != Terminated {
			man.ps[j] = man.ps[i]
			j++
		}
	}
	man.ps = man.ps[:j]

	for tag, c := range man.cascades {
		if c.runningCount == 0 {
			delete(man.cascades, tag)
		}
	}
}
