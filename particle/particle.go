/*package particle contains the particle snapshot type and the CPU particle
manager which owns an ensemble of particles.
*/
package particle

import (
	"github.com/phil-mansfield/gotraj/geom"
)

// Particle is a value snapshot of a single electron. Energies are in eV.
type Particle struct {
	Pos, Dir  geom.Vec
	KinEnergy float32
}

// Status is the event state of a particle inside a Manager.
type Status uint8

const (
	ScatterEvent Status = iota
	IntersectEvent
	NoEvent
	Detected
	Terminated
)

func (s Status) String() string {
	switch s {
	case ScatterEvent:
		return "ScatterEvent"
	case IntersectEvent:
		return "IntersectEvent"
	case NoEvent:
		return "NoEvent"
	case Detected:
		return "Detected"
	case Terminated:
		return "Terminated"
	}
	return "Unknown"
}
