package particle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gotraj/geom"
)

func pushed(energies ...float32) *Manager {
	man := NewManager()
	ps := make([]Particle, len(energies))
	tags := make([]uint32, len(energies))
	for i, e := range energies {
		ps[i] = Particle{Dir: geom.Vec{0, 0, 1}, KinEnergy: e}
		tags[i] = uint32(10 * i)
	}
	man.Push(ps, tags)
	return man
}

func TestPush(t *testing.T) {
	man := NewManager()
	n := man.Push(make([]Particle, 3), []uint32{4, 5})

	assert.Equal(t, 2, n, "mismatched lengths push the shorter")
	assert.Equal(t, 2, man.TotalCount())
	assert.Equal(t, 2, man.RunningCount())
	for i := 0; i < man.TotalCount(); i++ {
		assert.Equal(t, NoEvent, man.Status(i))
		assert.Equal(t, geom.Vacuum, man.MaterialIndex(i))
		assert.Equal(t, geom.NoTriangle, man.LastTriangle(i))
		assert.Equal(t, 0, man.EdgeTag(i))
	}
	assert.Equal(t, uint32(5), man.PrimaryTag(1))
}

func TestSet(t *testing.T) {
	man := pushed(100)
	p := Particle{Pos: geom.Vec{1, 2, 3}, Dir: geom.Vec{1, 0, 0}, KinEnergy: 7}
	man.Set(0, p)
	assert.Equal(t, p, man.Get(0))
	assert.Equal(t, uint32(0), man.PrimaryTag(0))
	assert.True(t, man.Exists(0))
	assert.False(t, man.Exists(1))
}

func TestCreateSecondary(t *testing.T) {
	man := pushed(100, 200)
	man.SetMaterialIndex(1, 3)

	man.UpdateEdgeTag(1)
	assert.Equal(t, 1, man.EdgeTag(1))

	man.CreateSecondary(1, Particle{KinEnergy: 20})
	require.Equal(t, 3, man.TotalCount())
	assert.Equal(t, man.PrimaryTag(1), man.PrimaryTag(2))
	assert.Equal(t, 3, man.MaterialIndex(2))
	assert.Equal(t, uint32(1), man.SecondaryTag(2))
	assert.Equal(t, 2, man.EdgeTag(2))
	assert.True(t, man.Active(2))

	// Edge tags are unique within a cascade.
	man.UpdateEdgeTag(1)
	assert.Equal(t, 3, man.EdgeTag(1))

	// But independent between cascades.
	man.UpdateEdgeTag(0)
	assert.Equal(t, 1, man.EdgeTag(0))
}

func TestEvents(t *testing.T) {
	man := pushed(100)
	man.SetScatterEvent(0, 2, 3)
	assert.True(t, man.NextScatter(0))
	assert.Equal(t, uint8(2), man.NextScatterType(0))
	assert.Equal(t, geom.Vec{0, 0, 3}, man.Get(0).Pos)

	man.SetScatterEvent(0, 0, 1)
	assert.False(t, man.NextScatter(0))
	assert.Equal(t, NoEvent, man.Status(0))

	man.SetIntersectEvent(0, 7, 1)
	assert.True(t, man.NextIntersect(0))
	assert.Equal(t, 7, man.LastTriangle(0))
	assert.Equal(t, geom.Vec{0, 0, 5}, man.Get(0).Pos)

	man.ForgetLastTriangle(0)
	assert.Equal(t, geom.NoTriangle, man.LastTriangle(0))

	man.Terminate(0)
	assert.True(t, man.Terminated(0))
	assert.False(t, man.Active(0))
	assert.Equal(t, 0, man.RunningCount())
}

func TestFlushDetected(t *testing.T) {
	man := pushed(1, 2, 3)
	man.Detect(0)
	man.Detect(2)
	assert.Equal(t, 2, man.DetectedCount())

	es := []float32{}
	err := man.FlushDetected(func(p Particle, tag uint32) error {
		es = append(es, p.KinEnergy)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 3}, es)
	assert.Equal(t, 0, man.DetectedCount())
	assert.True(t, man.Terminated(0))

	man.Detect(1)
	stop := errors.New("stop")
	err = man.FlushDetected(func(Particle, uint32) error { return stop })
	assert.Equal(t, stop, err)
	assert.Equal(t, Detected, man.Status(1), "failed flush leaves status")
}

func TestFlushTerminated(t *testing.T) {
	man := pushed(1, 2, 3)
	man.CreateSecondary(0, Particle{KinEnergy: 4})
	man.Terminate(0)
	man.Terminate(2)

	man.FlushTerminated()
	require.Equal(t, 2, man.TotalCount())
	assert.Equal(t, float32(2), man.Get(0).KinEnergy)
	assert.Equal(t, float32(4), man.Get(1).KinEnergy)

	// Cascade 0 still has its secondary running.
	_, ok := man.cascades[0]
	assert.True(t, ok)
	_, ok = man.cascades[20]
	assert.False(t, ok)
}
