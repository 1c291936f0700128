package physics

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gotraj/geom"
	"github.com/phil-mansfield/gotraj/particle"
)

func testMaterial() *Material {
	return &Material{
		Name:       "test",
		ElasticMFP: 1, InelasticMFP: 2,
		ElasticLoss: 0.1, MeanLoss: 10, SecondaryFraction: 1,
		Barrier: 5, MaxEnergy: 1000,
	}
}

func oneParticle(e float32) *particle.Manager {
	man := particle.NewManager()
	man.Push([]particle.Particle{{Dir: geom.Vec{0, 0, 1}, KinEnergy: e}}, []uint32{0})
	man.SetMaterialIndex(0, 0)
	return man
}

func TestMaterialCheck(t *testing.T) {
	assert.NoError(t, testMaterial().Check())

	table := []func(m *Material){
		func(m *Material) { m.ElasticMFP = 0 },
		func(m *Material) { m.InelasticMFP = -1 },
		func(m *Material) { m.ElasticLoss = 1 },
		func(m *Material) { m.MeanLoss = 0 },
		func(m *Material) { m.SecondaryFraction = 2 },
		func(m *Material) { m.Barrier = -1 },
		func(m *Material) { m.MaxEnergy = 5 },
	}
	for i, mod := range table {
		m := testMaterial()
		mod(m)
		if m.Check() == nil {
			t.Errorf("%d) Expected invalid material %+v to fail Check.", i, m)
		}
	}
}

func TestMaterialSample(t *testing.T) {
	m := testMaterial()
	rng := NewRandom(3)
	p := &particle.Particle{KinEnergy: 100}

	seen := map[uint8]int{}
	for i := 0; i < 1000; i++ {
		d, ch := m.Sample(p, rng)
		require.NotNil(t, ch)
		assert.True(t, d >= 0)
		seen[ch.ID()]++
	}
	// The elastic path is shorter on average: rates are 1 and 1/2.
	assert.True(t, seen[ElasticChannel] > seen[InelasticChannel])
	assert.True(t, seen[InelasticChannel] > 0)
}

func TestMaterials(t *testing.T) {
	a, b := testMaterial(), testMaterial()
	b.MaxEnergy = 500
	ms := Materials{a, b}

	assert.Equal(t, float32(500), ms.MaxEnergy())
	assert.Nil(t, ms.Get(geom.Vacuum))
	assert.Nil(t, ms.Get(2))
	assert.Equal(t, b, ms.Get(1))
	assert.True(t, math.IsInf(float64(Materials{}.MaxEnergy()), +1))
}

func TestElastic(t *testing.T) {
	m := testMaterial()
	man := oneParticle(100)
	rng := NewRandom(1)

	el := m.Channels()[0]
	require.Equal(t, ElasticChannel, el.ID())
	el.Execute(man, 0, rng)

	p := man.Get(0)
	assert.InDelta(t, 90, p.KinEnergy, 1e-4)
	assert.InDelta(t, 1, p.Dir.Norm(), 1e-5)
	assert.Equal(t, 1, man.EdgeTag(0))
	assert.Equal(t, 1, man.TotalCount())
}

func TestInelastic(t *testing.T) {
	m := testMaterial()
	rng := NewRandom(1)
	in := m.Channels()[1]
	require.Equal(t, InelasticChannel, in.ID())

	secondaries := 0
	for i := 0; i < 100; i++ {
		man := oneParticle(100)
		in.Execute(man, 0, rng)

		p := man.Get(0)
		lost := 100 - p.KinEnergy
		assert.True(t, lost >= 0 && lost <= 100)

		if man.TotalCount() == 2 {
			secondaries++
			se := man.Get(1)
			assert.InDelta(t, lost, se.KinEnergy, 1e-3, "all loss goes to the secondary")
			assert.True(t, se.KinEnergy > m.Barrier)
			assert.Equal(t, 1, man.EdgeTag(1))
			assert.Equal(t, 2, man.EdgeTag(0))
		} else {
			assert.True(t, lost <= m.Barrier)
			assert.Equal(t, 1, man.EdgeTag(0))
		}
	}
	assert.True(t, secondaries > 0)
}

func TestInelasticCapsLoss(t *testing.T) {
	m := testMaterial()
	m.MeanLoss = 1e6
	man := oneParticle(10)
	m.Channels()[1].Execute(man, 0, NewRandom(2))

	assert.True(t, man.Get(0).KinEnergy >= 0)
}

func TestInterface(t *testing.T) {
	l := float32(10)
	tri := func(in, out int) []geom.Triangle {
		return []geom.Triangle{{
			geom.Vec{-l, -l, 0}, geom.Vec{l, -l, 0}, geom.Vec{0, l, 0}, in, out,
		}}
	}

	table := []struct {
		in, out  int
		dir      geom.Vec
		energy   float32
		status   particle.Status
		material int
		reflect  bool
	}{
		{0, geom.Vacuum, geom.Vec{0, 0, 1}, 100, particle.IntersectEvent, geom.Vacuum, false},
		{0, geom.Vacuum, geom.Vec{0, 0, 1}, 3, particle.IntersectEvent, 0, true},
		{geom.Vacuum, 0, geom.Vec{0, 0, 1}, 3, particle.IntersectEvent, 0, false},
		{geom.Detector, 0, geom.Vec{0, 0, -1}, 100, particle.Detected, 0, false},
		{0, geom.Terminator, geom.Vec{0, 0, 1}, 100, particle.Terminated, 0, false},
		{0, geom.Mirror, geom.Vec{0, 0, 1}, 100, particle.IntersectEvent, 0, true},
	}

	for i, test := range table {
		man := particle.NewManager()
		man.Push([]particle.Particle{{Dir: test.dir, KinEnergy: test.energy}}, []uint32{0})
		man.SetMaterialIndex(0, 0)
		man.SetIntersectEvent(0, 0, 0)

		in := &Interface{geom.NewTriList(tri(test.in, test.out)), Materials{testMaterial()}}
		in.Execute(man, 0)

		if man.Status(0) != test.status {
			t.Errorf("%d) Expected status %v, got %v.", i, test.status, man.Status(0))
		}
		if man.MaterialIndex(0) != test.material {
			t.Errorf("%d) Expected material %d, got %d.", i, test.material, man.MaterialIndex(0))
		}
		reflected := man.Get(0).Dir != test.dir
		if reflected != test.reflect {
			t.Errorf("%d) Expected reflection = %v, dir = %v.", i, test.reflect, man.Get(0).Dir)
		}
	}
}

func TestInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	for _, ch := range testMaterial().Channels() {
		ch.Info(buf)
	}
	in := &Interface{geom.NewTriList(nil), nil}
	in.Info(buf)
	assert.Contains(t, buf.String(), "elastic")
	assert.Contains(t, buf.String(), "Triangles: 0")
}

func TestRandom(t *testing.T) {
	r1, r2 := NewRandom(9), NewRandom(9)
	sum := 0.0
	for i := 0; i < 1000; i++ {
		u := r1.Unit()
		assert.Equal(t, u, r2.Unit(), "same seed, same stream")
		assert.True(t, u >= 0 && u < 1)
		sum += float64(r1.Exponential(2))
		r2.Exponential(2)
	}
	assert.InDelta(t, 2, sum/1000, 0.3)
}
