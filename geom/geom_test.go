package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func almostEq(x, y, eps float32) bool {
	return x+eps > y && x-eps < y
}

func unitTriangle() Triangle {
	return Triangle{
		A: Vec{0, 0, 0}, B: Vec{1, 0, 0}, C: Vec{0, 1, 0},
		MaterialIn: 0, MaterialOut: Vacuum,
	}
}

func TestVecOps(t *testing.T) {
	x, y := Vec{1, 0, 0}, Vec{0, 1, 0}

	assert.Equal(t, Vec{0, 0, 1}, x.Cross(y))
	assert.Equal(t, float32(0), x.Dot(y))
	assert.Equal(t, Vec{1, 1, 0}, x.Add(y))
	assert.Equal(t, Vec{1, -1, 0}, x.Sub(y))
	assert.Equal(t, Vec{3, 0, 0}, x.Scale(3))
	assert.Equal(t, float32(5), Vec{3, 4, 0}.Norm())
	assert.Equal(t, Vec{}, Vec{}.Normalised(), "zero vector")
}

func TestMakeNormal(t *testing.T) {
	dirs := []Vec{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, Vec{1, 2, 3}.Normalised()}

	for i, dir := range dirs {
		for j := 0; j < 10; j++ {
			phi := float32(2 * math.Pi * rand.Float64())
			n := MakeNormal(dir, phi)
			if !almostEq(n.Dot(dir), 0, 1e-5) {
				t.Errorf("%d) Expected %v to be perpendicular to %v.", i, n, dir)
			}
			if !almostEq(n.Norm(), 1, 1e-5) {
				t.Errorf("%d) Expected unit vector, got norm %g.", i, n.Norm())
			}
		}
	}
}

func TestReflect(t *testing.T) {
	r := Reflect(Vec{1, 0, -1}, Vec{0, 0, 2})
	assert.Equal(t, Vec{1, 0, 1}, r)
}

func TestPluckerTriangleCrosses(t *testing.T) {
	tri := unitTriangle()
	pt := &PluckerTriangle{}
	pt.Init(&tri)

	table := []struct {
		P, L  Vec
		cross bool
	}{
		{Vec{0.2, 0.2, -1}, Vec{0, 0, 1}, true},
		{Vec{0.2, 0.2, +1}, Vec{0, 0, -1}, true},
		{Vec{0.2, 0.2, +1}, Vec{0, 0, 1}, true}, // Lines are infinite.
		{Vec{2, 2, -1}, Vec{0, 0, 1}, false},
		{Vec{0.6, 0.6, -1}, Vec{0, 0, 1}, false},
		{Vec{-0.1, 0.5, -1}, Vec{0, 0, 1}, false},
	}

	for i, test := range table {
		p := &PluckerVec{}
		p.Init(&test.P, &test.L)
		if pt.Crosses(p) != test.cross {
			t.Errorf("%d) Expected Crosses = %v for P = %v, L = %v.",
				i, test.cross, test.P, test.L)
		}
	}
}

func TestTriListIntersect(t *testing.T) {
	lower := unitTriangle()
	upper := unitTriangle()
	for _, v := range []*Vec{&upper.A, &upper.B, &upper.C} {
		v[2] = 2
	}
	tl := NewTriList([]Triangle{lower, upper})

	dist, tri, ok := tl.Intersect(Vec{0.2, 0.2, -1}, Vec{0, 0, 1}, NoTriangle)
	assert.True(t, ok)
	assert.Equal(t, 0, tri)
	assert.InDelta(t, 1.0, dist, 1e-5)

	// Ignoring the first triangle finds the second.
	dist, tri, ok = tl.Intersect(Vec{0.2, 0.2, 0}, Vec{0, 0, 1}, 0)
	assert.True(t, ok)
	assert.Equal(t, 1, tri)
	assert.InDelta(t, 2.0, dist, 1e-5)

	// Nothing in front of the ray.
	_, tri, ok = tl.Intersect(Vec{0.2, 0.2, 3}, Vec{0, 0, 1}, NoTriangle)
	assert.False(t, ok)
	assert.Equal(t, NoTriangle, tri)

	// Parallel rays never hit.
	_, _, ok = tl.Intersect(Vec{-1, 0.2, 0.5}, Vec{1, 0, 0}, NoTriangle)
	assert.False(t, ok)
}

func TestTriListAABB(t *testing.T) {
	lower := unitTriangle()
	upper := unitTriangle()
	upper.C = Vec{-1, 3, 2}
	tl := NewTriList([]Triangle{lower, upper})

	min, max := tl.AABB()
	assert.Equal(t, Vec{-1, 0, 0}, min)
	assert.Equal(t, Vec{1, 3, 2}, max)
	assert.Equal(t, 2, tl.Len())
}

func BenchmarkTriListIntersect(b *testing.B) {
	ts := make([]Triangle, 1<<8)
	for i := range ts {
		ts[i] = unitTriangle()
		z := float32(i)
		ts[i].A[2], ts[i].B[2], ts[i].C[2] = z, z, z
	}
	tl := NewTriList(ts)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		tl.Intersect(Vec{0.2, 0.2, -1}, Vec{0, 0, 1}, NoTriangle)
	}
}
