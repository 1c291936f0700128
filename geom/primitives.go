/*package geom contains the vector and ray primitives used to move particles
through a triangulated geometry.

Ray/triangle crossing tests use Plucker coordinates, following Platis &
Theoharis, 2015.
*/
package geom

import (
	"math"
)

// Vec is a three dimensional vector.
type Vec [3]float32

// Add returns v + u.
func (v Vec) Add(u Vec) Vec { return Vec{v[0] + u[0], v[1] + u[1], v[2] + u[2]} }

// Sub returns v - u.
func (v Vec) Sub(u Vec) Vec { return Vec{v[0] - u[0], v[1] - u[1], v[2] - u[2]} }

// Scale returns s * v.
func (v Vec) Scale(s float32) Vec { return Vec{s * v[0], s * v[1], s * v[2]} }

// Dot computes the inner product of v and u.
func (v Vec) Dot(u Vec) float32 {
	return v[0]*u[0] + v[1]*u[1] + v[2]*u[2]
}

// Cross computes v cross u.
func (v Vec) Cross(u Vec) Vec {
	return Vec{
		v[1]*u[2] - v[2]*u[1],
		v[2]*u[0] - v[0]*u[2],
		v[0]*u[1] - v[1]*u[0],
	}
}

// Norm returns the Euclidean length of v.
func (v Vec) Norm() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalised returns a unit vector pointing along v. The zero vector is
// returned unchanged.
func (v Vec) Normalised() Vec {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// MakeNormal returns a unit vector perpendicular to dir, rotated by the
// angle phi around it. dir must be a unit vector.
func MakeNormal(dir Vec, phi float32) Vec {
	// Any vector not parallel to dir works as a seed.
	seed := Vec{1, 0, 0}
	if abs32(dir[0]) > 0.9 {
		seed = Vec{0, 1, 0}
	}
	e1 := dir.Cross(seed).Normalised()
	e2 := dir.Cross(e1)

	sin, cos := math.Sincos(float64(phi))
	return e1.Scale(float32(cos)).Add(e2.Scale(float32(sin))).Normalised()
}

// Reflect mirrors dir in the plane with the given normal.
func Reflect(dir, normal Vec) Vec {
	n := normal.Normalised()
	return dir.Sub(n.Scale(2 * dir.Dot(n)))
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// PluckerVec represents a ray. If P and L are the position of the ray's
// origin and the unit vector representing its direction, respectively, then
// U = L and V = L cross P.
type PluckerVec struct {
	U, V Vec
}

// AnchoredPluckerVec is a Plucker vector which also saves the position of
// the ray's origin.
type AnchoredPluckerVec struct {
	PluckerVec
	P Vec
}

// Init initializes a Plucker vector given a ray origin, P, and a unit
// direction vector, L.
func (p *PluckerVec) Init(P, L *Vec) {
	p.U = *L

	p.V[0] = -P[1]*L[2] + P[2]*L[1]
	p.V[1] = -P[2]*L[0] + P[0]*L[2]
	p.V[2] = -P[0]*L[1] + P[1]*L[0]
}

// InitFromSegment initializes a Plucker vector which corresponds to a ray
// pointing from the position vector P1 to the position vector P2. The
// direction is not normalized: only signs of products are used for edges.
func (p *PluckerVec) InitFromSegment(P1, P2 *Vec) {
	for i := 0; i < 3; i++ {
		p.U[i] = P2[i] - P1[i]
	}

	p.V[0] = -P1[1]*p.U[2] + P1[2]*p.U[1]
	p.V[1] = -P1[2]*p.U[0] + P1[0]*p.U[2]
	p.V[2] = -P1[0]*p.U[1] + P1[1]*p.U[0]
}

// Init initializes an anchored Plucker vector given a ray origin, P, and a
// unit direction vector, L.
func (ap *AnchoredPluckerVec) Init(P, L *Vec) {
	ap.PluckerVec.Init(P, L)
	ap.P = *P
}

// Dot computes the permuted inner product of p1 and p2, i.e.
// p1.U*p2.V + p1.V*p2.U.
func (p1 *PluckerVec) Dot(p2 *PluckerVec) float32 {
	var sum float32
	for i := 0; i < 3; i++ {
		sum += p1.U[i]*p2.V[i] + p1.V[i]*p2.U[i]
	}
	return sum
}

// SignDot computes the permuted inner product of p1 and p2 and also returns
// a sign flag of -1, 0, or +1 if that product is negative, zero, or
// positive, respectively.
func (p1 *PluckerVec) SignDot(p2 *PluckerVec) (float32, int) {
	dot := p1.Dot(p2)
	if dot == 0 {
		return dot, 0
	} else if dot > 0 {
		return dot, +1
	} else {
		return dot, -1
	}
}
