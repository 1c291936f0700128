package geom

// Special material indices used on the sides of a Triangle. Real materials
// have non-negative indices.
const (
	Terminator = -127
	Detector   = -126
	Vacuum     = -123
	Mirror     = -122

	// NoTriangle is the triangle index used by particles which have not
	// crossed a triangle yet.
	NoTriangle = -1

	isectEps = 1e-6
)

// Triangle is a geometry interface. The normal (B-A)x(C-A) points towards
// the MaterialOut side.
type Triangle struct {
	A, B, C                 Vec
	MaterialIn, MaterialOut int
}

// Normal returns the (unnormalized) normal of the triangle.
func (t *Triangle) Normal() Vec {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A))
}

// PluckerTriangle is a triangle represented by the Plucker vectors of its
// three edges, A->B, B->C, and C->A.
type PluckerTriangle [3]PluckerVec

// Init initializes a Plucker triangle from a normal triangle.
func (pt *PluckerTriangle) Init(t *Triangle) {
	pt[0].InitFromSegment(&t.A, &t.B)
	pt[1].InitFromSegment(&t.B, &t.C)
	pt[2].InitFromSegment(&t.C, &t.A)
}

// Crosses returns true if the infinite line represented by p passes through
// the triangle represented by pt.
func (pt *PluckerTriangle) Crosses(p *PluckerVec) bool {
	_, s0 := p.SignDot(&pt[0])
	_, s1 := p.SignDot(&pt[1])
	_, s2 := p.SignDot(&pt[2])

	if s0 == 0 && s1 == 0 && s2 == 0 {
		// Coplanar.
		return false
	}
	return (s0 >= 0 && s1 >= 0 && s2 >= 0) || (s0 <= 0 && s1 <= 0 && s2 <= 0)
}

// Distance returns the distance along the ray ap to the plane of t. ok is
// false if the ray is parallel to the plane.
func (t *Triangle) Distance(ap *AnchoredPluckerVec) (dist float32, ok bool) {
	n := t.Normal()
	denom := n.Dot(ap.U)
	if denom == 0 {
		return 0, false
	}
	return n.Dot(t.A.Sub(ap.P)) / denom, true
}

// TriList is a brute-force geometry: every query checks every triangle.
type TriList struct {
	ts  []Triangle
	pts []PluckerTriangle

	min, max Vec
}

// NewTriList creates a TriList containing copies of the given triangles.
func NewTriList(ts []Triangle) *TriList {
	tl := &TriList{
		ts:  make([]Triangle, len(ts)),
		pts: make([]PluckerTriangle, len(ts)),
	}
	copy(tl.ts, ts)
	if len(ts) > 0 {
		tl.min, tl.max = ts[0].A, ts[0].A
	}

	for i := range tl.ts {
		tl.pts[i].Init(&tl.ts[i])
		for _, v := range []Vec{tl.ts[i].A, tl.ts[i].B, tl.ts[i].C} {
			for k := 0; k < 3; k++ {
				if v[k] < tl.min[k] {
					tl.min[k] = v[k]
				}
				if v[k] > tl.max[k] {
					tl.max[k] = v[k]
				}
			}
		}
	}

	return tl
}

// Len returns the number of triangles in the geometry.
func (tl *TriList) Len() int { return len(tl.ts) }

// Triangle returns the triangle with index i.
func (tl *TriList) Triangle(i int) *Triangle { return &tl.ts[i] }

// AABB returns the corners of the axis aligned bounding box of the geometry.
func (tl *TriList) AABB() (min, max Vec) { return tl.min, tl.max }

// Intersect finds the nearest triangle crossed by the ray starting at pos
// with unit direction dir. The triangle with index ignore is skipped so that
// a particle does not re-cross the interface it is sitting on. ok is false
// if no triangle is hit.
func (tl *TriList) Intersect(
	pos, dir Vec, ignore int,
) (dist float32, tri int, ok bool) {
	ap := &AnchoredPluckerVec{}
	ap.Init(&pos, &dir)

	tri = NoTriangle
	for i := range tl.ts {
		if i == ignore || !tl.pts[i].Crosses(&ap.PluckerVec) {
			continue
		}

		d, dOk := tl.ts[i].Distance(ap)
		if !dOk || d <= isectEps {
			continue
		}
		if !ok || d < dist {
			dist, tri, ok = d, i, true
		}
	}

	return dist, tri, ok
}
