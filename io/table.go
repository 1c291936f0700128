package io

import (
	"fmt"
	"log"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/gotraj/geom"
	"github.com/phil-mansfield/gotraj/particle"
)

// ReadTriFile reads a triangle file. Each row has the columns
//
//     material_in material_out ax ay az bx by bz cx cy cz
func ReadTriFile(file string) ([]geom.Triangle, error) {
	colIdxs := make([]int, 11)
	for i := range colIdxs { colIdxs[i] = i }
	cols, err := table.ReadTable(file, colIdxs, nil)
	if err != nil { return nil, err }

	n := len(cols[0])
	if n == 0 {
		return nil, fmt.Errorf("Geometry file '%s' contains no triangles.", file)
	}

	ts := make([]geom.Triangle, n)
	for i := range ts {
		t := &ts[i]
		t.MaterialIn, t.MaterialOut = int(cols[0][i]), int(cols[1][i])
		for k := 0; k < 3; k++ {
			t.A[k] = float32(cols[2+k][i])
			t.B[k] = float32(cols[5+k][i])
			t.C[k] = float32(cols[8+k][i])
		}
	}

	return ts, nil
}

// Primary is a primary electron along with the detector pixel it is
// associated with.
type Primary struct {
	particle.Particle
	Tag uint32
	PixelX, PixelY int32
}

// ReadPriFile reads a primary file. Each row has the columns
//
//     x y z dx dy dz energy pixel_x pixel_y
//
// Primaries which start outside the geometry's bounding box or with more
// energy than maxEnergy are dropped with a warning. Tags are assigned in
// file order, starting at zero and counting dropped primaries.
func ReadPriFile(
	file string, geometry *geom.TriList, maxEnergy float32,
) ([]Primary, error) {
	colIdxs := []int{ 0, 1, 2, 3, 4, 5, 6, 7, 8 }
	cols, err := table.ReadTable(file, colIdxs, nil)
	if err != nil { return nil, err }

	min, max := geometry.AABB()

	n := len(cols[0])
	ps := make([]Primary, 0, n)
	outside, tooHot := 0, 0
	for i := 0; i < n; i++ {
		p := Primary{ Tag: uint32(i) }
		for k := 0; k < 3; k++ {
			p.Pos[k] = float32(cols[k][i])
			p.Dir[k] = float32(cols[3+k][i])
		}
		p.KinEnergy = float32(cols[6][i])
		p.PixelX, p.PixelY = int32(cols[7][i]), int32(cols[8][i])

		if !inBox(p.Pos, min, max) {
			outside++
			continue
		} else if p.KinEnergy > maxEnergy {
			tooHot++
			continue
		}
		ps = append(ps, p)
	}

	if outside > 0 {
		log.Printf(
			"Dropped %d primaries in '%s' which start outside the geometry.",
			outside, file,
		)
	}
	if tooHot > 0 {
		log.Printf(
			"Dropped %d primaries in '%s' with energies above %g eV.",
			tooHot, file, maxEnergy,
		)
	}

	return ps, nil
}

func inBox(x, min, max geom.Vec) bool {
	for k := 0; k < 3; k++ {
		if x[k] < min[k] || x[k] > max[k] { return false }
	}
	return true
}
