package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gotraj/driver"
	"github.com/phil-mansfield/gotraj/io"
)

func rec(tag uint32, x float32, pe, ce1, ce2 int32) io.TrajectoryRecord {
	return io.TrajectoryRecord{
		X: x, Z: -x, Tag: tag,
		ParentEdge: pe, ChildPrimary: ce1, ChildSecondary: ce2,
	}
}

// A primary that scatters elastically, then inelastically (creating the
// secondary on edge 2), then elastically again before terminating. The
// secondary's tree isn't simulated, so edge 2 has no children here.
func cascade(tag uint32) []io.TrajectoryRecord {
	return []io.TrajectoryRecord{
		rec(tag, 1, 0, 1, 1),
		rec(tag, 2, 1, 3, 2),
		rec(tag, 3, 3, 4, 4),
		rec(tag, 4, 4, driver.NoEdge, driver.NoEdge),
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ce1, ce2 int32
		kind     Kind
	}{
		{1, 1, Elastic},
		{3, 2, Inelastic},
		{driver.NoEdge, driver.NoEdge, Termination},
	}

	for i, test := range tests {
		r := rec(0, 0, 1, test.ce1, test.ce2)
		if kind := Classify(&r); kind != test.kind {
			t.Errorf("%d) Expected %s, got %s.", i, test.kind, kind)
		}
	}
}

func TestBuildTree(t *testing.T) {
	recs := append(cascade(4), cascade(7)...)
	recs = append(recs, rec(7, 5, 2, 5, 5))

	tree, err := BuildTree(recs, 7)
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 5)

	parents := []int{-1, 0, 1, 2, 1}
	kinds := []Kind{Root, Inelastic, Elastic, Termination, Elastic}
	for i, n := range tree.Nodes {
		if n.Parent != parents[i] {
			t.Errorf("%d) Expected parent %d, got %d.", i, parents[i], n.Parent)
		}
		if n.Kind != kinds[i] {
			t.Errorf("%d) Expected %s, got %s.", i, kinds[i], n.Kind)
		}
	}
	assert.True(t, tree.Nodes[4].Secondary)
	assert.False(t, tree.Nodes[2].Secondary)

	assert.Len(t, tree.PrimaryOnly(), 4)
	assert.Equal(t, map[Kind]int{
		Root: 1, Inelastic: 1, Elastic: 2, Termination: 1,
	}, tree.Count())

	assert.Equal(t, []uint32{4, 7}, Tags(recs))
}

func TestBuildTreeErrors(t *testing.T) {
	_, err := BuildTree(cascade(1), 2)
	assert.Error(t, err)

	orphan := append(cascade(1), rec(1, 9, 17, 18, 18))
	_, err = BuildTree(orphan, 1)
	assert.Error(t, err)

	twoRoots := append(cascade(1), rec(1, 9, 0, 20, 20))
	_, err = BuildTree(twoRoots, 1)
	assert.Error(t, err)

	repeated := append(cascade(1), rec(1, 9, 1, 4, 4))
	_, err = BuildTree(repeated, 1)
	assert.Error(t, err)
}

func TestSegments(t *testing.T) {
	tree, err := BuildTree(cascade(0), 0)
	require.NoError(t, err)

	x0, y0, x1, y1 := SideView.Segments(tree)
	assert.Equal(t, []float64{1, 2, 3}, x0)
	assert.Equal(t, []float64{-1, -2, -3}, y0)
	assert.Equal(t, []float64{2, 3, 4}, x1)
	assert.Equal(t, []float64{-2, -3, -4}, y1)

	_, y0, _, _ = TopView.Segments(tree)
	assert.Equal(t, []float64{0, 0, 0}, y0)
}
