/*package plot rebuilds the event trees of trajectory output files and renders
them with matplotlib.

Every event record connects the edge that led to it (its parent edge) to the
edges leaving it. Parent edge 0 is the first path of a primary electron, so
the event on it is the root of that primary's tree.
*/
package plot

import (
	"fmt"

	"github.com/phil-mansfield/gotraj/driver"
	"github.com/phil-mansfield/gotraj/io"
)

type Kind int

const (
	Root Kind = iota
	Elastic
	Inelastic
	Termination
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "Root"
	case Elastic:
		return "Elastic"
	case Inelastic:
		return "Inelastic"
	case Termination:
		return "Termination"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Color returns the matplotlib color that events of this kind are drawn
// with.
func (k Kind) Color() string {
	switch k {
	case Root:
		return "lime"
	case Elastic:
		return "mediumturquoise"
	case Inelastic:
		return "orange"
	}
	return "red"
}

// Classify returns the kind of event a record describes, ignoring whether
// it is a root.
func Classify(rec *io.TrajectoryRecord) Kind {
	switch {
	case rec.ChildPrimary == driver.NoEdge:
		return Termination
	case rec.ChildPrimary == rec.ChildSecondary:
		return Elastic
	default:
		return Inelastic
	}
}

type Node struct {
	io.TrajectoryRecord
	Kind Kind
	// Parent is the index of the parent node in its Tree or -1 for the
	// root.
	Parent int
	// Secondary is true if the node was reached through its parent's
	// secondary edge.
	Secondary bool
}

type Tree struct {
	Tag   uint32
	Nodes []Node
}

// Tags returns the distinct primary tags of a list of records in the order
// they first appear.
func Tags(recs []io.TrajectoryRecord) []uint32 {
	seen := map[uint32]bool{}
	tags := []uint32{}
	for i := range recs {
		if !seen[recs[i].Tag] {
			seen[recs[i].Tag] = true
			tags = append(tags, recs[i].Tag)
		}
	}
	return tags
}

// BuildTree links together the records of a single primary electron.
func BuildTree(recs []io.TrajectoryRecord, tag uint32) (*Tree, error) {
	tree := &Tree{ Tag: tag }
	for i := range recs {
		if recs[i].Tag == tag {
			tree.Nodes = append(tree.Nodes, Node{
				TrajectoryRecord: recs[i], Parent: -1,
			})
		}
	}
	if len(tree.Nodes) == 0 {
		return nil, fmt.Errorf("No records have the primary tag %d.", tag)
	}

	// Edges leaving each node. The secondary edge is only distinct for
	// inelastic events.
	primaryEdges := map[int32]int{}
	secondaryEdges := map[int32]int{}
	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		n.Kind = Classify(&n.TrajectoryRecord)
		if n.Kind == Termination { continue }

		if _, ok := primaryEdges[n.ChildPrimary]; ok {
			return nil, fmt.Errorf(
				"Edge %d of primary %d leaves two events.", n.ChildPrimary, tag,
			)
		}
		primaryEdges[n.ChildPrimary] = i
		if n.Kind == Inelastic { secondaryEdges[n.ChildSecondary] = i }
	}

	roots := 0
	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		if n.ParentEdge == 0 {
			roots++
			n.Kind = Root
			continue
		}

		if j, ok := primaryEdges[n.ParentEdge]; ok {
			n.Parent = j
		} else if j, ok := secondaryEdges[n.ParentEdge]; ok {
			n.Parent, n.Secondary = j, true
		} else {
			return nil, fmt.Errorf(
				"Event %d of primary %d has parent edge %d, but no event "+
					"leaves along that edge.", i, tag, n.ParentEdge,
			)
		}
	}

	if roots != 1 {
		return nil, fmt.Errorf(
			"Primary %d has %d root events instead of 1.", tag, roots,
		)
	}

	return tree, nil
}

// PrimaryOnly returns the nodes of the tree which lie on the primary
// electron's own path, in order.
func (tree *Tree) PrimaryOnly() []Node {
	out := []Node{}
	for i := range tree.Nodes {
		j := i
		for j >= 0 && !tree.Nodes[j].Secondary {
			j = tree.Nodes[j].Parent
		}
		if j < 0 { out = append(out, tree.Nodes[i]) }
	}
	return out
}

// Count returns the number of nodes of each kind.
func (tree *Tree) Count() map[Kind]int {
	counts := map[Kind]int{}
	for i := range tree.Nodes { counts[tree.Nodes[i].Kind]++ }
	return counts
}
