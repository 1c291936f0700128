package plot

import (
	"fmt"

	plt "github.com/phil-mansfield/pyplot"
)

// Projection selects the two coordinates that a tree is drawn in.
type Projection struct {
	X, Y int
}

var (
	// SideView looks along the y axis, so that the surface at z = 0 is a
	// horizontal line.
	SideView = Projection{ 0, 2 }
	TopView  = Projection{ 0, 1 }

	axisNames = []string{ "X", "Y", "Z" }
)

func (p Projection) coords(n *Node) (x, y float64) {
	xs := [3]float32{ n.X, n.Y, n.Z }
	return float64(xs[p.X]), float64(xs[p.Y])
}

// Segments returns the start and end points of every edge in the tree.
func (p Projection) Segments(tree *Tree) (x0, y0, x1, y1 []float64) {
	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		if n.Parent < 0 { continue }
		px, py := p.coords(&tree.Nodes[n.Parent])
		cx, cy := p.coords(n)
		x0, y0 = append(x0, px), append(y0, py)
		x1, y1 = append(x1, cx), append(y1, cy)
	}
	return x0, y0, x1, y1
}

// Render draws a tree and saves it to fname. If fname is empty, the figure is
// shown interactively instead. Nothing is drawn until plt.Execute is called.
func Render(tree *Tree, p Projection, fname string) {
	plt.Figure(plt.FigSize(8, 8))

	x0, y0, x1, y1 := p.Segments(tree)
	for i := range x0 {
		plt.Plot(
			[]float64{ x0[i], x1[i] }, []float64{ y0[i], y1[i] },
			plt.C("teal"), plt.LW(1),
		)
	}

	xMin, _ := p.coords(&tree.Nodes[0])
	xMax := xMin
	for _, kind := range []Kind{ Elastic, Inelastic, Termination, Root } {
		xs, ys := []float64{}, []float64{}
		for i := range tree.Nodes {
			if tree.Nodes[i].Kind != kind { continue }
			x, y := p.coords(&tree.Nodes[i])
			xs, ys = append(xs, x), append(ys, y)
			if x < xMin { xMin = x }
			if x > xMax { xMax = x }
		}
		if len(xs) == 0 { continue }

		marker := "."
		if kind == Root { marker = "o" }
		plt.Plot(xs, ys, marker, plt.C(kind.Color()))
	}

	if p.Y == 2 {
		plt.Plot(
			[]float64{ xMin, xMax }, []float64{ 0, 0 },
			plt.C("saddlebrown"), plt.LW(2),
		)
	}

	plt.Title(fmt.Sprintf("Primary %d", tree.Tag))
	plt.XLabel(axisNames[p.X] + " [nm]", plt.FontSize(16))
	plt.YLabel(axisNames[p.Y] + " [nm]", plt.FontSize(16))

	if fname == "" {
		plt.Show()
	} else {
		plt.SaveFig(fname)
	}
}
