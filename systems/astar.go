package systems

import (
	"container/heap"
	"math"

	"github.com/pthm-cable/meadow/components"
)

// PathRequest asks for a route for Mover from Start toward Goal.
// MaxLength <= 0 means unbounded.
type PathRequest struct {
	Mover     *components.Organism
	Start     components.Position
	Goal      components.Position
	MaxLength int
}

// Pathfinder runs capacity-aware A* over a NavGrid.
type Pathfinder struct {
	nav    NavGrid
	octile bool

	// Reusable search state. A node belongs to the current search only
	// when its stamp matches.
	nodes  []astarNode
	stamp  int
	seq    int
	openPQ nodeHeap
}

// astarNode is one cell's search record.
type astarNode struct {
	x, y   int
	g      int
	f      float64
	seq    int // Order the node first entered the open set
	parent int // Node index, -1 for the start
	index  int // Heap index, -1 when not open
	stamp  int
	closed bool
}

// nodeHeap implements heap.Interface for the open set. Ties on f go to the
// node that entered the open set first, so results match a left-to-right
// scan of an insertion-ordered list.
type nodeHeap []*astarNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

// NewPathfinder creates a pathfinder over nav. The heuristic comes from the
// grid's config when nav is a *Grid, otherwise squared distance is used.
func NewPathfinder(nav NavGrid) *Pathfinder {
	p := &Pathfinder{
		nav:   nav,
		nodes: make([]astarNode, nav.Width()*nav.Height()),
	}
	if g, ok := nav.(*Grid); ok {
		p.octile = g.cfg.Derived.OctileHeur
	}
	return p
}

// SetOctile switches between the octile heuristic and squared Euclidean
// distance. Squared distance overestimates under unit step costs, so paths
// found with it are not always shortest.
func (p *Pathfinder) SetOctile(on bool) { p.octile = on }

func (p *Pathfinder) heuristic(x, y int, goal components.Position) float64 {
	dx := math.Abs(float64(goal.X - x))
	dy := math.Abs(float64(goal.Y - y))
	if p.octile {
		return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
	}
	return dx*dx + dy*dy
}

func (p *Pathfinder) node(x, y int) (*astarNode, int) {
	id := x*p.nav.Height() + y
	n := &p.nodes[id]
	if n.stamp != p.stamp {
		*n = astarNode{x: x, y: y, parent: -1, index: -1, stamp: p.stamp}
	}
	return n, id
}

// FindPath returns the cells from the step after Start up to the goal, or
// up to the best node reached when the goal is out of reach or the length
// budget runs out. The result is empty when Start equals Goal or nothing
// beyond Start can be reached.
func (p *Pathfinder) FindPath(req PathRequest) []components.Position {
	if req.Start == req.Goal {
		return nil
	}
	if req.Start.X < 0 || req.Start.Y < 0 || req.Start.X >= p.nav.Width() || req.Start.Y >= p.nav.Height() {
		return nil
	}
	size := 0
	if req.Mover != nil {
		size = req.Mover.Size
	}

	p.stamp++
	p.seq = 0
	p.openPQ = p.openPQ[:0]

	start, startID := p.node(req.Start.X, req.Start.Y)
	start.f = p.heuristic(start.x, start.y, req.Goal)
	start.seq = p.seq
	heap.Push(&p.openPQ, start)

	best := -1
	bestH := math.Inf(1)

	for p.openPQ.Len() > 0 {
		cur := heap.Pop(&p.openPQ).(*astarNode)
		cur.closed = true
		curID := cur.x*p.nav.Height() + cur.y

		if cur.x == req.Goal.X && cur.y == req.Goal.Y {
			return p.reconstruct(curID, startID)
		}
		if req.MaxLength > 0 && cur.g >= req.MaxLength {
			return p.reconstruct(curID, startID)
		}
		if curID != startID {
			if h := p.heuristic(cur.x, cur.y, req.Goal); h < bestH {
				best, bestH = curID, h
			}
		}

		for _, d := range components.Compass {
			nx, ny := cur.x+d.DX, cur.y+d.DY
			if p.nav.IsBlocked(nx, ny, size) {
				continue
			}
			n, _ := p.node(nx, ny)
			if n.closed {
				continue
			}
			g := cur.g + 1
			open := n.index >= 0
			if open && g >= n.g {
				continue
			}
			n.parent = curID
			n.g = g
			n.f = float64(g) + p.heuristic(nx, ny, req.Goal)
			if open {
				heap.Fix(&p.openPQ, n.index)
			} else {
				p.seq++
				n.seq = p.seq
				heap.Push(&p.openPQ, n)
			}
		}
	}

	if best < 0 {
		return nil
	}
	return p.reconstruct(best, startID)
}

// reconstruct walks parent links back to the start, which is excluded.
func (p *Pathfinder) reconstruct(endID, startID int) []components.Position {
	var path []components.Position
	for id := endID; id != startID && id >= 0; id = p.nodes[id].parent {
		n := &p.nodes[id]
		path = append(path, components.Position{X: n.x, Y: n.y})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
