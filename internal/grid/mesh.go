package grid

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// node is a grid point on the unit sphere tagged with its flat index.
type node struct {
	p   [3]float64
	idx int
}

func newNode(lat, lon float64, idx int) node {
	sinLat, cosLat := math.Sincos(lat * deg2rad)
	sinLon, cosLon := math.Sincos(lon * deg2rad)
	return node{p: [3]float64{cosLat * cosLon, cosLat * sinLon, sinLat}, idx: idx}
}

func (n node) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return n.p[d] - c.(node).p[d]
}

func (n node) Dims() int { return 3 }

// Distance is the squared chord length, which orders points like the
// great-circle distance.
func (n node) Distance(c kdtree.Comparable) float64 {
	q := c.(node)
	dx, dy, dz := n.p[0]-q.p[0], n.p[1]-q.p[1], n.p[2]-q.p[2]
	return dx*dx + dy*dy + dz*dz
}

type nodes []node

func (ns nodes) Index(i int) kdtree.Comparable         { return ns[i] }
func (ns nodes) Len() int                              { return len(ns) }
func (ns nodes) Pivot(d kdtree.Dim) int                { return nodePlane{nodes: ns, Dim: d}.Pivot() }
func (ns nodes) Slice(start, end int) kdtree.Interface { return ns[start:end] }

type nodePlane struct {
	kdtree.Dim
	nodes
}

func (p nodePlane) Less(i, j int) bool { return p.nodes[i].p[p.Dim] < p.nodes[j].p[p.Dim] }
func (p nodePlane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p nodePlane) Swap(i, j int)      { p.nodes[i], p.nodes[j] = p.nodes[j], p.nodes[i] }
func (p nodePlane) Slice(start, end int) kdtree.SortSlicer {
	p.nodes = p.nodes[start:end]
	return p
}

// coincident is the squared chord below which two points are the same node,
// about 6 mm on the Earth.
const coincident = 1e-18

// mesh finds the nearest node of a 2-D lat/lon mesh. A query farther from
// its nearest node than that node's farthest mesh neighbour lies outside the
// mesh.
type mesh struct {
	tree  *kdtree.Tree
	reach []float64
}

func newMesh(lat, lon []float64, ny, nx int) *mesh {
	all := make([]node, len(lat))
	pts := make(nodes, 0, len(lat))
	for i := range lat {
		all[i] = newNode(lat[i], lon[i], i)
		if !math.IsNaN(lat[i]) && !math.IsNaN(lon[i]) {
			pts = append(pts, all[i])
		}
	}

	reach := make([]float64, len(lat))
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			k := i*nx + j
			for _, nb := range [][2]int{{i - 1, j}, {i + 1, j}, {i, j - 1}, {i, j + 1}} {
				if nb[0] < 0 || nb[0] >= ny || nb[1] < 0 || nb[1] >= nx {
					continue
				}
				if d := all[k].Distance(all[nb[0]*nx+nb[1]]); d > reach[k] {
					reach[k] = d
				}
			}
		}
	}
	return &mesh{tree: kdtree.New(pts, false), reach: reach}
}

// nearest returns the flat index of the node closest to (lat, lon), the
// squared chord to it, and whether the point lies within the mesh.
func (m *mesh) nearest(lat, lon float64) (int, float64, bool) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return -1, math.Inf(1), false
	}
	c, d := m.tree.Nearest(newNode(lat, lon, -1))
	if c == nil {
		return -1, math.Inf(1), false
	}
	idx := c.(node).idx
	return idx, d, d <= m.reach[idx]*(1+epsilon)+coincident
}
