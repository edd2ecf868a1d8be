// Package nn inspects the network structure encoded by a genome.
package nn

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/baldhumanity/neat-pool/neat"
)

// Topology describes the directed graph formed by a genome's enabled genes.
type Topology struct {
	Inputs  int
	Outputs int
	Hidden  int // Hidden neurons touched by an enabled gene.
	Edges   int

	// Cyclic is set when the enabled genes form at least one cycle. The
	// single-pass evaluator then reads stale values along the cycle.
	Cyclic bool
	Cycles [][]int

	// Order is a deterministic topological order of all neurons and Depth
	// the longest path, in edges. Both are only set for acyclic networks;
	// Depth is -1 otherwise.
	Order []int
	Depth int
}

// Analyze builds the genome's connection graph and reports its shape.
func Analyze(g *neat.Genome) Topology {
	t := Topology{Inputs: g.Inputs(), Outputs: g.Outputs(), Depth: -1}
	firstHidden := g.Inputs() + g.Outputs()

	dg := simple.NewDirectedGraph()
	addNode := func(id int) {
		if dg.Node(int64(id)) == nil {
			dg.AddNode(simple.Node(id))
			if id >= firstHidden {
				t.Hidden++
			}
		}
	}
	for id := 0; id < firstHidden; id++ {
		addNode(id)
	}

	for _, gene := range g.Genes {
		if !gene.Enabled {
			continue
		}
		addNode(gene.Input)
		addNode(gene.Output)
		t.Edges++
		if gene.Input == gene.Output {
			// simple graphs reject self edges; a self-link is a cycle of one.
			t.Cyclic = true
			t.Cycles = append(t.Cycles, []int{gene.Input})
			continue
		}
		if !dg.HasEdgeFromTo(int64(gene.Input), int64(gene.Output)) {
			dg.SetEdge(dg.NewEdge(simple.Node(gene.Input), simple.Node(gene.Output)))
		}
	}

	for _, cycle := range topo.DirectedCyclesIn(dg) {
		// The first node is repeated at the end.
		ids := make([]int, 0, len(cycle)-1)
		for _, n := range cycle[:len(cycle)-1] {
			ids = append(ids, int(n.ID()))
		}
		t.Cycles = append(t.Cycles, ids)
		t.Cyclic = true
	}
	if t.Cyclic {
		return t
	}

	sorted, err := topo.SortStabilized(dg, byID)
	if err != nil {
		t.Cyclic = true
		return t
	}

	depth := make(map[int64]int, len(sorted))
	t.Order = make([]int, 0, len(sorted))
	t.Depth = 0
	for _, n := range sorted {
		t.Order = append(t.Order, int(n.ID()))
		d := depth[n.ID()]
		if d > t.Depth {
			t.Depth = d
		}
		to := dg.From(n.ID())
		for to.Next() {
			next := to.Node().ID()
			if d+1 > depth[next] {
				depth[next] = d + 1
			}
		}
	}
	return t
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}
