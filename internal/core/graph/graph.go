package graph

import (
	"fmt"

	"github.com/agenthands/ontoalign/internal/core/model"
)

// EntityGraph is the undirected, predicate-labeled view of an ontology.
// Nodes are deduplicated terms; at most one edge joins any unordered pair of
// nodes, so parallel predicates between the same pair collapse onto a single
// edge carrying the last predicate seen. It is immutable once built.
type EntityGraph struct {
	nodes []model.Term
	index map[model.Term]int
	edges []model.Edge
	pairs map[pair]int
	adj   [][]int
}

type pair struct{ lo, hi int }

func newPair(a, b int) pair {
	if a > b {
		a, b = b, a
	}
	return pair{lo: a, hi: b}
}

// Build turns a triple set into an EntityGraph. Every subject and object
// becomes a node, every triple an edge labeled with its predicate.
// Self-loops are kept and no predicate is filtered out.
func Build(triples []model.Triple) (*EntityGraph, error) {
	g := &EntityGraph{
		index: make(map[model.Term]int),
		pairs: make(map[pair]int),
	}

	for i, t := range triples {
		if t.Subject.IsZero() || t.Predicate.IsZero() || t.Object.IsZero() {
			return nil, fmt.Errorf("%w: triple %d is incomplete: %s %s %s",
				model.ErrParse, i, t.Subject, t.Predicate, t.Object)
		}

		s := g.addNode(t.Subject)
		o := g.addNode(t.Object)

		p := newPair(s, o)
		if e, ok := g.pairs[p]; ok {
			g.edges[e].Label = t.Predicate.Value
			continue
		}
		g.pairs[p] = len(g.edges)
		g.edges = append(g.edges, model.Edge{A: t.Subject, B: t.Object, Label: t.Predicate.Value})
		g.adj[s] = append(g.adj[s], o)
		if s != o {
			g.adj[o] = append(g.adj[o], s)
		}
	}

	return g, nil
}

func (g *EntityGraph) addNode(t model.Term) int {
	if i, ok := g.index[t]; ok {
		return i
	}
	i := len(g.nodes)
	g.index[t] = i
	g.nodes = append(g.nodes, t)
	g.adj = append(g.adj, nil)
	return i
}

func (g *EntityGraph) NodeCount() int { return len(g.nodes) }

func (g *EntityGraph) EdgeCount() int { return len(g.edges) }

// Nodes returns the nodes in first-seen order.
func (g *EntityGraph) Nodes() []model.Term {
	out := make([]model.Term, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edges in first-seen order.
func (g *EntityGraph) Edges() []model.Edge {
	out := make([]model.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *EntityGraph) HasNode(t model.Term) bool {
	_, ok := g.index[t]
	return ok
}

// Label returns the predicate of the edge joining a and b, in either direction.
func (g *EntityGraph) Label(a, b model.Term) (string, bool) {
	ia, ok := g.index[a]
	if !ok {
		return "", false
	}
	ib, ok := g.index[b]
	if !ok {
		return "", false
	}
	e, ok := g.pairs[newPair(ia, ib)]
	if !ok {
		return "", false
	}
	return g.edges[e].Label, true
}

func (g *EntityGraph) HasEdge(a, b model.Term) bool {
	_, ok := g.Label(a, b)
	return ok
}

// Neighbors returns the nodes adjacent to t. A self-loop lists t itself.
func (g *EntityGraph) Neighbors(t model.Term) []model.Term {
	i, ok := g.index[t]
	if !ok {
		return nil
	}
	out := make([]model.Term, len(g.adj[i]))
	for k, j := range g.adj[i] {
		out[k] = g.nodes[j]
	}
	return out
}

func (g *EntityGraph) Degree(t model.Term) int {
	i, ok := g.index[t]
	if !ok {
		return 0
	}
	return len(g.adj[i])
}
