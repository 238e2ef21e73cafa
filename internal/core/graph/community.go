package graph

import (
	"sort"

	"github.com/agenthands/ontoalign/internal/core/model"
)

// LabelPropagationDetector groups the nodes of an EntityGraph into
// communities with the Label Propagation Algorithm. It only feeds structure
// reports; matching never looks at communities.
type LabelPropagationDetector struct {
	MaxIterations int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
	}
}

// Detect returns the communities of g with at least two members, each in
// node order, ordered by their first member.
func (d *LabelPropagationDetector) Detect(g *EntityGraph) [][]model.Term {
	if g == nil || g.NodeCount() == 0 {
		return nil
	}

	// Each node starts with its own label.
	labels := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		labels[i] = n.String()
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changeCount := 0

		for u := range g.nodes {
			neighbors := g.adj[u]
			if len(neighbors) == 0 {
				continue
			}

			labelCounts := make(map[string]int)
			maxCount := 0
			for _, v := range neighbors {
				label := labels[v]
				labelCounts[label]++
				if labelCounts[label] > maxCount {
					maxCount = labelCounts[label]
				}
			}

			var candidates []string
			for label, count := range labelCounts {
				if count == maxCount {
					candidates = append(candidates, label)
				}
			}

			// Lexicographically largest wins so runs are reproducible.
			sort.Strings(candidates)
			bestLabel := candidates[len(candidates)-1]

			if labels[u] != bestLabel {
				labels[u] = bestLabel
				changeCount++
			}
		}

		if changeCount == 0 {
			break
		}
	}

	return group(g, labels)
}

// Components returns the connected components of g with at least two members.
func Components(g *EntityGraph) [][]model.Term {
	if g == nil {
		return nil
	}
	visited := make([]bool, len(g.nodes))
	labels := make([]string, len(g.nodes))
	for i := range g.nodes {
		if visited[i] {
			continue
		}
		root := g.nodes[i].String()
		dfs(g, i, root, visited, labels)
	}
	return group(g, labels)
}

func dfs(g *EntityGraph, u int, root string, visited []bool, labels []string) {
	visited[u] = true
	labels[u] = root
	for _, v := range g.adj[u] {
		if !visited[v] {
			dfs(g, v, root, visited, labels)
		}
	}
}

func group(g *EntityGraph, labels []string) [][]model.Term {
	clusters := make(map[string][]model.Term)
	var order []string
	for i, label := range labels {
		if _, ok := clusters[label]; !ok {
			order = append(order, label)
		}
		clusters[label] = append(clusters[label], g.nodes[i])
	}

	var communities [][]model.Term
	for _, label := range order {
		if cluster := clusters[label]; len(cluster) >= 2 {
			communities = append(communities, cluster)
		}
	}
	return communities
}
