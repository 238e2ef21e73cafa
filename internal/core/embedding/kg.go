package embedding

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/agenthands/ontoalign/internal/core/graph"
	"github.com/agenthands/ontoalign/internal/core/model"
)

// scorer is the energy function of a relational embedding model. Lower
// energy means a more plausible (head, relation, tail) fact.
type scorer interface {
	energy(h, r, t, scratch []float64) float64
	// gradients writes dE/dh, dE/dr and dE/dt into gh, gr and gt.
	gradients(h, r, t, gh, gr, gt []float64)
}

type fact struct{ h, r, t int }

// trainKG learns entity and relation vectors from the edges of g with a
// margin ranking loss: for every fact and every sampled corruption of its
// head or tail, max(0, margin + E(fact) - E(corrupted)) is minimised by SGD.
// Entity vectors are kept at unit length. Training is fully determined by
// opts.Seed.
func trainKG(ctx context.Context, g *graph.EntityGraph, kind Kind, s scorer, opts Options) (Model, error) {
	if opts.Dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", opts.Dim)
	}
	if opts.Epochs < 0 {
		return nil, fmt.Errorf("invalid epoch count %d", opts.Epochs)
	}
	negatives := opts.Negatives
	if negatives <= 0 {
		negatives = 1
	}

	nodes := g.Nodes()
	nodeIndex := make(map[model.Term]int, len(nodes))
	for i, n := range nodes {
		nodeIndex[n] = i
	}

	relIndex := make(map[string]int)
	var facts []fact
	for _, e := range g.Edges() {
		r, ok := relIndex[e.Label]
		if !ok {
			r = len(relIndex)
			relIndex[e.Label] = r
		}
		facts = append(facts, fact{h: nodeIndex[e.A], r: r, t: nodeIndex[e.B]})
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	bound := 6 / math.Sqrt(float64(opts.Dim))
	ent := initVectors(rng, len(nodes), opts.Dim, bound)
	rel := initVectors(rng, len(relIndex), opts.Dim, bound)

	gh := make([]float64, opts.Dim)
	gr := make([]float64, opts.Dim)
	gt := make([]float64, opts.Dim)
	scratch := make([]float64, opts.Dim)

	if len(nodes) > 1 {
		for epoch := 0; epoch < opts.Epochs; epoch++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, fi := range rng.Perm(len(facts)) {
				f := facts[fi]
				for n := 0; n < negatives; n++ {
					neg := f
					if rng.Intn(2) == 0 {
						neg.h = rng.Intn(len(nodes))
					} else {
						neg.t = rng.Intn(len(nodes))
					}
					if neg == f {
						continue
					}

					pos := s.energy(ent[f.h], rel[f.r], ent[f.t], scratch)
					corrupt := s.energy(ent[neg.h], rel[neg.r], ent[neg.t], scratch)
					if opts.Margin+pos-corrupt <= 0 {
						continue
					}

					step(s, ent[f.h], rel[f.r], ent[f.t], -opts.LearningRate, gh, gr, gt)
					step(s, ent[neg.h], rel[neg.r], ent[neg.t], opts.LearningRate, gh, gr, gt)
					for _, i := range []int{f.h, f.t, neg.h, neg.t} {
						normalize(ent[i])
					}
				}
			}
		}
	}

	vectors := make(map[model.Term][]float32, len(nodes))
	for i, n := range nodes {
		v := make([]float32, opts.Dim)
		for k, x := range ent[i] {
			v[k] = float32(x)
		}
		vectors[n] = v
	}
	return &kgModel{kind: kind, dim: opts.Dim, vectors: vectors}, nil
}

// step moves h, r and t by alpha times the energy gradient. Gradients are
// taken before any update so aliased h and t see a consistent state.
func step(s scorer, h, r, t []float64, alpha float64, gh, gr, gt []float64) {
	s.gradients(h, r, t, gh, gr, gt)
	floats.AddScaled(h, alpha, gh)
	floats.AddScaled(r, alpha, gr)
	floats.AddScaled(t, alpha, gt)
}

func initVectors(rng *rand.Rand, n, dim int, bound float64) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		v := make([]float64, dim)
		for k := range v {
			v[k] = (rng.Float64()*2 - 1) * bound
		}
		normalize(v)
		out[i] = v
	}
	return out
}

func normalize(v []float64) {
	if n := floats.Norm(v, 2); n > 0 {
		floats.Scale(1/n, v)
	}
}

type kgModel struct {
	kind    Kind
	dim     int
	vectors map[model.Term][]float32
}

func (m *kgModel) Kind() Kind { return m.kind }

func (m *kgModel) Dim() int { return m.dim }

func (m *kgModel) VectorOf(entity string) ([]float32, error) {
	v, ok := m.vectors[model.IRI(entity)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownEntity, entity)
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, nil
}
