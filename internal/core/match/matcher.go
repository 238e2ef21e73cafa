package match

import (
	"errors"
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/ontoalign/internal/core/model"
)

// ErrDimensionMismatch is returned when source and target vectors differ in length.
var ErrDimensionMismatch = errors.New("embedding dimensions differ")

// ErrNonFinite is returned when a vector holds NaN or Inf, as a diverged
// training run leaves behind.
var ErrNonFinite = errors.New("embedding is not finite")

// Scored is a correspondence with the similarity that produced it.
type Scored struct {
	model.Correspondence
	Similarity float64
}

// Matcher compares every source vector with every target vector and keeps
// the pairs whose cosine similarity reaches Threshold. The result is a
// many-to-many relation: nothing forces one-to-one alignment, and an entity
// may match any number of counterparts.
type Matcher struct {
	Threshold float64
	// Workers splits the source rows across goroutines. Output order is the
	// same as with a single worker.
	Workers int
}

func NewMatcher(threshold float64) *Matcher {
	return &Matcher{Threshold: threshold, Workers: 1}
}

// Match returns the (i, j) pairs with sim(source[i], target[j]) >= Threshold
// in row-major order.
func (m *Matcher) Match(source, target [][]float32) ([]model.Correspondence, error) {
	scored, err := m.MatchScored(source, target)
	if err != nil {
		return nil, err
	}
	out := make([]model.Correspondence, len(scored))
	for i, s := range scored {
		out[i] = s.Correspondence
	}
	return out, nil
}

// MatchScored is Match keeping each pair's similarity.
func (m *Matcher) MatchScored(source, target [][]float32) ([]Scored, error) {
	if len(source) == 0 || len(target) == 0 {
		return nil, nil
	}
	dim := len(source[0])
	for _, vs := range [][][]float32{source, target} {
		for _, v := range vs {
			if len(v) != dim {
				return nil, fmt.Errorf("%w: %d and %d", ErrDimensionMismatch, dim, len(v))
			}
		}
	}

	srcNorms := norms(source)
	tgtNorms := norms(target)

	rows := make([][]Scored, len(source))
	scan := func(i int) error {
		for j := range target {
			sim := cosine(source[i], target[j], srcNorms[i], tgtNorms[j])
			if math.IsNaN(sim) {
				return fmt.Errorf("%w: source %d, target %d", ErrNonFinite, i, j)
			}
			if sim >= m.Threshold {
				rows[i] = append(rows[i], Scored{
					Correspondence: model.Correspondence{Source: i, Target: j},
					Similarity:     sim,
				})
			}
		}
		return nil
	}

	if m.Workers <= 1 {
		for i := range source {
			if err := scan(i); err != nil {
				return nil, err
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(m.Workers)
		for i := range source {
			i := i
			g.Go(func() error { return scan(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var out []Scored
	for _, r := range rows {
		out = append(out, r...)
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. A zero vector
// has similarity 0 with everything.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	return cosine(a, b, norm(a), norm(b))
}

func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	sim := float64(vek32.Dot(a, b)) / (na * nb)
	return math.Max(-1, math.Min(1, sim))
}

func norm(v []float32) float64 {
	if len(v) == 0 {
		return 0
	}
	return math.Sqrt(float64(vek32.Dot(v, v)))
}

func norms(vs [][]float32) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = norm(v)
	}
	return out
}
