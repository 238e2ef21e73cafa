package embedding

import (
	"fmt"

	"github.com/agenthands/ontoalign/internal/core/model"
)

// StaticModel serves precomputed vectors keyed by entity IRI.
type StaticModel struct {
	kind    Kind
	dim     int
	vectors map[string][]float32
}

// NewStaticModel wraps vectors as a Model. All vectors must share one dimension.
func NewStaticModel(kind Kind, vectors map[string][]float32) (*StaticModel, error) {
	m := &StaticModel{kind: kind, vectors: make(map[string][]float32, len(vectors))}
	for iri, v := range vectors {
		if m.dim == 0 {
			m.dim = len(v)
		} else if len(v) != m.dim {
			return nil, fmt.Errorf("vector for %s has %d dimensions, want %d", iri, len(v), m.dim)
		}
		m.vectors[iri] = v
	}
	return m, nil
}

func (m *StaticModel) Kind() Kind { return m.kind }

func (m *StaticModel) Dim() int { return m.dim }

func (m *StaticModel) VectorOf(entity string) ([]float32, error) {
	v, ok := m.vectors[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownEntity, entity)
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, nil
}
