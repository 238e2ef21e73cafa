package embedding

import (
	"context"
	"fmt"

	"github.com/agenthands/ontoalign/internal/core/model"
	"github.com/agenthands/ontoalign/internal/llm"
)

// trainLexical embeds each class label with a text embedding service. No
// graph structure is used, so two ontologies embedded by the same service
// do share a space; the matcher does not rely on that.
func trainLexical(ctx context.Context, classes []model.Entity, embedder llm.EmbedderClient) (Model, error) {
	m := &StaticModel{kind: Lexical, vectors: make(map[string][]float32, len(classes))}
	for _, c := range classes {
		text := c.Label
		if text == "" {
			text = c.IRI
		}
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed %q: %w", text, err)
		}
		if m.dim == 0 {
			m.dim = len(vec)
		} else if len(vec) != m.dim {
			return nil, fmt.Errorf("embed %q: got %d dimensions, want %d", text, len(vec), m.dim)
		}
		m.vectors[c.IRI] = vec
	}
	return m, nil
}
