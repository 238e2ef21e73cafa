package llm

import (
	"context"
)

// LLMClient generates text. The alignment reviewer is its only user.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient turns text into a vector. Backs the Lexical embedding model.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
