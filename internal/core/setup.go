package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agenthands/ontoalign/internal/config"
	"github.com/agenthands/ontoalign/internal/core/embedding"
	"github.com/agenthands/ontoalign/internal/core/review"
	"github.com/agenthands/ontoalign/internal/driver"
	"github.com/agenthands/ontoalign/internal/llm"
)

// Components are the long-lived backends an Aligner is built from. Server
// builds one Aligner per request on top of them.
type Components struct {
	Trainer  embedding.Trainer
	Driver   driver.GraphDriver
	Reviewer *review.Reviewer
}

// Close releases the database connection, if any.
func (c *Components) Close(ctx context.Context) error {
	if c.Driver == nil {
		return nil
	}
	return c.Driver.Close(ctx)
}

// EmbeddingOptions maps the [embedding] section onto trainer options.
func EmbeddingOptions(cfg *config.Config) embedding.Options {
	return embedding.Options{
		Dim:          cfg.Embedding.Dim,
		Epochs:       cfg.Embedding.Epochs,
		LearningRate: cfg.Embedding.LearningRate,
		Margin:       cfg.Embedding.Margin,
		Negatives:    cfg.Embedding.Negatives,
		Seed:         cfg.Embedding.Seed,
	}
}

// Setup connects the backends cfg asks for. The LLM provider is optional
// unless review or the lexical model needs it; Memgraph is used only when
// memgraph.uri is set.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}

	llmClient, embedderClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	c := &Components{
		Trainer: embedding.NewBackend(EmbeddingOptions(cfg), embedderClient, logger),
	}

	if cfg.Alignment.Review {
		if llmClient == nil {
			return nil, fmt.Errorf("alignment.review needs llm.provider to be set")
		}
		c.Reviewer = review.NewReviewer(llmClient, cfg.Review.Correspondences)
	}

	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Memgraph: %w", err)
		}
		if err := d.BuildIndices(ctx); err != nil {
			_ = d.Close(ctx)
			return nil, err
		}
		c.Driver = d
	}

	return c, nil
}

// NewAligner builds an Aligner for cfg on top of c.
func (c *Components) NewAligner(cfg *config.Config, logger *slog.Logger) (*Aligner, error) {
	return NewAligner(cfg, c.Trainer, c.Driver, c.Reviewer, logger)
}
