package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agenthands/ontoalign/internal/core/graph"
	"github.com/agenthands/ontoalign/internal/core/model"
	"github.com/agenthands/ontoalign/internal/llm"
)

// TrainInput is everything a trainer may look at for one ontology.
type TrainInput struct {
	Name    string
	Graph   *graph.EntityGraph
	Classes []model.Entity
}

// Model maps the entities of one ontology to fixed-dimension vectors.
// Vectors of two independently trained models share no coordinate system;
// only the similarity function relates them.
type Model interface {
	Kind() Kind
	Dim() int
	// VectorOf returns the vector of an entity IRI, or ErrUnknownEntity.
	VectorOf(entity string) ([]float32, error)
}

// Trainer produces a Model for an ontology.
type Trainer interface {
	Train(ctx context.Context, in *TrainInput, kind Kind) (Model, error)
}

// Options tunes the knowledge-graph trainers.
type Options struct {
	Dim          int
	Epochs       int
	LearningRate float64
	Margin       float64
	Negatives    int
	Seed         int64
}

func DefaultOptions() Options {
	return Options{
		Dim:          50,
		Epochs:       100,
		LearningRate: 0.01,
		Margin:       1.0,
		Negatives:    1,
		Seed:         42,
	}
}

// ErrNoEmbedder is returned when a Lexical model is requested without a
// text embedding client.
var ErrNoEmbedder = errors.New("lexical model requires an embedding client")

// Backend dispatches each Kind to its training routine.
type Backend struct {
	Options  Options
	Embedder llm.EmbedderClient
	Logger   *slog.Logger
}

func NewBackend(opts Options, embedder llm.EmbedderClient, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		Options:  opts,
		Embedder: embedder,
		Logger:   logger,
	}
}

func (b *Backend) Train(ctx context.Context, in *TrainInput, kind Kind) (Model, error) {
	if in == nil || in.Graph == nil {
		return nil, fmt.Errorf("train %s: missing graph", kind)
	}

	b.Logger.Debug("training embedding model",
		"ontology", in.Name, "kind", kind.String(),
		"nodes", in.Graph.NodeCount(), "edges", in.Graph.EdgeCount())

	switch kind {
	case TransE:
		return trainKG(ctx, in.Graph, TransE, translational{}, b.Options)
	case DistMult:
		return trainKG(ctx, in.Graph, DistMult, bilinear{}, b.Options)
	case Lexical:
		if b.Embedder == nil {
			return nil, ErrNoEmbedder
		}
		return trainLexical(ctx, in.Classes, b.Embedder)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// TrainSequence trains every kind in order and returns only the last model.
// Earlier models are discarded; callers that list several kinds get the
// vectors of the final one.
func TrainSequence(ctx context.Context, t Trainer, in *TrainInput, kinds []Kind, logger *slog.Logger) (Model, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: no model kind given", ErrUnknownKind)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var last Model
	for i, k := range kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKind, k)
		}
		m, err := t.Train(ctx, in, k)
		if err != nil {
			return nil, fmt.Errorf("train %s on %s: %w", k, in.Name, err)
		}
		if last != nil {
			logger.Info("discarding earlier model", "ontology", in.Name, "discarded", last.Kind().String(), "kept", k.String())
		}
		last = m
		logger.Debug("model trained", "ontology", in.Name, "kind", k.String(), "step", i+1, "of", len(kinds))
	}
	return last, nil
}

// Vectors fetches the vectors of entities in their given order.
func Vectors(m Model, entities []model.Entity) ([][]float32, error) {
	out := make([][]float32, len(entities))
	for i, e := range entities {
		v, err := m.VectorOf(e.IRI)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
