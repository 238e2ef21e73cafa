package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/ontoalign/internal/config"
	"github.com/agenthands/ontoalign/internal/core/embedding"
	"github.com/agenthands/ontoalign/internal/core/eval"
	"github.com/agenthands/ontoalign/internal/core/model"
	"github.com/agenthands/ontoalign/internal/core/review"
	"github.com/agenthands/ontoalign/internal/driver"
	"github.com/agenthands/ontoalign/internal/ontology"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func classOntology(name string, iris ...string) *ontology.Ontology {
	var triples []model.Triple
	for _, iri := range iris {
		triples = append(triples, model.Triple{
			Subject:   model.IRI(iri),
			Predicate: model.IRI(ontology.RDFType),
			Object:    model.IRI(ontology.OWLClass),
		})
	}
	return ontology.New(name, triples)
}

func newTestAligner(t *testing.T, trainer embedding.Trainer, drv driver.GraphDriver, reviewer *review.Reviewer) *Aligner {
	t.Helper()
	a, err := NewAligner(config.Default(), trainer, drv, reviewer, quiet)
	require.NoError(t, err)

	uuidCounter := 0
	a.UUIDGenerator = func() string {
		uuidCounter++
		return fmt.Sprintf("uuid-%d", uuidCounter)
	}
	a.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return a
}

func alignPair(t *testing.T, a *Aligner, src, tgt *ontology.Ontology) *model.AlignmentResult {
	t.Helper()
	ctx := context.Background()
	s, err := a.PrepareOntology(ctx, "src.owl", src)
	require.NoError(t, err)
	g, err := a.PrepareOntology(ctx, "tgt.owl", tgt)
	require.NoError(t, err)
	res, err := a.AlignSides(ctx, s, g)
	require.NoError(t, err)
	return res
}

func TestAlign_SingleIdenticalPair(t *testing.T) {
	trainer := &StaticTrainer{Vectors: map[string][]float32{
		"http://a#Paper": {1, 2, 3},
		"http://b#Paper": {1, 2, 3},
	}}
	a := newTestAligner(t, trainer, nil, nil)

	res := alignPair(t, a, classOntology("a", "http://a#Paper"), classOntology("b", "http://b#Paper"))

	require.Len(t, res.Matches, 1)
	assert.Equal(t, model.Correspondence{Source: 0, Target: 0}, res.Matches[0].Correspondence)
	assert.Equal(t, "http://a#Paper", res.Matches[0].SourceIRI)
	assert.Equal(t, "Paper", res.Matches[0].TargetLabel)
	assert.Equal(t, "Accuracy: 1.00\nRecall: 1.00\nF-measure: 1.00\n", eval.Report(res.Metrics))
	assert.Equal(t, "uuid-1", res.RunID)
	assert.Equal(t, 0.8, res.Threshold)

	// Both kinds are trained for each side; the last one is kept.
	assert.Equal(t, []embedding.Kind{embedding.TransE, embedding.DistMult, embedding.TransE, embedding.DistMult}, trainer.Calls)
	assert.Equal(t, "DistMult", res.Source.ModelKind)
	assert.Equal(t, 3, res.Source.Dim)
}

func TestAlign_ManyToMany(t *testing.T) {
	trainer := &StaticTrainer{Vectors: map[string][]float32{
		"http://a#A": {1, 0},
		"http://a#B": {0, 1},
		"http://b#X": {1, 0.1},
		"http://b#Y": {1, 0},
	}}
	a := newTestAligner(t, trainer, nil, nil)

	res := alignPair(t, a, classOntology("a", "http://a#A", "http://a#B"), classOntology("b", "http://b#X", "http://b#Y"))

	assert.Equal(t, []model.Correspondence{{Source: 0, Target: 0}, {Source: 0, Target: 1}}, res.Correspondences())
	assert.InDelta(t, 1.0, res.Metrics.Accuracy, 1e-9)
	assert.Equal(t, 0, res.Metrics.FalsePositives)
}

func TestAlign_NoMatchesLeavesFMeasureUndefined(t *testing.T) {
	trainer := &StaticTrainer{Vectors: map[string][]float32{
		"http://a#A": {1, 0},
		"http://b#B": {0, 1},
	}}
	a := newTestAligner(t, trainer, nil, nil)

	res := alignPair(t, a, classOntology("a", "http://a#A"), classOntology("b", "http://b#B"))

	assert.Empty(t, res.Matches)
	assert.False(t, res.Metrics.Defined)
	assert.Equal(t, []string{eval.MetricFMeasure}, res.Metrics.Undefined)
}

func TestAlign_EmptyOntology(t *testing.T) {
	trainer := &StaticTrainer{Vectors: map[string][]float32{"http://b#B": {0, 1}}}
	a := newTestAligner(t, trainer, nil, nil)

	res := alignPair(t, a, classOntology("a"), classOntology("b", "http://b#B"))

	assert.Empty(t, res.Matches)
	assert.Contains(t, res.Metrics.Undefined, eval.MetricAccuracy)
}

func TestAlign_Persist(t *testing.T) {
	trainer := &StaticTrainer{Vectors: map[string][]float32{
		"http://a#Paper": {1, 0},
		"http://b#Paper": {1, 0},
	}}
	mockDriver := &MockDriver{}
	a := newTestAligner(t, trainer, mockDriver, nil)

	res := alignPair(t, a, classOntology("a", "http://a#Paper"), classOntology("b", "http://b#Paper"))

	onts := mockDriver.paramsOf(driver.SaveOntologyQuery)
	require.Len(t, onts, 2)
	assert.Equal(t, "uuid-2", onts[0]["uuid"])
	assert.Equal(t, "source", onts[0]["role"])
	assert.Equal(t, "target", onts[1]["role"])
	assert.Equal(t, res.RunID, onts[1]["run_uuid"])

	entities := mockDriver.paramsOf(driver.SaveEntitiesQuery)
	require.Len(t, entities, 2)
	rows := entities[0]["rows"].([]map[string]interface{})
	require.Len(t, rows, 2, "class node and owl:Class node")
	assert.Equal(t, "<http://a#Paper>", rows[0]["key"])
	assert.Equal(t, true, rows[0]["is_class"])
	assert.Equal(t, 0, rows[0]["class_index"])
	assert.Equal(t, false, rows[1]["is_class"])
	assert.Equal(t, -1, rows[1]["class_index"])

	triples := mockDriver.paramsOf(driver.SaveTriplesQuery)
	require.Len(t, triples, 2)
	tripleRows := triples[0]["rows"].([]map[string]interface{})
	require.Len(t, tripleRows, 1)
	assert.Equal(t, ontology.RDFType, tripleRows[0]["predicate"])

	runs := mockDriver.paramsOf(driver.SaveAlignmentRunQuery)
	require.Len(t, runs, 1)
	assert.Equal(t, "uuid-1", runs[0]["uuid"])
	assert.Equal(t, "uuid-2", runs[0]["source_uuid"])
	assert.Equal(t, "uuid-3", runs[0]["target_uuid"])
	assert.Equal(t, true, runs[0]["defined"])

	corrs := mockDriver.paramsOf(driver.SaveCorrespondencesQuery)
	require.Len(t, corrs, 1)
	corrRows := corrs[0]["rows"].([]map[string]interface{})
	require.Len(t, corrRows, 1)
	assert.Equal(t, "<http://b#Paper>", corrRows[0]["target_key"])
}

func TestAlign_PersistError(t *testing.T) {
	trainer := &StaticTrainer{Vectors: map[string][]float32{"http://a#A": {1}, "http://b#A": {1}}}
	a := newTestAligner(t, trainer, &MockDriver{Err: errors.New("connection refused")}, nil)

	ctx := context.Background()
	s, err := a.PrepareOntology(ctx, "", classOntology("a", "http://a#A"))
	require.NoError(t, err)
	g, err := a.PrepareOntology(ctx, "", classOntology("b", "http://b#A"))
	require.NoError(t, err)

	_, err = a.AlignSides(ctx, s, g)
	assert.ErrorContains(t, err, "connection refused")
}

func TestAlign_Review(t *testing.T) {
	trainer := &StaticTrainer{Vectors: map[string][]float32{"http://a#A": {1}, "http://b#A": {1}}}
	mockLLM := &MockLLM{Response: `{"verdicts": [{"index": 0, "equivalent": false, "confidence": 0.7, "reason": "homonym"}]}`}
	a := newTestAligner(t, trainer, nil, review.NewReviewer(mockLLM, ""))

	res := alignPair(t, a, classOntology("a", "http://a#A"), classOntology("b", "http://b#A"))

	require.Len(t, res.Matches, 1)
	require.NotNil(t, res.Matches[0].Verdict)
	assert.False(t, res.Matches[0].Verdict.Equivalent)
	// Verdicts are advisory.
	assert.InDelta(t, 1.0, res.Metrics.Accuracy, 1e-9)
}

func TestAlign_ReviewFailureIsNotFatal(t *testing.T) {
	trainer := &StaticTrainer{Vectors: map[string][]float32{"http://a#A": {1}, "http://b#A": {1}}}
	a := newTestAligner(t, trainer, nil, review.NewReviewer(&MockLLM{Err: errors.New("rate limited")}, ""))

	res := alignPair(t, a, classOntology("a", "http://a#A"), classOntology("b", "http://b#A"))

	require.Len(t, res.Matches, 1)
	assert.Nil(t, res.Matches[0].Verdict)
}

func TestAlign_MissingVector(t *testing.T) {
	trainer := &StaticTrainer{Vectors: map[string][]float32{"http://a#A": {1}}}
	a := newTestAligner(t, trainer, nil, nil)

	_, err := a.PrepareOntology(context.Background(), "", classOntology("a", "http://a#A", "http://a#B"))
	assert.ErrorIs(t, err, model.ErrUnknownEntity)
}

func TestNewAligner_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Alignment.Kinds = []string{"transe", "rescal"}
	_, err := NewAligner(cfg, &StaticTrainer{}, nil, nil, quiet)
	assert.ErrorIs(t, err, embedding.ErrUnknownKind)

	cfg = config.Default()
	cfg.Embedding.Dim = 0
	_, err = NewAligner(cfg, &StaticTrainer{}, nil, nil, quiet)
	assert.Error(t, err)
}

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Embedding.Dim = 16
	cfg.Embedding.Epochs = 30
	cfg.Concurrency.Pipelines = 2
	cfg.Concurrency.MatchWorkers = 4
	return cfg
}

func newBackend(cfg *config.Config) *embedding.Backend {
	return embedding.NewBackend(EmbeddingOptions(cfg), nil, quiet)
}

func TestAlign_Files(t *testing.T) {
	cfg := smallConfig()
	a, err := NewAligner(cfg, newBackend(cfg), nil, nil, quiet)
	require.NoError(t, err)

	// Same file on both sides with a fixed seed: every class meets itself.
	res, err := a.Align(context.Background(), "../../testdata/cmt.owl", "../../testdata/cmt.owl")
	require.NoError(t, err)

	assert.Equal(t, 7, res.Source.Classes)
	assert.Equal(t, "DistMult", res.Target.ModelKind)
	assert.Equal(t, 16, res.Target.Dim)
	for i := 0; i < 7; i++ {
		assert.Contains(t, res.Correspondences(), model.Correspondence{Source: i, Target: i})
	}
	for _, m := range res.Matches {
		assert.GreaterOrEqual(t, m.Similarity, 0.8)
	}
}

func TestAlign_FilesDeterministic(t *testing.T) {
	cfg := smallConfig()
	a, err := NewAligner(cfg, newBackend(cfg), nil, nil, quiet)
	require.NoError(t, err)

	first, err := a.Align(context.Background(), "../../testdata/cmt.owl", "../../testdata/ekaw.owl")
	require.NoError(t, err)
	second, err := a.Align(context.Background(), "../../testdata/cmt.owl", "../../testdata/ekaw.owl")
	require.NoError(t, err)

	assert.Equal(t, first.Correspondences(), second.Correspondences())
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, 8, first.Target.Classes)
}

func TestAlign_MissingFile(t *testing.T) {
	cfg := smallConfig()
	a, err := NewAligner(cfg, newBackend(cfg), nil, nil, quiet)
	require.NoError(t, err)

	_, err = a.Align(context.Background(), "../../testdata/cmt.owl", "../../testdata/missing.owl")
	assert.Error(t, err)
}

func TestSetup_NoBackends(t *testing.T) {
	c, err := Setup(context.Background(), config.Default(), quiet)
	require.NoError(t, err)
	assert.Nil(t, c.Driver)
	assert.Nil(t, c.Reviewer)
	assert.NoError(t, c.Close(context.Background()))

	a, err := c.NewAligner(config.Default(), quiet)
	require.NoError(t, err)
	assert.Equal(t, []embedding.Kind{embedding.TransE, embedding.DistMult}, a.Kinds)
}

func TestSetup_ReviewNeedsProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Alignment.Review = true
	_, err := Setup(context.Background(), cfg, quiet)
	assert.ErrorContains(t, err, "llm.provider")
}

func TestSetup_ReviewWithProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Alignment.Review = true
	cfg.LLM = config.LLMConfig{Provider: "openai", APIKey: "test", Model: "gpt-4o-mini"}
	c, err := Setup(context.Background(), cfg, quiet)
	require.NoError(t, err)
	assert.NotNil(t, c.Reviewer)
}
