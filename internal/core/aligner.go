package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/ontoalign/internal/config"
	"github.com/agenthands/ontoalign/internal/core/embedding"
	"github.com/agenthands/ontoalign/internal/core/eval"
	"github.com/agenthands/ontoalign/internal/core/graph"
	"github.com/agenthands/ontoalign/internal/core/match"
	"github.com/agenthands/ontoalign/internal/core/model"
	"github.com/agenthands/ontoalign/internal/core/review"
	"github.com/agenthands/ontoalign/internal/driver"
	"github.com/agenthands/ontoalign/internal/ontology"
)

// Side is one ontology taken through graph building and training.
type Side struct {
	Path     string
	Ontology *ontology.Ontology
	Graph    *graph.EntityGraph
	Classes  []model.Entity
	Model    embedding.Model
	Vectors  [][]float32
}

func (s *Side) Summary() model.OntologySummary {
	sum := model.OntologySummary{
		Path:    s.Path,
		Classes: len(s.Classes),
	}
	if s.Graph != nil {
		sum.Nodes = s.Graph.NodeCount()
		sum.Edges = s.Graph.EdgeCount()
	}
	if s.Model != nil {
		sum.ModelKind = s.Model.Kind().String()
		sum.Dim = s.Model.Dim()
	}
	return sum
}

// Aligner runs the whole pipeline for an ontology pair. Driver and Reviewer
// are optional.
type Aligner struct {
	Driver    driver.GraphDriver
	Trainer   embedding.Trainer
	Kinds     []embedding.Kind
	Matcher   *match.Matcher
	Reviewer  *review.Reviewer
	Pipelines int
	Logger    *slog.Logger

	UUIDGenerator func() string
	Now           func() time.Time
}

func NewAligner(cfg *config.Config, trainer embedding.Trainer, drv driver.GraphDriver, reviewer *review.Reviewer, logger *slog.Logger) (*Aligner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kinds, err := embedding.ParseKinds(cfg.Alignment.Kinds)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := match.NewMatcher(cfg.Alignment.Threshold)
	m.Workers = cfg.Concurrency.MatchWorkers

	return &Aligner{
		Driver:        drv,
		Trainer:       trainer,
		Kinds:         kinds,
		Matcher:       m,
		Reviewer:      reviewer,
		Pipelines:     cfg.Concurrency.Pipelines,
		Logger:        logger,
		UUIDGenerator: func() string { return uuid.New().String() },
		Now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// Prepare loads the ontology at path and trains its model.
func (a *Aligner) Prepare(ctx context.Context, path string) (*Side, error) {
	ont, err := ontology.Load(path)
	if err != nil {
		return nil, err
	}
	return a.PrepareOntology(ctx, path, ont)
}

// PrepareOntology builds the graph of an already parsed ontology, trains the
// configured kinds in order and fetches the class vectors of the last model.
func (a *Aligner) PrepareOntology(ctx context.Context, path string, ont *ontology.Ontology) (*Side, error) {
	g, err := graph.Build(ont.Triples())
	if err != nil {
		return nil, fmt.Errorf("build graph of %s: %w", ont.Name, err)
	}

	side := &Side{
		Path:     path,
		Ontology: ont,
		Graph:    g,
		Classes:  ont.Classes(),
	}
	a.Logger.Info("ontology loaded", "ontology", ont.Name, "classes", len(side.Classes),
		"nodes", g.NodeCount(), "edges", g.EdgeCount())

	side.Model, err = embedding.TrainSequence(ctx, a.Trainer, &embedding.TrainInput{
		Name:    ont.Name,
		Graph:   g,
		Classes: side.Classes,
	}, a.Kinds, a.Logger)
	if err != nil {
		return nil, err
	}

	side.Vectors, err = embedding.Vectors(side.Model, side.Classes)
	if err != nil {
		return nil, fmt.Errorf("vectors of %s: %w", ont.Name, err)
	}
	return side, nil
}

// Align loads both files and aligns them.
func (a *Aligner) Align(ctx context.Context, sourcePath, targetPath string) (*model.AlignmentResult, error) {
	var src, tgt *Side

	if a.Pipelines > 1 {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			var err error
			src, err = a.Prepare(egCtx, sourcePath)
			return err
		})
		eg.Go(func() error {
			var err error
			tgt, err = a.Prepare(egCtx, targetPath)
			return err
		})
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		var err error
		if src, err = a.Prepare(ctx, sourcePath); err != nil {
			return nil, err
		}
		if tgt, err = a.Prepare(ctx, targetPath); err != nil {
			return nil, err
		}
	}

	return a.AlignSides(ctx, src, tgt)
}

// AlignSides matches two prepared sides, scores the result and, when
// configured, reviews and persists it. Undefined metrics are reported in the
// result rather than returned as an error.
func (a *Aligner) AlignSides(ctx context.Context, src, tgt *Side) (*model.AlignmentResult, error) {
	scored, err := a.Matcher.MatchScored(src.Vectors, tgt.Vectors)
	if err != nil {
		return nil, err
	}

	result := &model.AlignmentResult{
		RunID:     a.UUIDGenerator(),
		CreatedAt: a.Now(),
		Threshold: a.Matcher.Threshold,
		Source:    src.Summary(),
		Target:    tgt.Summary(),
		Matches:   make([]model.Match, 0, len(scored)),
	}
	for _, s := range scored {
		result.Matches = append(result.Matches, model.Match{
			Correspondence: s.Correspondence,
			SourceIRI:      src.Classes[s.Source].IRI,
			TargetIRI:      tgt.Classes[s.Target].IRI,
			SourceLabel:    src.Classes[s.Source].Label,
			TargetLabel:    tgt.Classes[s.Target].Label,
			Similarity:     s.Similarity,
		})
	}

	result.Metrics, err = eval.Evaluate(len(result.Matches), len(src.Classes), len(tgt.Classes))
	if err != nil {
		if !errors.Is(err, model.ErrUndefinedMetric) {
			return nil, err
		}
		a.Logger.Warn("metrics partly undefined", "run", result.RunID, "error", err)
	}

	a.Logger.Info("alignment finished", "run", result.RunID, "matches", len(result.Matches),
		"source_classes", len(src.Classes), "target_classes", len(tgt.Classes))

	if a.Reviewer != nil && len(result.Matches) > 0 {
		reviewed, err := a.Reviewer.Review(ctx, result.Matches)
		if err != nil {
			a.Logger.Warn("review skipped", "run", result.RunID, "error", err)
		} else {
			result.Matches = reviewed
		}
	}

	if a.Driver != nil {
		if err := a.Persist(ctx, result, src, tgt); err != nil {
			return nil, fmt.Errorf("persist run %s: %w", result.RunID, err)
		}
	}

	return result, nil
}

// Persist writes both entity graphs, the run and its correspondences.
func (a *Aligner) Persist(ctx context.Context, result *model.AlignmentResult, src, tgt *Side) error {
	srcUUID, err := a.saveSide(ctx, result, "source", src)
	if err != nil {
		return err
	}
	tgtUUID, err := a.saveSide(ctx, result, "target", tgt)
	if err != nil {
		return err
	}

	_, err = a.Driver.ExecuteQuery(ctx, driver.SaveAlignmentRunQuery, map[string]interface{}{
		"uuid":           result.RunID,
		"created_at":     result.CreatedAt,
		"threshold":      result.Threshold,
		"source_uuid":    srcUUID,
		"target_uuid":    tgtUUID,
		"true_positives": result.Metrics.TruePositives,
		"accuracy":       result.Metrics.Accuracy,
		"recall":         result.Metrics.Recall,
		"f_measure":      result.Metrics.FMeasure,
		"defined":        result.Metrics.Defined,
	})
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if len(result.Matches) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, len(result.Matches))
	for i, m := range result.Matches {
		rows[i] = map[string]interface{}{
			"source_key":   model.IRI(m.SourceIRI).String(),
			"target_key":   model.IRI(m.TargetIRI).String(),
			"similarity":   m.Similarity,
			"source_index": m.Source,
			"target_index": m.Target,
		}
	}
	_, err = a.Driver.ExecuteQuery(ctx, driver.SaveCorrespondencesQuery, map[string]interface{}{
		"rows":        rows,
		"source_uuid": srcUUID,
		"target_uuid": tgtUUID,
		"run_uuid":    result.RunID,
	})
	if err != nil {
		return fmt.Errorf("failed to save correspondences: %w", err)
	}

	a.Logger.Debug("run persisted", "run", result.RunID, "correspondences", len(rows))
	return nil
}

func (a *Aligner) saveSide(ctx context.Context, result *model.AlignmentResult, role string, s *Side) (string, error) {
	id := a.UUIDGenerator()
	modelKind := ""
	if s.Model != nil {
		modelKind = s.Model.Kind().String()
	}

	_, err := a.Driver.ExecuteQuery(ctx, driver.SaveOntologyQuery, map[string]interface{}{
		"uuid":       id,
		"name":       s.Ontology.Name,
		"run_uuid":   result.RunID,
		"role":       role,
		"model_kind": modelKind,
		"created_at": result.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save %s ontology: %w", role, err)
	}

	classIndex := make(map[string]int, len(s.Classes))
	for i, c := range s.Classes {
		classIndex[c.IRI] = i
	}

	nodes := s.Graph.Nodes()
	entityRows := make([]map[string]interface{}, len(nodes))
	for i, n := range nodes {
		idx, isClass, label := -1, false, ""
		if n.Kind == model.TermIRI {
			if j, ok := classIndex[n.Value]; ok {
				idx, isClass, label = j, true, s.Classes[j].Label
			}
		}
		entityRows[i] = map[string]interface{}{
			"key":         n.String(),
			"kind":        n.Kind.String(),
			"value":       n.Value,
			"is_class":    isClass,
			"label":       label,
			"class_index": idx,
		}
	}
	if _, err := a.Driver.ExecuteQuery(ctx, driver.SaveEntitiesQuery, map[string]interface{}{
		"rows":          entityRows,
		"ontology_uuid": id,
	}); err != nil {
		return "", fmt.Errorf("failed to save %s entities: %w", role, err)
	}

	edges := s.Graph.Edges()
	tripleRows := make([]map[string]interface{}, len(edges))
	for i, e := range edges {
		tripleRows[i] = map[string]interface{}{
			"a":         e.A.String(),
			"b":         e.B.String(),
			"predicate": e.Label,
		}
	}
	if _, err := a.Driver.ExecuteQuery(ctx, driver.SaveTriplesQuery, map[string]interface{}{
		"rows":          tripleRows,
		"ontology_uuid": id,
	}); err != nil {
		return "", fmt.Errorf("failed to save %s triples: %w", role, err)
	}

	return id, nil
}
