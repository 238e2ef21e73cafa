package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/ontoalign/internal/config"
	"github.com/agenthands/ontoalign/internal/core"
	"github.com/agenthands/ontoalign/internal/core/eval"
)

type alignOptions struct {
	*rootOptions
	threshold float64
	kinds     []string
	workers   int
	review    bool
	persist   bool
	json      bool
}

func newAlignCmd(root *rootOptions) *cobra.Command {
	opts := &alignOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "align <source> <target>",
		Short: "Align the classes of two ontologies",
		Long: `Parse both ontologies, train the configured embedding models on each
and match every source class against every target class by cosine
similarity. Only the last model in --kinds is used for matching.

Example:
  ontoalign align cmt.owl ekaw.owl
  ontoalign align --threshold 0.9 --kinds distmult cmt.owl ekaw.owl`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlign(cmd, opts, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.Float64VarP(&opts.threshold, "threshold", "t", config.DefaultThreshold, "minimum cosine similarity for a match")
	f.StringSliceVarP(&opts.kinds, "kinds", "k", nil, "embedding models to train in order, e.g. transe,distmult")
	f.IntVarP(&opts.workers, "workers", "w", 1, "parallel workers for training and matching")
	f.BoolVar(&opts.review, "review", false, "ask the configured LLM to review each match")
	f.BoolVar(&opts.persist, "persist", false, "store the run in Memgraph")
	f.BoolVar(&opts.json, "json", false, "print the full result as JSON")

	return cmd
}

// applyFlags lets explicitly set flags win over file and environment.
func (o *alignOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("threshold") {
		cfg.Alignment.Threshold = o.threshold
	}
	if f.Changed("kinds") {
		cfg.Alignment.Kinds = o.kinds
	}
	if f.Changed("workers") {
		if o.workers < 1 {
			return fmt.Errorf("--workers must be at least 1")
		}
		cfg.Concurrency.MatchWorkers = o.workers
		cfg.Concurrency.Pipelines = min(o.workers, 2)
	}
	if f.Changed("review") {
		cfg.Alignment.Review = o.review
	}
	if o.persist {
		if cfg.Memgraph.URI == "" {
			return fmt.Errorf("--persist needs memgraph.uri or MEMGRAPH_URI")
		}
	} else {
		cfg.Memgraph.URI = ""
	}
	return nil
}

func runAlign(cmd *cobra.Command, opts *alignOptions, source, target string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if err := opts.applyFlags(cmd, cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := opts.logger(cmd.ErrOrStderr())

	components, err := core.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close(ctx)

	aligner, err := components.NewAligner(cfg, logger)
	if err != nil {
		return err
	}

	result, err := aligner.Align(ctx, source, target)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	_, err = fmt.Fprint(out, eval.Report(result.Metrics))
	return err
}
