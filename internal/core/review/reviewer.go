package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agenthands/ontoalign/internal/core/model"
	"github.com/agenthands/ontoalign/internal/llm"
)

const defaultPrompt = `You are checking an ontology alignment.
Each line below pairs a class of the SOURCE ontology with a class of the TARGET ontology
that an embedding model found similar.

<CANDIDATES>
%s
</CANDIDATES>

Instructions:
For every candidate decide whether the two classes denote the same concept.
Return a JSON object with key "verdicts", a list of objects with
"index" (the number in brackets), "equivalent" (bool), "confidence" (float 0-1)
and "reason" (short string).

Example JSON:
{
  "verdicts": [
    {"index": 0, "equivalent": true, "confidence": 0.9, "reason": "both denote a submitted paper"}
  ]
}
`

// Placeholder marks where the candidate list goes in a review prompt. The
// prompt is not a format string; other verbs and percent signs pass through.
const Placeholder = "%s"

// DefaultBatchSize bounds how many candidates go into one prompt.
const DefaultBatchSize = 20

// Reviewer asks a language model for a second opinion on matches. Verdicts
// are advisory: they annotate matches and never remove any, so the reported
// metrics are unaffected.
type Reviewer struct {
	LLM       llm.LLMClient
	Prompt    string
	BatchSize int
}

func NewReviewer(llmClient llm.LLMClient, prompt string) *Reviewer {
	if prompt == "" {
		prompt = defaultPrompt
	}
	return &Reviewer{
		LLM:       llmClient,
		Prompt:    prompt,
		BatchSize: DefaultBatchSize,
	}
}

// Review returns a copy of matches with Verdict filled in where the model
// answered. Candidates the model skipped keep a nil Verdict.
func (r *Reviewer) Review(ctx context.Context, matches []model.Match) ([]model.Match, error) {
	out := make([]model.Match, len(matches))
	copy(out, matches)

	size := r.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	if len(out) > 0 && !strings.Contains(r.Prompt, Placeholder) {
		return nil, fmt.Errorf("review prompt has no %s placeholder", Placeholder)
	}

	for start := 0; start < len(out); start += size {
		end := min(start+size, len(out))
		batch := out[start:end]

		prompt := strings.Replace(r.Prompt, Placeholder, serializeMatches(batch), 1)
		response, err := r.LLM.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("failed to generate review: %w", err)
		}

		result, err := parseJSON[model.ReviewResult](response)
		if err != nil {
			return nil, fmt.Errorf("failed to parse review: %w", err)
		}

		for _, v := range result.Verdicts {
			if v.Index < 0 || v.Index >= len(batch) {
				continue
			}
			batch[v.Index].Verdict = &model.Verdict{
				Equivalent: v.Equivalent,
				Confidence: v.Confidence,
				Reason:     v.Reason,
			}
		}
	}

	return out, nil
}

func serializeMatches(matches []model.Match) string {
	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "[%d] %s (%s) <-> %s (%s), similarity %.3f\n",
			i, m.SourceLabel, m.SourceIRI, m.TargetLabel, m.TargetIRI, m.Similarity)
	}
	return b.String()
}

// parseJSON extracts the outermost JSON object from a model reply, which may
// be wrapped in prose or a markdown fence, and decodes it into T.
func parseJSON[T any](response string) (T, error) {
	var zero T

	start := strings.IndexByte(response, '{')
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}
	end := strings.LastIndexByte(response, '}')
	if end < start {
		return zero, fmt.Errorf("no JSON object found in response (missing '}')")
	}

	var result T
	if err := json.Unmarshal([]byte(response[start:end+1]), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}
