package model

import "time"

// Correspondence claims that the source class at index Source and the
// target class at index Target are equivalent. Indices refer to the class
// enumerations used to fetch the embeddings.
type Correspondence struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Match is a Correspondence enriched with the classes it names and the
// similarity that produced it.
type Match struct {
	Correspondence
	SourceIRI   string   `json:"source_iri"`
	TargetIRI   string   `json:"target_iri"`
	SourceLabel string   `json:"source_label,omitempty"`
	TargetLabel string   `json:"target_label,omitempty"`
	Similarity  float64  `json:"similarity"`
	Verdict     *Verdict `json:"verdict,omitempty"`
}

// Metrics holds the alignment quality figures. Accuracy is precision
// measured against the source class count. Metrics named in Undefined had a
// zero denominator and must be reported as undefined, not as zero.
type Metrics struct {
	TruePositives  int      `json:"true_positives"`
	FalsePositives int      `json:"false_positives"`
	FalseNegatives int      `json:"false_negatives"`
	Accuracy       float64  `json:"accuracy"`
	Recall         float64  `json:"recall"`
	FMeasure       float64  `json:"f_measure"`
	Defined        bool     `json:"defined"`
	Undefined      []string `json:"undefined,omitempty"`
}

// OntologySummary describes one side of an alignment run.
type OntologySummary struct {
	Path      string `json:"path"`
	Classes   int    `json:"classes"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	ModelKind string `json:"model_kind"`
	Dim       int    `json:"dim"`
}

type AlignmentResult struct {
	RunID     string          `json:"run_id"`
	CreatedAt time.Time       `json:"created_at"`
	Threshold float64         `json:"threshold"`
	Source    OntologySummary `json:"source"`
	Target    OntologySummary `json:"target"`
	Matches   []Match         `json:"matches"`
	Metrics   Metrics         `json:"metrics"`
}

// Correspondences returns the bare index pairs in insertion order.
func (r *AlignmentResult) Correspondences() []Correspondence {
	out := make([]Correspondence, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Correspondence
	}
	return out
}

// Verdict is an advisory second opinion on a match. It never changes Metrics.
type Verdict struct {
	Equivalent bool    `json:"equivalent"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// ReviewResult is the JSON a reviewing language model returns.
type ReviewResult struct {
	Verdicts []ReviewVerdict `json:"verdicts"`
}

// ReviewVerdict is one entry of ReviewResult. Index is relative to the batch
// of candidates the prompt carried.
type ReviewVerdict struct {
	Index      int     `json:"index"`
	Equivalent bool    `json:"equivalent"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}
