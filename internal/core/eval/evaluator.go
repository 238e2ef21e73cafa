package eval

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agenthands/ontoalign/internal/core/model"
)

// Metric names used in model.Metrics.Undefined.
const (
	MetricAccuracy = "accuracy"
	MetricRecall   = "recall"
	MetricFMeasure = "f-measure"
)

// Evaluate scores a correspondence set of size matched against the class
// counts of both ontologies:
//
//	TP = matched, FP = sourceCount - TP, FN = targetCount - TP
//	accuracy = TP / (TP + FP)   (= TP / sourceCount)
//	recall   = TP / (TP + FN)   (= TP / targetCount)
//	F        = 2·accuracy·recall / (accuracy + recall)
//
// The formulas assume a one-to-one gold alignment and count every produced
// correspondence as a true positive; they are not checked against a
// reference alignment and do not compensate for many-to-many matches, so
// accuracy or recall exceed 1 when matches outnumber classes. A zero
// denominator leaves that metric (and F) undefined and yields
// model.ErrUndefinedMetric alongside the metrics that could be computed.
func Evaluate(matched, sourceCount, targetCount int) (model.Metrics, error) {
	m := model.Metrics{
		TruePositives:  matched,
		FalsePositives: sourceCount - matched,
		FalseNegatives: targetCount - matched,
	}

	if d := m.TruePositives + m.FalsePositives; d != 0 {
		m.Accuracy = float64(m.TruePositives) / float64(d)
	} else {
		m.Undefined = append(m.Undefined, MetricAccuracy)
	}
	if d := m.TruePositives + m.FalseNegatives; d != 0 {
		m.Recall = float64(m.TruePositives) / float64(d)
	} else {
		m.Undefined = append(m.Undefined, MetricRecall)
	}
	if len(m.Undefined) == 0 && m.Accuracy+m.Recall != 0 {
		m.FMeasure = 2 * (m.Accuracy * m.Recall) / (m.Accuracy + m.Recall)
	} else {
		m.Undefined = append(m.Undefined, MetricFMeasure)
	}

	if len(m.Undefined) > 0 {
		return m, fmt.Errorf("%w: %s", model.ErrUndefinedMetric, strings.Join(m.Undefined, ", "))
	}
	m.Defined = true
	return m, nil
}

// EvaluateSet is Evaluate over a correspondence slice.
func EvaluateSet(correspondences []model.Correspondence, sourceCount, targetCount int) (model.Metrics, error) {
	return Evaluate(len(correspondences), sourceCount, targetCount)
}

// Report renders the metrics as three lines with two decimals each.
// Metrics that could not be computed print as "undefined".
func Report(m model.Metrics) string {
	var b strings.Builder
	for _, line := range []struct {
		name  string
		key   string
		value float64
	}{
		{"Accuracy", MetricAccuracy, m.Accuracy},
		{"Recall", MetricRecall, m.Recall},
		{"F-measure", MetricFMeasure, m.FMeasure},
	} {
		if slices.Contains(m.Undefined, line.key) {
			fmt.Fprintf(&b, "%s: undefined\n", line.name)
		} else {
			fmt.Fprintf(&b, "%s: %.2f\n", line.name, line.value)
		}
	}
	return b.String()
}
