package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/ontoalign/internal/core/model"
)

func TestEvaluate_OneToOne(t *testing.T) {
	m, err := Evaluate(8, 10, 10)
	require.NoError(t, err)

	assert.InDelta(t, 0.80, m.Accuracy, 1e-9)
	assert.InDelta(t, 0.80, m.Recall, 1e-9)
	assert.InDelta(t, 0.80, m.FMeasure, 1e-9)
	assert.Equal(t, 2, m.FalsePositives)
	assert.Equal(t, 2, m.FalseNegatives)
	assert.True(t, m.Defined)
}

func TestEvaluate_Perfect(t *testing.T) {
	m, err := Evaluate(5, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, "Accuracy: 1.00\nRecall: 1.00\nF-measure: 1.00\n", Report(m))
}

func TestEvaluate_Asymmetric(t *testing.T) {
	m, err := Evaluate(3, 6, 4)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, m.Accuracy, 1e-9)
	assert.InDelta(t, 0.75, m.Recall, 1e-9)
	assert.InDelta(t, 0.6, m.FMeasure, 1e-9)
}

// The formulas count every match as a true positive. When a many-to-many
// match set outnumbers the classes, the figures leave [0, 1]; this is the
// documented behaviour, not a defect to clamp away.
func TestEvaluate_ManyToManyIsNotCorrected(t *testing.T) {
	m, err := Evaluate(4, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, -2, m.FalsePositives)
	assert.InDelta(t, 2.0, m.Accuracy, 1e-9)
	assert.InDelta(t, 2.0, m.Recall, 1e-9)
}

func TestEvaluate_Undefined(t *testing.T) {
	m, err := Evaluate(0, 0, 5)
	assert.ErrorIs(t, err, model.ErrUndefinedMetric)
	assert.Equal(t, []string{MetricAccuracy, MetricFMeasure}, m.Undefined)

	_, err = Evaluate(0, 5, 0)
	assert.ErrorIs(t, err, model.ErrUndefinedMetric)

	// No matches: accuracy and recall are both 0, so F has no denominator.
	m, err = Evaluate(0, 5, 5)
	assert.ErrorIs(t, err, model.ErrUndefinedMetric)
	assert.False(t, m.Defined)
	assert.Equal(t, []string{MetricFMeasure}, m.Undefined)
	assert.Equal(t, "Accuracy: 0.00\nRecall: 0.00\nF-measure: undefined\n", Report(m))

	m, err = Evaluate(0, 0, 0)
	assert.ErrorIs(t, err, model.ErrUndefinedMetric)
	assert.Equal(t, "Accuracy: undefined\nRecall: undefined\nF-measure: undefined\n", Report(m))
}

func TestEvaluateSet(t *testing.T) {
	m, err := EvaluateSet([]model.Correspondence{{Source: 0, Target: 0}}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Accuracy: 1.00\nRecall: 1.00\nF-measure: 1.00\n", Report(m))
}

func TestReport_TwoDecimals(t *testing.T) {
	m, err := Evaluate(1, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, "Accuracy: 0.33\nRecall: 0.33\nF-measure: 0.33\n", Report(m))
}
