package model

import "errors"

// Failure conditions shared by the alignment pipeline. Callers match them
// with errors.Is; none of them is retried.
var (
	// ErrParse reports an unreadable or malformed ontology.
	ErrParse = errors.New("ontology parse failed")
	// ErrUnknownEntity reports a vector lookup for an entity the model was not trained on.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrUndefinedMetric reports a metric whose denominator is zero.
	ErrUndefinedMetric = errors.New("metric undefined")
)
