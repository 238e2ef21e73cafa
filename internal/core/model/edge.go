package model

// Triple is one (subject, predicate, object) statement of an ontology.
type Triple struct {
	Subject   Term `json:"subject"`
	Predicate Term `json:"predicate"`
	Object    Term `json:"object"`
}

// Edge is an undirected, predicate-labeled edge of an EntityGraph.
type Edge struct {
	A     Term   `json:"a"`
	B     Term   `json:"b"`
	Label string `json:"label"`
}
