package model

import (
	"strconv"
	"strings"
)

const xsdString = "http://www.w3.org/2001/XMLSchema#string"

// TermKind distinguishes the three kinds of RDF terms.
type TermKind int

const (
	TermIRI TermKind = iota
	TermBlank
	TermLiteral
)

func (k TermKind) String() string {
	switch k {
	case TermIRI:
		return "iri"
	case TermBlank:
		return "blank"
	case TermLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is a node of the entity graph. Two terms are the same node iff all
// fields are equal, so a literal "Paper" never collides with an IRI and
// "Paper"@en is a different node from "Paper"@fr.
type Term struct {
	Kind  TermKind `json:"kind"`
	Value string   `json:"value"`
	// Lang and Datatype are set on literals only. A plain xsd:string
	// literal carries neither.
	Lang     string `json:"lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

func IRI(v string) Term { return Term{Kind: TermIRI, Value: v} }
func Blank(v string) Term { return Term{Kind: TermBlank, Value: v} }
func Literal(v string) Term { return Term{Kind: TermLiteral, Value: v} }

// LangLiteral is a language-tagged string. Tags compare case-insensitively.
func LangLiteral(v, lang string) Term {
	return Term{Kind: TermLiteral, Value: v, Lang: strings.ToLower(lang)}
}

// TypedLiteral is a literal of the given datatype IRI.
func TypedLiteral(v, datatype string) Term {
	if datatype == xsdString {
		datatype = ""
	}
	return Term{Kind: TermLiteral, Value: v, Datatype: datatype}
}

// IsZero reports an unset term. The empty literal "" is a valid term.
func (t Term) IsZero() bool { return t.Kind != TermLiteral && t.Value == "" }

func (t Term) String() string {
	switch t.Kind {
	case TermIRI:
		return "<" + t.Value + ">"
	case TermBlank:
		return "_:" + t.Value
	default:
		lit := strconv.Quote(t.Value)
		switch {
		case t.Lang != "":
			return lit + "@" + t.Lang
		case t.Datatype != "":
			return lit + "^^<" + t.Datatype + ">"
		}
		return lit
	}
}

// Entity is an OWL class of a loaded ontology.
type Entity struct {
	IRI   string `json:"iri"`
	Label string `json:"label"`
}
