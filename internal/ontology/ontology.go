package ontology

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knakk/rdf"

	"github.com/agenthands/ontoalign/internal/core/model"
)

const (
	RDFType   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFSLabel = "http://www.w3.org/2000/01/rdf-schema#label"
	OWLClass  = "http://www.w3.org/2002/07/owl#Class"
)

// Ontology is a parsed ontology: its triples in document order and the
// enumeration of its named classes. The class order is fixed at load time
// and never changes, so indices into Classes stay valid for the whole run.
type Ontology struct {
	Name    string
	triples []model.Triple
	classes []model.Entity
	index   map[string]int
}

// FormatFor picks the RDF syntax from a file extension.
func FormatFor(path string) (rdf.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".owl", ".rdf", ".xml":
		return rdf.RDFXML, nil
	case ".ttl":
		return rdf.Turtle, nil
	case ".nt":
		return rdf.NTriples, nil
	default:
		return 0, fmt.Errorf("%w: unsupported ontology format %q", model.ErrParse, filepath.Ext(path))
	}
}

// Load reads and parses the ontology file at path.
func Load(path string) (*Ontology, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %w", model.ErrParse, path, err)
	}
	defer f.Close()

	return Parse(f, format, path)
}

// Parse decodes an ontology from r. name is used in errors and, when it is a
// file path, as the base IRI for relative references.
func Parse(r io.Reader, format rdf.Format, name string) (*Ontology, error) {
	base := baseURL(name)

	var triples []model.Triple
	var err error
	if format == rdf.RDFXML {
		triples, err = parseRDFXML(r, base)
	} else {
		triples, err = decodeTriples(r, format, base)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrParse, name, err)
	}

	return New(name, triples), nil
}

// relativeMarker is handed to the Turtle decoder as its base. The decoder
// joins base and reference by concatenation, so marked IRIs are cut back to
// the reference and resolved properly against the file.
const relativeMarker = "urn:x-ontoalign-relative:"

func decodeTriples(r io.Reader, format rdf.Format, base *url.URL) ([]model.Triple, error) {
	dec := rdf.NewTripleDecoder(r, format)
	// N-Triples has absolute IRIs only and rejects the option.
	if format == rdf.Turtle {
		marker, err := rdf.NewIRI(relativeMarker)
		if err != nil {
			return nil, err
		}
		if err := dec.SetOption(rdf.Base, marker); err != nil {
			return nil, err
		}
	}

	var triples []model.Triple
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		triples = append(triples, model.Triple{
			Subject:   convertTerm(tr.Subj, base),
			Predicate: convertTerm(tr.Pred, base),
			Object:    convertTerm(tr.Obj, base),
		})
	}
	return triples, nil
}

// New builds an Ontology from already decoded triples.
func New(name string, triples []model.Triple) *Ontology {
	o := &Ontology{
		Name:    name,
		triples: triples,
		index:   make(map[string]int),
	}

	labels := make(map[string]string)
	for _, t := range triples {
		if t.Predicate.Kind != model.TermIRI {
			continue
		}
		switch t.Predicate.Value {
		case RDFType:
			if t.Subject.Kind != model.TermIRI || t.Object != model.IRI(OWLClass) {
				continue
			}
			if _, seen := o.index[t.Subject.Value]; seen {
				continue
			}
			o.index[t.Subject.Value] = len(o.classes)
			o.classes = append(o.classes, model.Entity{IRI: t.Subject.Value})
		case RDFSLabel:
			if t.Object.Kind != model.TermLiteral {
				continue
			}
			if _, ok := labels[t.Subject.Value]; !ok {
				labels[t.Subject.Value] = t.Object.Value
			}
		}
	}

	for i := range o.classes {
		if l, ok := labels[o.classes[i].IRI]; ok && l != "" {
			o.classes[i].Label = l
		} else {
			o.classes[i].Label = LocalName(o.classes[i].IRI)
		}
	}
	return o
}

// Triples returns the ontology's statements in document order.
func (o *Ontology) Triples() []model.Triple {
	return o.triples
}

// Classes returns a copy of the class enumeration.
func (o *Ontology) Classes() []model.Entity {
	out := make([]model.Entity, len(o.classes))
	copy(out, o.classes)
	return out
}

func (o *Ontology) ClassCount() int {
	return len(o.classes)
}

// IndexOf returns the position of a class IRI in Classes.
func (o *Ontology) IndexOf(iri string) (int, bool) {
	i, ok := o.index[iri]
	return i, ok
}

// LocalName returns the fragment or last path segment of an IRI.
func LocalName(iri string) string {
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	return iri
}

func convertTerm(t rdf.Term, base *url.URL) model.Term {
	switch v := t.(type) {
	case rdf.IRI:
		return model.IRI(unmark(v.String(), base))
	case rdf.Blank:
		return model.Blank(strings.TrimPrefix(v.String(), "_:"))
	case rdf.Literal:
		if lang := v.Lang(); lang != "" {
			return model.LangLiteral(v.String(), lang)
		}
		return model.TypedLiteral(v.String(), unmark(v.DataType.String(), base))
	default:
		return model.Term{}
	}
}

func unmark(iri string, base *url.URL) string {
	if rel, ok := strings.CutPrefix(iri, relativeMarker); ok {
		return resolveIRI(base, rel)
	}
	return iri
}

// baseURL is the file URL of name, or nil when name is not a path.
func baseURL(name string) *url.URL {
	if name == "" {
		return nil
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
}

// resolveIRI resolves a relative reference against base per RFC 3986.
// Absolute IRIs are returned untouched so their spelling never changes.
func resolveIRI(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() || base == nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func resolveURL(base *url.URL, ref string) *url.URL {
	u, err := url.Parse(ref)
	if err != nil {
		return base
	}
	if base == nil || u.IsAbs() {
		return u
	}
	return base.ResolveReference(u)
}
