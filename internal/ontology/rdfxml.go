package ontology

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/agenthands/ontoalign/internal/core/model"
)

const (
	rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xmlNS = "http://www.w3.org/XML/1998/namespace"

	rdfFirst      = rdfNS + "first"
	rdfRest       = rdfNS + "rest"
	rdfNil        = rdfNS + "nil"
	rdfXMLLiteral = rdfNS + "XMLLiteral"
)

// Attributes of the rdf namespace that are syntax, not properties.
var rdfSyntaxAttrs = map[string]bool{
	"about":           true,
	"ID":              true,
	"nodeID":          true,
	"resource":        true,
	"datatype":        true,
	"parseType":       true,
	"li":              true,
	"aboutEach":       true,
	"aboutEachPrefix": true,
	"bagID":           true,
}

var entityDecl = regexp.MustCompile(`<!ENTITY\s+([A-Za-z_][\w.\-]*)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

// xmlNode is an element with its inherited xml:base and xml:lang resolved.
type xmlNode struct {
	name    xml.Name
	attrs   []xml.Attr
	base    *url.URL
	lang    string
	content []xmlItem
}

// xmlItem is either a run of character data or a child element.
type xmlItem struct {
	text string
	node *xmlNode
}

func (n *xmlNode) elements() []*xmlNode {
	var out []*xmlNode
	for _, it := range n.content {
		if it.node != nil {
			out = append(out, it.node)
		}
	}
	return out
}

func (n *xmlNode) text() string {
	var b strings.Builder
	for _, it := range n.content {
		b.WriteString(it.text)
	}
	return b.String()
}

func (n *xmlNode) rdfAttr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Space == rdfNS && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n *xmlNode) is(local string) bool {
	return n.name.Space == rdfNS && n.name.Local == local
}

func (n *xmlNode) propertyAttrs() []xml.Attr {
	var out []xml.Attr
	for _, a := range n.attrs {
		switch {
		case a.Name.Space == "", a.Name.Space == "xmlns", a.Name.Space == "xml", a.Name.Space == xmlNS:
		case a.Name.Space == rdfNS && rdfSyntaxAttrs[a.Name.Local]:
		default:
			out = append(out, a)
		}
	}
	return out
}

// innerXML renders the content of n for rdf:parseType="Literal". Names are
// written unprefixed; the result only needs to be stable.
func (n *xmlNode) innerXML(b *strings.Builder) {
	for _, it := range n.content {
		if it.node == nil {
			_ = xml.EscapeText(b, []byte(it.text))
			continue
		}
		c := it.node
		b.WriteString("<" + c.name.Local)
		for _, a := range c.attrs {
			if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
				continue
			}
			b.WriteString(" " + a.Name.Local + `="`)
			_ = xml.EscapeText(b, []byte(a.Value))
			b.WriteString(`"`)
		}
		b.WriteString(">")
		c.innerXML(b)
		b.WriteString("</" + c.name.Local + ">")
	}
}

// readXMLTree loads the whole document. Internal DTD entities such as
// <!ENTITY owl "http://www.w3.org/2002/07/owl#"> are honoured.
func readXMLTree(r io.Reader, base *url.URL) (*xmlNode, error) {
	dec := xml.NewDecoder(r)
	dec.Entity = make(map[string]string)

	var root *xmlNode
	var stack []*xmlNode
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.Directive:
			for _, m := range entityDecl.FindAllStringSubmatch(string(t), -1) {
				dec.Entity[m[1]] = m[2] + m[3]
			}

		case xml.StartElement:
			n := &xmlNode{name: t.Name, attrs: t.Copy().Attr, base: base}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				n.base, n.lang = parent.base, parent.lang
				parent.content = append(parent.content, xmlItem{node: n})
			} else if root == nil {
				root = n
			}
			for _, a := range n.attrs {
				if a.Name.Space != xmlNS && a.Name.Space != "xml" {
					continue
				}
				switch a.Name.Local {
				case "base":
					n.base = resolveURL(n.base, a.Value)
				case "lang":
					n.lang = a.Value
				}
			}
			stack = append(stack, n)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.content = append(parent.content, xmlItem{text: string(t)})
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return root, nil
}

// rdfxmlParser turns an element tree into triples following the RDF/XML
// node and property element grammar, including nested node elements and
// the Resource, Collection and Literal parse types.
type rdfxmlParser struct {
	triples []model.Triple
	blanks  int
}

// parseRDFXML decodes an RDF/XML document. Relative references resolve
// against xml:base, falling back to base.
func parseRDFXML(r io.Reader, base *url.URL) ([]model.Triple, error) {
	root, err := readXMLTree(r, base)
	if err != nil {
		return nil, err
	}

	p := &rdfxmlParser{}
	if root.is("RDF") {
		for _, n := range root.elements() {
			if _, err := p.nodeElement(n); err != nil {
				return nil, err
			}
		}
	} else if _, err := p.nodeElement(root); err != nil {
		return nil, err
	}
	return p.triples, nil
}

func (p *rdfxmlParser) emit(s, pred, o model.Term) {
	p.triples = append(p.triples, model.Triple{Subject: s, Predicate: pred, Object: o})
}

func (p *rdfxmlParser) newBlank() model.Term {
	p.blanks++
	return model.Blank("genid" + strconv.Itoa(p.blanks))
}

func (p *rdfxmlParser) nodeElement(n *xmlNode) (model.Term, error) {
	if n.name.Space == "" {
		return model.Term{}, fmt.Errorf("node element <%s> has no namespace", n.name.Local)
	}

	var subject model.Term
	if v, ok := n.rdfAttr("about"); ok {
		subject = model.IRI(resolveIRI(n.base, v))
	} else if v, ok := n.rdfAttr("ID"); ok {
		subject = model.IRI(resolveIRI(n.base, "#"+v))
	} else if v, ok := n.rdfAttr("nodeID"); ok {
		subject = model.Blank(v)
	} else {
		subject = p.newBlank()
	}

	if !n.is("Description") {
		p.emit(subject, model.IRI(RDFType), model.IRI(n.name.Space+n.name.Local))
	}
	p.attrsAsProperties(n, subject)

	li := 0
	for _, c := range n.elements() {
		if err := p.propertyElement(c, subject, &li); err != nil {
			return model.Term{}, err
		}
	}
	return subject, nil
}

func (p *rdfxmlParser) attrsAsProperties(n *xmlNode, subject model.Term) {
	for _, a := range n.propertyAttrs() {
		pred := a.Name.Space + a.Name.Local
		if pred == RDFType {
			p.emit(subject, model.IRI(RDFType), model.IRI(resolveIRI(n.base, a.Value)))
			continue
		}
		p.emit(subject, model.IRI(pred), literal(a.Value, n.lang, ""))
	}
}

func (p *rdfxmlParser) propertyElement(e *xmlNode, subject model.Term, li *int) error {
	if e.name.Space == "" {
		return fmt.Errorf("property element <%s> has no namespace", e.name.Local)
	}
	pred := model.IRI(e.name.Space + e.name.Local)
	if e.is("li") {
		*li++
		pred = model.IRI(rdfNS + "_" + strconv.Itoa(*li))
	}

	if pt, ok := e.rdfAttr("parseType"); ok {
		switch pt {
		case "Resource":
			obj := p.newBlank()
			p.emit(subject, pred, obj)
			inner := 0
			for _, c := range e.elements() {
				if err := p.propertyElement(c, obj, &inner); err != nil {
					return err
				}
			}
		case "Collection":
			var items []model.Term
			for _, c := range e.elements() {
				item, err := p.nodeElement(c)
				if err != nil {
					return err
				}
				items = append(items, item)
			}
			p.emit(subject, pred, p.list(items))
		default:
			var b strings.Builder
			e.innerXML(&b)
			p.emit(subject, pred, model.TypedLiteral(b.String(), rdfXMLLiteral))
		}
		return nil
	}

	children := e.elements()
	if len(children) > 1 {
		return fmt.Errorf("property element <%s%s> holds %d node elements, want one",
			e.name.Space, e.name.Local, len(children))
	}
	if len(children) == 1 {
		obj, err := p.nodeElement(children[0])
		if err != nil {
			return err
		}
		p.emit(subject, pred, obj)
		return nil
	}

	res, hasResource := e.rdfAttr("resource")
	nodeID, hasNodeID := e.rdfAttr("nodeID")
	if hasResource || hasNodeID || len(e.propertyAttrs()) > 0 {
		var obj model.Term
		switch {
		case hasResource:
			obj = model.IRI(resolveIRI(e.base, res))
		case hasNodeID:
			obj = model.Blank(nodeID)
		default:
			obj = p.newBlank()
		}
		p.emit(subject, pred, obj)
		p.attrsAsProperties(e, obj)
		return nil
	}

	datatype := ""
	if dt, ok := e.rdfAttr("datatype"); ok {
		datatype = resolveIRI(e.base, dt)
	}
	p.emit(subject, pred, literal(e.text(), e.lang, datatype))
	return nil
}

// list builds an rdf:first / rdf:rest chain and returns its head.
func (p *rdfxmlParser) list(items []model.Term) model.Term {
	if len(items) == 0 {
		return model.IRI(rdfNil)
	}
	cells := make([]model.Term, len(items))
	for i := range cells {
		cells[i] = p.newBlank()
	}
	for i, item := range items {
		p.emit(cells[i], model.IRI(rdfFirst), item)
		next := model.IRI(rdfNil)
		if i+1 < len(cells) {
			next = cells[i+1]
		}
		p.emit(cells[i], model.IRI(rdfRest), next)
	}
	return cells[0]
}

func literal(value, lang, datatype string) model.Term {
	if datatype != "" {
		return model.TypedLiteral(value, datatype)
	}
	if lang != "" {
		return model.LangLiteral(value, lang)
	}
	return model.Literal(value)
}
