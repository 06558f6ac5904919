package owl

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// The RDF/XML reader covers the subset of the grammar OBO ontology releases
// use: node elements (rdf:Description or typed), rdf:about/rdf:ID/rdf:nodeID
// subjects, property elements with rdf:resource, rdf:nodeID, rdf:datatype,
// xml:lang, rdf:parseType="Resource", nested node elements, and plain text
// literals. DOCTYPE entity declarations are honored. rdf:parseType
// "Collection" and "Literal" content is skipped.

const (
	rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xmlNS = "http://www.w3.org/XML/1998/namespace"

	rdfTypeIRI = rdfNS + "type"
)

type rdfXMLDecoder struct {
	dec      *xml.Decoder
	g        *Graph
	blankSeq int
}

func decodeRDFXML(r io.Reader, g *Graph) error {
	dec := xml.NewDecoder(r)
	dec.Entity = map[string]string{}
	d := &rdfXMLDecoder{dec: dec, g: g}

	for {
		tok, err := d.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading RDF/XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.Directive:
			d.declareEntities(string(t))
		case xml.StartElement:
			if t.Name.Space == rdfNS && t.Name.Local == "RDF" {
				continue
			}
			if _, err := d.readNode(t); err != nil {
				return err
			}
		}
	}
}

// declareEntities extracts <!ENTITY name "value"> declarations from a
// DOCTYPE directive so references like &obo; resolve in attribute values.
func (d *rdfXMLDecoder) declareEntities(directive string) {
	rest := directive
	for {
		i := strings.Index(rest, "<!ENTITY")
		if i < 0 {
			return
		}
		rest = rest[i+len("<!ENTITY"):]

		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return
		}
		name := fields[0]

		open := strings.IndexAny(rest, `"'`)
		if open < 0 {
			return
		}
		quote := rest[open]
		end := strings.IndexByte(rest[open+1:], quote)
		if end < 0 {
			return
		}
		d.dec.Entity[name] = rest[open+1 : open+1+end]
		rest = rest[open+1+end:]
	}
}

// readNode consumes a node element and its children, returning the node's
// subject identifier (an IRI or a blank node label).
func (d *rdfXMLDecoder) readNode(start xml.StartElement) (string, error) {
	subject := d.subjectOf(start.Attr)

	if start.Name.Space != rdfNS || start.Name.Local != "Description" {
		d.g.Add(Triple{
			Subject:   subject,
			Predicate: rdfTypeIRI,
			Object:    IRITerm(start.Name.Space + start.Name.Local),
		})
	}

	for {
		tok, err := d.dec.Token()
		if err != nil {
			return "", fmt.Errorf("reading RDF/XML node: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := d.readProperty(subject, t); err != nil {
				return "", err
			}
		case xml.EndElement:
			return subject, nil
		}
	}
}

// readProperty consumes one property element of the node identified by
// subject and adds the triples it describes.
func (d *rdfXMLDecoder) readProperty(subject string, start xml.StartElement) error {
	predicate := start.Name.Space + start.Name.Local

	var lang, datatype string
	for _, attr := range start.Attr {
		switch {
		case attr.Name.Space == rdfNS && attr.Name.Local == "resource":
			d.g.Add(Triple{Subject: subject, Predicate: predicate, Object: IRITerm(attr.Value)})
			return d.dec.Skip()

		case attr.Name.Space == rdfNS && attr.Name.Local == "nodeID":
			d.g.Add(Triple{Subject: subject, Predicate: predicate, Object: BlankTerm("_:" + attr.Value)})
			return d.dec.Skip()

		case attr.Name.Space == rdfNS && attr.Name.Local == "parseType":
			switch attr.Value {
			case "Resource":
				inner := d.freshBlank()
				d.g.Add(Triple{Subject: subject, Predicate: predicate, Object: BlankTerm(inner)})
				return d.readProperties(inner)
			default:
				return d.dec.Skip()
			}

		case attr.Name.Space == rdfNS && attr.Name.Local == "datatype":
			datatype = attr.Value

		case attr.Name.Local == "lang" && (attr.Name.Space == xmlNS || attr.Name.Space == "xml"):
			lang = attr.Value
		}
	}

	var text strings.Builder
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return fmt.Errorf("reading RDF/XML property: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)

		case xml.StartElement:
			object, err := d.readNode(t)
			if err != nil {
				return err
			}
			d.g.Add(Triple{Subject: subject, Predicate: predicate, Object: termForNode(object)})
			return d.dec.Skip()

		case xml.EndElement:
			d.g.Add(Triple{Subject: subject, Predicate: predicate, Object: Term{
				Value:    text.String(),
				Kind:     Literal,
				Lang:     lang,
				Datatype: datatype,
			}})
			return nil
		}
	}
}

// readProperties consumes property elements until the enclosing element
// closes, attaching them to subject. Used for rdf:parseType="Resource".
func (d *rdfXMLDecoder) readProperties(subject string) error {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return fmt.Errorf("reading RDF/XML property block: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := d.readProperty(subject, t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// subjectOf resolves a node element's subject from its attributes, minting
// a fresh blank node label when none identify it.
func (d *rdfXMLDecoder) subjectOf(attrs []xml.Attr) string {
	for _, attr := range attrs {
		if attr.Name.Space != rdfNS {
			continue
		}
		switch attr.Name.Local {
		case "about":
			return attr.Value
		case "ID":
			return "#" + attr.Value
		case "nodeID":
			return "_:" + attr.Value
		}
	}
	return d.freshBlank()
}

func (d *rdfXMLDecoder) freshBlank() string {
	d.blankSeq++
	return fmt.Sprintf("_:b%d", d.blankSeq)
}

func termForNode(id string) Term {
	if strings.HasPrefix(id, "_:") {
		return BlankTerm(id)
	}
	return IRITerm(id)
}
