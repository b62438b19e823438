package compare

import (
	"strings"

	"github.com/beevik/etree"
)

type nodeKind int

const (
	otherNode nodeKind = iota
	elementNode
	textNode
	cdataNode
)

// node is the subset of an XML tree that takes part in a comparison.
type node struct {
	kind    nodeKind
	element *etree.Element
	text    string
}

func nodeOf(t etree.Token) node {
	switch n := t.(type) {
	case *etree.Element:
		return node{kind: elementNode, element: n}
	case *etree.CharData:
		if n.IsCData() {
			return node{kind: cdataNode, text: n.Data}
		}
		return node{kind: textNode, text: n.Data}
	default:
		return node{kind: otherNode}
	}
}

type xmlComparison struct {
	skipWhitespaceText bool
}

// SameXML reports whether two parsed XML documents have the same structure.
//
// Equality is defined as containment in both directions. An element contains another
// if it has the same local name and namespace, the same attributes with equal trimmed
// values, and if each of its children contains the child at the same position in the
// other element. Text and CDATA nodes compare by trimmed text. Comments and processing
// instructions inside the root element never match.
//
// Whitespace-only text nodes are compared like any other child, so a pretty-printed
// document is not the same as a compact one; see SameXMLIgnoringWhitespace.
func SameXML(a, b *etree.Document) bool {
	return xmlComparison{}.same(a, b)
}

// SameXMLIgnoringWhitespace is like SameXML, except that text nodes which contain only
// whitespace are dropped before children are paired by position.
func SameXMLIgnoringWhitespace(a, b *etree.Document) bool {
	return xmlComparison{skipWhitespaceText: true}.same(a, b)
}

func (c xmlComparison) same(a, b *etree.Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	rootA, rootB := rootOf(a), rootOf(b)
	return c.contains(rootA, rootB) && c.contains(rootB, rootA)
}

func (c xmlComparison) contains(t1, t2 etree.Token) bool {
	if t1 == nil || t2 == nil {
		return t1 == nil && t2 == nil
	}
	if t1 == t2 {
		return true
	}
	n1, n2 := nodeOf(t1), nodeOf(t2)
	if n1.kind != n2.kind {
		return false
	}
	switch n1.kind {
	case elementNode:
		return c.containsElement(n1.element, n2.element)
	case textNode, cdataNode:
		return strings.TrimSpace(n1.text) == strings.TrimSpace(n2.text)
	default:
		return false
	}
}

func rootOf(doc *etree.Document) etree.Token {
	if root := doc.Root(); root != nil {
		return root
	}
	return nil
}

func (c xmlComparison) containsElement(e1, e2 *etree.Element) bool {
	if e1.Tag != e2.Tag || e1.NamespaceURI() != e2.NamespaceURI() {
		return false
	}
	if len(e1.Attr) != len(e2.Attr) {
		return false
	}
	for _, a1 := range e1.Attr {
		a2 := findAttr(e2, a1.FullKey())
		if a2 == nil || strings.TrimSpace(a1.Value) != strings.TrimSpace(a2.Value) {
			return false
		}
	}

	children1, children2 := c.children(e1), c.children(e2)
	for i, child1 := range children1 {
		var child2 etree.Token
		if i < len(children2) {
			child2 = children2[i]
		}
		if !c.contains(child1, child2) {
			return false
		}
	}
	return true
}

func (c xmlComparison) children(e *etree.Element) []etree.Token {
	if !c.skipWhitespaceText {
		return e.Child
	}
	ret := make([]etree.Token, 0, len(e.Child))
	for _, t := range e.Child {
		if cd, ok := t.(*etree.CharData); ok && !cd.IsCData() && cd.IsWhitespace() {
			continue
		}
		ret = append(ret, t)
	}
	return ret
}

func findAttr(e *etree.Element, fullKey string) *etree.Attr {
	for i := range e.Attr {
		if e.Attr[i].FullKey() == fullKey {
			return &e.Attr[i]
		}
	}
	return nil
}
