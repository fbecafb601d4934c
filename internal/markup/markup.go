// Package markup wraps goquery with the handful of DOM operations the
// extractor needs: find-by-class, text extraction, and next-node navigation.
package markup

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

var (
	// ErrNoText is returned when a block has no readable text.
	ErrNoText = eris.New("markup: block has no text")
	// ErrNoLink is returned when a block's next node carries no href.
	ErrNoLink = eris.New("markup: block has no link")
)

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Parse reads and parses HTML from r.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "markup: parse")
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an HTML string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Blocks returns every div carrying class, in document order.
func (d *Document) Blocks(class string) []Block {
	sel := d.doc.Find(divSelector(class))
	blocks := make([]Block, 0, sel.Length())
	for _, n := range sel.Nodes {
		blocks = append(blocks, Block{node: n})
	}
	return blocks
}

// First returns the first div carrying class.
func (d *Document) First(class string) (Node, bool) {
	sel := d.doc.Find(divSelector(class)).First()
	if sel.Length() == 0 {
		return Node{}, false
	}
	return Node{n: sel.Nodes[0]}, true
}

func divSelector(class string) string {
	return "div." + strings.TrimPrefix(class, ".")
}

// Node is a position in the parse tree. The zero value is invalid.
type Node struct {
	n *html.Node
}

// Valid reports whether the node points into a tree.
func (n Node) Valid() bool { return n.n != nil }

// Text returns the concatenated text of the node and its descendants.
func (n Node) Text() string {
	if !n.Valid() {
		return ""
	}
	return goquery.NewDocumentFromNode(n.n).Text()
}

// Attr returns the named attribute of an element node.
func (n Node) Attr(name string) (string, bool) {
	if !n.Valid() || n.n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Next returns the node that follows n in document order: its first child,
// else its next sibling, else the next sibling of the nearest ancestor.
func (n Node) Next() (Node, bool) {
	if !n.Valid() {
		return Node{}, false
	}
	if n.n.FirstChild != nil {
		return Node{n: n.n.FirstChild}, true
	}
	for cur := n.n; cur != nil; cur = cur.Parent {
		if cur.NextSibling != nil {
			return Node{n: cur.NextSibling}, true
		}
	}
	return Node{}, false
}

// NextSibling returns the sibling immediately after n, text nodes included.
func (n Node) NextSibling() (Node, bool) {
	if !n.Valid() || n.n.NextSibling == nil {
		return Node{}, false
	}
	return Node{n: n.n.NextSibling}, true
}

// Walk applies steps in order, failing as soon as one runs off the tree.
func (n Node) Walk(steps ...Step) (Node, bool) {
	if !n.Valid() {
		return Node{}, false
	}
	cur := n
	for _, step := range steps {
		var ok bool
		switch step {
		case StepNext:
			cur, ok = cur.Next()
		case StepNextSibling:
			cur, ok = cur.NextSibling()
		}
		if !ok {
			return Node{}, false
		}
	}
	return cur, true
}

// Step is a single navigation move used by Walk.
type Step int

const (
	StepNext Step = iota
	StepNextSibling
)

// Block is one candidate listing entry.
type Block struct {
	node *html.Node
}

// DisplayText returns the block's full text.
func (b Block) DisplayText() (string, error) {
	text := strings.TrimSpace(Node{n: b.node}.Text())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// LinkTarget returns the href of the node following the block.
func (b Block) LinkTarget() (string, error) {
	next, ok := Node{n: b.node}.Next()
	if !ok {
		return "", ErrNoLink
	}
	href, ok := next.Attr("href")
	if !ok || href == "" {
		return "", ErrNoLink
	}
	return href, nil
}
