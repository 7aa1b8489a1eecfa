package syntax

import (
	"context"
	"errors"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/elixir"
)

// ErrParse is returned when the grammar cannot produce a clean tree for a
// file. Callers treat the file as contributing nothing; there is no partial
// extraction from broken trees.
var ErrParse = errors.New("syntax: source did not parse cleanly")

// Parser turns Elixir source text into a generic Node tree.
//
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	inner *sitter.Parser
}

// NewParser creates a parser with the Elixir grammar loaded.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(elixir.GetLanguage())
	return &Parser{inner: p}
}

// Parse parses content and returns the root of the generic tree.
// Returns ErrParse when the tree contains syntax errors.
func (p *Parser) Parse(content []byte) (*Node, error) {
	tree, err := p.inner.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, ErrParse
	}
	return convert(root, content), nil
}

// convert maps a tree-sitter node onto the generic tree, keeping named
// children only. Comments are dropped; they never contribute structure.
func convert(n *sitter.Node, src []byte) *Node {
	out := &Node{
		Kind: n.Type(),
		Line: int(n.StartPoint().Row) + 1,
	}

	count := int(n.NamedChildCount())
	if count == 0 {
		out.Text = n.Content(src)
		return out
	}
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out.Children = append(out.Children, convert(child, src))
	}
	if len(out.Children) == 0 {
		out.Text = n.Content(src)
	}
	return out
}
