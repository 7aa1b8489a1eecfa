package extract

import "github.com/exmap-dev/exmap/internal/syntax"

// Tree builders mirroring the shapes the Elixir grammar produces. Building
// trees by hand keeps these tests independent of tree-sitter.

func id(text string) *syntax.Node {
	return &syntax.Node{Kind: "identifier", Text: text}
}

func aliasLeaf(text string) *syntax.Node {
	return &syntax.Node{Kind: "alias", Text: text}
}

func call(target *syntax.Node, rest ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: "call", Children: append([]*syntax.Node{target}, rest...)}
}

func args(children ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: "arguments", Children: children}
}

func doBlock(children ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: "do_block", Children: children}
}

func dot(children ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: "dot", Children: children}
}

func keywords(pairs ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: "keywords", Children: pairs}
}

func pair(key string, value *syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: "pair", Children: []*syntax.Node{
		{Kind: "keyword", Text: key + ": "},
		value,
	}}
}

func defmodule(name *syntax.Node, body ...*syntax.Node) *syntax.Node {
	return call(id("defmodule"), args(name), doBlock(body...))
}

func defHead(name string, params ...*syntax.Node) *syntax.Node {
	if len(params) == 0 {
		return call(id(name), args())
	}
	return call(id(name), args(params...))
}

func def(head *syntax.Node, body ...*syntax.Node) *syntax.Node {
	return call(id("def"), args(head), doBlock(body...))
}

func defp(head *syntax.Node, body ...*syntax.Node) *syntax.Node {
	return call(id("defp"), args(head), doBlock(body...))
}

func localCall(name string, callArgs ...*syntax.Node) *syntax.Node {
	return call(id(name), args(callArgs...))
}

func remoteCall(target *syntax.Node, member string, callArgs ...*syntax.Node) *syntax.Node {
	return call(dot(target, id(member)), args(callArgs...))
}

func directive(name string, target *syntax.Node, extra ...*syntax.Node) *syntax.Node {
	return call(id(name), args(append([]*syntax.Node{target}, extra...)...))
}

func source(children ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: "source", Children: children}
}
