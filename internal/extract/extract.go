package extract

import (
	"sort"

	"github.com/exmap-dev/exmap/internal/syntax"
)

// In the Elixir grammar everything is a call node; definitions and
// directives are calls whose target is one of these identifiers. They are
// never recorded as call sites themselves.
var (
	functionKeywords = map[string]bool{
		"def":       true,
		"defp":      true,
		"defmacro":  true,
		"defmacrop": true,
	}
	directiveKeywords = map[string]RefKind{
		"alias":   RefAlias,
		"import":  RefImport,
		"use":     RefUse,
		"require": RefRequire,
	}
	// Definition forms that neither declare a function nor record a call.
	otherDefinitionKeywords = map[string]bool{
		"defmodule":      true,
		"defstruct":      true,
		"defdelegate":    true,
		"defguard":       true,
		"defguardp":      true,
		"defexception":   true,
		"defoverridable": true,
		"defimpl":        true,
		"defprotocol":    true,
	}
)

// ExtractModules walks a parsed tree depth-first and returns one record per
// defmodule construct found anywhere in it, nested definitions included.
// Extraction is total: unrecognized nodes contribute nothing.
func ExtractModules(root *syntax.Node, file string) []Module {
	var out []Module
	scanForModules(root, file, &out)
	return out
}

func scanForModules(node *syntax.Node, file string, out *[]Module) {
	if node == nil {
		return
	}
	if callKeyword(node) == "defmodule" {
		extractModule(node, file, out)
		return
	}
	for _, child := range node.Children {
		scanForModules(child, file, out)
	}
}

// callKeyword returns the target identifier text when node is a call with a
// bare identifier target, "" otherwise.
func callKeyword(node *syntax.Node) string {
	if node == nil || node.Kind != "call" || len(node.Children) == 0 {
		return ""
	}
	target := node.Children[0]
	if target.Kind != "identifier" {
		return ""
	}
	return target.Text
}

// moduleWalker carries the per-module state of one defmodule traversal.
// The alias table is exclusively owned by this walker and shared across
// every scope inside the module body.
type moduleWalker struct {
	file    string
	name    ModuleName
	table   AliasTable
	funcs   map[FunctionSig]bool
	calls   []Call
	refs    []Ref
	records *[]Module
}

func extractModule(node *syntax.Node, file string, out *[]Module) {
	w := &moduleWalker{
		file:    file,
		table:   AliasTable{},
		funcs:   make(map[FunctionSig]bool),
		records: out,
	}

	// The module's own name expression cannot see aliases that are not in
	// scope yet, so it resolves against an empty ambient table.
	args := node.ChildOfKind("arguments")
	w.name = ResolveModuleRef(args.Child(0), Unknown, AliasTable{})

	// Reserve the record slot so nested modules land after their parent.
	idx := len(*out)
	*out = append(*out, Module{})

	if body := node.ChildOfKind("do_block"); body != nil {
		for _, child := range body.Children {
			w.moduleLevel(child)
		}
	}

	(*out)[idx] = Module{
		Name:      w.name,
		File:      w.file,
		Functions: sortedFunctions(w.funcs),
		Calls:     w.calls,
		Refs:      w.refs,
	}
}

// moduleLevel handles one construct directly inside a module body. Only the
// closed set of recognized forms contributes; anything else is skipped
// without descending.
func (w *moduleWalker) moduleLevel(node *syntax.Node) {
	switch kw := callKeyword(node); {
	case kw == "defmodule":
		extractModule(node, w.file, w.records)
	case functionKeywords[kw]:
		w.functionDef(node)
	case directiveKeywords[kw] != "":
		w.directive(node, directiveKeywords[kw])
	}
}

// functionDef records the signature and walks the body with call sites
// tagged by the enclosing definition.
func (w *moduleWalker) functionDef(node *syntax.Node) {
	args := node.ChildOfKind("arguments")
	name, arity, ok := functionHead(args.Child(0))
	if !ok {
		return
	}
	w.funcs[FunctionSig{Name: name, Arity: arity}] = true

	from := MFA{Module: w.name, Name: name, Arity: arity}
	if body := node.ChildOfKind("do_block"); body != nil {
		for _, child := range body.Children {
			w.bodyExpr(child, from)
		}
	} else if kw := args.ChildOfKind("keywords"); kw != nil {
		// Keyword form: def foo(a), do: expr
		for _, pair := range kw.Children {
			if pair.Kind == "pair" && len(pair.Children) == 2 {
				w.bodyExpr(pair.Children[1], from)
			}
		}
	}
}

// functionHead reduces a definition head to (name, arity). Heads come in
// three shapes: a call like foo(a, b), a bare identifier for zero-arity
// no-paren definitions, and a `when` guard wrapping either of those.
func functionHead(head *syntax.Node) (string, int, bool) {
	switch {
	case head == nil:
		return "", 0, false
	case head.Kind == "identifier":
		return head.Text, 0, true
	case head.Kind == "call":
		target := head.Child(0)
		if target == nil || target.Kind != "identifier" {
			return "", 0, false
		}
		arity := 0
		if args := head.ChildOfKind("arguments"); args != nil {
			arity = len(args.Children)
		}
		return target.Text, arity, true
	case head.Kind == "binary_operator" && len(head.Children) >= 1:
		return functionHead(head.Children[0])
	}
	return "", 0, false
}

// bodyExpr walks an expression inside a function body in pre-order. Every
// node is descended into so calls nested in operators, collections, and
// block arguments are all seen.
func (w *moduleWalker) bodyExpr(node *syntax.Node, from MFA) {
	if node == nil {
		return
	}

	if node.Kind == "call" && len(node.Children) > 0 {
		target := node.Children[0]
		switch {
		case target.Kind == "dot":
			w.remoteCall(node, target, from)
			// A computed target like get_mod().run() carries call sites
			// of its own; alias and identifier leaves do not.
			if left := target.Child(0); left != nil && left.Kind != "alias" && left.Kind != "identifier" {
				w.bodyExpr(left, from)
			}
			w.descendCall(node, from)
			return
		case target.Kind == "identifier":
			kw := target.Text
			switch {
			case kw == "defmodule":
				extractModule(node, w.file, w.records)
				return
			case functionKeywords[kw]:
				w.functionDef(node)
				return
			case directiveKeywords[kw] != "":
				w.directive(node, directiveKeywords[kw])
				return
			case otherDefinitionKeywords[kw]:
				w.descendCall(node, from)
				return
			default:
				w.localCall(node, kw, from)
				w.descendCall(node, from)
				return
			}
		}
	}

	for _, child := range node.Children {
		w.bodyExpr(child, from)
	}
}

// descendCall continues the walk below a recorded call: its arguments and
// any do-block it carries, but not its target.
func (w *moduleWalker) descendCall(node *syntax.Node, from MFA) {
	for _, child := range node.Children[1:] {
		w.bodyExpr(child, from)
	}
}

func (w *moduleWalker) remoteCall(node, target *syntax.Node, from MFA) {
	if len(target.Children) != 2 {
		return
	}
	member := target.Children[1]
	if member.Kind != "identifier" {
		return
	}
	w.calls = append(w.calls, Call{
		Kind: CallRemote,
		From: from,
		To: MFA{
			Module: ResolveModuleRef(target.Children[0], w.name, w.table),
			Name:   member.Text,
			Arity:  callArity(node),
		},
	})
}

func (w *moduleWalker) localCall(node *syntax.Node, name string, from MFA) {
	w.calls = append(w.calls, Call{
		Kind: CallLocal,
		From: from,
		To:   MFA{Module: w.name, Name: name, Arity: callArity(node)},
	})
}

func callArity(node *syntax.Node) int {
	args := node.ChildOfKind("arguments")
	if args == nil {
		return 0
	}
	return len(args.Children)
}

// directive records a reference directive and, for alias, updates the table
// per the single-target, as-renamed, and multi-target rules.
func (w *moduleWalker) directive(node *syntax.Node, kind RefKind) {
	args := node.ChildOfKind("arguments")
	target := args.Child(0)
	if target == nil {
		return
	}

	// Multi-target form: alias A.{B, C}. The base must resolve; an
	// unresolved base contributes a single Unknown reference and no
	// table entries.
	if base, children, ok := multiAliasParts(target); ok {
		resolvedBase := ResolveModuleRef(base, w.name, w.table)
		if !resolvedBase.Known() {
			w.refs = append(w.refs, Ref{Kind: kind, Target: Unknown})
			return
		}
		for _, child := range children {
			expanded := joinSegments(append(resolvedBase.Segments(), child.Segments()...))
			w.refs = append(w.refs, Ref{Kind: kind, Target: expanded})
			if kind == RefAlias {
				w.table.Add(expanded, "")
			}
		}
		return
	}

	resolved := ResolveModuleRef(target, w.name, w.table)
	w.refs = append(w.refs, Ref{Kind: kind, Target: resolved})
	if kind == RefAlias {
		w.table.Add(resolved, asRename(args.ChildOfKind("keywords")))
	}
}

// multiAliasParts matches the A.{B, C} shape: a call whose target is a dot
// with only a left side, and whose arguments are the brace children.
func multiAliasParts(node *syntax.Node) (base *syntax.Node, children []ModuleName, ok bool) {
	if node.Kind != "call" || len(node.Children) == 0 {
		return nil, nil, false
	}
	dot := node.Children[0]
	if dot.Kind != "dot" || len(dot.Children) != 1 {
		return nil, nil, false
	}
	args := node.ChildOfKind("arguments")
	if args == nil {
		return nil, nil, false
	}
	for _, child := range collectAliases(args) {
		children = append(children, ModuleName(child.Text))
	}
	return dot.Children[0], children, true
}

// collectAliases gathers alias leaves one structural level deep, looking
// through a tuple wrapper when the grammar inserts one.
func collectAliases(node *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, child := range node.Children {
		switch child.Kind {
		case "alias":
			out = append(out, child)
		case "tuple":
			out = append(out, collectAliases(child)...)
		}
	}
	return out
}

func sortedFunctions(set map[FunctionSig]bool) []FunctionSig {
	out := make([]FunctionSig, 0, len(set))
	for sig := range set {
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Arity < out[j].Arity
	})
	return out
}
