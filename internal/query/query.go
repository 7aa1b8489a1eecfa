// Package query answers callers/callees lookups over the function call
// graph produced by one analysis run.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/exmap-dev/exmap/internal/extract"
	exgraph "github.com/exmap-dev/exmap/internal/graph"
)

// Index holds an in-memory call graph with forward and reverse adjacency
// for O(1) lookups by MFA.
type Index struct {
	graph   graph.Graph[string, extract.MFA]
	callers map[string][]extract.MFA
	callees map[string][]extract.MFA
	byName  map[string][]extract.MFA // "Mod.fun" and bare "fun" -> nodes
}

// NewIndex builds the lookup structures from a graph result.
func NewIndex(res *exgraph.Result) *Index {
	ix := &Index{
		graph:   graph.New(func(m extract.MFA) string { return m.String() }, graph.Directed()),
		callers: make(map[string][]extract.MFA),
		callees: make(map[string][]extract.MFA),
		byName:  make(map[string][]extract.MFA),
	}

	for _, n := range res.CallNodes {
		_ = ix.graph.AddVertex(n)
		ix.byName[string(n.Module)+"."+n.Name] = append(ix.byName[string(n.Module)+"."+n.Name], n)
		ix.byName[n.Name] = append(ix.byName[n.Name], n)
	}

	for _, e := range res.CallEdges {
		_ = ix.graph.AddVertex(e.From)
		_ = ix.graph.AddVertex(e.To)
		_ = ix.graph.AddEdge(e.From.String(), e.To.String())
		ix.callees[e.From.String()] = append(ix.callees[e.From.String()], e.To)
		ix.callers[e.To.String()] = append(ix.callers[e.To.String()], e.From)
	}

	return ix
}

// Resolve maps a user-supplied target to matching call nodes. Accepted
// forms: "Mod.fun/2" (exact), "Mod.fun" (any arity), "fun" (any module).
func (ix *Index) Resolve(target string) []extract.MFA {
	if mfa, err := ParseMFA(target); err == nil {
		if node, err := ix.graph.Vertex(mfa.String()); err == nil {
			return []extract.MFA{node}
		}
		return nil
	}
	return sortedUnique(ix.byName[target])
}

// Callers returns the distinct MFAs with a call edge into target, sorted.
func (ix *Index) Callers(target extract.MFA) []extract.MFA {
	return sortedUnique(ix.callers[target.String()])
}

// Callees returns the distinct MFAs target has a call edge to, sorted.
func (ix *Index) Callees(target extract.MFA) []extract.MFA {
	return sortedUnique(ix.callees[target.String()])
}

// ParseMFA parses the conventional Mod.fun/arity form.
func ParseMFA(s string) (extract.MFA, error) {
	slash := strings.LastIndex(s, "/")
	if slash == -1 {
		return extract.MFA{}, fmt.Errorf("query: %q is not a Mod.fun/arity target", s)
	}
	arity, err := strconv.Atoi(s[slash+1:])
	if err != nil || arity < 0 {
		return extract.MFA{}, fmt.Errorf("query: bad arity in %q", s)
	}
	head := s[:slash]
	dot := strings.LastIndex(head, ".")
	if dot == -1 || dot == 0 || dot == len(head)-1 {
		return extract.MFA{}, fmt.Errorf("query: %q is not a Mod.fun/arity target", s)
	}
	return extract.MFA{
		Module: extract.ModuleName(head[:dot]),
		Name:   head[dot+1:],
		Arity:  arity,
	}, nil
}

func sortedUnique(in []extract.MFA) []extract.MFA {
	seen := make(map[extract.MFA]bool, len(in))
	out := make([]extract.MFA, 0, len(in))
	for _, mfa := range in {
		if seen[mfa] {
			continue
		}
		seen[mfa] = true
		out = append(out, mfa)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
