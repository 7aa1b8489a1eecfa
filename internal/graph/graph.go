// Package graph folds module records into the five derived artifacts:
// module nodes, module edges, call nodes, call edges, and aggregated
// module-to-module call edges.
package graph

import (
	"sort"

	"github.com/exmap-dev/exmap/internal/extract"
)

// EdgeKind labels a module edge with what produced it: a call site or one
// of the reference directives.
type EdgeKind string

const EdgeCall EdgeKind = "call"

// ModuleNode is one module record lifted into the graph. Duplicate names
// across files stay separate entries, each with its own file and functions.
type ModuleNode struct {
	Name      extract.ModuleName    `json:"name"`
	File      string                `json:"file"`
	Functions []extract.FunctionSig `json:"functions"`
}

// ModuleEdge is a deduplicated module dependency.
type ModuleEdge struct {
	From extract.ModuleName `json:"from"`
	To   extract.ModuleName `json:"to"`
	Kind EdgeKind           `json:"kind"`
}

// CallEdge is one call site; repeated calls yield repeated edges because
// multiplicity reflects call frequency.
type CallEdge struct {
	Kind extract.CallKind `json:"kind"`
	From extract.MFA      `json:"from"`
	To   extract.MFA      `json:"to"`
}

// ModuleCallEdge is a module-to-module call edge with kind erased.
type ModuleCallEdge struct {
	From extract.ModuleName `json:"from"`
	To   extract.ModuleName `json:"to"`
}

// Options controls graph construction.
type Options struct {
	// InternalOnly restricts every artifact to modules that were
	// actually scanned, in two passes: edges against the known-module
	// set, then call nodes orphaned by the first pass.
	InternalOnly bool
}

// Result holds the derived graph artifacts for one run.
type Result struct {
	Modules         []ModuleNode     `json:"modules"`
	ModuleEdges     []ModuleEdge     `json:"module_edges"`
	CallNodes       []extract.MFA    `json:"call_nodes"`
	CallEdges       []CallEdge       `json:"call_edges"`
	ModuleCallEdges []ModuleCallEdge `json:"module_call_edges"`
}

// Build folds the full ordered record sequence into a Result. It is a pure
// function of its input: records arrive in file order, and every output
// order is deterministic.
func Build(records []extract.Module, opts Options) *Result {
	res := &Result{
		Modules:         make([]ModuleNode, 0, len(records)),
		ModuleEdges:     make([]ModuleEdge, 0),
		CallNodes:       make([]extract.MFA, 0),
		CallEdges:       make([]CallEdge, 0),
		ModuleCallEdges: make([]ModuleCallEdge, 0),
	}

	callNodeSet := make(map[extract.MFA]bool)
	moduleEdgeSeen := make(map[ModuleEdge]bool)
	moduleCallSeen := make(map[ModuleCallEdge]bool)

	for _, rec := range records {
		res.Modules = append(res.Modules, ModuleNode{
			Name:      rec.Name,
			File:      rec.File,
			Functions: rec.Functions,
		})

		for _, sig := range rec.Functions {
			callNodeSet[extract.MFA{Module: rec.Name, Name: sig.Name, Arity: sig.Arity}] = true
		}

		// Module edges: call targets first, then directive targets.
		// Unknown targets and self-edges never materialize.
		for _, call := range rec.Calls {
			addModuleEdge(res, moduleEdgeSeen, rec.Name, call.To.Module, EdgeCall)
		}
		for _, ref := range rec.Refs {
			addModuleEdge(res, moduleEdgeSeen, rec.Name, ref.Target, EdgeKind(ref.Kind))
		}

		// Call edges keep multiplicity and traversal order.
		for _, call := range rec.Calls {
			res.CallEdges = append(res.CallEdges, CallEdge{Kind: call.Kind, From: call.From, To: call.To})
		}

		// Aggregated edges: dedup within the record, then globally.
		// Unknown targets and self-pairs never materialize, same as
		// module edges.
		recSeen := make(map[ModuleCallEdge]bool)
		for _, call := range rec.Calls {
			pair := ModuleCallEdge{From: rec.Name, To: call.To.Module}
			if !pair.To.Known() || pair.From == pair.To || recSeen[pair] || moduleCallSeen[pair] {
				continue
			}
			recSeen[pair] = true
			moduleCallSeen[pair] = true
			res.ModuleCallEdges = append(res.ModuleCallEdges, pair)
		}
	}

	res.CallNodes = sortedMFAs(callNodeSet)

	if opts.InternalOnly {
		applyInternalFilter(res)
	}
	return res
}

func addModuleEdge(res *Result, seen map[ModuleEdge]bool, from, to extract.ModuleName, kind EdgeKind) {
	if !to.Known() || to == from {
		return
	}
	edge := ModuleEdge{From: from, To: to, Kind: kind}
	if seen[edge] {
		return
	}
	seen[edge] = true
	res.ModuleEdges = append(res.ModuleEdges, edge)
}

// applyInternalFilter restricts the result to scanned modules. Exactly two
// passes, no iteration to a fixpoint: first every edge with a foreign
// endpoint goes, then every call node no surviving call edge touches.
func applyInternalFilter(res *Result) {
	known := make(map[extract.ModuleName]bool, len(res.Modules))
	for _, m := range res.Modules {
		if m.Name.Known() {
			known[m.Name] = true
		}
	}

	moduleEdges := res.ModuleEdges[:0]
	for _, e := range res.ModuleEdges {
		if known[e.From] && known[e.To] {
			moduleEdges = append(moduleEdges, e)
		}
	}
	res.ModuleEdges = moduleEdges

	callEdges := res.CallEdges[:0]
	for _, e := range res.CallEdges {
		if known[e.From.Module] && known[e.To.Module] {
			callEdges = append(callEdges, e)
		}
	}
	res.CallEdges = callEdges

	moduleCallEdges := res.ModuleCallEdges[:0]
	for _, e := range res.ModuleCallEdges {
		if known[e.From] && known[e.To] {
			moduleCallEdges = append(moduleCallEdges, e)
		}
	}
	res.ModuleCallEdges = moduleCallEdges

	endpoints := make(map[extract.MFA]bool, len(res.CallEdges)*2)
	for _, e := range res.CallEdges {
		endpoints[e.From] = true
		endpoints[e.To] = true
	}
	callNodes := res.CallNodes[:0]
	for _, n := range res.CallNodes {
		if endpoints[n] {
			callNodes = append(callNodes, n)
		}
	}
	res.CallNodes = callNodes
}

func sortedMFAs(set map[extract.MFA]bool) []extract.MFA {
	out := make([]extract.MFA, 0, len(set))
	for mfa := range set {
		out = append(out, mfa)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Arity < out[j].Arity
	})
	return out
}
