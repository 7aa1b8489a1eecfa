package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/exmap-dev/exmap/internal/extract"
	exgraph "github.com/exmap-dev/exmap/internal/graph"
)

// Flavor selects which artifact a DOT rendering shows.
type Flavor string

const (
	FlavorModules     Flavor = "modules"
	FlavorCalls       Flavor = "calls"
	FlavorModuleCalls Flavor = "modulecalls"
)

// DotOptions controls DOT rendering. Prune lists qualified module names to
// exclude, exact match only; a pruned name drops its node and every edge
// touching it. Pruning is a render-time concern and never changes the
// underlying artifacts or their JSON form.
type DotOptions struct {
	Flavor Flavor
	Prune  []string
}

// WriteDOT renders one graph flavor in Graphviz DOT syntax.
func WriteDOT(w io.Writer, res *exgraph.Result, opts DotOptions) error {
	pruned := make(map[string]bool, len(opts.Prune))
	for _, name := range opts.Prune {
		pruned[name] = true
	}

	switch opts.Flavor {
	case FlavorModules, "":
		return writeModuleDOT(w, res, pruned)
	case FlavorCalls:
		return writeCallDOT(w, res, pruned)
	case FlavorModuleCalls:
		return writeModuleCallDOT(w, res, pruned)
	}
	return fmt.Errorf("render: unknown graph flavor %q", opts.Flavor)
}

func writeModuleDOT(w io.Writer, res *exgraph.Result, pruned map[string]bool) error {
	g := graph.New(graph.StringHash, graph.Directed())

	for _, m := range res.Modules {
		name := string(m.Name)
		if pruned[name] {
			continue
		}
		label := fmt.Sprintf("%s\\n%d functions", name, len(m.Functions))
		_ = g.AddVertex(name,
			graph.VertexAttribute("label", label),
			graph.VertexAttribute("shape", "box"),
		)
	}
	for _, e := range res.ModuleEdges {
		if pruned[string(e.From)] || pruned[string(e.To)] {
			continue
		}
		ensureVertex(g, string(e.From))
		ensureVertex(g, string(e.To))
		_ = g.AddEdge(string(e.From), string(e.To),
			graph.EdgeAttribute("label", string(e.Kind)),
		)
	}

	return draw.DOT(g, w)
}

func writeCallDOT(w io.Writer, res *exgraph.Result, pruned map[string]bool) error {
	g := graph.New(graph.StringHash, graph.Directed())

	for _, n := range res.CallNodes {
		if pruned[string(n.Module)] {
			continue
		}
		_ = g.AddVertex(n.String(), graph.VertexAttribute("shape", "ellipse"))
	}

	// The DOT layer collapses parallel edges, so multiplicity becomes an
	// edge label and a proportional pen width.
	type pair struct{ from, to string }
	counts := make(map[pair]int)
	kinds := make(map[pair]extract.CallKind)
	var order []pair
	for _, e := range res.CallEdges {
		if pruned[string(e.From.Module)] || pruned[string(e.To.Module)] {
			continue
		}
		p := pair{from: e.From.String(), to: e.To.String()}
		if counts[p] == 0 {
			order = append(order, p)
			kinds[p] = e.Kind
		}
		counts[p]++
	}

	for _, p := range order {
		ensureVertex(g, p.from)
		ensureVertex(g, p.to)
		attrs := []func(*graph.EdgeProperties){
			graph.EdgeAttribute("penwidth", fmt.Sprintf("%d", min(counts[p], 5))),
		}
		if kinds[p] == extract.CallRemote {
			attrs = append(attrs, graph.EdgeAttribute("style", "solid"))
		} else {
			attrs = append(attrs, graph.EdgeAttribute("style", "dashed"))
		}
		if counts[p] > 1 {
			attrs = append(attrs, graph.EdgeAttribute("label", fmt.Sprintf("%d", counts[p])))
		}
		_ = g.AddEdge(p.from, p.to, attrs...)
	}

	return draw.DOT(g, w)
}

func writeModuleCallDOT(w io.Writer, res *exgraph.Result, pruned map[string]bool) error {
	g := graph.New(graph.StringHash, graph.Directed())

	names := make([]string, 0, len(res.Modules))
	for _, m := range res.Modules {
		names = append(names, string(m.Name))
	}
	sort.Strings(names)
	for _, name := range names {
		if pruned[name] {
			continue
		}
		_ = g.AddVertex(name, graph.VertexAttribute("shape", "box"))
	}

	for _, e := range res.ModuleCallEdges {
		if pruned[string(e.From)] || pruned[string(e.To)] {
			continue
		}
		ensureVertex(g, string(e.From))
		ensureVertex(g, string(e.To))
		_ = g.AddEdge(string(e.From), string(e.To))
	}

	return draw.DOT(g, w)
}

// ensureVertex adds an endpoint that is not itself a rendered node, styled
// to stand apart from scanned modules. AddVertex on an existing vertex is a
// no-op error and safely ignored.
func ensureVertex(g graph.Graph[string, string], name string) {
	_ = g.AddVertex(name, graph.VertexAttribute("style", "dotted"))
}
