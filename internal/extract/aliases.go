package extract

import (
	"strings"

	"github.com/exmap-dev/exmap/internal/syntax"
)

// AliasTable maps a short alias name to the qualified module it stands for.
// One table exists per module body and is threaded through the whole body
// traversal, nested function bodies included: an alias introduced inside a
// def stays visible to later siblings. That mirrors the behavior this tool
// documents against, so it is kept on purpose rather than reset per scope.
type AliasTable map[string]ModuleName

// ResolveModuleRef resolves a module-position node against the current
// module and alias table. Anything that is not a literal alias chain, a
// __MODULE__ self reference, or a dot over those reduces to Unknown.
func ResolveModuleRef(node *syntax.Node, current ModuleName, table AliasTable) ModuleName {
	if node == nil {
		return Unknown
	}

	switch node.Kind {
	case "alias":
		segs := strings.Split(node.Text, ".")
		if target, ok := table[segs[0]]; ok && target.Known() {
			return joinSegments(append(target.Segments(), segs[1:]...))
		}
		return joinSegments(segs)

	case "identifier":
		if node.Text == "__MODULE__" && current.Known() {
			return current
		}
		return Unknown

	case "dot":
		// Foo.Bar lexes as a single alias node, so a dot in module
		// position means a computed head like __MODULE__.Sub.
		if len(node.Children) != 2 {
			return Unknown
		}
		left := ResolveModuleRef(node.Children[0], current, table)
		if !left.Known() {
			return Unknown
		}
		right := node.Children[1]
		if right.Kind != "alias" {
			return Unknown
		}
		return joinSegments(append(left.Segments(), strings.Split(right.Text, ".")...))
	}

	return Unknown
}

// Add inserts a mapping for a resolved alias target. When asName is empty
// the target's last segment keys the entry. Unknown targets insert nothing.
func (t AliasTable) Add(target ModuleName, asName string) {
	if !target.Known() {
		return
	}
	if asName == "" {
		asName = target.LastSegment()
	}
	if asName == "" {
		return
	}
	t[asName] = target
}

// asRename extracts the rename from an `as: Baz` keyword argument. The
// rename only applies when the value is a literal single-segment alias.
func asRename(keywords *syntax.Node) string {
	if keywords == nil {
		return ""
	}
	for _, pair := range keywords.Children {
		if pair.Kind != "pair" || len(pair.Children) != 2 {
			continue
		}
		key := pair.Children[0]
		if key.Kind != "keyword" {
			continue
		}
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(key.Text), ":"))
		if name != "as" {
			continue
		}
		value := pair.Children[1]
		if value.Kind == "alias" && !strings.Contains(value.Text, ".") {
			return value.Text
		}
		return ""
	}
	return ""
}
