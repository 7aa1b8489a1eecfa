package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exmap-dev/exmap/internal/syntax"
)

func TestExtractFunctionsAndLocalCalls(t *testing.T) {
	tree := source(defmodule(aliasLeaf("M"),
		def(defHead("a"), localCall("b")),
		def(defHead("b")),
	))

	records := ExtractModules(tree, "lib/m.ex")
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, ModuleName("M"), rec.Name)
	assert.Equal(t, "lib/m.ex", rec.File)
	assert.Equal(t, []FunctionSig{{Name: "a", Arity: 0}, {Name: "b", Arity: 0}}, rec.Functions)
	require.Len(t, rec.Calls, 1)
	assert.Equal(t, Call{
		Kind: CallLocal,
		From: MFA{Module: "M", Name: "a", Arity: 0},
		To:   MFA{Module: "M", Name: "b", Arity: 0},
	}, rec.Calls[0])
}

func TestPrivateDefinitionsExtractLikePublic(t *testing.T) {
	tree := source(defmodule(aliasLeaf("M"),
		def(defHead("a"), localCall("helper", id("x"))),
		defp(defHead("helper", id("x")), remoteCall(aliasLeaf("IO"), "puts", id("x"))),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	// Visibility does not change extraction: defp contributes the same
	// signature and call sites def would.
	assert.Equal(t, []FunctionSig{
		{Name: "a", Arity: 0},
		{Name: "helper", Arity: 1},
	}, rec.Functions)
	require.Len(t, rec.Calls, 2)
	assert.Equal(t, Call{
		Kind: CallRemote,
		From: MFA{Module: "M", Name: "helper", Arity: 1},
		To:   MFA{Module: "IO", Name: "puts", Arity: 1},
	}, rec.Calls[1])
}

func TestAliasDirectiveResolvesRemoteCall(t *testing.T) {
	tree := source(defmodule(aliasLeaf("M"),
		directive("alias", aliasLeaf("A.B")),
		def(defHead("f"), remoteCall(aliasLeaf("B"), "g", id("x"))),
	))

	records := ExtractModules(tree, "lib/m.ex")
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, []Ref{{Kind: RefAlias, Target: "A.B"}}, rec.Refs)
	require.Len(t, rec.Calls, 1)
	assert.Equal(t, Call{
		Kind: CallRemote,
		From: MFA{Module: "M", Name: "f", Arity: 0},
		To:   MFA{Module: "A.B", Name: "g", Arity: 1},
	}, rec.Calls[0])
}

func TestAliasAsRename(t *testing.T) {
	tree := source(defmodule(aliasLeaf("M"),
		directive("alias", aliasLeaf("A.B"), keywords(pair("as", aliasLeaf("C")))),
		def(defHead("f"), remoteCall(aliasLeaf("C"), "g")),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	require.Len(t, rec.Calls, 1)
	assert.Equal(t, ModuleName("A.B"), rec.Calls[0].To.Module)

	// The default short name is not installed when a rename applies.
	tree = source(defmodule(aliasLeaf("M"),
		directive("alias", aliasLeaf("A.B"), keywords(pair("as", aliasLeaf("C")))),
		def(defHead("f"), remoteCall(aliasLeaf("B"), "g")),
	))
	rec = ExtractModules(tree, "m.ex")[0]
	assert.Equal(t, ModuleName("B"), rec.Calls[0].To.Module)
}

func TestMultiAliasExpandsChildren(t *testing.T) {
	multi := call(dot(aliasLeaf("A")), args(aliasLeaf("B"), aliasLeaf("C")))
	tree := source(defmodule(aliasLeaf("M"),
		directive("alias", multi),
		def(defHead("f"), remoteCall(aliasLeaf("C"), "h")),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	assert.Equal(t, []Ref{
		{Kind: RefAlias, Target: "A.B"},
		{Kind: RefAlias, Target: "A.C"},
	}, rec.Refs)
	require.Len(t, rec.Calls, 1)
	assert.Equal(t, ModuleName("A.C"), rec.Calls[0].To.Module)
}

func TestMultiAliasUnresolvedBase(t *testing.T) {
	multi := call(dot(id("base")), args(aliasLeaf("B"), aliasLeaf("C")))
	tree := source(defmodule(aliasLeaf("M"),
		directive("alias", multi),
		def(defHead("f"), remoteCall(aliasLeaf("B"), "g")),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	// The whole directive degrades to one Unknown reference and installs
	// no mapping.
	assert.Equal(t, []Ref{{Kind: RefAlias, Target: Unknown}}, rec.Refs)
	assert.Equal(t, ModuleName("B"), rec.Calls[0].To.Module)
}

func TestAliasInsideDefLeaksToSiblings(t *testing.T) {
	tree := source(defmodule(aliasLeaf("M"),
		def(defHead("f"), directive("alias", aliasLeaf("A.B"))),
		def(defHead("g"), remoteCall(aliasLeaf("B"), "h")),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	require.Len(t, rec.Calls, 1)
	// An alias introduced inside f's body stays visible in g. One table
	// per module body, on purpose.
	assert.Equal(t, ModuleName("A.B"), rec.Calls[0].To.Module)
	assert.Equal(t, []Ref{{Kind: RefAlias, Target: "A.B"}}, rec.Refs)
}

func TestNestedModulesYieldSeparateRecords(t *testing.T) {
	tree := source(defmodule(aliasLeaf("Outer"),
		def(defHead("a")),
		defmodule(aliasLeaf("Outer.Inner"),
			def(defHead("b")),
		),
	))

	records := ExtractModules(tree, "m.ex")
	require.Len(t, records, 2)
	assert.Equal(t, ModuleName("Outer"), records[0].Name)
	assert.Equal(t, ModuleName("Outer.Inner"), records[1].Name)
	assert.Equal(t, []FunctionSig{{Name: "a", Arity: 0}}, records[0].Functions)
	assert.Equal(t, []FunctionSig{{Name: "b", Arity: 0}}, records[1].Functions)
}

func TestDynamicCallTargetIsUnknown(t *testing.T) {
	tree := source(defmodule(aliasLeaf("M"),
		def(defHead("a"), remoteCall(id("mod"), "g")),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	require.Len(t, rec.Calls, 1)
	assert.Equal(t, Call{
		Kind: CallRemote,
		From: MFA{Module: "M", Name: "a", Arity: 0},
		To:   MFA{Module: Unknown, Name: "g", Arity: 0},
	}, rec.Calls[0])
}

func TestComputedRemoteTargetSubtreeIsWalked(t *testing.T) {
	// get_mod().run(): the remote call degrades to an unknown target,
	// but the call computing that target is still a call site.
	computed := call(dot(localCall("get_mod"), id("run")), args())
	tree := source(defmodule(aliasLeaf("M"),
		def(defHead("f"), computed),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	require.Len(t, rec.Calls, 2)
	assert.Equal(t, Call{
		Kind: CallRemote,
		From: MFA{Module: "M", Name: "f", Arity: 0},
		To:   MFA{Module: Unknown, Name: "run", Arity: 0},
	}, rec.Calls[0])
	assert.Equal(t, Call{
		Kind: CallLocal,
		From: MFA{Module: "M", Name: "f", Arity: 0},
		To:   MFA{Module: "M", Name: "get_mod", Arity: 0},
	}, rec.Calls[1])
}

func TestFunctionClausesCollapseAndSort(t *testing.T) {
	tree := source(defmodule(aliasLeaf("M"),
		def(defHead("z", id("x"))),
		def(defHead("a", id("x"), id("y"))),
		def(defHead("z", id("x"))), // second clause, same arity
		def(defHead("a", id("x"))),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	assert.Equal(t, []FunctionSig{
		{Name: "a", Arity: 1},
		{Name: "a", Arity: 2},
		{Name: "z", Arity: 1},
	}, rec.Functions)
}

func TestGuardedAndZeroArityHeads(t *testing.T) {
	guarded := &syntax.Node{Kind: "binary_operator", Children: []*syntax.Node{
		defHead("f", id("x")),
		call(id("is_integer"), args(id("x"))),
	}}
	tree := source(defmodule(aliasLeaf("M"),
		def(guarded),
		def(id("bare")), // zero-arity, no parens
	))

	rec := ExtractModules(tree, "m.ex")[0]
	assert.Equal(t, []FunctionSig{
		{Name: "bare", Arity: 0},
		{Name: "f", Arity: 1},
	}, rec.Functions)
}

func TestKeywordBodyForm(t *testing.T) {
	// def f, do: g(x)
	node := call(id("def"), args(
		id("f"),
		keywords(pair("do", localCall("g", id("x")))),
	))
	tree := source(defmodule(aliasLeaf("M"), node))

	rec := ExtractModules(tree, "m.ex")[0]
	assert.Equal(t, []FunctionSig{{Name: "f", Arity: 0}}, rec.Functions)
	require.Len(t, rec.Calls, 1)
	assert.Equal(t, MFA{Module: "M", Name: "g", Arity: 1}, rec.Calls[0].To)
}

func TestDirectiveKinds(t *testing.T) {
	tree := source(defmodule(aliasLeaf("M"),
		directive("import", aliasLeaf("Enum")),
		directive("use", aliasLeaf("GenServer")),
		directive("require", aliasLeaf("Logger")),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	assert.Equal(t, []Ref{
		{Kind: RefImport, Target: "Enum"},
		{Kind: RefUse, Target: "GenServer"},
		{Kind: RefRequire, Target: "Logger"},
	}, rec.Refs)
}

func TestUnknownModuleName(t *testing.T) {
	// defmodule with a computed name expression.
	tree := source(call(id("defmodule"), args(localCall("make_name")), doBlock(
		def(defHead("f"), localCall("g")),
	)))

	records := ExtractModules(tree, "m.ex")
	require.Len(t, records, 1)
	assert.Equal(t, Unknown, records[0].Name)
	// Local calls inherit the unknown enclosing module.
	assert.Equal(t, Unknown, records[0].Calls[0].To.Module)
}

func TestModuleLevelBareCallsAreNotCallSites(t *testing.T) {
	tree := source(defmodule(aliasLeaf("M"),
		localCall("compile_env", id("x")),
		def(defHead("f")),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	assert.Empty(t, rec.Calls)
}

func TestNestedCallsInArgumentsAreRecorded(t *testing.T) {
	tree := source(defmodule(aliasLeaf("M"),
		def(defHead("f"), localCall("outer", localCall("inner"))),
	))

	rec := ExtractModules(tree, "m.ex")[0]
	require.Len(t, rec.Calls, 2)
	// Pre-order: the outer call is recorded before the one in its
	// arguments.
	assert.Equal(t, "outer", rec.Calls[0].To.Name)
	assert.Equal(t, 1, rec.Calls[0].To.Arity)
	assert.Equal(t, "inner", rec.Calls[1].To.Name)
}

func TestTotalOverUnrecognizedNodes(t *testing.T) {
	attr := &syntax.Node{Kind: "unary_operator", Children: []*syntax.Node{
		{Kind: "string", Text: "docs"},
	}}
	tree := source(defmodule(aliasLeaf("M"), attr, def(defHead("f"))))

	rec := ExtractModules(tree, "m.ex")[0]
	assert.Equal(t, []FunctionSig{{Name: "f", Arity: 0}}, rec.Functions)
	assert.Empty(t, rec.Calls)
	assert.Empty(t, rec.Refs)
}
