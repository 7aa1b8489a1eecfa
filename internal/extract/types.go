// Package extract turns parsed Elixir syntax trees into normalized module
// records: defined functions, recorded call sites, and cross-module
// reference directives, with alias-aware target resolution.
package extract

import (
	"fmt"
	"strings"
)

// ModuleName is a fully qualified, dot-joined module identifier.
// The Unknown sentinel stands for a target that could not be determined
// statically; it never expands further.
type ModuleName string

// Unknown marks an unresolvable module reference.
const Unknown ModuleName = "?"

// Known reports whether the name is a resolved module identifier.
func (m ModuleName) Known() bool {
	return m != "" && m != Unknown
}

// Segments splits the name into its identifier segments.
func (m ModuleName) Segments() []string {
	if !m.Known() {
		return nil
	}
	return strings.Split(string(m), ".")
}

// LastSegment returns the final segment, or "" for Unknown.
func (m ModuleName) LastSegment() string {
	segs := m.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

func joinSegments(segs []string) ModuleName {
	if len(segs) == 0 {
		return Unknown
	}
	return ModuleName(strings.Join(segs, "."))
}

// FunctionSig identifies a function by name and declared parameter count.
type FunctionSig struct {
	Name  string `json:"name"`
	Arity int    `json:"arity"`
}

// MFA is a (module, function, arity) triple identifying one callable.
type MFA struct {
	Module ModuleName `json:"module"`
	Name   string     `json:"name"`
	Arity  int        `json:"arity"`
}

// String renders the conventional Mod.fun/arity form.
func (m MFA) String() string {
	return fmt.Sprintf("%s.%s/%d", m.Module, m.Name, m.Arity)
}

// CallKind classifies a call site by target locality.
type CallKind string

const (
	CallLocal  CallKind = "local"
	CallRemote CallKind = "remote"
)

// RefKind names the directive that produced a module reference.
type RefKind string

const (
	RefAlias   RefKind = "alias"
	RefImport  RefKind = "import"
	RefUse     RefKind = "use"
	RefRequire RefKind = "require"
)

// Call is one recorded invocation. From is always the enclosing definition;
// To.Module may be Unknown.
type Call struct {
	Kind CallKind `json:"kind"`
	From MFA      `json:"from"`
	To   MFA      `json:"to"`
}

// Ref is one recorded reference directive.
type Ref struct {
	Kind   RefKind    `json:"kind"`
	Target ModuleName `json:"target"`
}

// Module is the normalized extraction result for one defmodule construct.
// Functions are unique and sorted by (name, arity); Calls and Refs keep
// their original encounter order.
type Module struct {
	Name      ModuleName    `json:"name"`
	File      string        `json:"file"`
	Functions []FunctionSig `json:"functions"`
	Calls     []Call        `json:"calls"`
	Refs      []Ref         `json:"refs"`
}
