// Package scope builds the lexical scope tree of a program and answers name
// lookups against it.
package scope

import (
	"strings"

	"github.com/stoutes/chapel/internal/names"
	"github.com/stoutes/chapel/internal/uast"
)

// Config selects what a lookup visits.
type Config uint8

const (
	// Decls visits declarations made directly in the starting scope.
	Decls Config = 1 << iota
	// Parents continues into enclosing scopes up to the module scope.
	Parents
	// Methods keeps method declarations in the results. Without it they are
	// filtered out.
	Methods
	// UsesAndImports also visits the modules named in a module's uses.
	UsesAndImports
)

func (c Config) Has(flag Config) bool { return c&flag != 0 }

func (c Config) String() string {
	var parts []string
	for _, f := range []struct {
		flag Config
		name string
	}{{Decls, "decls"}, {Parents, "parents"}, {Methods, "methods"}, {UsesAndImports, "uses"}} {
		if c.Has(f.flag) {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

type Kind int

const (
	ModuleScope Kind = iota
	CompositeScope
)

// Scope is a module or composite body.
type Scope struct {
	kind   Kind
	id     names.ID
	parent *Scope
	decls  map[string][]uast.Node
	uses   []string
}

func (s *Scope) Kind() Kind     { return s.kind }
func (s *Scope) ID() names.ID   { return s.id }
func (s *Scope) Parent() *Scope { return s.parent }
func (s *Scope) IsModule() bool { return s.kind == ModuleScope }

func (s *Scope) declare(name string, n uast.Node) {
	s.decls[name] = append(s.decls[name], n)
}

// Tree holds every scope of one program.
type Tree struct {
	byID map[names.ID]*Scope
}

func Build(prog *uast.Program) *Tree {
	t := &Tree{byID: map[names.ID]*Scope{}}
	for _, mod := range prog.Modules {
		ms := t.add(ModuleScope, mod.ID, nil)
		ms.uses = mod.Uses
		for _, td := range mod.Types {
			ms.declare(td.DeclName(), td)
			c, ok := td.(*uast.Composite)
			if !ok {
				continue
			}
			cs := t.add(CompositeScope, c.ID, ms)
			for _, f := range c.Fields {
				cs.declare(f.Name, f)
			}
			for _, fn := range c.Methods {
				cs.declare(fn.Name, fn)
			}
		}
		for _, fn := range mod.Procs {
			ms.declare(fn.Name, fn)
		}
	}
	return t
}

func (t *Tree) add(k Kind, id names.ID, parent *Scope) *Scope {
	s := &Scope{kind: k, id: id, parent: parent, decls: map[string][]uast.Node{}}
	t.byID[id] = s
	return s
}

// ScopeFor returns the scope introduced by the module or composite id, or
// nil when id does not introduce one.
func (t *Tree) ScopeFor(id names.ID) *Scope {
	return t.byID[id]
}

// Result is the declarations found in one visited scope.
type Result struct {
	Scope *Scope
	Decls []uast.Node
}

// Lookup finds the declarations of name visible from s under cfg. Results
// are grouped per visited scope, nearest first; scopes with no match are
// omitted.
func (t *Tree) Lookup(s *Scope, name string, cfg Config) []Result {
	var out []Result
	visited := map[*Scope]bool{}
	visit := func(sc *Scope) {
		if sc == nil || visited[sc] {
			return
		}
		visited[sc] = true
		if found := filter(sc.decls[name], cfg); len(found) > 0 {
			out = append(out, Result{Scope: sc, Decls: found})
		}
	}

	cur := s
	for cur != nil {
		if cur != s || cfg.Has(Decls) {
			visit(cur)
		}
		if cur.IsModule() {
			if cfg.Has(UsesAndImports) {
				for _, u := range cur.uses {
					visit(t.byID[names.Qualify(u)])
				}
			}
			break
		}
		if !cfg.Has(Parents) {
			break
		}
		cur = cur.parent
	}
	return out
}

func filter(decls []uast.Node, cfg Config) []uast.Node {
	if cfg.Has(Methods) {
		return decls
	}
	var out []uast.Node
	for _, d := range decls {
		if fn, ok := d.(*uast.Proc); ok && fn.IsMethod {
			continue
		}
		out = append(out, d)
	}
	return out
}
