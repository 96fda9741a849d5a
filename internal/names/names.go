package names

import (
	"strconv"
	"strings"
)

// ID identifies a declaration by its symbol path: the module name first, then
// each enclosing declaration, e.g. "Geometry.Point.x". Overloaded procedures
// get a "#n" suffix on their last segment so that every declaration in a
// program has a distinct ID. The empty ID means "no declaration".
type ID string

const sep = "."

// Qualify builds an ID from a module name and the names of the enclosing
// declarations. Empty parts are skipped.
func Qualify(parts ...string) ID {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(p)
	}
	return ID(b.String())
}

// Child returns the ID of a declaration named name directly inside id.
func (id ID) Child(name string) ID {
	return Qualify(string(id), name)
}

// Overload returns the ID of the n-th declaration named name inside id.
func (id ID) Overload(name string, n int) ID {
	return id.Child(name + "#" + strconv.Itoa(n))
}

func (id ID) IsEmpty() bool { return id == "" }

// Split derives the owning module and the nested declaration path.
//
//   - "M" -> ("M", nil)
//   - "M.R" -> ("M", ["R"])
//   - "M.R.init#0" -> ("M", ["R", "init#0"])
func (id ID) Split() (mod string, path []string) {
	if id == "" {
		return "", nil
	}
	segs := strings.Split(string(id), sep)
	if len(segs) == 1 {
		return segs[0], nil
	}
	return segs[0], segs[1:]
}

// Module returns the module segment of id.
func (id ID) Module() string {
	mod, _ := id.Split()
	return mod
}

// Parent returns the ID of the declaration that encloses id, or the empty ID
// for a module.
func (id ID) Parent() ID {
	i := strings.LastIndex(string(id), sep)
	if i < 0 {
		return ""
	}
	return id[:i]
}

// Name returns the declared name of id without any overload suffix.
func (id ID) Name() string {
	last := string(id)
	if i := strings.LastIndex(last, sep); i >= 0 {
		last = last[i+1:]
	}
	if i := strings.LastIndexByte(last, '#'); i >= 0 {
		last = last[:i]
	}
	return last
}

// Within reports whether id is scope itself or nested inside it.
func (id ID) Within(scope ID) bool {
	if scope == "" {
		return true
	}
	if id == scope {
		return true
	}
	return strings.HasPrefix(string(id), string(scope)+sep)
}

// SameModule reports whether a and b are declared in the same module.
func SameModule(a, b ID) bool {
	return a.Module() == b.Module()
}

func (id ID) String() string { return string(id) }
