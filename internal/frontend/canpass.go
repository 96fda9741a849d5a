package frontend

import (
	"github.com/stoutes/chapel/internal/resolution"
	"github.com/stoutes/chapel/internal/types"
)

// CanPass implements resolution.PassOracle.
//
// A value passes directly when the types are identical, when the formal is
// generic over it (`any`, `integral`, a generic composite it instantiates,
// an undecorated class), or through a conversion: class borrowing, nilability
// and subclass conversions, and integral or real widening. A `ref` formal
// accepts no conversion. An array or domain value is promoted over a formal
// of its element or index type.
func (f *Frontend) CanPass(have, want types.QualifiedType) resolution.CanPassResult {
	var fail resolution.CanPassResult
	if have.Type == nil || want.Type == nil {
		return fail
	}
	if have.IsType() != want.IsType() {
		return fail
	}
	res := f.canPassType(have.Type, want.Type)
	if !res.Passes {
		if !want.IsType() {
			if elt := promotedElement(have.Type); elt != nil {
				inner := f.canPassType(elt, want.Type)
				if inner.Passes && !inner.Converts {
					return resolution.CanPassResult{Passes: true, Promotes: true}
				}
			}
		}
		return fail
	}
	if want.Intent == types.IntentRef && res.Converts {
		return fail
	}
	return res
}

func promotedElement(t types.Type) types.Type {
	switch t := t.(type) {
	case *types.ArrayType:
		return t.EltType()
	case *types.DomainType:
		return t.IdxType()
	}
	return nil
}

var passes = resolution.CanPassResult{Passes: true}

func (f *Frontend) canPassType(have, want types.Type) resolution.CanPassResult {
	var fail resolution.CanPassResult
	if have == want {
		return passes
	}
	switch w := want.(type) {
	case *types.AnyType:
		if w.Accepts(have) {
			return passes
		}
	case *types.CompositeType:
		if w.IsClass() {
			return f.canPassClass(have, want)
		}
		if h, ok := have.(*types.CompositeType); ok && h.InstantiatedFrom() == w {
			return passes
		}
	case *types.ClassType:
		return f.canPassClass(have, want)
	case *types.Primitive:
		if h, ok := have.(*types.Primitive); ok && widens(h, w) {
			return resolution.CanPassResult{Passes: true, Converts: true}
		}
	case *types.TupleType:
		h, ok := have.(*types.TupleType)
		if !ok || h.Size() != w.Size() {
			return fail
		}
		res := passes
		borrowOnly := true
		for i := range h.Elems() {
			er := f.canPassType(h.Elems()[i], w.Elems()[i])
			if !er.Passes || er.Promotes {
				return fail
			}
			if er.Converts {
				res.Converts = true
				borrowOnly = borrowOnly && er.ConvertsWithBorrowing
			}
		}
		res.ConvertsWithBorrowing = res.Converts && borrowOnly
		return res
	}
	return fail
}

// widens reports whether a numeric value of type h converts implicitly to w.
func widens(h, w *types.Primitive) bool {
	switch {
	case h.Name() == w.Name() && h.IsNumeric():
		return h.Width() <= w.Width()
	case h.Name() == "uint" && w.Name() == "int":
		return h.Width() < w.Width()
	case h.IsIntegral() && w.Name() == "real":
		return true
	}
	return false
}

// classParts splits a class type into its basic class and decorator. An
// undecorated class has generic management.
func classParts(t types.Type) (basic *types.CompositeType, d types.Decorator, genericMgmt bool, ok bool) {
	switch t := t.(type) {
	case *types.CompositeType:
		if t.IsClass() {
			return t, types.BorrowedNonNil, true, true
		}
	case *types.ClassType:
		return t.Basic(), t.Decorator(), false, true
	}
	return nil, types.Decorator{}, false, false
}

// inherits reports whether have is want, an instantiation of want, or a
// subclass of either.
func inherits(have, want *types.CompositeType) (ok bool, subclass bool) {
	for c := have; c != nil; c = c.Parent() {
		if c == want || c.InstantiatedFrom() == want {
			return true, c != have
		}
	}
	return false, false
}

func (f *Frontend) canPassClass(have, want types.Type) resolution.CanPassResult {
	var fail resolution.CanPassResult
	hb, hd, _, ok := classParts(have)
	if !ok {
		return fail
	}
	wb, wd, wGeneric, ok := classParts(want)
	if !ok {
		return fail
	}
	ok, subclass := inherits(hb, wb)
	if !ok {
		return fail
	}
	res := passes
	if subclass {
		res.Converts = true
	}
	if wGeneric {
		return res
	}

	if hd.Nilable && !wd.Nilable {
		return fail
	}
	nilConv := !hd.Nilable && wd.Nilable
	borrow := false
	if hd.Management != wd.Management {
		if wd.Management != types.Borrowed {
			return fail
		}
		borrow = true
	}
	if nilConv || borrow {
		res.Converts = true
	}
	res.ConvertsWithBorrowing = borrow && !nilConv
	return res
}
