package typesystem

// Unify implements Robinson unification with an occurs check, following the
// five-step procedure of spec §4.2 "Unification (harmonize)".
func Unify(a, b Type) (Subst, error) {
	return unify(a, b, Subst{})
}

func unify(a, b Type, s Subst) (Subst, error) {
	a = a.Apply(s)
	b = b.Apply(s)

	// Step 2: identical types unify trivially.
	if a.String() == b.String() && sameShape(a, b) {
		return s, nil
	}

	// Any/Unknown unify with everything (§3 Invariants).
	if IsAnyOrUnknown(a) || IsAnyOrUnknown(b) {
		return s, nil
	}

	// Step 3: a variable not occurring in the other side binds.
	if va, ok := a.(TVar); ok {
		return bind(va, b, s)
	}
	if vb, ok := b.(TVar); ok {
		return bind(vb, a, s)
	}

	switch ta := a.(type) {
	case TArrow:
		tb, ok := b.(TArrow)
		if !ok {
			return nil, errMismatch(a, b, "expected a function")
		}
		s1, err := unify(ta.Param, tb.Param, s)
		if err != nil {
			return nil, err
		}
		return unify(ta.Result, tb.Result, s1)
	case TGeneric:
		tb, ok := b.(TGeneric)
		if !ok || tb.Name != ta.Name || len(tb.Args) != len(ta.Args) {
			return nil, errMismatch(a, b, "type constructor mismatch")
		}
		cur := s
		for i := range ta.Args {
			var err error
			cur, err = unify(ta.Args[i], tb.Args[i], cur)
			if err != nil {
				return nil, err
			}
		}
		return cur, nil
	case TCon:
		tb, ok := b.(TCon)
		if !ok || tb.Name != ta.Name {
			return nil, errMismatch(a, b, "type mismatch")
		}
		return s, nil
	default:
		return nil, errMismatch(a, b, "unsupported type in unification")
	}
}

func sameShape(a, b Type) bool {
	switch a.(type) {
	case TVar:
		_, ok := b.(TVar)
		return ok
	case TCon:
		_, ok := b.(TCon)
		return ok
	case TArrow:
		_, ok := b.(TArrow)
		return ok
	case TGeneric:
		_, ok := b.(TGeneric)
		return ok
	}
	return false
}

// bind binds a type variable to a type after the occurs check (Bind in
// spec terms).
func bind(v TVar, t Type, s Subst) (Subst, error) {
	t = t.Apply(s)
	if tv, ok := t.(TVar); ok && tv.Name == v.Name {
		return s, nil
	}
	if OccursCheck(v, t) {
		return nil, &InfiniteTypeError{Var: v, In: t}
	}
	next := Subst{v.Name: t}
	return s.Compose(next), nil
}

// OccursCheck reports whether v appears free within t.
func OccursCheck(v TVar, t Type) bool {
	for _, fv := range t.FreeTypeVariables() {
		if fv.Name == v.Name {
			return true
		}
	}
	return false
}
