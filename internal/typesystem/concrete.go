package typesystem

// Concrete builds the TCon for one of the spec §3 base types.
func Concrete(b Base) Type { return TCon{Name: string(b)} }

// IsAnyOrUnknown reports whether t is one of the gradual-typing escape
// hatches that unify with everything (§3 Invariants).
func IsAnyOrUnknown(t Type) bool {
	c, ok := t.(TCon)
	return ok && (c.Name == string(Any) || c.Name == string(UnknownT))
}
