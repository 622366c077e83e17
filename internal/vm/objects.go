package vm

// Every Object embeds refCount so reference-counted sharing (spec
// Non-goals: "no garbage collection beyond reference-counted value sharing
// within the VM") has one consistent bookkeeping field across kinds.
type refCount struct{ n int }

func (r *refCount) refs() *int { return &r.n }

// ListObject backs List<T> values. Slices alias on assignment (refcounted
// sharing); a mutating builtin must copy Elements first.
type ListObject struct {
	refCount
	Elements []Value
}

// MapEntry is one key/value pair in insertion order (Map preserves
// insertion order the way the teacher's own map builtins do).
type MapEntry struct {
	Key   Value
	Value Value
}

type MapObject struct {
	refCount
	Entries []MapEntry
}

func (m *MapObject) Get(key Value) (Value, bool) {
	for _, e := range m.Entries {
		if Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return Value{}, false
}

func (m *MapObject) Set(key, val Value) {
	for i, e := range m.Entries {
		if Equal(e.Key, key) {
			m.Entries[i].Value = val
			return
		}
	}
	m.Entries = append(m.Entries, MapEntry{Key: key, Value: val})
}

// RangeObject backs the `a..b` Range base type.
type RangeObject struct {
	refCount
	Start, End float64
}

// StructObject backs a `shape` instance.
type StructObject struct {
	refCount
	TypeName   string
	FieldOrder []string
	Fields     map[string]Value
}

// VariantObject backs a variant case instance, including the builtin
// Outcome/Maybe cases.
type VariantObject struct {
	refCount
	TypeName string
	Case     string
	Fields   []Value
}

// Upvalue is a boxed cell a closure captures by reference, so mutation of
// an outer `weave` binding is visible inside the closure (§4.4 "closing
// over a local promotes it to an upvalue").
type Upvalue struct {
	Value Value
}

// Closure is a callable value: either a compiled FunctionProto with its
// captured upvalues, or a builtin implemented in Go.
type ClosureObject struct {
	refCount
	Proto    *FunctionProto
	Upvalues []*Upvalue
	Builtin  BuiltinFunc
	Name     string
}

// BuiltinFunc is a VM-native function (print, len, iterator combinators,
// Outcome/Maybe helpers, virtual-package entry points).
type BuiltinFunc func(m *VM, args []Value) (Value, error)

// CapabilityObject is the runtime realization of the `Capability` base
// type: an opaque native resource handle (an open gRPC channel, a SQLite
// connection) identified by a UUID so two handles never alias (§6).
type CapabilityObject struct {
	refCount
	ID     string
	Kind   string
	Native interface{}
	Closer func() error
}

// IteratorObject is the pull-based cursor backing `IterNew`/`IterNext` for
// the `for` loop (§4.5 "Iterators"); the iterator combinators work on Lists.
type IteratorObject struct {
	refCount
	Next func() (Value, bool)
}

func NewList(elems []Value) Value {
	return Value{Kind: KindList, Obj: &ListObject{Elements: elems}}
}

func NewMap(entries []MapEntry) Value {
	return Value{Kind: KindMap, Obj: &MapObject{Entries: entries}}
}

func NewRange(start, end float64) Value {
	return Value{Kind: KindRange, Obj: &RangeObject{Start: start, End: end}}
}

func NewStruct(typeName string, order []string, fields map[string]Value) Value {
	return Value{Kind: KindStruct, Obj: &StructObject{TypeName: typeName, FieldOrder: order, Fields: fields}}
}

func NewVariant(typeName, caseName string, fields []Value) Value {
	return Value{Kind: KindVariant, Obj: &VariantObject{TypeName: typeName, Case: caseName, Fields: fields}}
}

func NewClosure(proto *FunctionProto, upvalues []*Upvalue) Value {
	return Value{Kind: KindClosure, Obj: &ClosureObject{Proto: proto, Upvalues: upvalues, Name: proto.Name}}
}

func NewBuiltin(name string, fn BuiltinFunc) Value {
	return Value{Kind: KindClosure, Obj: &ClosureObject{Builtin: fn, Name: name}}
}

func NewCapability(kind string, native interface{}, closer func() error) Value {
	return Value{Kind: KindCapability, Obj: &CapabilityObject{ID: NewCapabilityID(), Kind: kind, Native: native, Closer: closer}}
}

func NewIterator(next func() (Value, bool)) Value {
	return Value{Kind: KindIterator, Obj: &IteratorObject{Next: next}}
}

// Triumph/Mishap/Present/Absent construct the builtin Outcome/Maybe cases,
// matching the constructor arity the analyzer's prelude registers.
func Triumph(v Value) Value { return NewVariant("Outcome", "Triumph", []Value{v}) }
func Mishap(e Value) Value  { return NewVariant("Outcome", "Mishap", []Value{e}) }
func Present(v Value) Value { return NewVariant("Maybe", "Present", []Value{v}) }
func Absent() Value         { return NewVariant("Maybe", "Absent", nil) }

func IsOutcome(v Value) bool { return v.Kind == KindVariant && v.Obj.(*VariantObject).TypeName == "Outcome" }
func IsMishap(v Value) bool {
	return IsOutcome(v) && v.Obj.(*VariantObject).Case == "Mishap"
}
func IsTriumph(v Value) bool {
	return IsOutcome(v) && v.Obj.(*VariantObject).Case == "Triumph"
}
