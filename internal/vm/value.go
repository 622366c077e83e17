// Package vm implements the bytecode compiler and stack machine of spec
// §4.4/§4.5, plus the shared runtime value model (§3 "Runtime values") used
// by both the VM and the tree-walking evaluator so the "VM ≡ interpreter"
// property (§8) compares like with like.
package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// ValueKind tags a Value's runtime representation.
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindText
	KindTruth
	KindNothing
	KindList
	KindMap
	KindRange
	KindStruct
	KindVariant
	KindClosure
	KindCapability
	KindIterator
)

// Value is the tagged union every runtime value is stored as. Scalars
// (Number/Truth/Nothing) are held directly; aggregates hold a pointer to a
// refcounted Object so assignment and argument passing share structure
// instead of deep-copying (§5 "Shared resources").
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Obj  Object
}

// Object is any heap-allocated, refcounted aggregate value.
type Object interface {
	refs() *int
}

func Number(n float64) Value  { return Value{Kind: KindNumber, Num: n} }
func Text(s string) Value     { return Value{Kind: KindText, Str: s} }
func Truth(b bool) Value {
	if b {
		return Value{Kind: KindTruth, Num: 1}
	}
	return Value{Kind: KindTruth, Num: 0}
}

var Nothing = Value{Kind: KindNothing}

func (v Value) Bool() bool { return v.Num != 0 }

// Truthy implements spec §4.5 "Truthiness".
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindTruth:
		return v.Num != 0
	case KindNothing:
		return false
	case KindNumber:
		return v.Num != 0
	case KindText:
		return v.Str != ""
	case KindList:
		return len(v.Obj.(*ListObject).Elements) != 0
	case KindMap:
		return len(v.Obj.(*MapObject).Entries) != 0
	case KindVariant:
		return v.Obj.(*VariantObject).Case != "Absent"
	default:
		return true
	}
}

// Equal implements value equality for `==`/`!=` and match literal patterns.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNumber:
		return a.Num == b.Num
	case KindText:
		return a.Str == b.Str
	case KindTruth:
		return a.Num == b.Num
	case KindNothing:
		return true
	case KindList:
		al, bl := a.Obj.(*ListObject), b.Obj.(*ListObject)
		if len(al.Elements) != len(bl.Elements) {
			return false
		}
		for i := range al.Elements {
			if !Equal(al.Elements[i], bl.Elements[i]) {
				return false
			}
		}
		return true
	case KindVariant:
		av, bv := a.Obj.(*VariantObject), b.Obj.(*VariantObject)
		if av.TypeName != bv.TypeName || av.Case != bv.Case || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if !Equal(av.Fields[i], bv.Fields[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		as, bs := a.Obj.(*StructObject), b.Obj.(*StructObject)
		if as.TypeName != bs.TypeName {
			return false
		}
		for k, v := range as.Fields {
			if !Equal(v, bs.Fields[k]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ToText implements the language's default `to_text`-style stringification,
// used by `print` and string interpolation.
func ToText(v Value) string {
	switch v.Kind {
	case KindNumber:
		if math.Abs(v.Num) >= 1_000_000 {
			if v.Num == math.Trunc(v.Num) {
				return humanize.Comma(int64(v.Num))
			}
			return humanize.Commaf(v.Num)
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return v.Str
	case KindTruth:
		return strconv.FormatBool(v.Num != 0)
	case KindNothing:
		return "nothing"
	case KindList:
		l := v.Obj.(*ListObject)
		parts := make([]string, len(l.Elements))
		for i, e := range l.Elements {
			parts[i] = ToText(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		m := v.Obj.(*MapObject)
		parts := make([]string, 0, len(m.Entries))
		for _, e := range m.Entries {
			parts = append(parts, ToText(e.Key)+": "+ToText(e.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindRange:
		r := v.Obj.(*RangeObject)
		return fmt.Sprintf("%s..%s", ToText(Number(r.Start)), ToText(Number(r.End)))
	case KindStruct:
		s := v.Obj.(*StructObject)
		parts := make([]string, 0, len(s.Fields))
		for _, name := range s.FieldOrder {
			parts = append(parts, name+": "+ToText(s.Fields[name]))
		}
		return s.TypeName + "{" + strings.Join(parts, ", ") + "}"
	case KindVariant:
		vv := v.Obj.(*VariantObject)
		if len(vv.Fields) == 0 {
			return vv.Case
		}
		parts := make([]string, len(vv.Fields))
		for i, f := range vv.Fields {
			parts[i] = ToText(f)
		}
		return vv.Case + "(" + strings.Join(parts, ", ") + ")"
	case KindClosure:
		return "<function>"
	case KindCapability:
		return "<capability:" + v.Obj.(*CapabilityObject).Kind + ">"
	case KindIterator:
		return "<iterator>"
	default:
		return "<unknown>"
	}
}

// TypeName reports the runtime type name the `typeOf` builtin surfaces.
func TypeName(v Value) string {
	switch v.Kind {
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	case KindTruth:
		return "Truth"
	case KindNothing:
		return "Nothing"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindRange:
		return "Range"
	case KindStruct:
		return v.Obj.(*StructObject).TypeName
	case KindVariant:
		return v.Obj.(*VariantObject).TypeName
	case KindClosure:
		return "Function"
	case KindCapability:
		return "Capability"
	case KindIterator:
		return "Iterator"
	default:
		return "Unknown"
	}
}

// NewCapabilityID mints the identity tag required by §6's Capability
// value so two capability handles never alias by accident.
func NewCapabilityID() string { return uuid.New().String() }
