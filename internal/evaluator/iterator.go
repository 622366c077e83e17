package evaluator

import "github.com/langweave/glyph/internal/vm"

// iterNew realizes the pull-based cursor the `for` loop needs over every
// base type `for` can walk, mirroring
// vm.VM.iterNew so both backends walk List/Range/Map identically.
func iterNew(v vm.Value) (*vm.IteratorObject, error) {
	switch v.Kind {
	case vm.KindIterator:
		return v.Obj.(*vm.IteratorObject), nil
	case vm.KindList:
		lo := v.Obj.(*vm.ListObject)
		i := 0
		return asIterator(vm.NewIterator(func() (vm.Value, bool) {
			if i >= len(lo.Elements) {
				return vm.Value{}, false
			}
			val := lo.Elements[i]
			i++
			return val, true
		})), nil
	case vm.KindRange:
		ro := v.Obj.(*vm.RangeObject)
		cur := ro.Start
		return asIterator(vm.NewIterator(func() (vm.Value, bool) {
			if cur >= ro.End {
				return vm.Value{}, false
			}
			val := vm.Number(cur)
			cur++
			return val, true
		})), nil
	case vm.KindMap:
		mo := v.Obj.(*vm.MapObject)
		i := 0
		return asIterator(vm.NewIterator(func() (vm.Value, bool) {
			if i >= len(mo.Entries) {
				return vm.Value{}, false
			}
			e := mo.Entries[i]
			i++
			return pairValue(e.Key, e.Value), true
		})), nil
	default:
		return nil, &vm.TypeMismatch{Operation: "iterate", Got: vm.TypeName(v)}
	}
}

func asIterator(v vm.Value) *vm.IteratorObject { return v.Obj.(*vm.IteratorObject) }

func pairValue(a, b vm.Value) vm.Value {
	return vm.NewStruct("Pair", []string{"first", "second"}, map[string]vm.Value{"first": a, "second": b})
}
