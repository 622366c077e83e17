package vm

import (
	"fmt"
	"math"
	"strings"
)

// VM is the stack machine of spec §4.4: it executes a Chunk produced by
// Compile, sharing the Value model with internal/evaluator's tree-walking
// oracle so the two can be compared result-for-result (§8).
type VM struct {
	Globals map[string]Value
	chunk   *Chunk
}

// New creates a VM over chunk with the builtin prelude installed.
func New(chunk *Chunk) *VM {
	m := &VM{chunk: chunk, Globals: map[string]Value{}}
	m.installBuiltins()
	return m
}

// Run executes the chunk's top-level code as an implicit zero-arity
// function and returns its final value.
func (m *VM) Run() (Value, error) {
	top := &FunctionProto{Name: "<script>", Code: m.chunk.Code, Constants: m.chunk.Constants}
	return m.exec(top, nil, nil)
}

// exec interprets one FunctionProto to completion. Every call recurses
// into a fresh exec (the Go call stack stands in for an explicit VM call
// stack), which keeps each frame's operand stack and locals trivially
// isolated from its caller's.
func (m *VM) exec(proto *FunctionProto, args []Value, upvalues []*Upvalue) (Value, error) {
	locals := make([]*Upvalue, proto.NumLocals)
	for i := range locals {
		locals[i] = &Upvalue{}
	}
	for i, a := range args {
		if i < len(locals) {
			locals[i].Value = a
		}
	}

	var stack []Value
	push := func(v Value) { stack = append(stack, v) }
	pop := func() Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	ip := 0
	for ip < len(proto.Code) {
		ins := proto.Code[ip]
		switch ins.Op {
		case OpPushConst:
			push(proto.Constants[ins.A])
			ip++
		case OpPop:
			pop()
			ip++
		case OpDup:
			push(stack[len(stack)-1])
			ip++
		case OpLoadLocal:
			push(locals[ins.A].Value)
			ip++
		case OpStoreLocal:
			locals[ins.A].Value = pop()
			ip++
		case OpLoadUpvalue:
			push(upvalues[ins.A].Value)
			ip++
		case OpStoreUpvalue:
			upvalues[ins.A].Value = pop()
			ip++
		case OpLoadGlobal:
			v, ok := m.Globals[ins.Name]
			if !ok {
				return Value{}, &UndefinedName{Name: ins.Name}
			}
			push(v)
			ip++
		case OpStoreGlobal:
			m.Globals[ins.Name] = pop()
			ip++
		case OpClosure:
			fp := m.chunk.Functions[ins.A]
			ups := make([]*Upvalue, len(fp.UpvalueRefs))
			for i, ref := range fp.UpvalueRefs {
				if ref.FromParentLocal {
					ups[i] = locals[ref.Index]
				} else {
					ups[i] = upvalues[ref.Index]
				}
			}
			push(NewClosure(fp, ups))
			ip++

		case OpAdd, OpSub, OpMul, OpDiv, OpMod:
			b, a := pop(), pop()
			res, err := arith(ins.Op, a, b)
			if err != nil {
				return Value{}, err
			}
			push(res)
			ip++
		case OpNeg:
			a := pop()
			if a.Kind != KindNumber {
				return Value{}, &TypeMismatch{Operation: "negate", Got: TypeName(a)}
			}
			push(Number(-a.Num))
			ip++
		case OpNot:
			push(Truth(!pop().Truthy()))
			ip++
		case OpEq:
			b, a := pop(), pop()
			push(Truth(Equal(a, b)))
			ip++
		case OpNe:
			b, a := pop(), pop()
			push(Truth(!Equal(a, b)))
			ip++
		case OpLt, OpLe, OpGt, OpGe:
			b, a := pop(), pop()
			res, err := compareNum(ins.Op, a, b)
			if err != nil {
				return Value{}, err
			}
			push(res)
			ip++

		case OpBuildList:
			n := ins.A
			elems := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = pop()
			}
			push(NewList(elems))
			ip++
		case OpBuildMap:
			n := ins.A
			entries := make([]MapEntry, n)
			for i := n - 1; i >= 0; i-- {
				v := pop()
				k := pop()
				entries[i] = MapEntry{Key: k, Value: v}
			}
			push(NewMap(entries))
			ip++
		case OpBuildRange:
			end, start := pop(), pop()
			push(NewRange(start.Num, end.Num))
			ip++
		case OpIndex:
			idx, left := pop(), pop()
			res, err := m.index(left, idx)
			if err != nil {
				return Value{}, err
			}
			push(res)
			ip++
		case OpFieldGet:
			left := pop()
			res, err := m.fieldGet(left, ins.Name)
			if err != nil {
				return Value{}, err
			}
			push(res)
			ip++
		case OpFieldSet:
			val, left := pop(), pop()
			if err := m.fieldSet(left, ins.Name, val); err != nil {
				return Value{}, err
			}
			push(left)
			ip++
		case OpMakeStruct:
			n := ins.A
			names := splitNames(proto.Constants[ins.B].Str)
			vals := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				vals[i] = pop()
			}
			fields := make(map[string]Value, n)
			for i, name := range names {
				fields[name] = vals[i]
			}
			push(NewStruct(ins.Name, names, fields))
			ip++
		case OpMakeVariant:
			n := ins.A
			typeName, caseName := splitQualified(ins.Name)
			fields := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				fields[i] = pop()
			}
			push(NewVariant(typeName, caseName, fields))
			ip++
		case OpVariantIs:
			v := pop()
			vo, ok := v.Obj.(*VariantObject)
			if !ok {
				return Value{}, &TypeMismatch{Operation: "match", Got: TypeName(v)}
			}
			push(Truth(vo.Case == ins.Name))
			ip++
		case OpVariantField:
			v := pop()
			vo, ok := v.Obj.(*VariantObject)
			if !ok {
				return Value{}, &TypeMismatch{Operation: "match", Got: TypeName(v)}
			}
			if ins.A < 0 || ins.A >= len(vo.Fields) {
				return Value{}, &IndexOutOfBounds{Index: ins.A, Length: len(vo.Fields)}
			}
			push(vo.Fields[ins.A])
			ip++

		case OpJump:
			ip = ins.A
		case OpLoop:
			ip = ins.A
		case OpJumpIfFalse:
			// The condition stays on the stack: the compiler emits an OpPop
			// both after this jump and at its target.
			if !stack[len(stack)-1].Truthy() {
				ip = ins.A
			} else {
				ip++
			}

		case OpCall:
			n := ins.A
			callArgs := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				callArgs[i] = pop()
			}
			callee := pop()
			res, err := m.Call(callee, callArgs)
			if err != nil {
				return Value{}, err
			}
			push(res)
			ip++
		case OpReturn:
			if len(stack) == 0 {
				return Nothing, nil
			}
			return pop(), nil
		case OpYield:
			return pop(), nil
		case OpTry:
			v := pop()
			if !IsOutcome(v) {
				return Value{}, &TypeMismatch{Operation: "try", Got: TypeName(v)}
			}
			if IsMishap(v) {
				// `?` on a Mishap is itself a yield of that Mishap from the
				// enclosing function (§7 "error propagation").
				return v, nil
			}
			push(v.Obj.(*VariantObject).Fields[0])
			ip++

		case OpIterNew:
			v := pop()
			it, err := m.iterNew(v)
			if err != nil {
				return Value{}, err
			}
			push(it)
			ip++
		case OpIterNext:
			v := pop()
			io, ok := v.Obj.(*IteratorObject)
			if !ok {
				return Value{}, &TypeMismatch{Operation: "iterate", Got: TypeName(v)}
			}
			val, ok := io.Next()
			if !ok {
				push(Truth(false))
				ip++
				continue
			}
			push(val)
			push(Truth(true))
			ip++

		default:
			return Value{}, fmt.Errorf("vm: unimplemented opcode %d", ins.Op)
		}
	}
	if len(stack) > 0 {
		return stack[len(stack)-1], nil
	}
	return Nothing, nil
}

// Call invokes any callable Value (a compiled closure or a builtin) with
// args, used both by OpCall and by builtins like `map` that themselves
// invoke a user-supplied function value.
func (m *VM) Call(callee Value, args []Value) (Value, error) {
	if callee.Kind != KindClosure {
		return Value{}, &NonCallable{Got: TypeName(callee)}
	}
	co := callee.Obj.(*ClosureObject)
	if co.Builtin != nil {
		return co.Builtin(m, args)
	}
	if co.Proto.Arity != len(args) {
		return Value{}, &ArityMismatch{Name: co.Name, Expected: co.Proto.Arity, Got: len(args)}
	}
	return m.exec(co.Proto, args, co.Upvalues)
}

func arith(op Opcode, a, b Value) (Value, error) {
	if op == OpAdd && a.Kind == KindText {
		if b.Kind != KindText {
			return Value{}, &TypeMismatch{Operation: "+", Got: TypeName(b)}
		}
		return Text(a.Str + b.Str), nil
	}
	if op == OpAdd && a.Kind == KindList {
		al, aok := a.Obj.(*ListObject)
		bl, bok := b.Obj.(*ListObject)
		if !aok || !bok {
			return Value{}, &TypeMismatch{Operation: "+", Got: TypeName(b)}
		}
		merged := make([]Value, 0, len(al.Elements)+len(bl.Elements))
		merged = append(merged, al.Elements...)
		merged = append(merged, bl.Elements...)
		return NewList(merged), nil
	}
	if a.Kind != KindNumber || b.Kind != KindNumber {
		return Value{}, &TypeMismatch{Operation: "arithmetic", Got: TypeName(a)}
	}
	switch op {
	case OpAdd:
		return Number(a.Num + b.Num), nil
	case OpSub:
		return Number(a.Num - b.Num), nil
	case OpMul:
		return Number(a.Num * b.Num), nil
	case OpDiv:
		if b.Num == 0 {
			return Value{}, &DivisionByZero{}
		}
		return Number(a.Num / b.Num), nil
	case OpMod:
		if b.Num == 0 {
			return Value{}, &DivisionByZero{}
		}
		return Number(math.Mod(a.Num, b.Num)), nil
	default:
		return Value{}, fmt.Errorf("vm: bad arithmetic opcode %d", op)
	}
}

func compareNum(op Opcode, a, b Value) (Value, error) {
	if a.Kind != KindNumber || b.Kind != KindNumber {
		return Value{}, &TypeMismatch{Operation: "comparison", Got: TypeName(a)}
	}
	switch op {
	case OpLt:
		return Truth(a.Num < b.Num), nil
	case OpLe:
		return Truth(a.Num <= b.Num), nil
	case OpGt:
		return Truth(a.Num > b.Num), nil
	case OpGe:
		return Truth(a.Num >= b.Num), nil
	default:
		return Value{}, fmt.Errorf("vm: bad comparison opcode %d", op)
	}
}

func (m *VM) index(left, idx Value) (Value, error) {
	switch left.Kind {
	case KindList:
		lo := left.Obj.(*ListObject)
		if idx.Kind != KindNumber {
			return Value{}, &TypeMismatch{Operation: "index", Got: TypeName(idx)}
		}
		i := int(idx.Num)
		if i < 0 || i >= len(lo.Elements) {
			return Value{}, &IndexOutOfBounds{Index: i, Length: len(lo.Elements)}
		}
		return lo.Elements[i], nil
	case KindMap:
		mo := left.Obj.(*MapObject)
		if v, ok := mo.Get(idx); ok {
			return Present(v), nil
		}
		return Absent(), nil
	default:
		return Value{}, &TypeMismatch{Operation: "index", Got: TypeName(left)}
	}
}

func (m *VM) fieldGet(left Value, name string) (Value, error) {
	so, ok := left.Obj.(*StructObject)
	if !ok {
		return Value{}, &TypeMismatch{Operation: "field access", Got: TypeName(left)}
	}
	v, ok := so.Fields[name]
	if !ok {
		return Value{}, &UndefinedName{Name: name}
	}
	return v, nil
}

func (m *VM) fieldSet(left Value, name string, val Value) error {
	so, ok := left.Obj.(*StructObject)
	if !ok {
		return &TypeMismatch{Operation: "field assignment", Got: TypeName(left)}
	}
	so.Fields[name] = val
	return nil
}

// iterNew realizes the pull-based cursor the Iterator type needs (§4.5)
// over every base type `for` can walk.
func (m *VM) iterNew(v Value) (Value, error) {
	switch v.Kind {
	case KindIterator:
		return v, nil
	case KindList:
		lo := v.Obj.(*ListObject)
		i := 0
		return NewIterator(func() (Value, bool) {
			if i >= len(lo.Elements) {
				return Value{}, false
			}
			val := lo.Elements[i]
			i++
			return val, true
		}), nil
	case KindRange:
		ro := v.Obj.(*RangeObject)
		cur := ro.Start
		return NewIterator(func() (Value, bool) {
			if cur >= ro.End {
				return Value{}, false
			}
			val := Number(cur)
			cur++
			return val, true
		}), nil
	case KindMap:
		mo := v.Obj.(*MapObject)
		i := 0
		return NewIterator(func() (Value, bool) {
			if i >= len(mo.Entries) {
				return Value{}, false
			}
			e := mo.Entries[i]
			i++
			return pair(e.Key, e.Value), true
		}), nil
	default:
		return Value{}, &TypeMismatch{Operation: "iterate", Got: TypeName(v)}
	}
}

func pair(a, b Value) Value {
	return NewStruct("Pair", []string{"first", "second"}, map[string]Value{"first": a, "second": b})
}

func splitNames(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

func splitQualified(name string) (typeName, caseName string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 {
		return "", parts[0]
	}
	return parts[0], parts[1]
}
