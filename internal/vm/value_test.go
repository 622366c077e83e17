package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/langweave/glyph/internal/vm"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    vm.Value
		want bool
	}{
		{"zero number", vm.Number(0), false},
		{"nonzero number", vm.Number(-1), true},
		{"empty text", vm.Text(""), false},
		{"nonempty text", vm.Text("a"), true},
		{"nothing", vm.Nothing, false},
		{"truth false", vm.Truth(false), false},
		{"empty list", vm.NewList(nil), false},
		{"nonempty list", vm.NewList([]vm.Value{vm.Number(1)}), true},
		{"absent", vm.Absent(), false},
		{"present", vm.Present(vm.Number(1)), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.Truthy())
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, vm.Equal(vm.Number(3), vm.Number(3)))
	assert.False(t, vm.Equal(vm.Number(3), vm.Number(4)))
	assert.False(t, vm.Equal(vm.Number(3), vm.Text("3")))

	la := vm.NewList([]vm.Value{vm.Number(1), vm.Text("x")})
	lb := vm.NewList([]vm.Value{vm.Number(1), vm.Text("x")})
	lc := vm.NewList([]vm.Value{vm.Number(1), vm.Text("y")})
	assert.True(t, vm.Equal(la, lb))
	assert.False(t, vm.Equal(la, lc))

	assert.True(t, vm.Equal(vm.Triumph(vm.Number(1)), vm.Triumph(vm.Number(1))))
	assert.False(t, vm.Equal(vm.Triumph(vm.Number(1)), vm.Mishap(vm.Number(1))))
}

func TestToText(t *testing.T) {
	assert.Equal(t, "nothing", vm.ToText(vm.Nothing))
	assert.Equal(t, "true", vm.ToText(vm.Truth(true)))
	assert.Equal(t, "[1, 2, 3]", vm.ToText(vm.NewList([]vm.Value{vm.Number(1), vm.Number(2), vm.Number(3)})))
	assert.Equal(t, "Present(5)", vm.ToText(vm.Present(vm.Number(5))))
	assert.Equal(t, "Absent", vm.ToText(vm.Absent()))
}

func TestToText_HumanizesLargeNumbers(t *testing.T) {
	assert.Equal(t, "42", vm.ToText(vm.Number(42)))
	assert.Equal(t, "1,000,000", vm.ToText(vm.Number(1_000_000)))
	assert.Equal(t, "2,500,000.5", vm.ToText(vm.Number(2_500_000.5)))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "Number", vm.TypeName(vm.Number(1)))
	assert.Equal(t, "Text", vm.TypeName(vm.Text("a")))
	assert.Equal(t, "Maybe", vm.TypeName(vm.Present(vm.Number(1))))
	assert.Equal(t, "Outcome", vm.TypeName(vm.Triumph(vm.Number(1))))
}

func TestOutcomeHelpers(t *testing.T) {
	tri := vm.Triumph(vm.Number(42))
	mis := vm.Mishap(vm.Text("bad"))
	assert.True(t, vm.IsOutcome(tri))
	assert.True(t, vm.IsTriumph(tri))
	assert.False(t, vm.IsMishap(tri))
	assert.True(t, vm.IsMishap(mis))
	assert.False(t, vm.IsTriumph(mis))
}

func TestMapObjectGetSet(t *testing.T) {
	mo := &vm.MapObject{}
	mo.Set(vm.Text("a"), vm.Number(1))
	mo.Set(vm.Text("b"), vm.Number(2))
	mo.Set(vm.Text("a"), vm.Number(99))

	v, ok := mo.Get(vm.Text("a"))
	assert.True(t, ok)
	assert.Equal(t, vm.Number(99), v)

	_, ok = mo.Get(vm.Text("missing"))
	assert.False(t, ok)

	assert.Len(t, mo.Entries, 2)
}
