package object

import "fmt"

// Integer is a 64-bit unsigned ACPI integer.
type Integer struct {
	value uint64
}

func (i *Integer) Type() Type {
	return INTEGER
}

func (i *Integer) Inspect() string {
	return fmt.Sprintf("%#x", i.value)
}

// Value returns the native value of the integer.
func (i *Integer) Value() uint64 {
	return i.value
}

// NewInteger creates an Integer with the given value.
func NewInteger(value uint64) *Integer {
	return &Integer{value: value}
}
