// Package object provides the ACPI object model the interpreter substrate
// is built around: the numeric type tags attached to namespace nodes and
// scope frames, and the contract that operand objects satisfy.
//
// The substrate stores, stacks, and recycles operands without interpreting
// them. Opcode semantics belong to the dispatcher layered on top, so the
// Object interface is deliberately narrow.
package object

// Type is the numeric tag identifying what an object or namespace node is.
type Type uint8

// Type constants. The first group is visible to AML programs; the second
// group exists only inside the interpreter.
const (
	ANY Type = iota
	INTEGER
	STRING
	BUFFER
	PACKAGE
	FIELD_UNIT
	DEVICE
	EVENT
	METHOD
	MUTEX
	REGION
	POWER
	PROCESSOR
	THERMAL
	BUFFER_FIELD
	DDB_HANDLE
	DEBUG_OBJECT

	REGION_FIELD
	BANK_FIELD
	INDEX_FIELD
	REFERENCE
	ALIAS
	METHOD_ALIAS
	NOTIFY
	ADDRESS_HANDLER
	RESOURCE
	RESOURCE_FIELD
	SCOPE
)

// LOCAL_MAX is the largest tag the substrate accepts as a known type.
const LOCAL_MAX = SCOPE

var typeNames = []string{
	"Untyped",
	"Integer",
	"String",
	"Buffer",
	"Package",
	"FieldUnit",
	"Device",
	"Event",
	"Method",
	"Mutex",
	"Region",
	"Power",
	"Processor",
	"Thermal",
	"BuffField",
	"DdbHandle",
	"DebugObject",
	"RegionField",
	"BankField",
	"IndexField",
	"Reference",
	"Alias",
	"MethodAlias",
	"Notify",
	"AddrHandler",
	"ResourceDesc",
	"ResourceFld",
	"Scope",
}

// String returns the display name of the type.
func (t Type) String() string {
	if !t.Valid() {
		return "Invalid"
	}
	return typeNames[t]
}

// Valid reports whether the tag is within the known type range.
func (t Type) Valid() bool {
	return t <= LOCAL_MAX
}

// Object is the interface all operand objects must implement. The substrate
// never looks past it; a dispatcher type asserts to concrete types such as
// *object.Integer or *object.Method when it needs the value.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns a string representation of the given object.
	Inspect() string
}
