package object

import (
	"fmt"

	"github.com/acpikit/acpikit/ownerid"
)

// Method flag byte layout, as stored in a method definition.
const (
	methodArgCountMask   = 0x07
	methodSerializedFlag = 0x08
	methodSyncLevelShift = 4
)

// Method is the descriptor for a control method: the slice of encoded
// bytecode that implements it plus the execution properties packed into the
// definition's flags byte.
type Method struct {
	paramCount uint8
	serialized bool
	syncLevel  uint8
	aml        []byte
	owner      ownerid.ID
}

func (m *Method) Type() Type {
	return METHOD
}

func (m *Method) Inspect() string {
	return fmt.Sprintf("method(args=%d, serialized=%t, sync=%d)",
		m.paramCount, m.serialized, m.syncLevel)
}

// ParamCount returns the number of arguments the method declares, 0 to 7.
func (m *Method) ParamCount() int {
	return int(m.paramCount)
}

// Serialized reports whether invocations must be serialized.
func (m *Method) Serialized() bool {
	return m.serialized
}

// SyncLevel returns the synchronization level for serialized execution.
func (m *Method) SyncLevel() uint8 {
	return m.syncLevel
}

// AML returns the method body. The descriptor owns the slice; callers must
// not modify it.
func (m *Method) AML() []byte {
	return m.aml
}

// Owner returns the owner ID of the table or invocation that created the
// method.
func (m *Method) Owner() ownerid.ID {
	return m.owner
}

// NewMethod creates a method descriptor from its definition flags byte and
// body.
func NewMethod(flags uint8, aml []byte, owner ownerid.ID) *Method {
	return &Method{
		paramCount: flags & methodArgCountMask,
		serialized: flags&methodSerializedFlag != 0,
		syncLevel:  flags >> methodSyncLevelShift,
		aml:        aml,
		owner:      owner,
	}
}
