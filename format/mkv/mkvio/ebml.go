package mkvio

import (
	"fmt"
	"time"
)

// ElementType is the schema type of an element. Master elements contain
// children, every other type is a leaf decoded by the CONTENT phase.
type ElementType uint8

const (
	ElementTypeUnknown ElementType = 0x0
	ElementTypeMaster  ElementType = 0x1
	ElementTypeUint    ElementType = 0x2
	ElementTypeInt     ElementType = 0x3
	ElementTypeString  ElementType = 0x4
	ElementTypeUnicode ElementType = 0x5
	ElementTypeBinary  ElementType = 0x6
	ElementTypeFloat   ElementType = 0x7
	ElementTypeDate    ElementType = 0x8
)

func (t ElementType) String() string {
	switch t {
	case ElementTypeUnknown:
		return "unknown"
	case ElementTypeMaster:
		return "master"
	case ElementTypeUint:
		return "uint"
	case ElementTypeInt:
		return "int"
	case ElementTypeString:
		return "string"
	case ElementTypeUnicode:
		return "utf-8"
	case ElementTypeBinary:
		return "binary"
	case ElementTypeFloat:
		return "float"
	case ElementTypeDate:
		return "date"
	}
	return fmt.Sprintf("type(0x%x)", uint8(t))
}

// ElementRegister contains the ID, type, name and nesting level of the
// standard WebM/Matroska elements
type ElementRegister struct {
	ID    uint32
	Type  ElementType
	Name  string
	Level int
}

// UnknownSize is the size reported for elements whose size field has every
// value bit set.
const UnknownSize int64 = -1

// Element is a Matroska/WebM/EBML element event.
//
// All offsets are absolute positions in the decoded stream. For a known size
// DataEnd == DataStart+DataSize, for an unknown size both DataEnd and DataSize
// are -1 and UnknownSize is set.
type Element struct {
	ElementRegister

	TagStart  int64
	TagEnd    int64
	SizeStart int64
	SizeEnd   int64
	DataStart int64
	DataEnd   int64
	DataSize  int64

	Value any    // decoded leaf value: uint64, int64, float64, string, time.Time or []byte
	Data  []byte // raw content of a leaf, nil for master elements

	IsEnd       bool // true for the closing event of a master element
	UnknownSize bool
}

// IsMaster reports whether the element is a container.
func (el Element) IsMaster() bool {
	return el.Type == ElementTypeMaster
}

// Uint returns the value of an unsigned integer element.
func (el Element) Uint() uint64 {
	v, _ := el.Value.(uint64)
	return v
}

// Int returns the value of a signed integer element.
func (el Element) Int() int64 {
	v, _ := el.Value.(int64)
	return v
}

// Float returns the value of a float element.
func (el Element) Float() float64 {
	v, _ := el.Value.(float64)
	return v
}

// Text returns the value of a string or utf-8 element.
func (el Element) Text() string {
	v, _ := el.Value.(string)
	return v
}

// Time returns the value of a date element.
func (el Element) Time() time.Time {
	v, _ := el.Value.(time.Time)
	return v
}

func (el Element) String() string {
	switch {
	case el.IsMaster() && el.IsEnd:
		return fmt.Sprintf("</%s>@%d", el.Name, el.TagStart)
	case el.IsMaster():
		return fmt.Sprintf("<%s size=%d>@%d", el.Name, el.DataSize, el.TagStart)
	}
	return fmt.Sprintf("%s[0x%x]=%v@%d", el.Name, el.ID, el.Value, el.TagStart)
}
