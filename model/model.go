// Package model holds the runtime metadata a statement builder needs
// about a record type: table name, column mapping, primary key and
// declared relationships. Metadata is parsed once per type and cached by
// the registry.
package model

import (
	"reflect"
)

type Model struct {
	TableName string

	// Fields in declaration order, relation fields excluded.
	Fields    []*Field
	FieldMap  map[string]*Field // keyed by Go field name
	ColumnMap map[string]*Field // keyed by column name

	// PrimaryKey columns in declaration order.
	PrimaryKey []*Field

	// Relations keyed by the Go field name that holds the related data.
	Relations map[string]*Relation

	typ reflect.Type // struct type, not the pointer
}

// Type returns the underlying struct type.
func (m *Model) Type() reflect.Type {
	return m.typ
}

type Field struct {
	ColName string
	GoName  string
	Type    reflect.Type
	Offset  uintptr

	// Index of the field within the struct.
	Index int

	Primary bool
}
