package model

import "reflect"

type RelationKind uint8

const (
	// One relationships can be satisfied by a LEFT JOIN on the parent
	// query; Many relationships never can, a JOIN would distort the row
	// cardinality of the mapped parent records, so they are always
	// resolved by a follow-up batch query.
	One RelationKind = iota
	Many
)

type RelationStrategy uint8

const (
	// Direct: the related table carries ForeignKey referencing the
	// owner's ModelKey column.
	Direct RelationStrategy = iota
	// Reverse: the owner table carries ForeignKey referencing the
	// related table's ModelKey column.
	Reverse
	// Through: a pivot table links the two sides. PivotForeignKey
	// references the owner's ModelKey, PivotModelKey references the
	// related table's ModelKey.
	Through
)

// Relation declares how a field of the owning record maps onto rows of a
// related table. Declared once per repository pair and reused across all
// queries.
type Relation struct {
	// Field is the Go field on the owning struct that receives the
	// related data: *R for One, []*R for Many.
	Field string

	Kind     RelationKind
	Strategy RelationStrategy

	// Target is a pointer to the zero value of the related record type,
	// e.g. &Post{}. The related model is resolved through the registry
	// when a query is built, so mutually-related types can register in
	// any order.
	Target any

	// ForeignKey and ModelKey are column names. When left empty they
	// default at query-build time: ModelKey to the owner's primary key
	// (Direct) or the related table's primary key (Reverse, Through),
	// ForeignKey to "<owning table>_<pk>" (Direct), "<related
	// table>_<pk>" (Reverse) or the owner's primary key (Through).
	// Through additionally requires the pivot table and both pivot
	// columns to be named explicitly.
	ForeignKey string
	ModelKey   string

	PivotTable      string
	PivotForeignKey string
	PivotModelKey   string

	fieldIndex int
	elem       reflect.Type // related struct type
}

// FieldIndex is the index of the relation field on the owning struct.
func (r *Relation) FieldIndex() int {
	return r.fieldIndex
}

// Elem is the related record's struct type.
func (r *Relation) Elem() reflect.Type {
	return r.elem
}
