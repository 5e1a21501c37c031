package model

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/zigzedd/zrm/internal/errs"
)

const (
	tagKey = "zrm"

	tagColumn  = "column"
	tagPrimary = "primary"
	tagIgnore  = "-"
)

type Registry interface {
	// Get returns the cached model for the entity's type, parsing it on
	// first use.
	Get(val any) (*Model, error)
	// Register parses the entity's metadata, applies the options and
	// caches the result, replacing any previous registration.
	Register(val any, opts ...ModelOption) (*Model, error)
}

type ModelOption func(m *Model) error

func ModelWithTableName(name string) ModelOption {
	return func(m *Model) error {
		m.TableName = name
		return nil
	}
}

func ModelWithColumnName(field string, colName string) ModelOption {
	return func(m *Model) error {
		fd, ok := m.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		delete(m.ColumnMap, fd.ColName)
		fd.ColName = colName
		m.ColumnMap[colName] = fd
		return nil
	}
}

// ModelWithPrimaryKey declares the primary key columns by Go field name,
// replacing any tag-derived key. Order is preserved.
func ModelWithPrimaryKey(fields ...string) ModelOption {
	return func(m *Model) error {
		pk := make([]*Field, 0, len(fields))
		for _, fd := range m.PrimaryKey {
			fd.Primary = false
		}
		for _, name := range fields {
			fd, ok := m.FieldMap[name]
			if !ok {
				return errs.NewErrUnknownField(name)
			}
			fd.Primary = true
			pk = append(pk, fd)
		}
		m.PrimaryKey = pk
		return nil
	}
}

// ModelWithRelation declares a relationship. The relation field is
// removed from the column mapping: it is populated by the relationship
// resolver, never scanned directly.
func ModelWithRelation(rel Relation) ModelOption {
	return func(m *Model) error {
		sf, ok := m.typ.FieldByName(rel.Field)
		if !ok {
			return errs.NewErrUnknownField(rel.Field)
		}
		elem, err := relationElem(rel.Kind, sf.Type)
		if err != nil {
			return errs.NewErrInvalidRelationField(rel.Field, sf.Type)
		}
		if rel.Strategy == Through &&
			(rel.PivotTable == "" || rel.PivotForeignKey == "" || rel.PivotModelKey == "") {
			return errs.NewErrMissingPivot(rel.Field)
		}
		rel.fieldIndex = sf.Index[0]
		rel.elem = elem

		if fd, ok := m.FieldMap[rel.Field]; ok {
			delete(m.FieldMap, rel.Field)
			delete(m.ColumnMap, fd.ColName)
			for i, f := range m.Fields {
				if f == fd {
					m.Fields = append(m.Fields[:i], m.Fields[i+1:]...)
					break
				}
			}
		}
		if m.Relations == nil {
			m.Relations = make(map[string]*Relation, 4)
		}
		m.Relations[rel.Field] = &rel
		return nil
	}
}

func relationElem(kind RelationKind, typ reflect.Type) (reflect.Type, error) {
	if kind == Many {
		if typ.Kind() != reflect.Slice {
			return nil, errs.ErrPointerOnly
		}
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointerOnly
	}
	return typ.Elem(), nil
}

// registry caches parsed models keyed by reflect.Type, so two same-named
// structs in different packages stay distinct.
type registry struct {
	models map[reflect.Type]*Model

	// double-checked RWMutex instead of sync.Map, so a model is never
	// parsed twice under concurrent first use
	lock sync.RWMutex
}

func NewRegistry() Registry {
	return &registry{
		models: make(map[reflect.Type]*Model, 64),
	}
}

func (r *registry) Get(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	r.lock.RLock()
	m, ok := r.models[typ]
	r.lock.RUnlock()
	if ok {
		return m, nil
	}
	return r.Register(val)
}

func (r *registry) Register(val any, opts ...ModelOption) (*Model, error) {
	typ := reflect.TypeOf(val)
	r.lock.Lock()
	defer r.lock.Unlock()
	if m, ok := r.models[typ]; ok && len(opts) == 0 {
		return m, nil
	}

	m, err := parseModel(val)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	r.models[typ] = m
	return m, nil
}

// parseModel accepts only a pointer to a struct.
func parseModel(entity any) (*Model, error) {
	typ := reflect.TypeOf(entity)
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointerOnly
	}
	typ = typ.Elem()

	numField := typ.NumField()
	m := &Model{
		TableName: UnderscoreName(typ.Name()),
		Fields:    make([]*Field, 0, numField),
		FieldMap:  make(map[string]*Field, numField),
		ColumnMap: make(map[string]*Field, numField),
		typ:       typ,
	}
	for i := 0; i < numField; i++ {
		sf := typ.Field(i)
		tags, err := parseTag(sf.Tag)
		if err != nil {
			return nil, err
		}
		if _, ignored := tags[tagIgnore]; ignored {
			continue
		}
		colName := tags[tagColumn]
		if colName == "" {
			colName = UnderscoreName(sf.Name)
		}
		fd := &Field{
			ColName: colName,
			GoName:  sf.Name,
			Type:    sf.Type,
			Offset:  sf.Offset,
			Index:   i,
		}
		if _, primary := tags[tagPrimary]; primary {
			fd.Primary = true
			m.PrimaryKey = append(m.PrimaryKey, fd)
		}
		m.Fields = append(m.Fields, fd)
		m.FieldMap[sf.Name] = fd
		m.ColumnMap[colName] = fd
	}

	// conventional fallback: an untagged ID field is the primary key
	if len(m.PrimaryKey) == 0 {
		if fd, ok := m.FieldMap["ID"]; ok {
			fd.Primary = true
			m.PrimaryKey = []*Field{fd}
		}
	}
	return m, nil
}

// parseTag splits a `zrm:"..."` tag into comma-separated entries; each
// entry is either "key=value" or a bare flag.
func parseTag(tag reflect.StructTag) (map[string]string, error) {
	raw, ok := tag.Lookup(tagKey)
	if !ok {
		return nil, nil
	}
	pairs := strings.Split(raw, ",")
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if pair == "" {
			return nil, errs.NewErrInvalidTagContent(pair)
		}
		segs := strings.SplitN(pair, "=", 2)
		if len(segs) == 2 {
			tags[segs[0]] = segs[1]
		} else {
			tags[segs[0]] = ""
		}
	}
	return tags, nil
}

// UnderscoreName converts CamelCase to snake_case. Acronym runs stay
// together: a word boundary is a lower→upper transition or the last
// upper before a lower, so AuthorID becomes author_id and HTTPServer
// becomes http_server. Column parsing and the relationship key defaults
// both rely on this one convention.
func UnderscoreName(name string) string {
	var buf []byte
	runes := []rune(name)
	for i, v := range runes {
		if unicode.IsUpper(v) {
			if i != 0 &&
				(unicode.IsLower(runes[i-1]) ||
					(i < len(runes)-1 && unicode.IsLower(runes[i+1]))) {
				buf = append(buf, '_')
			}
			buf = append(buf, byte(unicode.ToLower(v)))
		} else {
			buf = append(buf, byte(v))
		}
	}
	return string(buf)
}
