package zrm

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/zigzedd/zrm/frag"
	"github.com/zigzedd/zrm/internal/errs"
	"github.com/zigzedd/zrm/model"
)

// colBinding ties one result column to its destination: a field of the
// main record (plan nil), a field of an inline relationship record, or a
// synthetic grouping key (fd nil).
type colBinding struct {
	fd   *model.Field
	plan *relationPlan
}

// mapJoinedRows maps a result set whose columns mix the base table's own
// columns with "<alias>__<column>" items contributed by inline
// relationships. A relationship whose aliased columns are all NULL maps
// to an absent record. Any malformed row discards the whole mapping.
func mapJoinedRows[T any](c core, plans []*relationPlan, rows *sql.Rows) ([]*T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	byAlias := make(map[string]*relationPlan, len(plans))
	for _, p := range plans {
		byAlias[p.alias] = p
	}

	bindings := make([]colBinding, len(columns))
	for i, col := range columns {
		if idx := strings.Index(col, "__"); idx > 0 {
			alias, name := col[:idx], col[idx+2:]
			p, ok := byAlias[alias]
			if !ok {
				return nil, errs.NewErrFieldColumnMismatch("unexpected column " + col)
			}
			fd, ok := p.related.ColumnMap[name]
			if !ok {
				return nil, errs.NewErrFieldColumnMismatch("unexpected column " + col)
			}
			bindings[i] = colBinding{fd: fd, plan: p}
			continue
		}
		fd, ok := c.model.ColumnMap[col]
		if !ok {
			return nil, errs.NewErrUnknownColumn(col)
		}
		bindings[i] = colBinding{fd: fd}
	}

	var res []*T
	for rows.Next() {
		entity, err := scanJoinedRow[T](plans, bindings, rows)
		if err != nil {
			return nil, err
		}
		res = append(res, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(err)
	}
	return res, nil
}

func scanJoinedRow[T any](plans []*relationPlan, bindings []colBinding, rows *sql.Rows) (*T, error) {
	// Base columns scan into typed holders; relation columns scan into
	// plain holders first, because every one of them may be NULL on a
	// row with no related record.
	holders := make([]any, len(bindings))
	baseVals := make([]reflect.Value, len(bindings))
	for i, bd := range bindings {
		if bd.plan != nil {
			holders[i] = new(any)
			continue
		}
		v := reflect.New(bd.fd.Type)
		holders[i] = v.Interface()
		baseVals[i] = v.Elem()
	}
	if err := rows.Scan(holders...); err != nil {
		return nil, errs.NewErrTypeMismatch("*", err)
	}

	entity := new(T)
	ev := reflect.ValueOf(entity).Elem()
	for i, bd := range bindings {
		if bd.plan != nil {
			continue
		}
		ev.Field(bd.fd.Index).Set(baseVals[i])
	}

	for _, p := range plans {
		relEntity, err := buildRelated(p, bindings, holders)
		if err != nil {
			return nil, err
		}
		if relEntity.IsValid() {
			ev.Field(p.rel.FieldIndex()).Set(relEntity)
		}
	}
	return entity, nil
}

// buildRelated assembles one inline relationship record from its aliased
// holders, or returns an invalid value when every holder is NULL.
func buildRelated(p *relationPlan, bindings []colBinding, holders []any) (reflect.Value, error) {
	allNull := true
	for i, bd := range bindings {
		if bd.plan != p {
			continue
		}
		if *(holders[i].(*any)) != nil {
			allNull = false
			break
		}
	}
	if allNull {
		return reflect.Value{}, nil
	}

	relEntity := reflect.New(p.rel.Elem())
	elem := relEntity.Elem()
	for i, bd := range bindings {
		if bd.plan != p {
			continue
		}
		val := *(holders[i].(*any))
		if err := assignValue(elem.Field(bd.fd.Index), val); err != nil {
			return reflect.Value{}, errs.NewErrTypeMismatch(p.alias+"__"+bd.fd.ColName, err)
		}
	}
	return relEntity, nil
}

// assignValue writes a driver-provided value into a record field,
// converting between the driver's value kinds and the declared field
// type. A value the field cannot hold is a type mismatch, never a
// silent coercion.
func assignValue(dst reflect.Value, src any) error {
	if dst.Kind() == reflect.Ptr {
		if src == nil {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assignValue(dst.Elem(), src)
	}
	if dst.CanAddr() {
		if sc, ok := dst.Addr().Interface().(sql.Scanner); ok {
			return sc.Scan(src)
		}
	}
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, ok := src.(int64); ok {
			dst.SetInt(i)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if i, ok := src.(int64); ok {
			dst.SetUint(uint64(i))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := src.(float64); ok {
			dst.SetFloat(f)
			return nil
		}
	case reflect.String:
		switch s := src.(type) {
		case string:
			dst.SetString(s)
			return nil
		case []byte:
			dst.SetString(string(s))
			return nil
		}
	case reflect.Bool:
		if b, ok := src.(bool); ok {
			dst.SetBool(b)
			return nil
		}
	case reflect.Slice:
		if b, ok := src.([]byte); ok && dst.Type().Elem().Kind() == reflect.Uint8 {
			dst.SetBytes(b)
			return nil
		}
	}
	return fmt.Errorf("value of type %T does not fit %s", src, dst.Type())
}

// resolveBatches runs the follow-up query of every batch relationship:
// one query per relationship for the whole parent set, grouped
// client-side by the relationship key and attached back onto the
// parents. A failed follow-up fails the whole operation.
func resolveBatches[T any](ctx context.Context, sess Session, c core, plans []*relationPlan, parents []*T) error {
	for _, p := range plans {
		if err := resolveBatch(ctx, sess, c, p, parents); err != nil {
			return err
		}
	}
	return nil
}

func resolveBatch[T any](ctx context.Context, sess Session, c core, p *relationPlan, parents []*T) error {
	ownerFd, err := p.ownerField()
	if err != nil {
		return err
	}

	// collect the distinct owner-side link values, in first-seen order
	keys := make([]any, 0, len(parents))
	seen := make(map[any]struct{}, len(parents))
	for _, parent := range parents {
		k := normalizeKey(reflect.ValueOf(parent).Elem().Field(ownerFd.Index).Interface())
		if k == nil {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}

	q, err := p.batchQuery(c, keys)
	if err != nil {
		return err
	}
	rows, err := queryRows(ctx, sess, c, &QueryContext{
		Type:    "SELECT",
		Builder: compiledQuery{q: q},
		Model:   p.related,
	})
	if err != nil {
		return err
	}
	defer rows.Close()

	groups, err := groupRelatedRows(p, rows)
	if err != nil {
		return err
	}

	for _, parent := range parents {
		pv := reflect.ValueOf(parent).Elem()
		k := normalizeKey(pv.Field(ownerFd.Index).Interface())
		matches := groups[k]
		if len(matches) == 0 {
			// no match is a nil pointer or an empty list, never an error
			continue
		}
		field := pv.Field(p.rel.FieldIndex())
		if p.rel.Kind == model.Many {
			slice := reflect.MakeSlice(field.Type(), 0, len(matches))
			for _, m := range matches {
				slice = reflect.Append(slice, m)
			}
			field.Set(slice)
		} else {
			field.Set(matches[0])
		}
	}
	return nil
}

// groupRelatedRows scans the batch result set into related records and
// groups them by the relationship key into a multimap, preserving row
// order within each key.
func groupRelatedRows(p *relationPlan, rows *sql.Rows) (map[any][]reflect.Value, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	keyCol := p.keyColumn()
	keyIdx := -1
	fds := make([]*model.Field, len(columns))
	for i, col := range columns {
		if fd, ok := p.related.ColumnMap[col]; ok {
			fds[i] = fd
			if col == keyCol {
				keyIdx = i
			}
			continue
		}
		if col == keyCol {
			keyIdx = i
			continue
		}
		return nil, errs.NewErrFieldColumnMismatch("unexpected column " + col)
	}
	if keyIdx == -1 {
		return nil, errs.NewErrFieldColumnMismatch("missing key column " + keyCol)
	}

	groups := make(map[any][]reflect.Value)
	for rows.Next() {
		holders := make([]any, len(columns))
		vals := make([]reflect.Value, len(columns))
		for i := range columns {
			if fds[i] == nil {
				holders[i] = new(any)
				continue
			}
			v := reflect.New(fds[i].Type)
			holders[i] = v.Interface()
			vals[i] = v.Elem()
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, errs.NewErrTypeMismatch("*", err)
		}

		relEntity := reflect.New(p.rel.Elem())
		elem := relEntity.Elem()
		for i := range columns {
			if fds[i] == nil {
				continue
			}
			elem.Field(fds[i].Index).Set(vals[i])
		}

		var key any
		if fds[keyIdx] != nil {
			key = normalizeKey(vals[keyIdx].Interface())
		} else {
			key = normalizeKey(*(holders[keyIdx].(*any)))
		}
		groups[key] = append(groups[key], relEntity)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(err)
	}
	return groups, nil
}

// normalizeKey folds a key value into a canonical comparable form, so a
// record field (say, int32) and the driver's reading of the same column
// (int64) group together. Unconvertible values fall back to their string
// rendering.
func normalizeKey(v any) any {
	if v == nil {
		return nil
	}
	p, err := frag.FromValue(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return p.Value()
}
