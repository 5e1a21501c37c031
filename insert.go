package zrm

import (
	"context"
	"database/sql"

	"github.com/zigzedd/zrm/internal/errs"
	"github.com/zigzedd/zrm/model"
)

// UpsertBuilder configures the conflict action of an INSERT before
// handing control back to the Inserter.
type UpsertBuilder[T any] struct {
	i               *Inserter[T]
	conflictColumns []string
}

type Upsert struct {
	assigns         []Assignable
	conflictColumns []string
}

// ConflictColumns names the fields whose unique constraint arbitrates
// the conflict.
func (o *UpsertBuilder[T]) ConflictColumns(cols ...string) *UpsertBuilder[T] {
	o.conflictColumns = cols
	return o
}

// Update sets the assignments applied when the insert conflicts. An
// Assignment writes an explicit value; a Column keeps the value the
// insert attempted.
func (o *UpsertBuilder[T]) Update(assigns ...Assignable) *Inserter[T] {
	o.i.upsert = &Upsert{
		assigns:         assigns,
		conflictColumns: o.conflictColumns,
	}
	return o.i
}

type Inserter[T any] struct {
	builder
	values []*T

	columns    []string
	columnsSet bool

	returning    []string
	returningSet bool

	upsert *Upsert

	sess Session
}

func NewInserter[T any](sess Session) *Inserter[T] {
	c := sess.getCore()
	return &Inserter[T]{
		builder: builder{
			core:   c,
			quoter: c.dialect.quoter(),
		},
		sess: sess,
	}
}

// Values replaces the rows to insert.
func (i *Inserter[T]) Values(vals ...*T) *Inserter[T] {
	i.values = vals
	return i
}

// Columns replaces the inserted column list; by default every model
// field is inserted. An explicit empty list fails the build.
func (i *Inserter[T]) Columns(cols ...string) *Inserter[T] {
	i.columns = cols
	i.columnsSet = true
	return i
}

// Returning replaces the RETURNING list, enabling Get and GetMulti on
// the insert.
func (i *Inserter[T]) Returning(cols ...string) *Inserter[T] {
	i.returning = cols
	i.returningSet = true
	return i
}

func (i *Inserter[T]) Upsert() *UpsertBuilder[T] {
	return &UpsertBuilder[T]{i: i}
}

func (i *Inserter[T]) Build() (*Query, error) {
	if len(i.values) == 0 {
		return nil, errs.ErrAtLeastOneValueRequired
	}
	if i.columnsSet && len(i.columns) == 0 {
		return nil, errs.ErrAtLeastOneSelectionRequired
	}
	if i.model == nil {
		var err error
		i.model, err = i.r.Get(i.values[0])
		if err != nil {
			return nil, err
		}
	}
	i.reset()

	i.sb.WriteString("INSERT INTO ")
	i.quote(i.model.TableName)
	i.sb.WriteByte('(')

	fields := i.model.Fields
	if len(i.columns) > 0 {
		fields = make([]*model.Field, 0, len(i.columns))
		for _, col := range i.columns {
			fd, ok := i.model.FieldMap[col]
			if !ok {
				return nil, errs.NewErrUnknownField(col)
			}
			fields = append(fields, fd)
		}
	}
	for idx, fd := range fields {
		if idx > 0 {
			i.sb.WriteByte(',')
		}
		i.quote(fd.ColName)
	}
	i.sb.WriteString(") VALUES ")

	i.args = make([]any, 0, len(i.values)*len(fields))
	for vIdx, val := range i.values {
		if vIdx > 0 {
			i.sb.WriteByte(',')
		}
		i.sb.WriteByte('(')
		refVal := i.creator(i.model, val)
		for fIdx, fd := range fields {
			if fIdx > 0 {
				i.sb.WriteByte(',')
			}
			i.sb.WriteByte('?')
			fdVal, err := refVal.Field(fd.GoName)
			if err != nil {
				return nil, err
			}
			i.addArgs(fdVal)
		}
		i.sb.WriteByte(')')
	}

	if i.upsert != nil {
		if err := i.dialect.buildUpsert(&i.builder, i.upsert); err != nil {
			return nil, err
		}
	}

	if i.returningSet {
		if len(i.returning) == 0 {
			return nil, errs.ErrAtLeastOneSelectionRequired
		}
		i.sb.WriteString(" RETURNING ")
		for idx, col := range i.returning {
			if idx > 0 {
				i.sb.WriteByte(',')
			}
			name, err := i.columnName(col)
			if err != nil {
				return nil, err
			}
			i.sb.WriteString(name)
		}
	}

	i.sb.WriteByte(';')
	return &Query{
		SQL:  i.finalize(),
		Args: i.args,
	}, nil
}

func (i *Inserter[T]) Exec(ctx context.Context) Result {
	if i.model == nil && len(i.values) > 0 {
		var err error
		i.model, err = i.r.Get(i.values[0])
		if err != nil {
			return Result{err: err}
		}
	}
	qr := exec(ctx, i.sess, i.core, &QueryContext{
		Type:    "INSERT",
		Builder: i,
		Model:   i.model,
	})
	if res, ok := qr.Result.(Result); ok {
		return res
	}
	return Result{err: qr.Err}
}

// Get runs the insert and maps the first returned row. It requires a
// Returning list.
func (i *Inserter[T]) Get(ctx context.Context) (*T, error) {
	res, err := i.GetMulti(ctx)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrNoRows
	}
	return res[0], nil
}

// GetMulti runs the insert and maps every returned row. It requires a
// Returning list.
func (i *Inserter[T]) GetMulti(ctx context.Context) ([]*T, error) {
	if i.model == nil && len(i.values) > 0 {
		var err error
		i.model, err = i.r.Get(i.values[0])
		if err != nil {
			return nil, err
		}
	}
	rows, err := queryRows(ctx, i.sess, i.core, &QueryContext{
		Type:    "INSERT",
		Builder: i,
		Model:   i.model,
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll[T](i.core, rows)
}

// scanAll maps every row through the configured valuer.
func scanAll[T any](c core, rows *sql.Rows) ([]*T, error) {
	var res []*T
	for rows.Next() {
		entity := new(T)
		if err := c.creator(c.model, entity).SetColumns(rows); err != nil {
			return nil, err
		}
		res = append(res, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(err)
	}
	return res, nil
}
