package zrm

import (
	"strconv"
	"strings"

	"github.com/zigzedd/zrm/internal/errs"
)

// DialectPostgres is the supported wire dialect: identifiers are
// double-quoted and parameters use numbered positional markers ($1, $2,
// …) substituted for `?` in strict occurrence order.
var DialectPostgres Dialect = postgresDialect{}

type Dialect interface {
	// quoter is the identifier quote character.
	quoter() byte
	// placeholder writes the positional marker for the idx-th parameter
	// (1-based). The renumbering walk itself is dialect-agnostic; only
	// the marker shape lives here.
	placeholder(sb *strings.Builder, idx int)

	buildUpsert(b *builder, odk *Upsert) error
}

type standardSQL struct{}

func (standardSQL) quoter() byte {
	return '"'
}

func (standardSQL) placeholder(sb *strings.Builder, _ int) {
	sb.WriteByte('?')
}

func (standardSQL) buildUpsert(_ *builder, _ *Upsert) error {
	return nil
}

type postgresDialect struct {
	standardSQL
}

func (postgresDialect) placeholder(sb *strings.Builder, idx int) {
	sb.WriteByte('$')
	sb.WriteString(strconv.Itoa(idx))
}

func (d postgresDialect) buildUpsert(b *builder, odk *Upsert) error {
	b.sb.WriteString(" ON CONFLICT(")
	for i, col := range odk.conflictColumns {
		if i > 0 {
			b.sb.WriteByte(',')
		}
		fd, ok := b.model.FieldMap[col]
		if !ok {
			return errs.NewErrUnknownField(col)
		}
		b.quote(fd.ColName)
	}
	b.sb.WriteString(") DO UPDATE SET ")
	for idx, assign := range odk.assigns {
		if idx > 0 {
			b.sb.WriteByte(',')
		}
		switch a := assign.(type) {
		case Assignment:
			fd, ok := b.model.FieldMap[a.col]
			if !ok {
				return errs.NewErrUnknownField(a.col)
			}
			b.quote(fd.ColName)
			b.sb.WriteString("=?")
			b.addArgs(a.val)
		case Column:
			// keep the inserted value on conflict
			fd, ok := b.model.FieldMap[a.name]
			if !ok {
				return errs.NewErrUnknownField(a.name)
			}
			b.quote(fd.ColName)
			b.sb.WriteString("=excluded.")
			b.quote(fd.ColName)
		default:
			return errs.NewErrUnsupportedAssignable(assign)
		}
	}
	return nil
}
