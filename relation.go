package zrm

import (
	"github.com/zigzedd/zrm/frag"
	"github.com/zigzedd/zrm/internal/errs"
	"github.com/zigzedd/zrm/model"
)

// relationKeyAlias is the synthetic column a pivot batch query adds to
// carry the grouping key, which lives on the pivot table rather than on
// the related table itself.
const relationKeyAlias = "zrm_key"

// relationPlan is a relationship descriptor bound to resolved models and
// key columns: the compiled form a statement uses to render a JOIN or a
// follow-up batch query.
type relationPlan struct {
	rel     *model.Relation
	owner   *model.Model
	related *model.Model

	// alias of the related table in joined selects; relation columns are
	// selected as "<alias>__<column>" so several relationships and the
	// main table never collide.
	alias string

	// ownerCol/relatedCol are the two sides of the link, resolved per
	// strategy with the defaults filled in.
	ownerCol   string
	relatedCol string

	lazy bool
}

// inline reports whether the relationship can be folded into the parent
// query as a LEFT JOIN. Only One relationships qualify, and only when
// lazy loading was not requested; a JOIN on a Many relationship would
// distort the parent row cardinality.
func (p *relationPlan) inline() bool {
	return p.rel.Kind == model.One && !p.lazy
}

func (c core) planRelation(owner *model.Model, rel *model.Relation, lazy bool) (*relationPlan, error) {
	related, err := c.r.Get(rel.Target)
	if err != nil {
		return nil, err
	}
	p := &relationPlan{
		rel:     rel,
		owner:   owner,
		related: related,
		alias:   model.UnderscoreName(rel.Field),
		lazy:    lazy || rel.Kind == model.Many,
	}
	if p.alias == owner.TableName || p.alias == related.TableName {
		p.alias += "_rel"
	}
	if err := p.resolveKeys(); err != nil {
		return nil, err
	}
	return p, nil
}

// resolveKeys fills the two link columns, defaulting unset keys from the
// declared primary keys: the referenced side's key column comes from
// ModelKey, the referencing side's from ForeignKey (named
// "<referenced table>_<pk>" when unset).
func (p *relationPlan) resolveKeys() error {
	rel := p.rel
	switch rel.Strategy {
	case model.Direct:
		// related carries the FK, owner is referenced
		ownerPK, err := singleKey(p.owner, rel.Field)
		if err != nil {
			return err
		}
		p.ownerCol = defaultCol(rel.ModelKey, ownerPK.ColName)
		p.relatedCol = defaultCol(rel.ForeignKey, p.owner.TableName+"_"+ownerPK.ColName)
	case model.Reverse:
		// owner carries the FK, related is referenced
		relatedPK, err := singleKey(p.related, rel.Field)
		if err != nil {
			return err
		}
		p.relatedCol = defaultCol(rel.ModelKey, relatedPK.ColName)
		p.ownerCol = defaultCol(rel.ForeignKey, p.related.TableName+"_"+relatedPK.ColName)
	case model.Through:
		// both sides are referenced from the pivot table
		if rel.PivotTable == "" || rel.PivotForeignKey == "" || rel.PivotModelKey == "" {
			return errs.NewErrMissingPivot(rel.Field)
		}
		if rel.ForeignKey == "" {
			ownerPK, err := singleKey(p.owner, rel.Field)
			if err != nil {
				return err
			}
			p.ownerCol = ownerPK.ColName
		} else {
			p.ownerCol = rel.ForeignKey
		}
		if rel.ModelKey == "" {
			relatedPK, err := singleKey(p.related, rel.Field)
			if err != nil {
				return err
			}
			p.relatedCol = relatedPK.ColName
		} else {
			p.relatedCol = rel.ModelKey
		}
	}
	return nil
}

func singleKey(m *model.Model, relField string) (*model.Field, error) {
	switch len(m.PrimaryKey) {
	case 0:
		return nil, errs.NewErrNoPrimaryKey(m.TableName)
	case 1:
		return m.PrimaryKey[0], nil
	default:
		return nil, errs.NewErrCompositeRelationKey(relField)
	}
}

func defaultCol(set string, fallback string) string {
	if set != "" {
		return set
	}
	return fallback
}

// ownerField is the owner-side link column's field metadata; its values
// key the batch query and the client-side grouping.
func (p *relationPlan) ownerField() (*model.Field, error) {
	fd, ok := p.owner.ColumnMap[p.ownerCol]
	if !ok {
		return nil, errs.NewErrUnknownColumn(p.ownerCol)
	}
	return fd, nil
}

// keyColumn is the result column carrying the grouping key in a batch
// query: the related-side link column, or the synthetic pivot alias.
func (p *relationPlan) keyColumn() string {
	if p.rel.Strategy == model.Through {
		return relationKeyAlias
	}
	return p.relatedCol
}

// writeJoin appends the LEFT JOIN clause(s) of an inline relationship.
func (p *relationPlan) writeJoin(b *builder) {
	switch p.rel.Strategy {
	case model.Through:
		pivot := p.alias + "_pivot"
		b.sb.WriteString(" LEFT JOIN ")
		b.quote(p.rel.PivotTable)
		b.sb.WriteString(" AS ")
		b.quote(pivot)
		b.sb.WriteString(" ON ")
		b.sb.WriteString(b.quoted(pivot) + "." + b.quoted(p.rel.PivotForeignKey))
		b.sb.WriteString(" = ")
		b.sb.WriteString(b.quoted(p.owner.TableName) + "." + b.quoted(p.ownerCol))
		b.sb.WriteString(" LEFT JOIN ")
		b.quote(p.related.TableName)
		b.sb.WriteString(" AS ")
		b.quote(p.alias)
		b.sb.WriteString(" ON ")
		b.sb.WriteString(b.quoted(p.alias) + "." + b.quoted(p.relatedCol))
		b.sb.WriteString(" = ")
		b.sb.WriteString(b.quoted(pivot) + "." + b.quoted(p.rel.PivotModelKey))
	default:
		b.sb.WriteString(" LEFT JOIN ")
		b.quote(p.related.TableName)
		b.sb.WriteString(" AS ")
		b.quote(p.alias)
		b.sb.WriteString(" ON ")
		b.sb.WriteString(b.quoted(p.alias) + "." + b.quoted(p.relatedCol))
		b.sb.WriteString(" = ")
		b.sb.WriteString(b.quoted(p.owner.TableName) + "." + b.quoted(p.ownerCol))
	}
}

// writeColumns appends the aliased select items of an inline
// relationship, one per related column.
func (p *relationPlan) writeColumns(b *builder) {
	for i, fd := range p.related.Fields {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.sb.WriteString(b.quoted(p.alias) + "." + b.quoted(fd.ColName))
		b.sb.WriteString(" AS ")
		b.quote(p.alias + "__" + fd.ColName)
	}
}

// batchQuery compiles the follow-up SELECT of a batch relationship,
// keyed by the collected parent link values. One such query runs per
// relationship, regardless of how many parents there are.
func (p *relationPlan) batchQuery(c core, keys []any) (*Query, error) {
	b := &builder{core: c, quoter: c.dialect.quoter()}
	b.model = p.related

	if p.rel.Strategy == model.Through {
		// SELECT "t".*, "pv"."<pivot fk>" AS "zrm_key" FROM related "t"
		// JOIN pivot "pv" ON "t".<key> = "pv".<pivot model key>
		// WHERE "pv".<pivot fk> IN (…)
		b.sb.WriteString("SELECT ")
		b.sb.WriteString(b.quoted("t") + ".*, ")
		b.sb.WriteString(b.quoted("pv") + "." + b.quoted(p.rel.PivotForeignKey))
		b.sb.WriteString(" AS ")
		b.quote(relationKeyAlias)
		b.sb.WriteString(" FROM ")
		b.quote(p.related.TableName)
		b.sb.WriteString(" AS ")
		b.quote("t")
		b.sb.WriteString(" JOIN ")
		b.quote(p.rel.PivotTable)
		b.sb.WriteString(" AS ")
		b.quote("pv")
		b.sb.WriteString(" ON ")
		b.sb.WriteString(b.quoted("t") + "." + b.quoted(p.relatedCol))
		b.sb.WriteString(" = ")
		b.sb.WriteString(b.quoted("pv") + "." + b.quoted(p.rel.PivotModelKey))
		b.sb.WriteString(" WHERE ")
		cond, err := frag.In(b.quoted("pv")+"."+b.quoted(p.rel.PivotForeignKey), keys)
		if err != nil {
			return nil, err
		}
		b.writeCondition(cond)
	} else {
		b.sb.WriteString("SELECT * FROM ")
		b.quote(p.related.TableName)
		b.sb.WriteString(" WHERE ")
		cond, err := frag.In(b.quoted(p.relatedCol), keys)
		if err != nil {
			return nil, err
		}
		b.writeCondition(cond)
	}
	b.sb.WriteByte(';')
	return &Query{SQL: b.finalize(), Args: b.args}, nil
}
