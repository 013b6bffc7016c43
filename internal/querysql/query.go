package querysql

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/collections/internal/operator"
)

// Query is a compiled collection.
//
// Text follows the fixed clause order and carries no LIMIT or OFFSET: the
// cursor is handed to the executor separately. Paged and Count assemble
// executable statements from the same clauses.
type Query struct {
	Text string

	// Args are the driver arguments matching Text in Dialect.
	Args []any

	// Params maps every namespaced parameter name to its value.
	Params map[string]any

	// Names lists parameter names in order of first appearance.
	Names []string

	Dialect    Dialect
	Cursor     operator.Cursor
	Aggregated bool

	clauses clauses
}

type clauses struct {
	sel, from, where, order, group clause
}

func (q *Query) String() string { return q.Text }

// statement joins the clauses in the fixed clause order.
func (cs clauses) statement() (string, []string) {
	var (
		b       strings.Builder
		markers []string
	)
	add := func(keyword string, cl clause) {
		if cl.empty() {
			return
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(keyword)
		b.WriteString(" ")
		b.WriteString(cl.text)
		markers = append(markers, cl.markers...)
	}

	add("SELECT", cs.sel)
	add("FROM", cs.from)
	add("WHERE", cs.where)
	add("ORDER BY", cs.order)
	add("GROUP BY", cs.group)
	return b.String(), markers
}

// Paged returns an executable statement: grouping precedes ordering and
// the cursor becomes LIMIT and OFFSET.
func (q *Query) Paged() (string, []any, error) {
	cs := q.clauses
	markers := append(append([]string(nil), cs.sel.markers...), cs.from.markers...)

	b := sq.Select(cs.sel.text).From(cs.from.text)
	if !cs.where.empty() {
		b = b.Where(cs.where.text)
		markers = append(markers, cs.where.markers...)
	}
	if !cs.group.empty() {
		b = b.GroupBy(cs.group.text)
		markers = append(markers, cs.group.markers...)
	}
	if !cs.order.empty() {
		b = b.OrderBy(cs.order.text)
		markers = append(markers, cs.order.markers...)
	}

	switch {
	case q.Cursor.HasLimit():
		b = b.Limit(uint64(q.Cursor.Limit()))
		if q.Cursor.Offset() > 0 {
			b = b.Offset(uint64(q.Cursor.Offset()))
		}
	case q.Cursor.Offset() > 0 && q.Dialect == Dollar:
		b = b.Offset(uint64(q.Cursor.Offset()))
	case q.Cursor.Offset() > 0:
		// SQLite only accepts OFFSET after a LIMIT.
		b = b.Suffix(fmt.Sprintf("LIMIT -1 OFFSET %d", q.Cursor.Offset()))
	}

	text, _, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("assemble paged query: %w", err)
	}
	return q.Dialect.finalize(text, markers, q.Params)
}

// Count returns a statement counting the rows the query yields, ignoring
// its cursor. Grouped queries count groups.
func (q *Query) Count() (string, []any, error) {
	cs := q.clauses

	var (
		b       sq.SelectBuilder
		markers []string
	)
	if q.Aggregated {
		columns := cs.sel
		if !cs.group.empty() {
			columns = cs.group
		}
		inner := sq.Select(columns.text).From(cs.from.text)
		markers = append(append(markers, columns.markers...), cs.from.markers...)
		if !cs.where.empty() {
			inner = inner.Where(cs.where.text)
			markers = append(markers, cs.where.markers...)
		}
		if !cs.group.empty() {
			inner = inner.GroupBy(cs.group.text)
			markers = append(markers, cs.group.markers...)
		}
		b = sq.Select("COUNT(*)").FromSelect(inner, "counted")
	} else {
		b = sq.Select("COUNT(*)").From(cs.from.text)
		markers = append(markers, cs.from.markers...)
		if !cs.where.empty() {
			b = b.Where(cs.where.text)
			markers = append(markers, cs.where.markers...)
		}
	}

	text, _, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("assemble count query: %w", err)
	}
	return q.Dialect.finalize(text, markers, q.Params)
}
