package source

import (
	"github.com/roach88/collections/internal/catalog"
	"github.com/roach88/collections/internal/expr"
)

// JoinKind selects how a joined table is combined with its origin.
type JoinKind int

const (
	Inner JoinKind = iota
	Cross
	LeftOuter
	RightOuter
	// Embedded names a relationship already present on the origin row. It
	// never produces a join clause.
	Embedded
)

var joinKeywords = [...]string{
	Inner:      "INNER",
	Cross:      "CROSS",
	LeftOuter:  "LEFT OUTER",
	RightOuter: "RIGHT OUTER",
	Embedded:   "EMBEDDED",
}

// Keyword returns the clause keyword preceding JOIN.
func (k JoinKind) Keyword() string { return joinKeywords[k] }

func (k JoinKind) String() string { return joinKeywords[k] }

// ParseJoinKind reads a kind from its lower-case name.
func ParseJoinKind(name string) (JoinKind, bool) {
	switch name {
	case "", "inner":
		return Inner, true
	case "cross":
		return Cross, true
	case "left", "left_outer":
		return LeftOuter, true
	case "right", "right_outer":
		return RightOuter, true
	case "embedded":
		return Embedded, true
	default:
		return Inner, false
	}
}

// JoinSource joins a table onto an origin source.
type JoinSource struct {
	kind         JoinKind
	origin       Source
	joined       *TableSource
	predicate    expr.Expression
	name         string
	own          []*Placeholder
	placeholders []*Placeholder
}

// NewJoin builds a join of joined onto origin. The predicate may reference
// placeholders of origin, of any table joined earlier, and of joined; it is
// relinked so that joined columns refer to the join's own placeholders. An
// empty name defaults to the joined source's name. A nil predicate is
// allowed for cross joins.
func NewJoin(kind JoinKind, origin Source, joined *TableSource, predicate expr.Expression, name string) (*JoinSource, error) {
	if name == "" {
		name = joined.Name()
	}

	j := &JoinSource{
		kind:   kind,
		origin: origin,
		joined: joined,
		name:   name,
	}
	j.own = ownPlaceholders(j, joined.Table())

	forwarded := origin.Placeholders()
	j.placeholders = make([]*Placeholder, 0, len(forwarded)+len(j.own))
	j.placeholders = append(j.placeholders, forwarded...)
	j.placeholders = append(j.placeholders, j.own...)

	if predicate != nil {
		var l Linker
		linked, err := l.Link(j, predicate)
		if err != nil {
			return nil, err
		}
		j.predicate = linked
	}
	return j, nil
}

// MustJoin is NewJoin for predicates known to be well formed. It panics
// with an *UnattributedPlaceholderError or *AmbiguousPlaceholderError
// otherwise.
func MustJoin(kind JoinKind, origin Source, joined *TableSource, predicate expr.Expression, name string) *JoinSource {
	j, err := NewJoin(kind, origin, joined, predicate, name)
	if err != nil {
		panic(err)
	}
	return j
}

func (j *JoinSource) Name() string { return j.name }
func (j *JoinSource) Table() *catalog.Table { return j.joined.Table() }
func (j *JoinSource) Placeholders() []*Placeholder { return j.placeholders }

func (j *JoinSource) Kind() JoinKind { return j.kind }

// Origin is the source the table is joined onto.
func (j *JoinSource) Origin() Source { return j.origin }

// Joined is the table source the join was declared with.
func (j *JoinSource) Joined() *TableSource { return j.joined }

// Predicate is the linked join condition, nil for unconditioned joins.
func (j *JoinSource) Predicate() expr.Expression { return j.predicate }

func (j *JoinSource) Contains(p *Placeholder) bool {
	if p == nil {
		return false
	}
	if p.source == Source(j) {
		return true
	}
	return j.origin.Contains(p)
}

func (j *JoinSource) Resolve(p *Placeholder) (*Placeholder, bool) {
	if p == nil {
		return nil, false
	}
	if p.source == Source(j) {
		return p, true
	}
	if j.joined.Contains(p) {
		return j.own[p.column.Index()], true
	}
	return j.origin.Resolve(p)
}

func (j *JoinSource) Lookup(column string) (*Placeholder, bool) {
	c, ok := j.joined.Table().Column(column)
	if !ok {
		return nil, false
	}
	return j.own[c.Index()], true
}

// Col returns the placeholder for a joined column, panicking when it is
// missing.
func (j *JoinSource) Col(column string) *Placeholder { return Col(j, column) }

func (j *JoinSource) String() string { return j.name }

// Chain lists the sources of a join chain from the innermost origin to src.
func Chain(src Source) []Source {
	var chain []Source
	for src != nil {
		chain = append(chain, src)
		j, ok := src.(*JoinSource)
		if !ok {
			break
		}
		src = j.origin
	}
	for i, k := 0, len(chain)-1; i < k; i, k = i+1, k-1 {
		chain[i], chain[k] = chain[k], chain[i]
	}
	return chain
}

// Root returns the innermost origin of a chain.
func Root(src Source) Source {
	for {
		j, ok := src.(*JoinSource)
		if !ok {
			return src
		}
		src = j.origin
	}
}
