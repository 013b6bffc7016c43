package operator

import (
	"github.com/roach88/collections/internal/source"
)

// journal is a collection recording every mutation applied to it.
type journal struct {
	caps    Capability
	entries []string
	cursor  Cursor
}

func newJournal(caps Capability) *journal {
	return &journal{caps: caps, cursor: All}
}

func (j *journal) with(entry string) *journal {
	next := &journal{caps: j.caps, cursor: j.cursor}
	next.entries = append(append([]string(nil), j.entries...), entry)
	return next
}

func (j *journal) Capabilities() Capability { return j.caps }
func (j *journal) Source() source.Source { return nil }

func (j *journal) Filters() []*Filter { return nil }
func (j *journal) IsFiltered() bool { return false }
func (j *journal) WithFilter(f *Filter) Collection { return j.with("filter") }
func (j *journal) WithoutFilter(f *Filter) Collection { return j.with("-filter") }
func (j *journal) Orders() []*Order { return nil }
func (j *journal) IsOrdered() bool { return false }
func (j *journal) WithOrder(o *Order) Collection { return j.with("order") }
func (j *journal) WithoutOrder(o *Order) Collection { return j.with("-order") }
func (j *journal) Groups() []*Group { return nil }
func (j *journal) IsGrouped() bool { return false }
func (j *journal) WithGroup(g *Group) Collection { return j.with("group") }
func (j *journal) WithoutGroup(g *Group) Collection { return j.with("-group") }
func (j *journal) Aggregates() []*Aggregate { return nil }
func (j *journal) IsAggregated() bool { return false }
func (j *journal) WithAggregate(a *Aggregate) Collection { return j.with("aggregate") }
func (j *journal) WithoutAggregate(a *Aggregate) Collection { return j.with("-aggregate") }
func (j *journal) Joins() []*Join { return nil }
func (j *journal) IsJoined() bool { return false }
func (j *journal) WithJoin(jn *Join) Collection { return j.with("join:" + jn.Name()) }
func (j *journal) WithoutJoin(jn *Join) Collection { return j.with("-join:" + jn.Name()) }
func (j *journal) Selections() []*Select { return nil }
func (j *journal) IsSelected() bool { return false }
func (j *journal) WithSelect(s *Select) Collection { return j.with("select") }
func (j *journal) WithoutSelect(s *Select) Collection { return j.with("-select") }
func (j *journal) Cursor() Cursor { return j.cursor }

func (j *journal) WithCursor(c Cursor) Collection {
	next := j.with("cursor")
	next.cursor = c
	return next
}

func entries(c Collection) []string {
	return c.(*journal).entries
}
