package operator

import "fmt"

// Unlimited is the limit of a cursor that does not cap its rows.
const Unlimited = -1

// Cursor is a window over a collection's rows. It is a plain value and
// compares with ==.
type Cursor struct {
	offset int
	limit  int
}

var (
	// All selects every row.
	All = Cursor{offset: 0, limit: Unlimited}
	// Default selects the first ten rows.
	Default = Cursor{offset: 0, limit: 10}
	// First selects the first row.
	First = Cursor{offset: 0, limit: 1}
	// None selects no row.
	None = Cursor{offset: 0, limit: 0}
)

// NewCursor returns a cursor over the first limit rows.
func NewCursor(limit int) Cursor {
	return CursorAt(0, limit)
}

// CursorAt returns a cursor skipping offset rows and keeping limit rows.
// Pass Unlimited to keep every remaining row. It panics on negative
// values.
func CursorAt(offset, limit int) Cursor {
	mustNonNegative("offset", offset)
	if limit != Unlimited {
		mustNonNegative("limit", limit)
	}
	return Cursor{offset: offset, limit: limit}
}

func mustNonNegative(field string, n int) {
	if n < 0 {
		panic(fmt.Sprintf("cursor %s must be non-negative, got %d", field, n))
	}
}

func (c Cursor) Offset() int { return c.offset }

// Limit returns the row limit, or Unlimited.
func (c Cursor) Limit() int { return c.limit }

// HasLimit is false only for unlimited cursors.
func (c Cursor) HasLimit() bool { return c.limit != Unlimited }

func (c Cursor) SetOffset(offset int) Cursor { return CursorAt(offset, c.limit) }
func (c Cursor) SetLimit(limit int) Cursor { return CursorAt(c.offset, limit) }

// Unlimit drops the limit.
func (c Cursor) Unlimit() Cursor { return Cursor{offset: c.offset, limit: Unlimited} }

// Unskip drops the offset.
func (c Cursor) Unskip() Cursor { return Cursor{offset: 0, limit: c.limit} }

// Next returns the window following c. Unlimited cursors have no next
// window and return themselves.
func (c Cursor) Next() Cursor {
	if !c.HasLimit() {
		return c
	}
	return Cursor{offset: c.offset + c.limit, limit: c.limit}
}

func (c Cursor) Apply(input Collection) Collection {
	if cc, ok := As[Cursorable](input, CanCursor); ok {
		return cc.WithCursor(c)
	}
	return input
}

func (c Cursor) String() string {
	if !c.HasLimit() {
		return fmt.Sprintf("cursor(offset=%d)", c.offset)
	}
	return fmt.Sprintf("cursor(offset=%d, limit=%d)", c.offset, c.limit)
}
