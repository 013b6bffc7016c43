// Package operator defines the transformation algebra applied to
// collections.
//
// An Operator maps a Collection to a Collection. Operators are immutable
// values: Filter, Order, Group, Aggregate, Select, Join, DeepJoin and
// Cursor each carry the state they add to a collection.
//
// CAPABILITIES:
//
// A collection advertises what it supports through a Capability set fixed
// at construction. Operators consult the set before touching the matching
// interface (Filterable, Orderable, ...). Applying an operator to a
// collection that lacks its capability returns the input unchanged, so
// generic code never has to probe first.
//
// COMPOSITION:
//
//	Compose(a, b).Apply(c) == a.Apply(b.Apply(c))
//
// The last operator of a composition runs first. Compositions flatten:
// composing a composition splices its operators instead of nesting it.
package operator
