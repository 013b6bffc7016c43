// Package querydef reads query definitions from YAML and turns them into
// operator compositions over catalog tables.
//
// A definition names a root table and lists, in application order, the
// joins, filters, selections, groupings, aggregates, orderings and cursor
// to apply:
//
//	name: adult-spenders
//	from: users
//	joins:
//	  - table: orders
//	    on: {eq: [orders.user_id, user.id]}
//	where:
//	  - {gt: [user.age, {param: min_age, value: 18}]}
//	order:
//	  - {expr: user.name, desc: true}
//	cursor: {limit: 10}
//
// EXPRESSIONS
//
// A string scalar is a column reference, "alias.column", or a bare column
// of the root table. Other scalars are constants. Mappings with a single
// key apply an operator to their operands:
//
//	eq ne lt lte gt gte like add sub mul div mod   two operands
//	and or coalesce                                one or more operands
//	in                                             operand then values
//	not neg is_null is_not_null                    one operand
//	sum avg min max lower upper                    one operand
//	count                                          zero or more operands
//	const                                          a literal, for strings
//	ref                                            a named selection
//
// {param: name, value: v} is a named parameter. Its value can be replaced
// at build time.
package querydef
