// Package expr provides the typed expression trees that collections are
// filtered, ordered, grouped, aggregated and projected by.
//
// An Expression is an immutable node with an evaluated Primitive type and an
// ordered list of children. Leaves are constants, named parameters, and
// column placeholders (the latter live in package source, because a
// placeholder is always owned by exactly one source).
//
// TREE SHAPE:
//
//	And
//	 ├── Eq(users.age, Param("age", 30))
//	 └── IsNotNull(users.email)
//
// TRAVERSAL:
//
// Consumers never recurse over a tree. Walker exposes an explicit
// enter/exit stack machine so that rendering (querysql) and join linking
// (source) use memory proportional to the tree width on the current path,
// independent of call-stack depth:
//
//	w.Reset(root)
//	for !w.Done() {
//	    for w.CanEnter() {
//	        onEnter(w.Enter())
//	    }
//	    if w.CanExit() {
//	        onExit(w.Exit())
//	    }
//	}
//
// Exit events are post-order: every child exits before its parent.
//
// IDENTITY:
//
// Nodes are pointers and compare by reference with ==. WithChildren always
// allocates a new node, so callers that want to preserve identity must only
// rebuild when a child actually changed. Equal implements structural
// equality for operator set semantics.
package expr
