package expr

// Walker is an explicit-stack depth-first cursor over an expression tree.
//
// The zero value is done; call Reset before walking. A Walker may be reused
// across trees, which keeps its frame buffer allocated.
type Walker struct {
	root    Expression
	started bool
	frames  []frame
}

type frame struct {
	node     Expression
	children []Expression
	next     int
}

// Reset prepares the walker to traverse root.
func (w *Walker) Reset(root Expression) {
	for i := range w.frames {
		w.frames[i] = frame{}
	}
	w.frames = w.frames[:0]
	w.root = root
	w.started = false
}

// Done reports whether every node has been exited.
func (w *Walker) Done() bool {
	return w.root == nil || (w.started && len(w.frames) == 0)
}

// CanEnter reports whether the next event is an enter.
func (w *Walker) CanEnter() bool {
	if !w.started {
		return w.root != nil
	}
	if len(w.frames) == 0 {
		return false
	}
	top := &w.frames[len(w.frames)-1]
	return top.next < len(top.children)
}

// Enter descends into the next unvisited node and returns it.
func (w *Walker) Enter() Expression {
	var node Expression
	if !w.started {
		node = w.root
		w.started = true
	} else {
		top := &w.frames[len(w.frames)-1]
		node = top.children[top.next]
		top.next++
	}
	w.frames = append(w.frames, frame{node: node, children: node.Children()})
	return node
}

// CanExit reports whether the current node has no unvisited children.
func (w *Walker) CanExit() bool {
	if len(w.frames) == 0 {
		return false
	}
	top := &w.frames[len(w.frames)-1]
	return top.next >= len(top.children)
}

// Exit leaves the current node and returns it.
func (w *Walker) Exit() Expression {
	last := len(w.frames) - 1
	node := w.frames[last].node
	w.frames[last] = frame{}
	w.frames = w.frames[:last]
	return node
}

// Depth returns the number of entered, not yet exited nodes.
func (w *Walker) Depth() int { return len(w.frames) }

// Walk visits root in pre-order (enter) and post-order (exit). Either
// callback may be nil.
func Walk(root Expression, enter, exit func(Expression)) {
	var w Walker
	w.Reset(root)
	for !w.Done() {
		for w.CanEnter() {
			node := w.Enter()
			if enter != nil {
				enter(node)
			}
		}
		if w.CanExit() {
			node := w.Exit()
			if exit != nil {
				exit(node)
			}
		}
	}
}

// Transform rebuilds root bottom-up. fn receives each node after its
// children have been transformed and returns its replacement. Nodes whose
// children and replacement are unchanged keep their identity, so a
// transform that changes nothing returns root itself.
func Transform(root Expression, fn func(Expression) Expression) Expression {
	type open struct {
		cursor  int
		changed bool
	}

	var (
		w      Walker
		values []Expression
		opens  []open
	)
	w.Reset(root)
	for !w.Done() {
		for w.CanEnter() {
			w.Enter()
			opens = append(opens, open{cursor: len(values)})
		}
		if !w.CanExit() {
			continue
		}

		original := w.Exit()
		top := opens[len(opens)-1]
		opens = opens[:len(opens)-1]

		node := original
		if top.changed {
			children := make([]Expression, len(values)-top.cursor)
			copy(children, values[top.cursor:])
			node = original.WithChildren(children)
		}
		values = values[:top.cursor]

		out := fn(node)
		values = append(values, out)
		if out != original && len(opens) > 0 {
			opens[len(opens)-1].changed = true
		}
	}

	if len(values) == 0 {
		return root
	}
	return values[0]
}
