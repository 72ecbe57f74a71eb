package hierarchy

// Tree is one node of a forest built from a flat list.
type Tree[N Node] struct {
	Value    N
	Children []*Tree[N]
}

// Build converts a flat list into a forest. A node is attached under its
// parent when the parent is part of nodes; otherwise it is a root. Sibling
// and root order follow input order. Build never mutates nodes.
//
// Malformed input terminates too: a node that is only reachable through a
// cycle is cut from its parent and promoted to a root, in input order.
// Later entries with an id already seen are ignored.
func Build[N Node](nodes []N) []*Tree[N] {
	byID := make(map[string]*Tree[N], len(nodes))
	order := make([]*Tree[N], 0, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.NodeID()]; dup {
			continue
		}
		t := &Tree[N]{Value: n}
		byID[n.NodeID()] = t
		order = append(order, t)
	}

	var roots []*Tree[N]
	for _, t := range order {
		parent, ok := byID[t.Value.ParentNodeID()]
		if !ok || parent == t {
			roots = append(roots, t)
			continue
		}
		parent.Children = append(parent.Children, t)
	}

	reached := make(map[*Tree[N]]bool, len(order))
	mark := func(start *Tree[N]) {
		stack := []*Tree[N]{start}
		for len(stack) > 0 {
			t := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reached[t] {
				continue
			}
			reached[t] = true
			stack = append(stack, t.Children...)
		}
	}
	for _, r := range roots {
		mark(r)
	}

	for _, t := range order {
		if reached[t] {
			continue
		}
		parent := byID[t.Value.ParentNodeID()]
		parent.Children = removeChild(parent.Children, t)
		roots = append(roots, t)
		mark(t)
	}
	return roots
}

func removeChild[N Node](children []*Tree[N], target *Tree[N]) []*Tree[N] {
	out := children[:0]
	for _, c := range children {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

// Flatten returns the values of a forest in depth-first pre-order.
func Flatten[N Node](forest []*Tree[N]) []N {
	var out []N
	seen := make(map[*Tree[N]]bool)
	var walk func(trees []*Tree[N])
	walk = func(trees []*Tree[N]) {
		for _, t := range trees {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t.Value)
			walk(t.Children)
		}
	}
	walk(forest)
	return out
}
