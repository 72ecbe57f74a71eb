// Package hierarchy holds the parent-pointer algorithms shared by every
// forest in the model: cycle-safe re-parenting, descendant sets and tree
// building from a flat list.
package hierarchy

import (
	"github.com/flav-dev/flav/internal/model"
)

// Node is anything that has an id and an optional parent id ("" for roots).
type Node interface {
	NodeID() string
	ParentNodeID() string
}

func parents[N Node](nodes []N) map[string]string {
	m := make(map[string]string, len(nodes))
	for _, n := range nodes {
		m[n.NodeID()] = n.ParentNodeID()
	}
	return m
}

// CanReparent reports whether id may take newParentID as its parent without
// forming a cycle. An empty newParentID (root) is always allowed. The parent
// walk is bounded by the node count; a walk that revisits a node means the
// forest was already broken and is reported as an IntegrityError.
func CanReparent[N Node](nodes []N, id, newParentID string) (bool, error) {
	if newParentID == "" {
		return true, nil
	}
	if newParentID == id {
		return false, nil
	}

	parentOf := parents(nodes)
	visited := make(map[string]bool, len(nodes))
	current := newParentID
	for steps := 0; current != ""; steps++ {
		if current == id {
			return false, nil
		}
		if visited[current] || steps > len(nodes) {
			return false, model.Integrity("parent chain of %s does not terminate", newParentID)
		}
		visited[current] = true

		next, ok := parentOf[current]
		if !ok {
			break
		}
		current = next
	}
	return true, nil
}

// Descendants returns the ids of every transitive child of id, breadth-first.
// id itself is not included.
func Descendants[N Node](nodes []N, id string) []string {
	children := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		if p := n.ParentNodeID(); p != "" {
			children[p] = append(children[p], n.NodeID())
		}
	}

	var out []string
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// Check verifies that every parent reference resolves inside nodes, that ids
// are unique and that there are no cycles.
func Check[N Node](nodes []N) error {
	parentOf := make(map[string]string, len(nodes))
	for _, n := range nodes {
		if _, dup := parentOf[n.NodeID()]; dup {
			return model.Integrity("duplicate id %s", n.NodeID())
		}
		parentOf[n.NodeID()] = n.ParentNodeID()
	}
	for _, n := range nodes {
		p := n.ParentNodeID()
		if p == "" {
			continue
		}
		if _, ok := parentOf[p]; !ok {
			return model.Integrity("%s references missing parent %s", n.NodeID(), p)
		}
	}

	// Walk up from each node; a chain longer than the node count is a cycle.
	for _, n := range nodes {
		current := n.ParentNodeID()
		for steps := 0; current != ""; steps++ {
			if current == n.NodeID() || steps > len(nodes) {
				return model.Integrity("cycle through %s", n.NodeID())
			}
			current = parentOf[current]
		}
	}
	return nil
}

// Levels returns the depth of every node, 1 for roots. Nodes whose parent is
// outside nodes count as roots.
func Levels[N Node](nodes []N) map[string]int {
	levels := make(map[string]int, len(nodes))
	var walk func(trees []*Tree[N], depth int)
	walk = func(trees []*Tree[N], depth int) {
		for _, t := range trees {
			levels[t.Value.NodeID()] = depth
			walk(t.Children, depth+1)
		}
	}
	walk(Build(nodes), 1)
	return levels
}
