package groups

import (
	"github.com/flav-dev/flav/internal/hierarchy"
	"github.com/flav-dev/flav/internal/model"
)

// BuildTree nests flat groups under their parents. Groups whose parent is
// not in flat become roots, so filtered slices are safe to pass.
func BuildTree(flat []model.Group) []*model.GroupNode {
	return convert(hierarchy.Build(flat))
}

func convert(trees []*hierarchy.Tree[model.Group]) []*model.GroupNode {
	out := make([]*model.GroupNode, 0, len(trees))
	for _, t := range trees {
		out = append(out, &model.GroupNode{
			Group:    t.Value.Clone(),
			Children: convert(t.Children),
		})
	}
	return out
}

// FlattenTree lists a forest depth-first, parents before children.
func FlattenTree(forest []*model.GroupNode) []model.Group {
	var out []model.Group
	var walk func(nodes []*model.GroupNode)
	walk = func(nodes []*model.GroupNode) {
		for _, n := range nodes {
			out = append(out, n.Group.Clone())
			walk(n.Children)
		}
	}
	walk(forest)
	return out
}
