package clients

import (
	"context"
	"slices"
	"strings"

	"github.com/flav-dev/flav/internal/export"
	"github.com/flav-dev/flav/internal/hierarchy"
	"github.com/flav-dev/flav/internal/id"
	"github.com/flav-dev/flav/internal/model"
)

// AddNode adds a hierarchy node under parentID ("" for a root). Its level is
// one below the parent.
func (s *Service) AddNode(ctx context.Context, clientID, name, parentID string) (model.HierarchyNode, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.HierarchyNode{}, model.Invalid("name", "node name is required")
	}

	nodeID := s.newID(id.Node)
	c, err := s.mutate(ctx, clientID, func(c *model.Client) error {
		level := 1
		if parentID != "" {
			parent, ok := c.Node(parentID)
			if !ok {
				return model.MissingReference("parentId", "hierarchy node", parentID)
			}
			level = parent.Level + 1
		}
		c.GroupHierarchy = append(c.GroupHierarchy, model.HierarchyNode{
			ID:              nodeID,
			Name:            name,
			Level:           level,
			ParentID:        parentID,
			AccountGroupIDs: []string{},
		})
		return nil
	})
	if err != nil {
		return model.HierarchyNode{}, err
	}
	n, _ := c.Node(nodeID)
	return *n, nil
}

// NodeUpdate holds the optional fields of UpdateNode. A pointer to "" for
// ParentID makes the node a root.
type NodeUpdate struct {
	Name     *string
	ParentID *string
}

// UpdateNode renames and/or re-parents a hierarchy node in one commit.
// Moves that would create a cycle are rejected; levels of the moved subtree
// are recomputed.
func (s *Service) UpdateNode(ctx context.Context, clientID, nodeID string, upd NodeUpdate) (model.HierarchyNode, error) {
	var name string
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.HierarchyNode{}, model.Invalid("name", "node name is required")
		}
	}
	if upd.Name == nil && upd.ParentID == nil {
		return model.HierarchyNode{}, model.Invalid("", "nothing to update")
	}

	return s.updateNode(ctx, clientID, nodeID, func(c *model.Client, n *model.HierarchyNode) error {
		if upd.ParentID != nil {
			parentID := *upd.ParentID
			if parentID != "" && parentID != nodeID {
				if _, ok := c.Node(parentID); !ok {
					return model.MissingReference("parentId", "hierarchy node", parentID)
				}
			}
			ok, err := hierarchy.CanReparent(c.GroupHierarchy, nodeID, parentID)
			if err != nil {
				return err
			}
			if !ok {
				return model.Invalid("parentId", "circular reference")
			}
			n.ParentID = parentID
			recomputeLevels(c)
		}
		if upd.Name != nil {
			n.Name = name
		}
		return nil
	})
}

// RenameNode changes the name of a hierarchy node.
func (s *Service) RenameNode(ctx context.Context, clientID, nodeID, name string) (model.HierarchyNode, error) {
	return s.UpdateNode(ctx, clientID, nodeID, NodeUpdate{Name: &name})
}

// MoveNode re-parents a hierarchy node ("" makes it a root).
func (s *Service) MoveNode(ctx context.Context, clientID, nodeID, newParentID string) (model.HierarchyNode, error) {
	return s.UpdateNode(ctx, clientID, nodeID, NodeUpdate{ParentID: &newParentID})
}

// DeleteNode removes a hierarchy node and all of its descendants. It returns
// false when the node does not exist.
func (s *Service) DeleteNode(ctx context.Context, clientID, nodeID string) (bool, error) {
	return s.remove(ctx, clientID, func(c *model.Client) error {
		if _, ok := c.Node(nodeID); !ok {
			return errUnchanged
		}
		removed := map[string]bool{nodeID: true}
		for _, d := range hierarchy.Descendants(c.GroupHierarchy, nodeID) {
			removed[d] = true
		}
		c.GroupHierarchy = slices.DeleteFunc(c.GroupHierarchy, func(n model.HierarchyNode) bool {
			return removed[n.ID]
		})
		return nil
	})
}

// SetNodeAccountGroups replaces the account groups attached to a node.
// Every id must name an account group of the client; duplicates collapse.
func (s *Service) SetNodeAccountGroups(ctx context.Context, clientID, nodeID string, groupIDs []string) (model.HierarchyNode, error) {
	return s.updateNode(ctx, clientID, nodeID, func(c *model.Client, n *model.HierarchyNode) error {
		next := make([]string, 0, len(groupIDs))
		for _, gid := range groupIDs {
			if slices.Contains(next, gid) {
				continue
			}
			if _, ok := c.AccountGroup(gid); !ok {
				return model.MissingReference("accountGroupIds", "account group", gid)
			}
			next = append(next, gid)
		}
		n.AccountGroupIDs = next
		return nil
	})
}

// ToggleNodeAccountGroup attaches groupID to a node, or detaches it when it
// is already attached.
func (s *Service) ToggleNodeAccountGroup(ctx context.Context, clientID, nodeID, groupID string) (model.HierarchyNode, error) {
	return s.updateNode(ctx, clientID, nodeID, func(c *model.Client, n *model.HierarchyNode) error {
		if i := slices.Index(n.AccountGroupIDs, groupID); i >= 0 {
			n.AccountGroupIDs = slices.Delete(n.AccountGroupIDs, i, i+1)
			return nil
		}
		if _, ok := c.AccountGroup(groupID); !ok {
			return model.MissingReference("accountGroupId", "account group", groupID)
		}
		n.AccountGroupIDs = append(n.AccountGroupIDs, groupID)
		return nil
	})
}

// HierarchyTree returns the client's hierarchy as a forest.
func (s *Service) HierarchyTree(clientID string) ([]model.HierarchyNode, error) {
	c, err := s.Get(clientID)
	if err != nil {
		return nil, err
	}
	return export.Hierarchy(c.GroupHierarchy), nil
}

func (s *Service) updateNode(ctx context.Context, clientID, nodeID string, fn func(c *model.Client, n *model.HierarchyNode) error) (model.HierarchyNode, error) {
	c, err := s.mutate(ctx, clientID, func(c *model.Client) error {
		n, ok := c.Node(nodeID)
		if !ok {
			return model.NotFound("hierarchy node", nodeID)
		}
		return fn(c, n)
	})
	if err != nil {
		return model.HierarchyNode{}, err
	}
	n, _ := c.Node(nodeID)
	return *n, nil
}
