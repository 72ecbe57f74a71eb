package clients

import (
	"strings"

	"github.com/flav-dev/flav/internal/hierarchy"
	"github.com/flav-dev/flav/internal/model"
)

// Check verifies every invariant of a client. Operations validate their
// input first, so a failure here means a bug or corrupt stored data and is
// reported as an IntegrityError.
func Check(c model.Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return model.Integrity("client %s has no name", c.ID)
	}

	if err := hierarchy.Check(c.AccountGroups); err != nil {
		return err
	}
	groups := make(map[string]bool, len(c.AccountGroups))
	for _, g := range c.AccountGroups {
		if strings.TrimSpace(g.Name) == "" {
			return model.Integrity("account group %s has no name", g.ID)
		}
		groups[g.ID] = true

		accountIDs := make(map[string]bool, len(g.Accounts))
		numbers := make(map[int]bool, len(g.Accounts))
		for _, a := range g.Accounts {
			if accountIDs[a.ID] {
				return model.Integrity("account group %s lists account %s twice", g.ID, a.ID)
			}
			if numbers[a.AccountNumber] {
				return model.Integrity("account group %s lists account number %d twice", g.ID, a.AccountNumber)
			}
			accountIDs[a.ID] = true
			numbers[a.AccountNumber] = true
			if a.CustomMainGroup != nil && *a.CustomMainGroup < 1 {
				return model.Integrity("account %s has main group %d", a.ID, *a.CustomMainGroup)
			}
		}
	}

	if err := hierarchy.Check(c.GroupHierarchy); err != nil {
		return err
	}
	levels := hierarchy.Levels(c.GroupHierarchy)
	for _, n := range c.GroupHierarchy {
		if strings.TrimSpace(n.Name) == "" {
			return model.Integrity("hierarchy node %s has no name", n.ID)
		}
		if n.Level != levels[n.ID] {
			return model.Integrity("hierarchy node %s has level %d, expected %d", n.ID, n.Level, levels[n.ID])
		}
		seen := make(map[string]bool, len(n.AccountGroupIDs))
		for _, gid := range n.AccountGroupIDs {
			if !groups[gid] {
				return model.Integrity("hierarchy node %s references missing account group %s", n.ID, gid)
			}
			if seen[gid] {
				return model.Integrity("hierarchy node %s lists account group %s twice", n.ID, gid)
			}
			seen[gid] = true
		}
	}

	emails := make(map[string]bool, len(c.AuthorizedUsers))
	for _, u := range c.AuthorizedUsers {
		if err := u.Validate(); err != nil {
			return model.Integrity("authorized user %q: %v", u.Email, err)
		}
		key := strings.ToLower(strings.TrimSpace(u.Email))
		if emails[key] {
			return model.Integrity("authorized user %s listed twice", u.Email)
		}
		emails[key] = true
		for _, gid := range u.AllowedGroupIDs {
			if !groups[gid] {
				return model.Integrity("authorized user %s references missing account group %s", u.Email, gid)
			}
		}
	}
	return nil
}

// flattenNodes lists nested nodes parent first with Children cleared. Stored
// clients written by older exports carry nested children.
func flattenNodes(nodes []model.HierarchyNode) []model.HierarchyNode {
	out := make([]model.HierarchyNode, 0, len(nodes))
	var walk func(ns []model.HierarchyNode, parentID string)
	walk = func(ns []model.HierarchyNode, parentID string) {
		for _, n := range ns {
			children := n.Children
			n.Children = nil
			if parentID != "" {
				n.ParentID = parentID
			}
			if n.AccountGroupIDs == nil {
				n.AccountGroupIDs = []string{}
			}
			out = append(out, n)
			walk(children, n.ID)
		}
	}
	walk(nodes, "")
	return out
}

func recomputeLevels(c *model.Client) {
	levels := hierarchy.Levels(c.GroupHierarchy)
	for i := range c.GroupHierarchy {
		c.GroupHierarchy[i].Level = levels[c.GroupHierarchy[i].ID]
	}
}
