package clients

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/flav-dev/flav/internal/hierarchy"
	"github.com/flav-dev/flav/internal/id"
	"github.com/flav-dev/flav/internal/model"
)

// AccountGroupUpdate holds the optional fields of UpdateAccountGroup. A
// pointer to "" for ParentGroupID makes the group a root.
type AccountGroupUpdate struct {
	Name          *string
	ParentGroupID *string
}

// CreateAccountGroup adds an empty account group to a client.
func (s *Service) CreateAccountGroup(ctx context.Context, clientID, name, parentGroupID string) (model.AccountGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.AccountGroup{}, model.Invalid("name", "account group name is required")
	}

	g := model.AccountGroup{
		ID:            s.newID(id.AccountGroup),
		Name:          name,
		ParentGroupID: parentGroupID,
		Accounts:      []model.ClientAccount{},
	}
	c, err := s.mutate(ctx, clientID, func(c *model.Client) error {
		if parentGroupID != "" {
			if _, ok := c.AccountGroup(parentGroupID); !ok {
				return model.MissingReference("parentGroupId", "account group", parentGroupID)
			}
		}
		c.AccountGroups = append(c.AccountGroups, g)
		return nil
	})
	if err != nil {
		return model.AccountGroup{}, err
	}
	created, _ := c.AccountGroup(g.ID)
	return *created, nil
}

// UpdateAccountGroup renames and/or moves an account group. Moves that
// would create a cycle are rejected.
func (s *Service) UpdateAccountGroup(ctx context.Context, clientID, groupID string, upd AccountGroupUpdate) (model.AccountGroup, error) {
	var name string
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.AccountGroup{}, model.Invalid("name", "account group name is required")
		}
	}

	c, err := s.mutate(ctx, clientID, func(c *model.Client) error {
		g, ok := c.AccountGroup(groupID)
		if !ok {
			return model.NotFound("account group", groupID)
		}
		if upd.ParentGroupID != nil {
			parentID := *upd.ParentGroupID
			if parentID != "" && parentID != groupID {
				if _, ok := c.AccountGroup(parentID); !ok {
					return model.MissingReference("parentGroupId", "account group", parentID)
				}
			}
			ok, err := hierarchy.CanReparent(c.AccountGroups, groupID, parentID)
			if err != nil {
				return err
			}
			if !ok {
				return model.Invalid("parentGroupId", "circular reference")
			}
			g.ParentGroupID = parentID
		}
		if upd.Name != nil {
			g.Name = name
		}
		return nil
	})
	if err != nil {
		return model.AccountGroup{}, err
	}
	updated, _ := c.AccountGroup(groupID)
	return *updated, nil
}

// DeleteAccountGroup removes an account group and its descendants, together
// with their accounts. Hierarchy attachments and limited user permissions
// referring to removed groups are stripped. A limited user left without any
// group is removed from the client.
func (s *Service) DeleteAccountGroup(ctx context.Context, clientID, groupID string) (bool, error) {
	return s.remove(ctx, clientID, func(c *model.Client) error {
		if _, ok := c.AccountGroup(groupID); !ok {
			return errUnchanged
		}
		removed := map[string]bool{groupID: true}
		for _, d := range hierarchy.Descendants(c.AccountGroups, groupID) {
			removed[d] = true
		}
		drop := func(gid string) bool { return removed[gid] }

		c.AccountGroups = slices.DeleteFunc(c.AccountGroups, func(g model.AccountGroup) bool {
			return removed[g.ID]
		})
		for i := range c.GroupHierarchy {
			n := &c.GroupHierarchy[i]
			n.AccountGroupIDs = slices.DeleteFunc(n.AccountGroupIDs, drop)
		}
		users := c.AuthorizedUsers[:0]
		for _, u := range c.AuthorizedUsers {
			u.AllowedGroupIDs = slices.DeleteFunc(u.AllowedGroupIDs, drop)
			if u.AccessLevel == model.AccessLimited && len(u.AllowedGroupIDs) == 0 {
				continue
			}
			users = append(users, u)
		}
		c.AuthorizedUsers = users
		return nil
	})
}

// AddAccount copies a source account into an account group under a fresh
// id. An account number may appear only once per group.
func (s *Service) AddAccount(ctx context.Context, clientID, groupID string, src model.ClientAccount) (model.ClientAccount, error) {
	if src.AccountNumber <= 0 {
		return model.ClientAccount{}, model.Invalid("accountNumber", "account number must be a positive number")
	}
	acct := model.ClientAccount{
		ID:            s.newID(id.Account),
		AccountNumber: src.AccountNumber,
		AccountName:   strings.TrimSpace(src.AccountName),
	}
	_, err := s.mutate(ctx, clientID, func(c *model.Client) error {
		g, ok := c.AccountGroup(groupID)
		if !ok {
			return model.NotFound("account group", groupID)
		}
		for _, a := range g.Accounts {
			if a.AccountNumber == acct.AccountNumber {
				return model.Invalid("accountNumber", fmt.Sprintf("account %d is already in group %s", acct.AccountNumber, g.Name))
			}
		}
		g.Accounts = append(g.Accounts, acct)
		return nil
	})
	if err != nil {
		return model.ClientAccount{}, err
	}
	return acct, nil
}

// RemoveAccount removes an account from an account group. It returns false
// when the account is not in the group.
func (s *Service) RemoveAccount(ctx context.Context, clientID, groupID, accountID string) (bool, error) {
	return s.remove(ctx, clientID, func(c *model.Client) error {
		g, ok := c.AccountGroup(groupID)
		if !ok {
			return model.NotFound("account group", groupID)
		}
		n := len(g.Accounts)
		g.Accounts = slices.DeleteFunc(g.Accounts, func(a model.ClientAccount) bool { return a.ID == accountID })
		if len(g.Accounts) == n {
			return errUnchanged
		}
		return nil
	})
}

// SetMainGroup overrides the main group of an account. A nil mainGroup
// restores the default classification.
func (s *Service) SetMainGroup(ctx context.Context, clientID, groupID, accountID string, mainGroup *int) (model.ClientAccount, error) {
	if mainGroup != nil && *mainGroup < 1 {
		return model.ClientAccount{}, model.Invalid("customMainGroup", "main group must be a positive number")
	}

	var i int
	c, err := s.mutate(ctx, clientID, func(c *model.Client) error {
		g, ok := c.AccountGroup(groupID)
		if !ok {
			return model.NotFound("account group", groupID)
		}
		i = slices.IndexFunc(g.Accounts, func(a model.ClientAccount) bool { return a.ID == accountID })
		if i < 0 {
			return model.NotFound("account", accountID)
		}
		g.Accounts[i].CustomMainGroup = nil
		if mainGroup != nil {
			v := *mainGroup
			g.Accounts[i].CustomMainGroup = &v
		}
		return nil
	})
	if err != nil {
		return model.ClientAccount{}, err
	}
	g, _ := c.AccountGroup(groupID)
	return g.Accounts[i], nil
}
