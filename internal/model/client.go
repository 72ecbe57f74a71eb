package model

import (
	"slices"
	"time"
)

// ClientAccount is an account owned by a client's account group. The same
// shape is used for accounts of the upstream POGO chart.
type ClientAccount struct {
	ID              string `json:"id"`
	AccountNumber   int    `json:"accountNumber"`
	AccountName     string `json:"accountName"`
	CustomMainGroup *int   `json:"customMainGroup,omitempty"`
}

// AccountGroup is a named set of accounts inside a client. It owns its
// accounts directly.
type AccountGroup struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ParentGroupID string          `json:"parentGroupId,omitempty"`
	Accounts      []ClientAccount `json:"accounts"`
}

// NodeID returns the account group id.
func (g AccountGroup) NodeID() string { return g.ID }

// ParentNodeID returns the parent account group id, "" for roots.
func (g AccountGroup) ParentNodeID() string { return g.ParentGroupID }

// HierarchyNode is one level of a client's reporting hierarchy. Clients
// store nodes flat; Children is only populated on output.
type HierarchyNode struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Level           int             `json:"level"`
	ParentID        string          `json:"parentId,omitempty"`
	Children        []HierarchyNode `json:"children,omitempty"`
	AccountGroupIDs []string        `json:"accountGroupIds"`
}

// NodeID returns the node id.
func (n HierarchyNode) NodeID() string { return n.ID }

// ParentNodeID returns the parent node id, "" for roots.
func (n HierarchyNode) ParentNodeID() string { return n.ParentID }

// Client is the aggregate root of one client's configuration.
type Client struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	AccountGroups   []AccountGroup   `json:"accountGroups"`
	GroupHierarchy  []HierarchyNode  `json:"groupHierarchy"`
	AuthorizedUsers []AuthorizedUser `json:"authorizedEmails"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Clone returns a deep copy of c.
func (c Client) Clone() Client {
	out := c
	out.AccountGroups = make([]AccountGroup, len(c.AccountGroups))
	for i, g := range c.AccountGroups {
		g.Accounts = slices.Clone(g.Accounts)
		for j, a := range g.Accounts {
			if a.CustomMainGroup != nil {
				v := *a.CustomMainGroup
				g.Accounts[j].CustomMainGroup = &v
			}
		}
		if g.Accounts == nil {
			g.Accounts = []ClientAccount{}
		}
		out.AccountGroups[i] = g
	}
	out.GroupHierarchy = make([]HierarchyNode, len(c.GroupHierarchy))
	for i, n := range c.GroupHierarchy {
		n.AccountGroupIDs = slices.Clone(n.AccountGroupIDs)
		if n.AccountGroupIDs == nil {
			n.AccountGroupIDs = []string{}
		}
		n.Children = nil
		out.GroupHierarchy[i] = n
	}
	out.AuthorizedUsers = make([]AuthorizedUser, len(c.AuthorizedUsers))
	for i, u := range c.AuthorizedUsers {
		out.AuthorizedUsers[i] = u.Clone()
	}
	return out
}

// AccountGroup returns the account group with id.
func (c *Client) AccountGroup(id string) (*AccountGroup, bool) {
	for i := range c.AccountGroups {
		if c.AccountGroups[i].ID == id {
			return &c.AccountGroups[i], true
		}
	}
	return nil, false
}

// Node returns the hierarchy node with id.
func (c *Client) Node(id string) (*HierarchyNode, bool) {
	for i := range c.GroupHierarchy {
		if c.GroupHierarchy[i].ID == id {
			return &c.GroupHierarchy[i], true
		}
	}
	return nil, false
}

// AccountCount returns the number of accounts across all account groups.
func (c Client) AccountCount() int {
	n := 0
	for _, g := range c.AccountGroups {
		n += len(g.Accounts)
	}
	return n
}

// ClientSummary is the listing view of a client.
type ClientSummary struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	AccountCount        int       `json:"accountCount"`
	AuthorizedUserCount int       `json:"authorizedUserCount"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// ClientExport is the portable snapshot handed to downstream reporting.
type ClientExport struct {
	Client           ExportClientRef      `json:"client"`
	AccountGroups    []ExportAccountGroup `json:"accountGroups"`
	Hierarchy        []HierarchyNode      `json:"hierarchy"`
	AuthorizedEmails []string             `json:"authorizedEmails"`
	ExportedAt       string               `json:"exportedAt"`
}

// ExportClientRef identifies the exported client.
type ExportClientRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExportAccountGroup is an account group in export form.
type ExportAccountGroup struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Accounts []ExportAccount `json:"accounts"`
}

// ExportAccount carries the effective classification of one account.
type ExportAccount struct {
	AccountNumber int    `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	MainGroup     int    `json:"mainGroup"`
}
