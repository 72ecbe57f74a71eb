package model

import "slices"

// Group is one node of a namespace's group forest.
type Group struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ParentID   string   `json:"parentId,omitempty"` // "" = root
	AccountIDs []string `json:"accountIds"`
}

// NodeID returns the group id.
func (g Group) NodeID() string { return g.ID }

// ParentNodeID returns the parent group id, "" for roots.
func (g Group) ParentNodeID() string { return g.ParentID }

// Clone returns a copy that shares no slices with g.
func (g Group) Clone() Group {
	g.AccountIDs = slices.Clone(g.AccountIDs)
	if g.AccountIDs == nil {
		g.AccountIDs = []string{}
	}
	return g
}

// GroupNode is a Group with its children attached, as returned by tree views.
type GroupNode struct {
	Group
	Children []*GroupNode `json:"children"`
}

// Account is a chart account. Code is the business key and is unique within
// its namespace; ID is the opaque identity.
type Account struct {
	ID       string   `json:"id"`
	Code     int      `json:"code"`
	Name     string   `json:"name"`
	GroupIDs []string `json:"groupIds"`
}

// Clone returns a copy that shares no slices with a.
func (a Account) Clone() Account {
	a.GroupIDs = slices.Clone(a.GroupIDs)
	if a.GroupIDs == nil {
		a.GroupIDs = []string{}
	}
	return a
}

// ChartSnapshot is the full contents of one chart namespace.
type ChartSnapshot struct {
	Groups   []Group   `json:"groups"`
	Accounts []Account `json:"accounts"`
}
