// Package export projects a client into the flat snapshot consumed by
// downstream reporting.
package export

import (
	"time"

	"github.com/flav-dev/flav/internal/accounts"
	"github.com/flav-dev/flav/internal/hierarchy"
	"github.com/flav-dev/flav/internal/model"
)

// Client builds the export snapshot of c at time now. Every account carries
// its effective main group. c is not modified.
func Client(c model.Client, now time.Time) model.ClientExport {
	out := model.ClientExport{
		Client:           model.ExportClientRef{ID: c.ID, Name: c.Name},
		AccountGroups:    make([]model.ExportAccountGroup, 0, len(c.AccountGroups)),
		Hierarchy:        Hierarchy(c.GroupHierarchy),
		AuthorizedEmails: make([]string, 0, len(c.AuthorizedUsers)),
		ExportedAt:       now.UTC().Format(time.RFC3339),
	}

	for _, g := range c.AccountGroups {
		eg := model.ExportAccountGroup{
			ID:       g.ID,
			Name:     g.Name,
			Accounts: make([]model.ExportAccount, 0, len(g.Accounts)),
		}
		for _, a := range g.Accounts {
			eg.Accounts = append(eg.Accounts, model.ExportAccount{
				AccountNumber: a.AccountNumber,
				AccountName:   a.AccountName,
				MainGroup:     accounts.EffectiveMainGroup(a.AccountNumber, a.CustomMainGroup),
			})
		}
		out.AccountGroups = append(out.AccountGroups, eg)
	}

	for _, u := range c.AuthorizedUsers {
		out.AuthorizedEmails = append(out.AuthorizedEmails, u.Email)
	}
	return out
}

// Hierarchy nests flat hierarchy nodes into a forest. Levels are taken from
// the tree shape, so the output is consistent even if stored levels drifted.
func Hierarchy(nodes []model.HierarchyNode) []model.HierarchyNode {
	return nest(hierarchy.Build(nodes), 1)
}

func nest(trees []*hierarchy.Tree[model.HierarchyNode], level int) []model.HierarchyNode {
	out := make([]model.HierarchyNode, 0, len(trees))
	for _, t := range trees {
		n := t.Value
		n.Level = level
		n.AccountGroupIDs = append([]string{}, n.AccountGroupIDs...)
		n.Children = nil
		if len(t.Children) > 0 {
			n.Children = nest(t.Children, level+1)
		}
		out = append(out, n)
	}
	return out
}
