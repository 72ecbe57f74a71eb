// Package groups is the chart namespace engine: a forest of named groups and
// a registry of accounts whose membership links are kept in step with the
// groups. One Store is one namespace.
package groups

import (
	"slices"
	"strings"
	"sync"

	"github.com/flav-dev/flav/internal/hierarchy"
	"github.com/flav-dev/flav/internal/id"
	"github.com/flav-dev/flav/internal/model"
)

// Store owns the groups and accounts of one namespace. All methods are safe
// for concurrent use; every command either applies fully or not at all.
type Store struct {
	mu       sync.RWMutex
	groups   []*model.Group // creation order
	accounts []*model.Account
	newID    func(prefix string) string
}

// NewStore creates an empty namespace.
func NewStore() *Store {
	return &Store{newID: id.New}
}

// GroupUpdate holds the optional fields of UpdateGroup. A non-nil ParentID
// moves the group; a pointer to "" makes it a root.
type GroupUpdate struct {
	Name     *string
	ParentID *string
}

// CreateGroup adds a group under parentID ("" for a root).
func (s *Store) CreateGroup(name, parentID string) (model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Group{}, model.Invalid("name", "group name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if parentID != "" && s.group(parentID) == nil {
		return model.Group{}, model.MissingReference("parentId", "group", parentID)
	}

	g := &model.Group{
		ID:         s.newID(id.Group),
		Name:       name,
		ParentID:   parentID,
		AccountIDs: []string{},
	}
	s.groups = append(s.groups, g)
	return g.Clone(), nil
}

// UpdateGroup renames and/or moves a group.
func (s *Store) UpdateGroup(groupID string, upd GroupUpdate) (model.Group, error) {
	var name string
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.Group{}, model.Invalid("name", "group name is required")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.group(groupID)
	if g == nil {
		return model.Group{}, model.NotFound("group", groupID)
	}
	if upd.ParentID != nil {
		if err := s.checkReparent(groupID, *upd.ParentID); err != nil {
			return model.Group{}, err
		}
		g.ParentID = *upd.ParentID
	}
	if upd.Name != nil {
		g.Name = name
	}
	return g.Clone(), nil
}

// CanReparent reports whether groupID may move under newParentID.
func (s *Store) CanReparent(groupID, newParentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return hierarchy.CanReparent(s.groups, groupID, newParentID)
}

// Reparent moves groupID under newParentID ("" makes it a root). Only the
// group's parent pointer changes; its subtree moves with it.
func (s *Store) Reparent(groupID, newParentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.group(groupID)
	if g == nil {
		return model.NotFound("group", groupID)
	}
	if err := s.checkReparent(groupID, newParentID); err != nil {
		return err
	}
	g.ParentID = newParentID
	return nil
}

func (s *Store) checkReparent(groupID, newParentID string) error {
	if newParentID == "" {
		return nil
	}
	if newParentID != groupID && s.group(newParentID) == nil {
		return model.MissingReference("parentId", "group", newParentID)
	}
	ok, err := hierarchy.CanReparent(s.groups, groupID, newParentID)
	if err != nil {
		return err
	}
	if !ok {
		return model.Invalid("parentId", "circular reference")
	}
	return nil
}

// DeleteGroup removes a group together with all of its descendants and
// strips every removed id from account memberships. It returns false when
// the group does not exist.
func (s *Store) DeleteGroup(groupID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.group(groupID) == nil {
		return false
	}

	removed := map[string]bool{groupID: true}
	for _, d := range hierarchy.Descendants(s.groups, groupID) {
		removed[d] = true
	}

	s.groups = slices.DeleteFunc(s.groups, func(g *model.Group) bool {
		return removed[g.ID]
	})
	for _, a := range s.accounts {
		a.GroupIDs = slices.DeleteFunc(a.GroupIDs, func(gid string) bool {
			return removed[gid]
		})
	}
	return true
}

// Groups returns all groups in creation order.
func (s *Store) Groups() []model.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.Clone()
	}
	return out
}

// Group returns the group with groupID.
func (s *Store) Group(groupID string) (model.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := s.group(groupID)
	if g == nil {
		return model.Group{}, false
	}
	return g.Clone(), true
}

// Tree returns the groups as a forest.
func (s *Store) Tree() []*model.GroupNode {
	return BuildTree(s.Groups())
}

// Snapshot returns a copy of the whole namespace.
func (s *Store) Snapshot() model.ChartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.ChartSnapshot{
		Groups:   make([]model.Group, len(s.groups)),
		Accounts: make([]model.Account, len(s.accounts)),
	}
	for i, g := range s.groups {
		snap.Groups[i] = g.Clone()
	}
	for i, a := range s.accounts {
		snap.Accounts[i] = a.Clone()
	}
	return snap
}

// Restore replaces the namespace contents with snap after checking every
// invariant. On error the store is left unchanged.
func (s *Store) Restore(snap model.ChartSnapshot) error {
	if err := CheckSnapshot(snap); err != nil {
		return err
	}

	groups := make([]*model.Group, len(snap.Groups))
	for i, g := range snap.Groups {
		c := g.Clone()
		groups[i] = &c
	}
	accounts := make([]*model.Account, len(snap.Accounts))
	for i, a := range snap.Accounts {
		c := a.Clone()
		accounts[i] = &c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = groups
	s.accounts = accounts
	return nil
}

// CheckSnapshot verifies the namespace invariants of snap.
func CheckSnapshot(snap model.ChartSnapshot) error {
	if err := hierarchy.Check(snap.Groups); err != nil {
		return err
	}

	members := make(map[string]map[string]bool, len(snap.Groups))
	for _, g := range snap.Groups {
		if strings.TrimSpace(g.Name) == "" {
			return model.Integrity("group %s has no name", g.ID)
		}
		set := make(map[string]bool, len(g.AccountIDs))
		for _, aid := range g.AccountIDs {
			if set[aid] {
				return model.Integrity("group %s lists account %s twice", g.ID, aid)
			}
			set[aid] = true
		}
		members[g.ID] = set
	}

	ids := make(map[string]bool, len(snap.Accounts))
	codes := make(map[int]string, len(snap.Accounts))
	linked := 0
	for _, a := range snap.Accounts {
		if ids[a.ID] {
			return model.Integrity("duplicate account id %s", a.ID)
		}
		ids[a.ID] = true
		if other, dup := codes[a.Code]; dup {
			return model.Integrity("accounts %s and %s share code %d", other, a.ID, a.Code)
		}
		codes[a.Code] = a.ID

		seen := make(map[string]bool, len(a.GroupIDs))
		for _, gid := range a.GroupIDs {
			set, ok := members[gid]
			if !ok {
				return model.Integrity("account %s references missing group %s", a.ID, gid)
			}
			if seen[gid] || !set[a.ID] {
				return model.Integrity("membership of account %s in group %s is inconsistent", a.ID, gid)
			}
			seen[gid] = true
			linked++
		}
	}

	total := 0
	for _, set := range members {
		total += len(set)
	}
	if total != linked {
		return model.Integrity("groups list %d memberships but accounts list %d", total, linked)
	}
	return nil
}

func (s *Store) group(groupID string) *model.Group {
	for _, g := range s.groups {
		if g.ID == groupID {
			return g
		}
	}
	return nil
}
