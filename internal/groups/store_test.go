package groups

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flav-dev/flav/internal/model"
)

func ptr[T any](v T) *T { return &v }

func mustGroup(t *testing.T, s *Store, name, parentID string) model.Group {
	t.Helper()
	g, err := s.CreateGroup(name, parentID)
	require.NoError(t, err)
	return g
}

func groupIDs(groups []model.Group) []string {
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return ids
}

func TestCreateGroup(t *testing.T) {
	s := NewStore()

	root := mustGroup(t, s, "  Furniture ", "")
	child := mustGroup(t, s, "Chairs", root.ID)

	assert.Equal(t, "Furniture", root.Name)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, root.ID, child.ParentID)
	assert.NotEqual(t, root.ID, child.ID)
	assert.Equal(t, []string{root.ID, child.ID}, groupIDs(s.Groups()), "creation order")
}

func TestCreateGroupValidation(t *testing.T) {
	s := NewStore()

	_, err := s.CreateGroup("   ", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))

	_, err = s.CreateGroup("Orphan", "grp-missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))
	assert.True(t, errors.Is(err, model.ErrNotFound))

	assert.Empty(t, s.Groups(), "failed creates leave nothing behind")
}

func TestCreateManyGroupsUniqueIDs(t *testing.T) {
	s := NewStore()
	for i := 0; i < 50; i++ {
		mustGroup(t, s, "g", "")
	}
	seen := make(map[string]bool)
	for _, g := range s.Groups() {
		assert.False(t, seen[g.ID])
		seen[g.ID] = true
	}
	assert.Len(t, seen, 50)
}

func TestUpdateGroupRename(t *testing.T) {
	s := NewStore()
	g := mustGroup(t, s, "IT", "")
	acct, err := s.CreateAccount(1050, "computers", []string{g.ID})
	require.NoError(t, err)

	updated, err := s.UpdateGroup(g.ID, GroupUpdate{Name: ptr("Hardware")})
	require.NoError(t, err)
	assert.Equal(t, "Hardware", updated.Name)
	assert.Equal(t, []string{acct.ID}, updated.AccountIDs, "rename leaves membership alone")

	_, err = s.UpdateGroup(g.ID, GroupUpdate{Name: ptr(" ")})
	assert.True(t, errors.Is(err, model.ErrValidation))

	_, err = s.UpdateGroup("grp-missing", GroupUpdate{Name: ptr("x")})
	assert.True(t, errors.Is(err, model.ErrNotFound))
	assert.False(t, errors.Is(err, model.ErrValidation))
}

func TestUpdateGroupReparent(t *testing.T) {
	s := NewStore()
	a := mustGroup(t, s, "A", "")
	b := mustGroup(t, s, "B", "")

	moved, err := s.UpdateGroup(b.ID, GroupUpdate{ParentID: ptr(a.ID)})
	require.NoError(t, err)
	assert.Equal(t, a.ID, moved.ParentID)

	moved, err = s.UpdateGroup(b.ID, GroupUpdate{ParentID: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, moved.ParentID)

	_, err = s.UpdateGroup(b.ID, GroupUpdate{ParentID: ptr("grp-missing")})
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestUpdateGroupCycleLeavesGroupUnchanged(t *testing.T) {
	s := NewStore()
	a := mustGroup(t, s, "A", "")
	b := mustGroup(t, s, "B", a.ID)

	_, err := s.UpdateGroup(a.ID, GroupUpdate{Name: ptr("renamed"), ParentID: ptr(b.ID)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))
	assert.Contains(t, err.Error(), "circular reference")

	got, ok := s.Group(a.ID)
	require.True(t, ok)
	assert.Equal(t, "A", got.Name, "failed update must not apply the rename")
	assert.Empty(t, got.ParentID)
}

func TestReparentScenario(t *testing.T) {
	s := NewStore()
	a := mustGroup(t, s, "A", "")
	b := mustGroup(t, s, "B", a.ID)
	c := mustGroup(t, s, "C", b.ID)

	ok, err := s.CanReparent(a.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.Reparent(a.ID, c.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))

	err = s.Reparent(a.ID, a.ID)
	assert.True(t, errors.Is(err, model.ErrValidation), "self reference")

	require.NoError(t, s.Reparent(a.ID, ""))
	got, _ := s.Group(a.ID)
	assert.Empty(t, got.ParentID, "A remains a root")

	// Moving C to the root and then B under C is fine.
	require.NoError(t, s.Reparent(c.ID, ""))
	require.NoError(t, s.Reparent(b.ID, c.ID))
	got, _ = s.Group(b.ID)
	assert.Equal(t, c.ID, got.ParentID)

	assert.True(t, errors.Is(s.Reparent("grp-missing", ""), model.ErrNotFound))
}

func TestDeleteGroupCascades(t *testing.T) {
	s := NewStore()
	root := mustGroup(t, s, "Root", "")
	child := mustGroup(t, s, "Child", root.ID)
	grandchild := mustGroup(t, s, "Grandchild", child.ID)
	other := mustGroup(t, s, "Other", "")

	inChild, err := s.CreateAccount(1000, "chairs", []string{child.ID, other.ID})
	require.NoError(t, err)
	inGrandchild, err := s.CreateAccount(1002, "tables", []string{grandchild.ID})
	require.NoError(t, err)

	before := len(s.Groups())
	assert.True(t, s.DeleteGroup(root.ID))
	assert.Equal(t, before-3, len(s.Groups()), "root plus two descendants removed")
	assert.Equal(t, []string{other.ID}, groupIDs(s.Groups()))

	got, ok := s.Account(inChild.ID)
	require.True(t, ok, "accounts survive group deletion")
	assert.Equal(t, []string{other.ID}, got.GroupIDs)

	got, _ = s.Account(inGrandchild.ID)
	assert.Empty(t, got.GroupIDs)

	assert.NoError(t, CheckSnapshot(s.Snapshot()))
}

func TestDeleteGroupScenario(t *testing.T) {
	s := NewStore()
	root := mustGroup(t, s, "Root", "")
	child := mustGroup(t, s, "Child", root.ID)
	acct, err := s.CreateAccount(1010, "pencils", []string{child.ID})
	require.NoError(t, err)

	assert.True(t, s.DeleteGroup(root.ID))
	assert.Empty(t, s.Groups())

	got, _ := s.Account(acct.ID)
	assert.NotContains(t, got.GroupIDs, child.ID)
}

func TestDeleteGroupNotFound(t *testing.T) {
	s := NewStore()
	mustGroup(t, s, "A", "")
	assert.False(t, s.DeleteGroup("grp-missing"))
	assert.Len(t, s.Groups(), 1)
}

func TestGroupsReturnsCopies(t *testing.T) {
	s := NewStore()
	g := mustGroup(t, s, "A", "")

	all := s.Groups()
	all[0].Name = "mutated"
	all[0].AccountIDs = append(all[0].AccountIDs, "acc-x")

	got, _ := s.Group(g.ID)
	assert.Equal(t, "A", got.Name)
	assert.Empty(t, got.AccountIDs)
}

func TestSnapshotRestore(t *testing.T) {
	s := NewStore()
	a := mustGroup(t, s, "A", "")
	b := mustGroup(t, s, "B", a.ID)
	_, err := s.CreateAccount(1000, "chairs", []string{a.ID, b.ID})
	require.NoError(t, err)

	snap := s.Snapshot()
	restored := NewStore()
	require.NoError(t, restored.Restore(snap))
	assert.Equal(t, s.Groups(), restored.Groups())
	assert.Equal(t, s.Accounts(), restored.Accounts())
}

func TestRestoreRejectsBrokenSnapshots(t *testing.T) {
	tests := []struct {
		name string
		snap model.ChartSnapshot
	}{
		{"cycle", model.ChartSnapshot{Groups: []model.Group{
			{ID: "a", Name: "A", ParentID: "b"},
			{ID: "b", Name: "B", ParentID: "a"},
		}}},
		{"dangling parent", model.ChartSnapshot{Groups: []model.Group{{ID: "a", Name: "A", ParentID: "x"}}}},
		{"empty name", model.ChartSnapshot{Groups: []model.Group{{ID: "a"}}}},
		{"duplicate code", model.ChartSnapshot{Accounts: []model.Account{
			{ID: "1", Code: 1000, Name: "x"},
			{ID: "2", Code: 1000, Name: "y"},
		}}},
		{"one-sided account link", model.ChartSnapshot{
			Groups:   []model.Group{{ID: "a", Name: "A"}},
			Accounts: []model.Account{{ID: "1", Code: 1000, Name: "x", GroupIDs: []string{"a"}}},
		}},
		{"one-sided group link", model.ChartSnapshot{
			Groups:   []model.Group{{ID: "a", Name: "A", AccountIDs: []string{"1"}}},
			Accounts: []model.Account{{ID: "1", Code: 1000, Name: "x"}},
		}},
		{"missing group", model.ChartSnapshot{
			Accounts: []model.Account{{ID: "1", Code: 1000, Name: "x", GroupIDs: []string{"a"}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			mustGroup(t, s, "Keep", "")

			err := s.Restore(tt.snap)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrIntegrity))
			assert.Len(t, s.Groups(), 1, "store unchanged")
		})
	}
}

func TestTreeFromStore(t *testing.T) {
	s := NewStore()
	a := mustGroup(t, s, "A", "")
	b := mustGroup(t, s, "B", a.ID)
	c := mustGroup(t, s, "C", "")
	mustGroup(t, s, "D", b.ID)

	tree := s.Tree()
	require.Len(t, tree, 2)
	assert.Equal(t, a.ID, tree[0].ID)
	assert.Equal(t, c.ID, tree[1].ID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, b.ID, tree[0].Children[0].ID)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "D", tree[0].Children[0].Children[0].Name)
}
