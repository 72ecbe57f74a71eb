package groups

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flav-dev/flav/internal/model"
)

func TestCreateAccount(t *testing.T) {
	s := NewStore()
	g1 := mustGroup(t, s, "G1", "")
	g2 := mustGroup(t, s, "G2", "")

	a, err := s.CreateAccount(1000, " Chairs ", []string{g1.ID, g2.ID, g1.ID, ""})
	require.NoError(t, err)
	assert.Equal(t, 1000, a.Code)
	assert.Equal(t, "Chairs", a.Name)
	assert.Equal(t, []string{g1.ID, g2.ID}, a.GroupIDs, "duplicates and blanks dropped")

	for _, gid := range []string{g1.ID, g2.ID} {
		g, _ := s.Group(gid)
		assert.Equal(t, []string{a.ID}, g.AccountIDs)
	}
	assert.NoError(t, CheckSnapshot(s.Snapshot()))
}

func TestCreateAccountValidation(t *testing.T) {
	s := NewStore()
	g := mustGroup(t, s, "G", "")

	tests := []struct {
		name     string
		code     int
		acctName string
		groups   []string
		notFound bool
	}{
		{name: "zero code", code: 0, acctName: "x"},
		{name: "negative code", code: -5, acctName: "x"},
		{name: "empty name", code: 1000, acctName: "  "},
		{name: "unknown group", code: 1000, acctName: "x", groups: []string{g.ID, "grp-missing"}, notFound: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateAccount(tt.code, tt.acctName, tt.groups)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrValidation))
			assert.Equal(t, tt.notFound, errors.Is(err, model.ErrNotFound))
		})
	}

	assert.Empty(t, s.Accounts())
	got, _ := s.Group(g.ID)
	assert.Empty(t, got.AccountIDs, "rejected create links nothing")
}

func TestCreateAccountDuplicateCode(t *testing.T) {
	s := NewStore()
	_, err := s.CreateAccount(1000, "chairs", nil)
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.CreateAccount(1000, "stools", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))
	assert.Contains(t, err.Error(), "duplicate code")
	assert.Equal(t, before, s.Snapshot(), "registry unchanged")
}

func TestUpdateAccountMembershipDiff(t *testing.T) {
	s := NewStore()
	g1 := mustGroup(t, s, "G1", "")
	g2 := mustGroup(t, s, "G2", "")
	g3 := mustGroup(t, s, "G3", "")

	first, err := s.CreateAccount(1000, "first", []string{g1.ID})
	require.NoError(t, err)
	a, err := s.CreateAccount(1001, "second", []string{g1.ID, g2.ID})
	require.NoError(t, err)
	third, err := s.CreateAccount(1002, "third", []string{g1.ID})
	require.NoError(t, err)

	updated, err := s.UpdateAccount(a.ID, AccountUpdate{GroupIDs: []string{g1.ID, g3.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{g1.ID, g3.ID}, updated.GroupIDs)

	got1, _ := s.Group(g1.ID)
	assert.Equal(t, []string{first.ID, a.ID, third.ID}, got1.AccountIDs, "position kept in groups it stays in")
	got2, _ := s.Group(g2.ID)
	assert.Empty(t, got2.AccountIDs)
	got3, _ := s.Group(g3.ID)
	assert.Equal(t, []string{a.ID}, got3.AccountIDs)

	assert.NoError(t, CheckSnapshot(s.Snapshot()))
}

func TestUpdateAccountClearsMembership(t *testing.T) {
	s := NewStore()
	g := mustGroup(t, s, "G", "")
	a, err := s.CreateAccount(1000, "x", []string{g.ID})
	require.NoError(t, err)

	unchanged, err := s.UpdateAccount(a.ID, AccountUpdate{Name: ptr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, []string{g.ID}, unchanged.GroupIDs, "nil GroupIDs leaves membership alone")
	assert.Equal(t, "renamed", unchanged.Name)

	cleared, err := s.UpdateAccount(a.ID, AccountUpdate{GroupIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.GroupIDs)
	got, _ := s.Group(g.ID)
	assert.Empty(t, got.AccountIDs)
}

func TestUpdateAccountErrors(t *testing.T) {
	s := NewStore()
	g := mustGroup(t, s, "G", "")
	a, err := s.CreateAccount(1000, "x", []string{g.ID})
	require.NoError(t, err)
	_, err = s.CreateAccount(2000, "y", nil)
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.UpdateAccount("acc-missing", AccountUpdate{Name: ptr("z")})
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = s.UpdateAccount(a.ID, AccountUpdate{Code: ptr(2000)})
	assert.True(t, errors.Is(err, model.ErrValidation))

	_, err = s.UpdateAccount(a.ID, AccountUpdate{Code: ptr(0)})
	assert.True(t, errors.Is(err, model.ErrValidation))

	_, err = s.UpdateAccount(a.ID, AccountUpdate{Name: ptr("z"), GroupIDs: []string{"grp-missing"}})
	assert.True(t, errors.Is(err, model.ErrValidation))

	assert.Equal(t, before, s.Snapshot(), "failed updates apply nothing")

	same, err := s.UpdateAccount(a.ID, AccountUpdate{Code: ptr(1000)})
	require.NoError(t, err, "keeping its own code is not a duplicate")
	assert.Equal(t, 1000, same.Code)
}

func TestDeleteAccount(t *testing.T) {
	s := NewStore()
	g := mustGroup(t, s, "G", "")
	a, err := s.CreateAccount(1000, "x", []string{g.ID})
	require.NoError(t, err)

	assert.True(t, s.DeleteAccount(a.ID))
	assert.False(t, s.DeleteAccount(a.ID))
	assert.Empty(t, s.Accounts())
	got, _ := s.Group(g.ID)
	assert.Empty(t, got.AccountIDs)

	_, err = s.CreateAccount(1000, "reused", nil)
	assert.NoError(t, err, "code is free again")
}

func TestAddAndRemoveAccountFromGroup(t *testing.T) {
	s := NewStore()
	g := mustGroup(t, s, "G", "")
	a, err := s.CreateAccount(1000, "x", nil)
	require.NoError(t, err)

	assert.True(t, s.AddAccountToGroup(a.ID, g.ID))
	assert.True(t, s.AddAccountToGroup(a.ID, g.ID), "second link is a no-op")
	assert.Len(t, s.AccountsByGroup(g.ID), 1)
	got, _ := s.Account(a.ID)
	assert.Equal(t, []string{g.ID}, got.GroupIDs)

	assert.False(t, s.AddAccountToGroup("acc-missing", g.ID))
	assert.False(t, s.AddAccountToGroup(a.ID, "grp-missing"))

	assert.True(t, s.RemoveAccountFromGroup(a.ID, g.ID))
	assert.Empty(t, s.AccountsByGroup(g.ID))
	got, _ = s.Account(a.ID)
	assert.Empty(t, got.GroupIDs)
	assert.False(t, s.RemoveAccountFromGroup(a.ID, "grp-missing"))

	assert.NoError(t, CheckSnapshot(s.Snapshot()))
}

func TestAccountsByGroup(t *testing.T) {
	s := NewStore()
	g := mustGroup(t, s, "G", "")
	other := mustGroup(t, s, "Other", "")
	a1, err := s.CreateAccount(1000, "a", []string{g.ID})
	require.NoError(t, err)
	_, err = s.CreateAccount(1001, "b", []string{other.ID})
	require.NoError(t, err)
	a3, err := s.CreateAccount(1002, "c", []string{g.ID})
	require.NoError(t, err)

	members := s.AccountsByGroup(g.ID)
	require.Len(t, members, 2)
	assert.Equal(t, a1.ID, members[0].ID)
	assert.Equal(t, a3.ID, members[1].ID)

	assert.Nil(t, s.AccountsByGroup("grp-missing"))
}
