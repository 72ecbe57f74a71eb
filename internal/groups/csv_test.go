package groups

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flav-dev/flav/internal/model"
)

func TestCSVRoundTrip(t *testing.T) {
	s := NewStore()
	a := mustGroup(t, s, "Furniture, office", "")
	b := mustGroup(t, s, "Chairs", a.ID)
	_, err := s.CreateAccount(1000, "Desk chairs", []string{a.ID, b.ID})
	require.NoError(t, err)
	_, err = s.CreateAccount(1001, "Loose", nil)
	require.NoError(t, err)

	var groupsBuf, accountsBuf bytes.Buffer
	require.NoError(t, WriteGroups(&groupsBuf, s.Groups()))
	require.NoError(t, WriteAccounts(&accountsBuf, s.Accounts()))

	snap, err := ReadSnapshot(&groupsBuf, &accountsBuf)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), snap)
	assert.NoError(t, CheckSnapshot(snap))
}

func TestWriteAccountsFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAccounts(&buf, []model.Account{
		{ID: "acc-1", Code: 1000, Name: "Chairs", GroupIDs: []string{"g1", "g2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "account_id,code,name,group_ids\nacc-1,1000,Chairs,g1;g2\n", buf.String())
}

func TestReadSnapshotErrors(t *testing.T) {
	groupsCSV := "group_id,name,parent_id\ng1,G1,\n"

	tests := []struct {
		name     string
		groups   string
		accounts string
		want     string
	}{
		{"bad code", groupsCSV, "account_id,code,name,group_ids\nacc-1,abc,x,\n", "parsing code"},
		{"wrong field count", "group_id,name,parent_id\ng1,G1\n", "account_id,code,name,group_ids\n", "groups CSV"},
		{"unknown group", groupsCSV, "account_id,code,name,group_ids\nacc-1,1000,x,g9\n", "unknown group"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSnapshot(strings.NewReader(tt.groups), strings.NewReader(tt.accounts))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := ReadSnapshot(strings.NewReader(groupsCSV), strings.NewReader("account_id,code,name,group_ids\nacc-1,1000,x,g9\n"))
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestReadSnapshotEmpty(t *testing.T) {
	snap, err := ReadSnapshot(strings.NewReader(""), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, snap.Groups)
	assert.Empty(t, snap.Accounts)
}
