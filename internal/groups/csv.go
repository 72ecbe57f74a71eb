package groups

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flav-dev/flav/internal/model"
)

const (
	groupFields  = 3
	colGroupID   = 0
	colGroupName = 1
	colParentID  = 2

	accountFields = 4
	colAccountID  = 0
	colCode       = 1
	colName       = 2
	colGroupIDs   = 3

	listSep = ";"
)

// WriteGroups writes groups as CSV (group_id, name, parent_id).
func WriteGroups(w io.Writer, groups []model.Group) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"group_id", "name", "parent_id"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, g := range groups {
		row := make([]string, groupFields)
		row[colGroupID] = g.ID
		row[colGroupName] = g.Name
		row[colParentID] = g.ParentID
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAccounts writes accounts as CSV (account_id, code, name, group_ids).
// Group ids are separated by semicolons.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"account_id", "code", "name", "group_ids"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range accounts {
		row := make([]string, accountFields)
		row[colAccountID] = a.ID
		row[colCode] = strconv.Itoa(a.Code)
		row[colName] = a.Name
		row[colGroupIDs] = strings.Join(a.GroupIDs, listSep)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSnapshot reads the group and account CSVs written by WriteGroups and
// WriteAccounts. Group membership lists are rebuilt from the account rows.
func ReadSnapshot(groupsCSV, accountsCSV io.Reader) (model.ChartSnapshot, error) {
	groupRows, err := readRows(groupsCSV, groupFields)
	if err != nil {
		return model.ChartSnapshot{}, fmt.Errorf("reading groups CSV: %w", err)
	}
	accountRows, err := readRows(accountsCSV, accountFields)
	if err != nil {
		return model.ChartSnapshot{}, fmt.Errorf("reading accounts CSV: %w", err)
	}

	snap := model.ChartSnapshot{Groups: []model.Group{}, Accounts: []model.Account{}}
	index := make(map[string]int, len(groupRows))
	for _, rec := range groupRows {
		index[rec[colGroupID]] = len(snap.Groups)
		snap.Groups = append(snap.Groups, model.Group{
			ID:         rec[colGroupID],
			Name:       rec[colGroupName],
			ParentID:   rec[colParentID],
			AccountIDs: []string{},
		})
	}

	for i, rec := range accountRows {
		code, err := strconv.Atoi(strings.TrimSpace(rec[colCode]))
		if err != nil {
			return model.ChartSnapshot{}, fmt.Errorf("accounts row %d: parsing code %q: %w", i+2, rec[colCode], err)
		}
		a := model.Account{
			ID:       rec[colAccountID],
			Code:     code,
			Name:     rec[colName],
			GroupIDs: []string{},
		}
		if rec[colGroupIDs] != "" {
			a.GroupIDs = strings.Split(rec[colGroupIDs], listSep)
		}
		for _, gid := range a.GroupIDs {
			j, ok := index[gid]
			if !ok {
				return model.ChartSnapshot{}, fmt.Errorf("accounts row %d: %w", i+2, model.MissingReference("group_ids", "group", gid))
			}
			snap.Groups[j].AccountIDs = append(snap.Groups[j].AccountIDs, a.ID)
		}
		snap.Accounts = append(snap.Accounts, a)
	}
	return snap, nil
}

func readRows(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}
