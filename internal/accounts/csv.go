package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flav-dev/flav/internal/model"
)

const (
	numFields = 3
	colID     = 0
	colNumber = 1
	colName   = 2
)

// ReadAccounts reads a POGO chart CSV (account_id, account_number, account_name).
func ReadAccounts(r io.Reader) ([]model.ClientAccount, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.ClientAccount
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes a POGO chart CSV.
func WriteAccounts(w io.Writer, accounts []model.ClientAccount) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_id", "account_number", "account_name"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an account to a CSV row.
func MarshalAccount(acct model.ClientAccount) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colNumber] = strconv.Itoa(acct.AccountNumber)
	row[colName] = acct.AccountName
	return row
}

// UnmarshalAccount converts a CSV row to an account.
func UnmarshalAccount(record []string) (model.ClientAccount, error) {
	if len(record) != numFields {
		return model.ClientAccount{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	number, err := strconv.Atoi(strings.TrimSpace(record[colNumber]))
	if err != nil {
		return model.ClientAccount{}, fmt.Errorf("parsing account_number %q: %w", record[colNumber], err)
	}
	name := strings.TrimSpace(record[colName])
	if name == "" {
		return model.ClientAccount{}, fmt.Errorf("account %d has no name", number)
	}

	id := strings.TrimSpace(record[colID])
	if id == "" {
		id = strconv.Itoa(number)
	}

	return model.ClientAccount{
		ID:            id,
		AccountNumber: number,
		AccountName:   name,
	}, nil
}
