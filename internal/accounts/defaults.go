package accounts

import "github.com/flav-dev/flav/internal/model"

// DefaultChart returns the POGO chart used when no chart file is configured.
func DefaultChart() []model.ClientAccount {
	return []model.ClientAccount{
		{ID: "1", AccountNumber: 4000, AccountName: "Revenue - Product Sales"},
		{ID: "2", AccountNumber: 4100, AccountName: "Revenue - Service Income"},
		{ID: "3", AccountNumber: 4500, AccountName: "Revenue - Other"},
		{ID: "4", AccountNumber: 6000, AccountName: "Operating Expenses - Rent"},
		{ID: "5", AccountNumber: 6100, AccountName: "Operating Expenses - Utilities"},
		{ID: "6", AccountNumber: 6340, AccountName: "Operating Expenses - Marketing"},
		{ID: "7", AccountNumber: 7000, AccountName: "Administrative Expenses"},
		{ID: "8", AccountNumber: 7500, AccountName: "Depreciation"},
	}
}
