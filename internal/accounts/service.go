package accounts

import (
	"fmt"
	"os"

	"github.com/flav-dev/flav/internal/model"
)

// Service provides in-memory lookup over the POGO chart of accounts.
type Service struct {
	accounts []model.ClientAccount
	byNumber map[int]model.ClientAccount
}

// NewService creates a Service from a slice of accounts. Later duplicates of
// an account number are ignored.
func NewService(accounts []model.ClientAccount) *Service {
	byNumber := make(map[int]model.ClientAccount, len(accounts))
	kept := make([]model.ClientAccount, 0, len(accounts))
	for _, a := range accounts {
		if _, dup := byNumber[a.AccountNumber]; dup {
			continue
		}
		byNumber[a.AccountNumber] = a
		kept = append(kept, a)
	}
	return &Service{accounts: kept, byNumber: byNumber}
}

// Load reads a POGO chart CSV. An empty path yields the default chart.
func Load(path string) (*Service, error) {
	if path == "" {
		return NewService(DefaultChart()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening POGO chart: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading POGO chart: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts in chart order.
func (s *Service) All() []model.ClientAccount {
	out := make([]model.ClientAccount, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// ByNumber returns the account with the given account number.
func (s *Service) ByNumber(number int) (model.ClientAccount, bool) {
	a, ok := s.byNumber[number]
	return a, ok
}

// Save writes the chart to path as CSV.
func (s *Service) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating POGO chart file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing POGO chart: %w", err)
	}
	return nil
}
