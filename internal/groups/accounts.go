package groups

import (
	"fmt"
	"slices"
	"strings"

	"github.com/flav-dev/flav/internal/id"
	"github.com/flav-dev/flav/internal/model"
)

// AccountUpdate holds the optional fields of UpdateAccount. A nil GroupIDs
// leaves membership alone; a non-nil empty slice removes the account from
// every group.
type AccountUpdate struct {
	Code     *int
	Name     *string
	GroupIDs []string
}

// CreateAccount registers an account and links it to groupIDs. Codes are
// unique within the namespace. Every group id must exist; nothing is
// inserted when one does not.
func (s *Store) CreateAccount(code int, name string, groupIDs []string) (model.Account, error) {
	name = strings.TrimSpace(name)
	if code <= 0 {
		return model.Account{}, model.Invalid("code", "account code must be a positive number")
	}
	if name == "" {
		return model.Account{}, model.Invalid("name", "account name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.accountByCode(code); existing != nil {
		return model.Account{}, model.Invalid("code", fmt.Sprintf("duplicate code: account with code %d already exists", code))
	}
	groupIDs = dedupe(groupIDs)
	if err := s.requireGroups(groupIDs); err != nil {
		return model.Account{}, err
	}

	a := &model.Account{
		ID:       s.newID(id.Account),
		Code:     code,
		Name:     name,
		GroupIDs: groupIDs,
	}
	s.accounts = append(s.accounts, a)
	for _, gid := range groupIDs {
		g := s.group(gid)
		g.AccountIDs = append(g.AccountIDs, a.ID)
	}
	return a.Clone(), nil
}

// UpdateAccount changes code, name and/or group membership. Membership is
// applied as a diff: the account leaves groups no longer listed and joins
// newly listed ones, and keeps its position in groups it stays in.
func (s *Store) UpdateAccount(accountID string, upd AccountUpdate) (model.Account, error) {
	var name string
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.Account{}, model.Invalid("name", "account name is required")
		}
	}
	if upd.Code != nil && *upd.Code <= 0 {
		return model.Account{}, model.Invalid("code", "account code must be a positive number")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.account(accountID)
	if a == nil {
		return model.Account{}, model.NotFound("account", accountID)
	}
	if upd.Code != nil && *upd.Code != a.Code {
		if other := s.accountByCode(*upd.Code); other != nil && other.ID != accountID {
			return model.Account{}, model.Invalid("code", fmt.Sprintf("duplicate code: account with code %d already exists", *upd.Code))
		}
	}

	var next []string
	if upd.GroupIDs != nil {
		next = dedupe(upd.GroupIDs)
		if err := s.requireGroups(next); err != nil {
			return model.Account{}, err
		}
	}

	// Validation is complete; apply.
	if upd.GroupIDs != nil {
		s.applyMembership(a, next)
	}
	if upd.Code != nil {
		a.Code = *upd.Code
	}
	if upd.Name != nil {
		a.Name = name
	}
	return a.Clone(), nil
}

func (s *Store) applyMembership(a *model.Account, next []string) {
	keep := make(map[string]bool, len(next))
	for _, gid := range next {
		keep[gid] = true
	}
	had := make(map[string]bool, len(a.GroupIDs))
	for _, gid := range a.GroupIDs {
		had[gid] = true
		if !keep[gid] {
			if g := s.group(gid); g != nil {
				g.AccountIDs = slices.DeleteFunc(g.AccountIDs, func(aid string) bool { return aid == a.ID })
			}
		}
	}
	for _, gid := range next {
		if !had[gid] {
			g := s.group(gid)
			if !slices.Contains(g.AccountIDs, a.ID) {
				g.AccountIDs = append(g.AccountIDs, a.ID)
			}
		}
	}
	a.GroupIDs = next
}

// DeleteAccount removes an account and strips it from every group. It
// returns false when the account does not exist.
func (s *Store) DeleteAccount(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account(accountID) == nil {
		return false
	}
	for _, g := range s.groups {
		g.AccountIDs = slices.DeleteFunc(g.AccountIDs, func(aid string) bool { return aid == accountID })
	}
	s.accounts = slices.DeleteFunc(s.accounts, func(a *model.Account) bool { return a.ID == accountID })
	return true
}

// AddAccountToGroup links an account and a group. It returns false when
// either does not exist; linking twice is a no-op.
func (s *Store) AddAccountToGroup(accountID, groupID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, g := s.account(accountID), s.group(groupID)
	if a == nil || g == nil {
		return false
	}
	if !slices.Contains(g.AccountIDs, accountID) {
		g.AccountIDs = append(g.AccountIDs, accountID)
	}
	if !slices.Contains(a.GroupIDs, groupID) {
		a.GroupIDs = append(a.GroupIDs, groupID)
	}
	return true
}

// RemoveAccountFromGroup unlinks an account and a group. It returns false
// when either does not exist.
func (s *Store) RemoveAccountFromGroup(accountID, groupID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, g := s.account(accountID), s.group(groupID)
	if a == nil || g == nil {
		return false
	}
	g.AccountIDs = slices.DeleteFunc(g.AccountIDs, func(aid string) bool { return aid == accountID })
	a.GroupIDs = slices.DeleteFunc(a.GroupIDs, func(gid string) bool { return gid == groupID })
	return true
}

// Accounts returns all accounts in creation order.
func (s *Store) Accounts() []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Account, len(s.accounts))
	for i, a := range s.accounts {
		out[i] = a.Clone()
	}
	return out
}

// Account returns the account with accountID.
func (s *Store) Account(accountID string) (model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := s.account(accountID)
	if a == nil {
		return model.Account{}, false
	}
	return a.Clone(), true
}

// AccountsByGroup returns the members of groupID in membership order, or
// nil when the group does not exist.
func (s *Store) AccountsByGroup(groupID string) []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := s.group(groupID)
	if g == nil {
		return nil
	}
	out := make([]model.Account, 0, len(g.AccountIDs))
	for _, aid := range g.AccountIDs {
		if a := s.account(aid); a != nil {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (s *Store) requireGroups(groupIDs []string) error {
	for _, gid := range groupIDs {
		if s.group(gid) == nil {
			return model.MissingReference("groupIds", "group", gid)
		}
	}
	return nil
}

func (s *Store) account(accountID string) *model.Account {
	for _, a := range s.accounts {
		if a.ID == accountID {
			return a
		}
	}
	return nil
}

func (s *Store) accountByCode(code int) *model.Account {
	for _, a := range s.accounts {
		if a.Code == code {
			return a
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, v := range ids {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
