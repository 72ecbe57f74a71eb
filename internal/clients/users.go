package clients

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/flav-dev/flav/internal/model"
)

// UserUpdate holds the optional fields of UpdateUser. AllowedGroupIDs is
// applied only when non-nil.
type UserUpdate struct {
	AccessLevel     *model.AccessLevel
	AllowedGroupIDs []string
}

// Users returns the authorized users of a client in record form.
func (s *Service) Users(clientID string) ([]model.AuthorizedUser, error) {
	c, err := s.Get(clientID)
	if err != nil {
		return nil, err
	}
	return c.AuthorizedUsers, nil
}

// AddUser authorizes a user on a client. Emails are unique per client,
// compared case-insensitively.
func (s *Service) AddUser(ctx context.Context, clientID string, u model.AuthorizedUser) (model.AuthorizedUser, error) {
	u = normalizeUser(u)
	if err := u.Validate(); err != nil {
		return model.AuthorizedUser{}, err
	}

	c, err := s.mutate(ctx, clientID, func(c *model.Client) error {
		if findUser(c, u.Email) >= 0 {
			return model.Invalid("email", fmt.Sprintf("%s is already authorized", u.Email))
		}
		if err := requireAccountGroups(c, u.AllowedGroupIDs); err != nil {
			return err
		}
		c.AuthorizedUsers = append(c.AuthorizedUsers, u)
		return nil
	})
	if err != nil {
		return model.AuthorizedUser{}, err
	}
	return c.AuthorizedUsers[findUser(&c, u.Email)], nil
}

// UpdateUser changes the access level and/or allowed groups of a user.
// Switching to full access clears the allowed groups.
func (s *Service) UpdateUser(ctx context.Context, clientID, email string, upd UserUpdate) (model.AuthorizedUser, error) {
	c, err := s.mutate(ctx, clientID, func(c *model.Client) error {
		i := findUser(c, email)
		if i < 0 {
			return model.NotFound("user", strings.TrimSpace(email))
		}
		u := c.AuthorizedUsers[i]
		if upd.AccessLevel != nil {
			u.AccessLevel = *upd.AccessLevel
			if u.AccessLevel == model.AccessFull && upd.AllowedGroupIDs == nil {
				u.AllowedGroupIDs = []string{}
			}
		}
		if upd.AllowedGroupIDs != nil {
			u.AllowedGroupIDs = slices.Clone(upd.AllowedGroupIDs)
		}
		u = normalizeUser(u)
		if err := u.Validate(); err != nil {
			return err
		}
		if err := requireAccountGroups(c, u.AllowedGroupIDs); err != nil {
			return err
		}
		c.AuthorizedUsers[i] = u
		return nil
	})
	if err != nil {
		return model.AuthorizedUser{}, err
	}
	return c.AuthorizedUsers[findUser(&c, email)], nil
}

// RemoveUser revokes a user's access. It returns false when the user is not
// authorized on the client.
func (s *Service) RemoveUser(ctx context.Context, clientID, email string) (bool, error) {
	return s.remove(ctx, clientID, func(c *model.Client) error {
		i := findUser(c, email)
		if i < 0 {
			return errUnchanged
		}
		c.AuthorizedUsers = slices.Delete(c.AuthorizedUsers, i, i+1)
		return nil
	})
}

func normalizeUser(u model.AuthorizedUser) model.AuthorizedUser {
	u.Email = strings.TrimSpace(u.Email)
	if u.AccessLevel == "" {
		u.AccessLevel = model.AccessFull
	}
	ids := make([]string, 0, len(u.AllowedGroupIDs))
	for _, gid := range u.AllowedGroupIDs {
		if gid != "" && !slices.Contains(ids, gid) {
			ids = append(ids, gid)
		}
	}
	u.AllowedGroupIDs = ids
	return u
}

func findUser(c *model.Client, email string) int {
	return slices.IndexFunc(c.AuthorizedUsers, func(u model.AuthorizedUser) bool {
		return u.SameEmail(email)
	})
}

func requireAccountGroups(c *model.Client, groupIDs []string) error {
	for _, gid := range groupIDs {
		if _, ok := c.AccountGroup(gid); !ok {
			return model.MissingReference("allowedGroupIds", "account group", gid)
		}
	}
	return nil
}
