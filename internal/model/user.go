package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// AccessLevel controls how much of a client an authorized user may see.
type AccessLevel string

const (
	AccessFull    AccessLevel = "full"
	AccessLimited AccessLevel = "limited"
)

// AuthorizedUser is a user allowed to view a client's reports. It decodes
// from either a bare email string or a permission record and always
// encodes as a permission record.
type AuthorizedUser struct {
	Email           string      `json:"email"`
	AccessLevel     AccessLevel `json:"accessLevel"`
	AllowedGroupIDs []string    `json:"allowedGroupIds"`
}

// LegacyUser returns the normalized form of a bare email entry.
func LegacyUser(email string) AuthorizedUser {
	return AuthorizedUser{
		Email:           strings.TrimSpace(email),
		AccessLevel:     AccessFull,
		AllowedGroupIDs: []string{},
	}
}

// UnmarshalJSON accepts both the legacy string and the record form.
func (u *AuthorizedUser) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var email string
		if err := json.Unmarshal(data, &email); err != nil {
			return fmt.Errorf("decoding authorized email: %w", err)
		}
		*u = LegacyUser(email)
		return nil
	}

	type record AuthorizedUser
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("decoding authorized user: %w", err)
	}
	*u = AuthorizedUser(r)
	u.normalize()
	return nil
}

func (u *AuthorizedUser) normalize() {
	u.Email = strings.TrimSpace(u.Email)
	if u.AccessLevel == "" {
		u.AccessLevel = AccessFull
	}
	if u.AllowedGroupIDs == nil {
		u.AllowedGroupIDs = []string{}
	}
}

// Clone returns a copy that shares no slices with u.
func (u AuthorizedUser) Clone() AuthorizedUser {
	u.AllowedGroupIDs = slices.Clone(u.AllowedGroupIDs)
	if u.AllowedGroupIDs == nil {
		u.AllowedGroupIDs = []string{}
	}
	return u
}

// SameEmail reports whether u and email name the same mailbox.
func (u AuthorizedUser) SameEmail(email string) bool {
	return strings.EqualFold(u.Email, strings.TrimSpace(email))
}

// Validate checks the shape of u on its own. Whether the allowed groups
// exist is up to the owning client.
func (u AuthorizedUser) Validate() error {
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return Invalid("email", "must not be empty")
	}
	if !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return Invalid("email", fmt.Sprintf("%q is not an email address", email))
	}
	switch u.AccessLevel {
	case AccessFull:
		if len(u.AllowedGroupIDs) > 0 {
			return Invalid("allowedGroupIds", "must be empty for full access")
		}
	case AccessLimited:
		if len(u.AllowedGroupIDs) == 0 {
			return Invalid("allowedGroupIds", "limited access needs at least one group")
		}
	default:
		return Invalid("accessLevel", fmt.Sprintf("unknown access level %q", u.AccessLevel))
	}
	return nil
}
