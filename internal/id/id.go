package id

import "github.com/google/uuid"

// Prefixes for each kind of entity.
const (
	Group        = "grp"
	Account      = "acc"
	Client       = "client"
	AccountGroup = "ag"
	Node         = "h"
)

// New returns a fresh id like "grp-8f14e45f-...". Ids are never recycled.
func New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
