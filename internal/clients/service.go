// Package clients manages client aggregates: the account groups a client
// reports on, its reporting hierarchy and the users allowed to see it.
//
// Every mutation runs against a deep copy of the client. The copy is
// checked with Check, handed to the Persister when one is configured and
// only then swapped in, so callers never observe a half-applied change.
package clients

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/flav-dev/flav/internal/export"
	"github.com/flav-dev/flav/internal/id"
	"github.com/flav-dev/flav/internal/model"
)

// Persister stores client snapshots. Implementations must be safe for
// concurrent use.
type Persister interface {
	SaveClient(ctx context.Context, c model.Client) error
	DeleteClient(ctx context.Context, clientID string) error
}

// errUnchanged aborts a mutation without error; the client is left as is.
var errUnchanged = errors.New("unchanged")

type entry struct {
	mu      sync.Mutex
	client  model.Client
	deleted bool
}

// Service holds all clients in memory.
type Service struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string // creation order

	store Persister
	newID func(prefix string) string
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPersister saves every committed mutation through p.
func WithPersister(p Persister) Option {
	return func(s *Service) { s.store = p }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an empty client service.
func NewService(opts ...Option) *Service {
	s := &Service{
		entries: make(map[string]*entry),
		newID:   id.New,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory clients with cs, typically read back from the
// snapshot store. Nested hierarchy nodes are flattened and levels
// recomputed. Nothing is loaded if any client fails Check.
func (s *Service) Load(cs []model.Client) error {
	entries := make(map[string]*entry, len(cs))
	order := make([]string, 0, len(cs))
	for _, c := range cs {
		c.GroupHierarchy = flattenNodes(c.GroupHierarchy)
		c = c.Clone()
		recomputeLevels(&c)
		if _, dup := entries[c.ID]; dup {
			return model.Integrity("duplicate client id %s", c.ID)
		}
		if err := Check(c); err != nil {
			return fmt.Errorf("loading client %s: %w", c.ID, err)
		}
		entries[c.ID] = &entry{client: c}
		order = append(order, c.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.order = order
	return nil
}

// List returns a summary of every client in creation order.
func (s *Service) List() []model.ClientSummary {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.order))
	for _, cid := range s.order {
		entries = append(entries, s.entries[cid])
	}
	s.mu.RUnlock()

	out := make([]model.ClientSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted {
			out = append(out, model.ClientSummary{
				ID:                  e.client.ID,
				Name:                e.client.Name,
				AccountCount:        e.client.AccountCount(),
				AuthorizedUserCount: len(e.client.AuthorizedUsers),
				UpdatedAt:           e.client.UpdatedAt,
			})
		}
		e.mu.Unlock()
	}
	return out
}

// Get returns a copy of the client with clientID.
func (s *Service) Get(clientID string) (model.Client, error) {
	e, err := s.lookup(clientID)
	if err != nil {
		return model.Client{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return model.Client{}, model.NotFound("client", clientID)
	}
	return e.client.Clone(), nil
}

// Create adds an empty client.
func (s *Service) Create(ctx context.Context, name string) (model.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Client{}, model.Invalid("name", "client name is required")
	}
	now := s.now()
	c := model.Client{
		ID:              s.newID(id.Client),
		Name:            name,
		AccountGroups:   []model.AccountGroup{},
		GroupHierarchy:  []model.HierarchyNode{},
		AuthorizedUsers: []model.AuthorizedUser{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.insert(ctx, c); err != nil {
		return model.Client{}, err
	}
	return c.Clone(), nil
}

// Rename changes a client's display name.
func (s *Service) Rename(ctx context.Context, clientID, name string) (model.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Client{}, model.Invalid("name", "client name is required")
	}
	return s.mutate(ctx, clientID, func(c *model.Client) error {
		c.Name = name
		return nil
	})
}

// Delete removes a client. It returns false when the client does not exist.
func (s *Service) Delete(ctx context.Context, clientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[clientID]
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if s.store != nil {
		if err := s.store.DeleteClient(ctx, clientID); err != nil {
			return false, fmt.Errorf("deleting client %s: %w", clientID, err)
		}
	}
	e.deleted = true
	delete(s.entries, clientID)
	s.order = slices.DeleteFunc(s.order, func(cid string) bool { return cid == clientID })
	return true, nil
}

// Duplicate copies a client under a new name. Every account group, account
// and hierarchy node gets a fresh id and all references between them are
// remapped. Authorized users are copied as they are, with their allowed
// groups pointing at the copies.
func (s *Service) Duplicate(ctx context.Context, clientID, name string) (model.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Client{}, model.Invalid("name", "client name is required")
	}
	src, err := s.Get(clientID)
	if err != nil {
		return model.Client{}, err
	}

	groupIDs := make(map[string]string, len(src.AccountGroups))
	for _, g := range src.AccountGroups {
		groupIDs[g.ID] = s.newID(id.AccountGroup)
	}
	nodeIDs := make(map[string]string, len(src.GroupHierarchy))
	for _, n := range src.GroupHierarchy {
		nodeIDs[n.ID] = s.newID(id.Node)
	}
	remap := func(m map[string]string, ids []string) []string {
		out := make([]string, 0, len(ids))
		for _, v := range ids {
			if mapped, ok := m[v]; ok {
				out = append(out, mapped)
			}
		}
		return out
	}

	now := s.now()
	dup := src.Clone()
	dup.ID = s.newID(id.Client)
	dup.Name = name
	dup.CreatedAt = now
	dup.UpdatedAt = now
	for i := range dup.AccountGroups {
		g := &dup.AccountGroups[i]
		g.ID = groupIDs[g.ID]
		if g.ParentGroupID != "" {
			g.ParentGroupID = groupIDs[g.ParentGroupID]
		}
		for j := range g.Accounts {
			g.Accounts[j].ID = s.newID(id.Account)
		}
	}
	for i := range dup.GroupHierarchy {
		n := &dup.GroupHierarchy[i]
		n.ID = nodeIDs[n.ID]
		if n.ParentID != "" {
			n.ParentID = nodeIDs[n.ParentID]
		}
		n.AccountGroupIDs = remap(groupIDs, n.AccountGroupIDs)
	}
	for i := range dup.AuthorizedUsers {
		u := &dup.AuthorizedUsers[i]
		u.AllowedGroupIDs = remap(groupIDs, u.AllowedGroupIDs)
	}

	if err := s.insert(ctx, dup); err != nil {
		return model.Client{}, err
	}
	return dup.Clone(), nil
}

// Export returns the downstream snapshot of a client.
func (s *Service) Export(clientID string) (model.ClientExport, error) {
	c, err := s.Get(clientID)
	if err != nil {
		return model.ClientExport{}, err
	}
	return export.Client(c, s.now()), nil
}

func (s *Service) lookup(clientID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[clientID]
	if !ok {
		return nil, model.NotFound("client", clientID)
	}
	return e, nil
}

func (s *Service) insert(ctx context.Context, c model.Client) error {
	if err := Check(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.entries[c.ID]; dup {
		return model.Integrity("duplicate client id %s", c.ID)
	}
	if s.store != nil {
		if err := s.store.SaveClient(ctx, c); err != nil {
			return fmt.Errorf("saving client %s: %w", c.ID, err)
		}
	}
	s.entries[c.ID] = &entry{client: c}
	s.order = append(s.order, c.ID)
	return nil
}

// mutate applies fn to a copy of the client and commits the copy when fn
// succeeds and the result passes Check. fn returning errUnchanged aborts
// silently.
func (s *Service) mutate(ctx context.Context, clientID string, fn func(c *model.Client) error) (model.Client, error) {
	e, err := s.lookup(clientID)
	if err != nil {
		return model.Client{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return model.Client{}, model.NotFound("client", clientID)
	}

	next := e.client.Clone()
	if err := fn(&next); err != nil {
		return model.Client{}, err
	}
	next.UpdatedAt = s.now()
	if err := Check(next); err != nil {
		return model.Client{}, err
	}
	if s.store != nil {
		if err := s.store.SaveClient(ctx, next); err != nil {
			return model.Client{}, fmt.Errorf("saving client %s: %w", clientID, err)
		}
	}
	e.client = next
	return next.Clone(), nil
}

// remove runs a delete-style mutation and reports false instead of an
// error when fn found nothing to remove.
func (s *Service) remove(ctx context.Context, clientID string, fn func(c *model.Client) error) (bool, error) {
	_, err := s.mutate(ctx, clientID, fn)
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
