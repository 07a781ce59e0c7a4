// Package subscribertest holds in-memory stand-ins for the catalog and the
// subscriber collaborators
package subscribertest

import (
	"context"
	"sort"
	"sync"

	"hellomama/internal/core/messageset"
	"hellomama/internal/core/subscriber"
	perr "hellomama/internal/platform/errors"
)

// Catalog serves message sets from memory. With Auto set, any unknown short
// name is created on first lookup on schedule 1
type Catalog struct {
	mu        sync.Mutex
	Auto      bool
	Sets      map[string][]messageset.MessageSet
	Schedules map[int]messageset.Schedule
	Err       error
	Lookups   []string
	nextID    int
}

// NewCatalog returns an auto catalog whose schedule 1 sends twice a week
func NewCatalog() *Catalog {
	return &Catalog{
		Auto:      true,
		Sets:      map[string][]messageset.MessageSet{},
		Schedules: map[int]messageset.Schedule{1: {ID: 1, DayOfWeek: "1,4"}},
		nextID:    100,
	}
}

// Add registers a message set under its short name
func (c *Catalog) Add(ms messageset.MessageSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sets[ms.ShortName] = append(c.Sets[ms.ShortName], ms)
}

func (c *Catalog) FindMessageSets(_ context.Context, shortName string) ([]messageset.MessageSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Lookups = append(c.Lookups, shortName)
	if c.Err != nil {
		return nil, c.Err
	}
	if sets, ok := c.Sets[shortName]; ok {
		return sets, nil
	}
	if !c.Auto {
		return nil, nil
	}
	c.nextID++
	ms := messageset.MessageSet{ID: c.nextID, ShortName: shortName, DefaultSchedule: 1}
	c.Sets[shortName] = []messageset.MessageSet{ms}
	return c.Sets[shortName], nil
}

func (c *Catalog) GetMessageSet(_ context.Context, id int) (messageset.MessageSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sets := range c.Sets {
		for _, ms := range sets {
			if ms.ID == id {
				return ms, nil
			}
		}
	}
	return messageset.MessageSet{}, perr.NotFoundf("message set %d not found", id)
}

func (c *Catalog) GetSchedule(_ context.Context, id int) (messageset.Schedule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.Schedules[id]
	if !ok {
		return messageset.Schedule{}, perr.NotFoundf("schedule %d not found", id)
	}
	return s, nil
}

// IDOf returns the id assigned to shortName, 0 when unknown
func (c *Catalog) IDOf(shortName string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sets := c.Sets[shortName]; len(sets) > 0 {
		return sets[0].ID
	}
	return 0
}

// Identities serves identities and addresses from memory
type Identities struct {
	mu        sync.Mutex
	People    map[string]subscriber.Identity
	Addresses map[string]string
	Err       error
}

// NewIdentities returns an empty identity store
func NewIdentities() *Identities {
	return &Identities{People: map[string]subscriber.Identity{}, Addresses: map[string]string{}}
}

func (f *Identities) GetIdentity(_ context.Context, id string) (subscriber.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return subscriber.Identity{}, f.Err
	}
	p, ok := f.People[id]
	if !ok {
		return subscriber.Identity{}, perr.NotFoundf("identity %s not found", id)
	}
	return p, nil
}

func (f *Identities) PrimaryAddress(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Addresses[id], nil
}

// Sent is one recorded outbound message
type Sent struct {
	To       string
	Content  string
	Metadata map[string]any
}

// Messages records outbound messages
type Messages struct {
	mu   sync.Mutex
	Sent []Sent
	Err  error
}

func (f *Messages) Send(_ context.Context, to, content string, meta map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, Sent{To: to, Content: content, Metadata: meta})
	return nil
}

// Subscriptions keeps live subscriptions keyed by identity and records writes
type Subscriptions struct {
	mu          sync.Mutex
	Active      map[string]*subscriber.Subscription
	Deactivated []string
	Patched     map[string]string
	Err         error
}

// NewSubscriptions returns an empty subscription store
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{Active: map[string]*subscriber.Subscription{}, Patched: map[string]string{}}
}

// Put stores s as identity's active subscription
func (f *Subscriptions) Put(s subscriber.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.Active = true
	f.Active[s.Identity] = &s
}

func (f *Subscriptions) ActiveSubscription(_ context.Context, identity string) (*subscriber.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	s, ok := f.Active[identity]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *Subscriptions) Deactivate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for k, s := range f.Active {
		if s.ID == id {
			delete(f.Active, k)
		}
	}
	f.Deactivated = append(f.Deactivated, id)
	sort.Strings(f.Deactivated)
	return nil
}

func (f *Subscriptions) PatchLanguage(_ context.Context, id, lang string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Patched[id] = lang
	for _, s := range f.Active {
		if s.ID == id {
			s.Lang = lang
		}
	}
	return nil
}

var (
	_ messageset.Catalog       = (*Catalog)(nil)
	_ subscriber.Identities    = (*Identities)(nil)
	_ subscriber.Messages      = (*Messages)(nil)
	_ subscriber.Subscriptions = (*Subscriptions)(nil)
)
