package notification

import (
	"cmp"
	"slices"
)

// Snapshot is an authoritative server view. A nil Notifications slice means
// the server reported no change; an empty non-nil slice means the inbox is
// empty.
type Snapshot struct {
	Notifications []Notification
	UnreadCount   *int
}

type entry struct {
	n Notification
	// pushSeq is the collection sequence at the last push upsert, zero if the
	// entry only ever came from a snapshot or the cache.
	pushSeq uint64
}

// Collection is the deduplicated, ordered notification inbox. It is not safe
// for concurrent use.
//
// After every mutation the items are sorted by CreatedAt descending (ties by
// ID ascending) and the unread count matches the items, unless the last
// mutation was a snapshot carrying an explicit count.
type Collection struct {
	entries    map[string]entry
	tombstones map[string]struct{}
	sorted     []Notification
	unread     int
	seq        uint64
}

func NewCollection(items []Notification) *Collection {
	c := &Collection{
		entries:    make(map[string]entry, len(items)),
		tombstones: make(map[string]struct{}),
	}
	for _, n := range items {
		if n.ID == "" {
			continue
		}
		c.upsert(n, 0)
	}
	c.reindex()
	return c
}

// Seq returns the mutation sequence. Capture it before issuing a poll and
// pass it to ApplySnapshot so pushes that land during the request survive.
func (c *Collection) Seq() uint64 {
	return c.seq
}

func (c *Collection) Items() []Notification {
	return slices.Clone(c.sorted)
}

func (c *Collection) Len() int {
	return len(c.sorted)
}

func (c *Collection) UnreadCount() int {
	return c.unread
}

func (c *Collection) Get(id string) (Notification, bool) {
	e, ok := c.entries[id]
	return e.n, ok
}

func (c *Collection) Tombstoned(id string) bool {
	_, ok := c.tombstones[id]
	return ok
}

// Upsert merges pushed notifications. Tombstoned ids are ignored. It reports
// whether anything was applied.
func (c *Collection) Upsert(batch ...Notification) bool {
	c.seq++
	applied := false
	for _, n := range batch {
		if n.ID == "" || c.Tombstoned(n.ID) {
			continue
		}
		c.upsert(n, c.seq)
		applied = true
	}
	if applied {
		c.reindex()
	}
	return applied
}

// ApplySnapshot reconciles the collection with a poll response issued at
// sequence issuedAt.
//
// The snapshot decides existence: entries it omits are dropped unless a push
// upserted them after issuedAt. Tombstoned ids are left out of this one
// snapshot and every tombstone is then cleared, so an id the server still
// reports comes back on the following poll.
func (c *Collection) ApplySnapshot(s Snapshot, issuedAt uint64) {
	c.seq++

	if s.Notifications != nil {
		present := make(map[string]struct{}, len(s.Notifications))
		for _, n := range s.Notifications {
			if n.ID == "" {
				continue
			}
			present[n.ID] = struct{}{}
		}

		for id, e := range c.entries {
			if _, ok := present[id]; ok {
				continue
			}
			if e.pushSeq > issuedAt {
				continue
			}
			delete(c.entries, id)
		}

		for _, n := range s.Notifications {
			if n.ID == "" || c.Tombstoned(n.ID) {
				continue
			}
			c.upsert(n, c.entries[n.ID].pushSeq)
		}

		clear(c.tombstones)
	}

	c.reindex()
	if s.UnreadCount != nil && *s.UnreadCount >= 0 {
		c.unread = *s.UnreadCount
	}
}

func (c *Collection) MarkRead(id string) bool {
	e, ok := c.entries[id]
	if !ok || e.n.Read {
		return false
	}
	c.seq++
	e.n.Read = true
	c.entries[id] = e
	c.reindex()
	return true
}

func (c *Collection) MarkAllRead() bool {
	c.seq++
	changed := false
	for id, e := range c.entries {
		if e.n.Read {
			continue
		}
		e.n.Read = true
		c.entries[id] = e
		changed = true
	}
	c.reindex()
	return changed
}

// Remove deletes id and tombstones it until the next snapshot.
func (c *Collection) Remove(id string) bool {
	c.seq++
	c.tombstones[id] = struct{}{}
	if _, ok := c.entries[id]; !ok {
		return false
	}
	delete(c.entries, id)
	c.reindex()
	return true
}

// Clear removes every entry, tombstoning each.
func (c *Collection) Clear() {
	c.seq++
	for id := range c.entries {
		c.tombstones[id] = struct{}{}
	}
	clear(c.entries)
	c.reindex()
}

func (c *Collection) upsert(n Notification, pushSeq uint64) {
	existing, ok := c.entries[n.ID]
	if ok && existing.n.CreatedAt.Before(n.CreatedAt) {
		n.CreatedAt = existing.n.CreatedAt
	}
	c.entries[n.ID] = entry{n: n, pushSeq: pushSeq}
}

func (c *Collection) reindex() {
	sorted := make([]Notification, 0, len(c.entries))
	unread := 0
	for _, e := range c.entries {
		sorted = append(sorted, e.n)
		if !e.n.Read {
			unread++
		}
	}
	slices.SortFunc(sorted, Compare)
	c.sorted = sorted
	c.unread = unread
}

// Compare orders notifications newest first, then by id.
func Compare(a, b Notification) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
