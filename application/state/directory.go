package state

import (
	"sync"
	"time"

	"hazboun-backend/domain/core/entities"
	"hazboun-backend/pkg/errors"
)

// Status is the lifecycle phase of the directory.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// MessageLoading is reported while the first load has not finished.
const MessageLoading = "The family directory is still loading"

// LoadTicket identifies one load attempt. Only the newest ticket may apply
// its result.
type LoadTicket uint64

// Info describes the directory without copying its members.
type Info struct {
	Status    Status    `json:"status"`
	Reloading bool      `json:"reloading,omitempty"`
	Error     string    `json:"error,omitempty"`
	Members   int       `json:"members"`
	Version   uint64    `json:"version"`
	LoadedAt  time.Time `json:"loadedAt,omitempty"`
}

// Directory is the in-memory family directory shared by every view.
// All methods are safe for concurrent use. Readers always get copies.
type Directory struct {
	mu        sync.RWMutex
	members   []entities.FamilyMember
	status    Status
	reloading bool
	lastErr   error
	epoch     uint64
	version   uint64
	loadedAt  time.Time
	closed    bool
	now       func() time.Time
}

// NewDirectory creates an empty directory waiting for its first load.
func NewDirectory() *Directory {
	return &Directory{status: StatusLoading, now: time.Now}
}

// Snapshot returns a deep copy of the current members.
func (d *Directory) Snapshot() []entities.FamilyMember {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return entities.CloneAll(d.members)
}

// Get returns a copy of one member.
func (d *Directory) Get(id string) (entities.FamilyMember, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, m := range d.members {
		if m.ID == id {
			return m.Clone(), true
		}
	}
	return entities.FamilyMember{}, false
}

// Status returns the current phase and, when failed, the load error.
func (d *Directory) Status() (Status, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status, d.lastErr
}

// Info summarizes the directory.
func (d *Directory) Info() Info {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info := Info{
		Status:    d.status,
		Reloading: d.reloading,
		Members:   len(d.members),
		Version:   d.version,
		LoadedAt:  d.loadedAt,
	}
	if d.lastErr != nil {
		info.Error = errors.StoreMessage(d.lastErr)
	}
	return info
}

// Ready returns nil when the directory can serve reads and writes. Otherwise
// it returns the last load error or an unavailable error.
func (d *Directory) Ready() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	switch {
	case d.closed:
		return errors.NewUnavailableError("The family directory has been closed")
	case d.status == StatusReady:
		return nil
	case d.status == StatusFailed && d.lastErr != nil:
		return d.lastErr
	default:
		return errors.NewUnavailableError(MessageLoading)
	}
}

// Version increases on every applied change.
func (d *Directory) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// BeginLoad starts a load attempt. Any attempt still in flight becomes stale.
// A ready directory stays ready and keeps serving its members until the new
// result arrives; only a directory that never loaded reports StatusLoading.
func (d *Directory) BeginLoad() LoadTicket {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.epoch++
	if !d.closed {
		if d.status == StatusReady {
			d.reloading = true
		} else {
			d.status = StatusLoading
			d.lastErr = nil
		}
		d.version++
	}
	return LoadTicket(d.epoch)
}

// CompleteLoad installs the fetched members if ticket is still current.
// It reports whether the result was applied.
func (d *Directory) CompleteLoad(ticket LoadTicket, members []entities.FamilyMember) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.current(ticket) {
		return false
	}
	d.members = normalizeAll(members)
	d.status = StatusReady
	d.reloading = false
	d.lastErr = nil
	d.loadedAt = d.now()
	d.version++
	return true
}

// FailLoad records a load failure if ticket is still current.
func (d *Directory) FailLoad(ticket LoadTicket, err error) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.current(ticket) {
		return false
	}
	d.status = StatusFailed
	d.reloading = false
	d.lastErr = err
	d.version++
	return true
}

func (d *Directory) current(ticket LoadTicket) bool {
	return !d.closed && uint64(ticket) == d.epoch
}

// Replace swaps in a whole new member list, as an import does. Loads still
// in flight are invalidated.
func (d *Directory) Replace(members []entities.FamilyMember) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.epoch++
	d.members = normalizeAll(members)
	d.status = StatusReady
	d.reloading = false
	d.lastErr = nil
	d.loadedAt = d.now()
	d.version++
	return true
}

// Append adds a member the store has accepted.
func (d *Directory) Append(m entities.FamilyMember) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.members = append(d.members, m.Clone().Normalize())
	d.version++
	return true
}

// Patch replaces the member with the same id. It reports false when no such
// member exists.
func (d *Directory) Patch(m entities.FamilyMember) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	for i := range d.members {
		if d.members[i].ID == m.ID {
			d.members[i] = m.Clone().Normalize()
			d.version++
			return true
		}
	}
	return false
}

// Remove deletes a member and returns what was removed.
func (d *Directory) Remove(id string) (entities.FamilyMember, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return entities.FamilyMember{}, false
	}
	for i := range d.members {
		if d.members[i].ID == id {
			removed := d.members[i]
			d.members = append(d.members[:i:i], d.members[i+1:]...)
			d.version++
			return removed, true
		}
	}
	return entities.FamilyMember{}, false
}

// Close tears the directory down. Results arriving afterwards are dropped.
func (d *Directory) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.reloading = false
	d.members = nil
}

// Closed reports whether Close has been called.
func (d *Directory) Closed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

func normalizeAll(members []entities.FamilyMember) []entities.FamilyMember {
	out := make([]entities.FamilyMember, 0, len(members))
	for _, m := range members {
		out = append(out, m.Clone().Normalize())
	}
	return out
}
