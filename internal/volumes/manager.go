package volumes

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rescale/navlist/internal/events"
)

// Manager errors
var (
	ErrInvalidVolume   = errors.New("volume id is required")
	ErrDuplicateVolume = errors.New("volume already mounted")
	ErrVolumeNotFound  = errors.New("volume not mounted")
)

// Manager is an in-memory list of mounted volumes in mount order. Every change
// is reported to subscribers as a permutation of the previous list.
// Subscribers run synchronously after the list has been updated.
type Manager struct {
	infos []Info
	subs  []func(events.Permutation)
	mu    sync.RWMutex
}

// NewManager creates a Manager holding the given initial volumes.
func NewManager(initial ...Info) (*Manager, error) {
	m := &Manager{}
	for _, info := range initial {
		if err := m.validateNew(info); err != nil {
			return nil, err
		}
		m.infos = append(m.infos, info)
	}
	return m, nil
}

// Len returns the number of mounted volumes.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.infos)
}

// At returns the volume at index i. It panics when i is out of range, like a slice.
func (m *Manager) At(i int) Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.infos[i]
}

// List returns a copy of the mounted volumes.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, len(m.infos))
	copy(out, m.infos)
	return out
}

// Find returns the volume with the given id.
func (m *Manager) Find(volumeID string) (Info, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexLocked(volumeID); i >= 0 {
		return m.infos[i], true
	}
	return Info{}, false
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (m *Manager) Subscribe(fn func(events.Permutation)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	idx := len(m.subs) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if idx < len(m.subs) {
			m.subs[idx] = nil
		}
	}
}

// Mount appends a volume.
func (m *Manager) Mount(info Info) error {
	m.mu.Lock()
	if err := m.validateNew(info); err != nil {
		m.mu.Unlock()
		return err
	}
	old := len(m.infos)
	m.infos = append(m.infos, info)
	perm := events.Identity(old)
	perm.NewLength = old + 1
	m.mu.Unlock()

	m.notify(perm)
	return nil
}

// Unmount removes the volume with the given id.
func (m *Manager) Unmount(volumeID string) error {
	m.mu.Lock()
	idx := m.indexLocked(volumeID)
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", volumeID, ErrVolumeNotFound)
	}
	perm := make([]int, len(m.infos))
	for i := range perm {
		switch {
		case i < idx:
			perm[i] = i
		case i == idx:
			perm[i] = -1
		default:
			perm[i] = i - 1
		}
	}
	m.infos = append(m.infos[:idx:idx], m.infos[idx+1:]...)
	p := events.Permutation{NewLength: len(m.infos), Permutation: perm}
	m.mu.Unlock()

	m.notify(p)
	return nil
}

// Update replaces the non-identity attributes of a mounted volume (label,
// drive label, mount path). The volume keeps its slot; subscribers receive an
// identity permutation.
func (m *Manager) Update(info Info) error {
	m.mu.Lock()
	idx := m.indexLocked(info.VolumeID)
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", info.VolumeID, ErrVolumeNotFound)
	}
	info.Type = m.infos[idx].Type // the mount kind is part of the identity
	m.infos[idx] = info
	p := events.Identity(len(m.infos))
	m.mu.Unlock()

	m.notify(p)
	return nil
}

func (m *Manager) validateNew(info Info) error {
	if info.VolumeID == "" {
		return ErrInvalidVolume
	}
	if m.indexLocked(info.VolumeID) >= 0 {
		return fmt.Errorf("%s: %w", info.VolumeID, ErrDuplicateVolume)
	}
	return nil
}

func (m *Manager) indexLocked(volumeID string) int {
	for i, info := range m.infos {
		if info.VolumeID == volumeID {
			return i
		}
	}
	return -1
}

func (m *Manager) notify(p events.Permutation) {
	m.mu.RLock()
	subs := make([]func(events.Permutation), 0, len(m.subs))
	for _, fn := range m.subs {
		if fn != nil {
			subs = append(subs, fn)
		}
	}
	m.mu.RUnlock()

	for _, fn := range subs {
		fn(p)
	}
}
