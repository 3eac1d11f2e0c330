// Package shortcuts holds the user's pinned folder shortcuts, kept sorted by
// target URL. It stands in for the shortcut persistence layer: the navigation
// model only reads the sorted list, the comparator, and change notifications.
package shortcuts

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/rescale/navlist/internal/logging"
)

// Store errors
var (
	ErrEmptyURL         = errors.New("shortcut url is required")
	ErrDuplicate        = errors.New("shortcut already exists")
	ErrShortcutNotFound = errors.New("shortcut not found")
)

// Entry is one pinned folder.
type Entry struct {
	Name string // Display name; defaults to the last path element of URL
	URL  string // Target reference, unique within the store
}

// Compare orders entries by target URL (byte order). It is the comparator the
// navigation model uses to merge successive shortcut lists.
func Compare(a, b Entry) int {
	return strings.Compare(a.URL, b.URL)
}

// Store is a sorted, observable list of shortcuts.
type Store struct {
	entries []Entry
	subs    []func()
	logger  *logging.Logger
	mu      sync.RWMutex
}

// NewStore creates a Store holding the given entries.
func NewStore(logger *logging.Logger, initial ...Entry) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Store{logger: logger.Component("shortcuts")}
	for _, e := range initial {
		if _, err := s.insertLocked(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Compare implements the comparator contract for the navigation model.
func (s *Store) Compare(a, b Entry) int {
	return Compare(a, b)
}

// Entries returns a copy of the shortcuts in comparator order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of shortcuts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers fn to be called after every change.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Add inserts a shortcut at its sorted position.
func (s *Store) Add(e Entry) error {
	s.mu.Lock()
	e, err := s.insertLocked(e)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Debug().Str("url", e.URL).Msg("shortcut added")
	s.notify()
	return nil
}

// Remove deletes the shortcut targeting url.
func (s *Store) Remove(url string) error {
	s.mu.Lock()
	i, found := s.searchLocked(url)
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", url, ErrShortcutNotFound)
	}
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	s.mu.Unlock()

	s.logger.Debug().Str("url", url).Msg("shortcut removed")
	s.notify()
	return nil
}

// OnItemNotFound is called when a shortcut's target no longer resolves.
// The dangling shortcut is dropped.
func (s *Store) OnItemNotFound(e Entry) {
	if err := s.Remove(e.URL); err != nil {
		s.logger.Debug().Err(err).Msg("not-found report for unknown shortcut")
		return
	}
	s.logger.Info().Str("url", e.URL).Msg("removed shortcut whose target is gone")
}

func (s *Store) insertLocked(e Entry) (Entry, error) {
	if e.URL == "" {
		return e, ErrEmptyURL
	}
	if e.Name == "" {
		e.Name = path.Base(strings.TrimRight(e.URL, "/"))
	}
	i, found := s.searchLocked(e.URL)
	if found {
		return e, fmt.Errorf("%s: %w", e.URL, ErrDuplicate)
	}
	s.entries = append(s.entries, Entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
	return e, nil
}

func (s *Store) searchLocked(url string) (int, bool) {
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].URL >= url
	})
	return i, i < len(s.entries) && s.entries[i].URL == url
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}
