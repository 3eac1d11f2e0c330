// Package navigation maintains the ordered, sectioned list of entries shown in
// a file browser's navigation sidebar.
//
// A Model follows two independently changing backing lists (mounted volumes
// and user shortcuts) plus a handful of placeholder entries. After every
// change it reconciles the backing lists, reusing item instances by identity,
// lays the result out into a fixed tier order with synthetic groups (My files,
// removable partition groups), and publishes one permutation describing how
// the previous presentation list maps onto the new one.
package navigation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rescale/navlist/internal/events"
	"github.com/rescale/navlist/internal/logging"
	"github.com/rescale/navlist/internal/shortcuts"
	"github.com/rescale/navlist/internal/volumes"
)

// Event sources reported on PermutedEvent.Source.
const (
	SourceInitial   = "initial"
	SourceVolumes   = "volumes"
	SourceShortcuts = "shortcuts"
	SourceFakeRoot  = "fake_root"
)

// VolumeSource is the mount subsystem as seen by the model.
type VolumeSource interface {
	Len() int
	At(i int) volumes.Info
	// Subscribe registers fn for source permutations and returns a function
	// that removes it.
	Subscribe(fn func(events.Permutation)) func()
}

// ShortcutSource is the shortcut store as seen by the model.
type ShortcutSource interface {
	// Entries returns the shortcuts sorted by Compare.
	Entries() []shortcuts.Entry
	Compare(a, b shortcuts.Entry) int
	Subscribe(fn func())
	OnItemNotFound(e shortcuts.Entry)
}

// Options configures a Model.
type Options struct {
	// Registry constructs items. Nil creates one without display root
	// resolution, owned and closed by the model.
	Registry *Registry

	Compiler CompilerOptions

	// CompactMyFiles is read once per layout pass. Nil means false.
	CompactMyFiles func() bool

	Recent     *FakeRoot
	LinuxFiles *FakeRoot
	FakeDrive  *FakeRoot
	AddService *FakeRoot

	// Bus receives PermutedEvent and LayoutProblemEvent. Nil creates a
	// private bus.
	Bus *events.EventBus

	Logger *logging.Logger
}

type pendingMutation struct {
	source string
	change func() error
}

type pass struct {
	source   string
	perm     events.Permutation
	problems []error
}

// Model is the navigation list. All mutation entry points run reconcile,
// layout and notification to completion before returning. A mutation made
// from inside an observer callback is queued and applied, in arrival order,
// once the current notification has finished.
type Model struct {
	volumeSrc   VolumeSource
	shortcutSrc ShortcutSource
	registry    *Registry
	compiler    *Compiler
	compact     func() bool
	bus         *events.EventBus
	logger      *logging.Logger

	ownsRegistry bool
	ownsBus      bool
	unsubVolumes func()

	mu         sync.RWMutex
	volumes    []*Volume
	shortcuts  []*Shortcut
	recent     *FakeRoot
	linuxFiles *FakeRoot
	fakeDrive  *FakeRoot
	addService *FakeRoot
	items      []Item
	notifying  bool
	pending    []pendingMutation
	closed     bool
}

// New builds the volume and shortcut lists from the sources, runs the first
// layout pass and subscribes to both sources.
func New(vs VolumeSource, ss ShortcutSource, opts Options) (*Model, error) {
	if vs == nil || ss == nil {
		return nil, errors.New("navigation: volume and shortcut sources are required")
	}
	for _, slot := range []struct {
		root *FakeRoot
		kind FakeKind
	}{
		{opts.Recent, FakeRecent},
		{opts.LinuxFiles, FakeLinuxFiles},
		{opts.FakeDrive, FakeDrive},
		{opts.AddService, FakeAddService},
	} {
		if err := checkFakeKind(slot.root, slot.kind); err != nil {
			return nil, err
		}
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Compiler.Logger == nil {
		opts.Compiler.Logger = opts.Logger
	}

	m := &Model{
		volumeSrc:   vs,
		shortcutSrc: ss,
		registry:    opts.Registry,
		compiler:    NewCompiler(opts.Compiler),
		compact:     opts.CompactMyFiles,
		bus:         opts.Bus,
		logger:      opts.Logger.Component("navigation"),
		recent:      opts.Recent,
		linuxFiles:  opts.LinuxFiles,
		fakeDrive:   opts.FakeDrive,
		addService:  opts.AddService,
	}
	if m.registry == nil {
		m.registry = NewRegistry(RegistryOptions{Logger: opts.Logger})
		m.ownsRegistry = true
	}
	if m.bus == nil {
		m.bus = events.NewEventBus()
		m.ownsBus = true
	}

	for _, info := range m.volumeRecords() {
		m.volumes = append(m.volumes, m.registry.NewVolume(info))
	}
	initial, _, err := ReconcileShortcuts(nil, ss.Entries(), ss.Compare, m.registry.NewShortcut)
	if err != nil {
		m.closeOwned()
		return nil, fmt.Errorf("initial shortcuts: %w", err)
	}
	m.shortcuts = initial

	if err := m.mutate(SourceInitial, func() error { return nil }); err != nil {
		m.closeOwned()
		return nil, err
	}

	m.unsubVolumes = vs.Subscribe(func(p events.Permutation) {
		if err := m.OnVolumesPermuted(p); err != nil && !errors.Is(err, ErrModelClosed) {
			m.logger.Error().Err(err).Msg("volume change rejected")
		}
	})
	ss.Subscribe(func() {
		if err := m.OnShortcutsChanged(); err != nil && !errors.Is(err, ErrModelClosed) {
			m.logger.Error().Err(err).Msg("shortcut change rejected")
		}
	})

	m.logger.Debug().Int("volumes", len(m.volumes)).Int("shortcuts", len(m.shortcuts)).Int("items", len(m.items)).Msg("navigation model ready")
	return m, nil
}

func checkFakeKind(root *FakeRoot, want FakeKind) error {
	if root != nil && root.Kind() != want {
		return fmt.Errorf("%w: %s root assigned to %s", ErrFakeKindMismatch, root.Kind(), want)
	}
	return nil
}

func (m *Model) volumeRecords() []volumes.Info {
	n := m.volumeSrc.Len()
	records := make([]volumes.Info, n)
	for i := range records {
		records[i] = m.volumeSrc.At(i)
	}
	return records
}

// OnVolumesPermuted applies a mount subsystem change. change maps the previous
// volume list onto the one the source holds now.
func (m *Model) OnVolumesPermuted(change events.Permutation) error {
	records := m.volumeRecords()
	return m.mutate(SourceVolumes, func() error {
		next, err := ReconcileVolumes(m.volumes, change, records, m.registry.NewVolume)
		if err != nil {
			return err
		}
		m.volumes = next
		return nil
	})
}

// OnShortcutsChanged re-reads the shortcut store.
func (m *Model) OnShortcutsChanged() error {
	entries := m.shortcutSrc.Entries()
	return m.mutate(SourceShortcuts, func() error {
		next, perm, err := ReconcileShortcuts(m.shortcuts, entries, m.shortcutSrc.Compare, m.registry.NewShortcut)
		if err != nil {
			return err
		}
		m.shortcuts = next
		m.logger.Debug().Ints("shortcut_permutation", perm.Permutation).Int("new_length", perm.NewLength).Msg("shortcuts reconciled")
		return nil
	})
}

// SetRecent assigns or clears (nil) the Recent placeholder.
func (m *Model) SetRecent(root *FakeRoot) error {
	return m.setFake(root, FakeRecent, &m.recent)
}

// SetLinuxFiles assigns or clears the Linux files placeholder. It is shown
// inside My files only while no Crostini volume is mounted.
func (m *Model) SetLinuxFiles(root *FakeRoot) error {
	return m.setFake(root, FakeLinuxFiles, &m.linuxFiles)
}

// SetFakeDrive assigns or clears the Drive placeholder. It is shown only
// while no Drive volume is mounted.
func (m *Model) SetFakeDrive(root *FakeRoot) error {
	return m.setFake(root, FakeDrive, &m.fakeDrive)
}

// SetAddService assigns or clears the "add new service" entry.
func (m *Model) SetAddService(root *FakeRoot) error {
	return m.setFake(root, FakeAddService, &m.addService)
}

func (m *Model) setFake(root *FakeRoot, kind FakeKind, slot **FakeRoot) error {
	if err := checkFakeKind(root, kind); err != nil {
		return err
	}
	return m.mutate(SourceFakeRoot, func() error {
		*slot = root
		return nil
	})
}

func (m *Model) mutate(source string, change func() error) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrModelClosed
	}
	if m.notifying {
		m.pending = append(m.pending, pendingMutation{source: source, change: change})
		m.mu.Unlock()
		m.logger.Debug().Str("source", source).Msg("mutation queued until notification completes")
		return nil
	}
	p, err := m.applyLocked(source, change)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.notifying = true
	m.mu.Unlock()

	m.publish(p)
	m.drain()
	return nil
}

func (m *Model) drain() {
	for {
		m.mu.Lock()
		if len(m.pending) == 0 || m.closed {
			m.pending = nil
			m.notifying = false
			m.mu.Unlock()
			return
		}
		next := m.pending[0]
		m.pending = m.pending[1:]
		p, err := m.applyLocked(next.source, next.change)
		m.mu.Unlock()

		if err != nil {
			m.logger.Error().Err(err).Str("source", next.source).Msg("queued mutation rejected")
			continue
		}
		m.publish(p)
	}
}

func (m *Model) applyLocked(source string, change func() error) (pass, error) {
	if err := change(); err != nil {
		return pass{}, err
	}
	compact := m.compact != nil && m.compact()
	out := m.compiler.Compile(Input{
		Volumes:        m.volumes,
		Shortcuts:      m.shortcuts,
		Recent:         m.recent,
		LinuxFiles:     m.linuxFiles,
		FakeDrive:      m.fakeDrive,
		AddService:     m.addService,
		CompactMyFiles: compact,
	})
	prev := m.items
	m.items = out.Items
	return pass{
		source:   source,
		perm:     presentationPermutation(prev, out.Items),
		problems: out.Problems,
	}, nil
}

func (m *Model) publish(p pass) {
	m.bus.PublishPermuted(p.source, p.perm)
	for _, err := range p.problems {
		var unknown *UnknownVolumeTypeError
		if errors.As(err, &unknown) {
			m.bus.PublishLayoutProblem(unknown.VolumeID, string(unknown.Type), err)
		}
	}
}

// Len returns the number of top-level entries.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Item returns the entry at index i, or false when i is out of range.
func (m *Model) Item(i int) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.items) {
		return nil, false
	}
	return m.items[i], true
}

// IndexOf returns the index of it at or after from, compared by instance,
// or -1.
func (m *Model) IndexOf(it Item, from int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if from < 0 {
		from = 0
	}
	for i := from; i < len(m.items); i++ {
		if m.items[i] == it {
			return i
		}
	}
	return -1
}

// Items returns a copy of the top-level entries.
func (m *Model) Items() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Volumes returns a copy of the reconciled volume list in source order.
func (m *Model) Volumes() []*Volume {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Volume, len(m.volumes))
	copy(out, m.volumes)
	return out
}

// Shortcuts returns a copy of the reconciled shortcut list.
func (m *Model) Shortcuts() []*Shortcut {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Shortcut, len(m.shortcuts))
	copy(out, m.shortcuts)
	return out
}

// MyFiles returns the My files group.
func (m *Model) MyFiles() *VirtualGroup {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.compiler.MyFiles()
}

// OnItemNotFound reports that an entry no longer resolves on disk. Shortcuts
// are handed to the shortcut store, which drops them; other kinds are ignored.
func (m *Model) OnItemNotFound(it Item) {
	s, ok := it.(*Shortcut)
	if !ok {
		m.logger.Debug().Str("key", string(it.Key())).Msg("not-found report ignored for non-shortcut entry")
		return
	}
	m.shortcutSrc.OnItemNotFound(s.Entry())
}

// Subscribe registers fn for permutation events. Observers run synchronously
// in registration order.
func (m *Model) Subscribe(fn func(events.PermutedEvent)) events.Subscription {
	return m.bus.Subscribe(events.EventPermuted, func(e events.Event) {
		if pe, ok := e.(*events.PermutedEvent); ok {
			fn(*pe)
		}
	})
}

// Unsubscribe removes an observer.
func (m *Model) Unsubscribe(sub events.Subscription) {
	m.bus.Unsubscribe(sub)
}

// Bus returns the event bus the model publishes on.
func (m *Model) Bus() *events.EventBus {
	return m.bus
}

// Close detaches the model from its sources. Later mutations return
// ErrModelClosed.
func (m *Model) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	unsub := m.unsubVolumes
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	m.closeOwned()
}

func (m *Model) closeOwned() {
	if m.ownsRegistry {
		m.registry.Close()
	}
	if m.ownsBus {
		m.bus.Close()
	}
}
