package navigation

import (
	"sync"

	"github.com/rescale/navlist/internal/shortcuts"
	"github.com/rescale/navlist/internal/volumes"
)

// Section is a display grouping of top-level items. It is recomputed by every
// layout pass and carries no other meaning.
type Section string

const (
	SectionTop       Section = "top"       // Recent, media views, shortcuts
	SectionMyFiles   Section = "my_files"  // My files and its children
	SectionRemovable Section = "removable" // Removables, archives, MTP, zip mounts
	SectionCloud     Section = "cloud"     // Drive, providers
)

// Key is the identity of an item. It is derived from stable attributes of the
// backing record, never from list position.
type Key string

// Item is one navigation entry. The concrete type is one of *Volume,
// *Shortcut, *VirtualGroup or *FakeRoot; consumers switch on it.
type Item interface {
	Label() string
	Key() Key
	Section() Section
	// OriginalOrder is the index the item held in its backing list during
	// the last layout pass, or -1.
	OriginalOrder() int

	navigationItem()
}

type base struct {
	label         string
	key           Key
	section       Section
	originalOrder int
}

func newBase(label string, key Key) base {
	return base{label: label, key: key, section: SectionTop, originalOrder: -1}
}

func (b *base) Label() string        { return b.label }
func (b *base) Key() Key             { return b.key }
func (b *base) Section() Section     { return b.section }
func (b *base) OriginalOrder() int   { return b.originalOrder }
func (b *base) navigationItem()      {}
func (b *base) setSection(s Section) { b.section = s }

// VolumeKey returns the identity of a volume record.
func VolumeKey(info volumes.Info) Key {
	return Key("volume:" + string(info.Type) + ":" + info.VolumeID)
}

// ShortcutKey returns the identity of a shortcut record.
func ShortcutKey(e shortcuts.Entry) Key {
	return Key("shortcut:" + e.URL)
}

// Volume is a mounted volume.
type Volume struct {
	base
	info volumes.Info

	// Written by the display root resolver goroutine.
	mu   sync.Mutex
	root *volumes.DisplayRoot
}

func newVolume(info volumes.Info) *Volume {
	return &Volume{base: newBase(info.Label, VolumeKey(info)), info: info}
}

// Info returns the backing record.
func (v *Volume) Info() volumes.Info { return v.info }

// VolumeType returns the mount kind.
func (v *Volume) VolumeType() volumes.VolumeType { return v.info.Type }

// DisplayRoot returns the resolved display root, if resolution has completed.
func (v *Volume) DisplayRoot() (volumes.DisplayRoot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.root == nil {
		return volumes.DisplayRoot{}, false
	}
	return *v.root, true
}

// DisplayRootResolved reports whether the display root has been resolved.
func (v *Volume) DisplayRootResolved() bool {
	_, ok := v.DisplayRoot()
	return ok
}

func (v *Volume) setDisplayRoot(root volumes.DisplayRoot) {
	v.mu.Lock()
	v.root = &root
	v.mu.Unlock()
}

// refresh copies non-identity attributes from a newer record of the same volume.
func (v *Volume) refresh(info volumes.Info) {
	v.info = info
	v.label = info.Label
}

// Shortcut is a pinned folder.
type Shortcut struct {
	base
	entry shortcuts.Entry
}

func newShortcut(e shortcuts.Entry) *Shortcut {
	return &Shortcut{base: newBase(e.Name, ShortcutKey(e)), entry: e}
}

// Entry returns the backing shortcut record.
func (s *Shortcut) Entry() shortcuts.Entry { return s.entry }

func (s *Shortcut) refresh(e shortcuts.Entry) {
	s.entry = e
	s.label = e.Name
}

// GroupKind distinguishes virtual groups.
type GroupKind string

const (
	GroupMyFiles   GroupKind = "my_files"
	GroupRemovable GroupKind = "removable"
	// GroupEntryList is a plain UI-only grouping. The layout compiler does not
	// produce it; it exists for callers composing their own groups.
	GroupEntryList GroupKind = "entry_list"
)

// VirtualGroup is a synthetic entry that nests other items. It owns its
// children: items are moved in and out, never copied.
type VirtualGroup struct {
	base
	kind       GroupKind
	children   []Item
	devicePath string
	backing    *Volume
}

// NewEntryList creates an empty GroupEntryList group.
func NewEntryList(label string, key Key) *VirtualGroup {
	return &VirtualGroup{base: newBase(label, key), kind: GroupEntryList}
}

// Kind returns the group kind.
func (g *VirtualGroup) Kind() GroupKind { return g.kind }

// Children returns a copy of the child items in display order.
func (g *VirtualGroup) Children() []Item {
	out := make([]Item, len(g.children))
	copy(out, g.children)
	return out
}

// Len returns the number of children.
func (g *VirtualGroup) Len() int { return len(g.children) }

// DevicePath returns the backing device of a removable group.
func (g *VirtualGroup) DevicePath() string { return g.devicePath }

// Backing returns the volume that backs the group itself (the Downloads
// volume for My files in compact mode).
func (g *VirtualGroup) Backing() (*Volume, bool) {
	return g.backing, g.backing != nil
}

// IndexOfKey returns the child index holding key, or -1.
func (g *VirtualGroup) IndexOfKey(k Key) int {
	for i, c := range g.children {
		if c.Key() == k {
			return i
		}
	}
	return -1
}

// Add appends it unless a child with the same identity is already present.
func (g *VirtualGroup) Add(it Item) bool {
	if g.IndexOfKey(it.Key()) >= 0 {
		return false
	}
	g.children = append(g.children, it)
	return true
}

// RemoveWhere drops every child matching fn and returns how many were removed.
func (g *VirtualGroup) RemoveWhere(fn func(Item) bool) int {
	kept := g.children[:0]
	removed := 0
	for _, c := range g.children {
		if fn(c) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(g.children); i++ {
		g.children[i] = nil
	}
	g.children = kept
	return removed
}

// FakeKind distinguishes application-injected placeholders.
type FakeKind string

const (
	FakeRecent     FakeKind = "recent"
	FakeLinuxFiles FakeKind = "linux_files"
	FakeDrive      FakeKind = "fake_drive"
	FakeAddService FakeKind = "add_service"
)

// FakeRoot is a placeholder for a feature not backed by a mounted volume.
type FakeRoot struct {
	base
	kind FakeKind
}

// NewFakeRoot creates a placeholder of the given kind.
func NewFakeRoot(kind FakeKind, label string) *FakeRoot {
	return &FakeRoot{base: newBase(label, Key("fake:"+string(kind))), kind: kind}
}

// Kind returns the placeholder kind.
func (f *FakeRoot) Kind() FakeKind { return f.kind }
