package navigation

import (
	"sort"
	"strings"

	"github.com/rescale/navlist/internal/constants"
	"github.com/rescale/navlist/internal/logging"
	"github.com/rescale/navlist/internal/volumes"
)

// Key of the single My files group.
const myFilesKey Key = "group:my-files"

// CompilerOptions configures labels and volume sub-typing.
type CompilerOptions struct {
	MyFilesLabel           string
	RemovableFallbackLabel string
	ZipProviderID          string
	Logger                 *logging.Logger
}

// Input is everything a layout pass reads.
type Input struct {
	Volumes   []*Volume
	Shortcuts []*Shortcut

	Recent     *FakeRoot
	LinuxFiles *FakeRoot
	FakeDrive  *FakeRoot
	AddService *FakeRoot

	CompactMyFiles bool
}

// Layout is the result of a pass.
type Layout struct {
	Items []Item

	// Problems lists entries excluded because their backing record broke
	// the mount subsystem contract.
	Problems []error
}

// Compiler produces the ordered, sectioned presentation list. It keeps the
// synthetic groups it creates (My files, removable partition groups) keyed by
// identity so that every pass hands out the same instances.
type Compiler struct {
	opts   CompilerOptions
	logger *logging.Logger

	myFiles   *VirtualGroup
	removable map[Key]*VirtualGroup
}

// NewCompiler creates a Compiler. Empty labels fall back to the defaults.
func NewCompiler(opts CompilerOptions) *Compiler {
	if opts.MyFilesLabel == "" {
		opts.MyFilesLabel = constants.MyFilesLabel
	}
	if opts.RemovableFallbackLabel == "" {
		opts.RemovableFallbackLabel = constants.RemovableFallbackLabel
	}
	if opts.ZipProviderID == "" {
		opts.ZipProviderID = constants.ZipProviderID
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Compiler{
		opts:      opts,
		logger:    opts.Logger.Component("layout"),
		removable: make(map[Key]*VirtualGroup),
	}
}

// MyFiles returns the My files group, or nil before the first pass.
func (c *Compiler) MyFiles() *VirtualGroup {
	return c.myFiles
}

// tier buckets volumes by the layout position of their mount kind.
type tier int

const (
	tierMediaView tier = iota
	tierDownloads
	tierAndroid
	tierCrostini
	tierDrive
	tierProvided
	tierDocumentsProvider
	tierRemovable
	tierOther // archive, MTP, zip mounted as provided
)

func (c *Compiler) classify(v *Volume) (tier, bool) {
	switch v.VolumeType() {
	case volumes.TypeMediaView:
		return tierMediaView, true
	case volumes.TypeDownloads:
		return tierDownloads, true
	case volumes.TypeAndroidFiles:
		return tierAndroid, true
	case volumes.TypeCrostini:
		return tierCrostini, true
	case volumes.TypeDrive:
		return tierDrive, true
	case volumes.TypeProvided:
		if strings.Contains(v.Info().VolumeID, c.opts.ZipProviderID) {
			return tierOther, true
		}
		return tierProvided, true
	case volumes.TypeDocumentsProvider:
		return tierDocumentsProvider, true
	case volumes.TypeRemovable:
		return tierRemovable, true
	case volumes.TypeArchive, volumes.TypeMTP:
		return tierOther, true
	}
	return 0, false
}

// Compile runs one layout pass. Given the same input (same instances) it
// returns the same list with the same instances.
func (c *Compiler) Compile(in Input) Layout {
	var out Layout
	buckets := make(map[tier][]*Volume)

	for i, v := range in.Volumes {
		v.originalOrder = i
		t, ok := c.classify(v)
		if !ok {
			err := &UnknownVolumeTypeError{VolumeID: v.Info().VolumeID, Type: v.VolumeType()}
			c.logger.Error().Err(err).Int("index", i).Msg("volume excluded from layout")
			out.Problems = append(out.Problems, err)
			continue
		}
		buckets[t] = append(buckets[t], v)
	}

	// Downloads, Android and Linux volumes are single-instance kinds; if the
	// mount subsystem reports more than one, the last reported wins.
	single := func(t tier) *Volume {
		vs := buckets[t]
		if len(vs) == 0 {
			return nil
		}
		return vs[len(vs)-1]
	}

	emit := func(it Item, s Section) {
		setSection(it, s)
		out.Items = append(out.Items, it)
	}

	// 1. Recent.
	if in.Recent != nil {
		emit(in.Recent, SectionTop)
	}

	// 2. Media views.
	for _, v := range buckets[tierMediaView] {
		emit(v, SectionTop)
	}

	// 3. Shortcuts.
	for i, s := range in.Shortcuts {
		s.originalOrder = i
		emit(s, SectionTop)
	}

	// 4. My files.
	myFiles := c.nestMyFiles(in, single(tierDownloads), single(tierAndroid), single(tierCrostini))
	emit(myFiles, SectionMyFiles)

	// 5. Drive, or the fake Drive placeholder.
	for _, v := range buckets[tierDrive] {
		emit(v, SectionCloud)
	}
	if len(buckets[tierDrive]) == 0 && in.FakeDrive != nil {
		emit(in.FakeDrive, SectionCloud)
	}

	// 6. File system providers.
	for _, v := range buckets[tierProvided] {
		emit(v, SectionCloud)
	}

	// 7. Documents providers.
	for _, v := range buckets[tierDocumentsProvider] {
		emit(v, SectionCloud)
	}

	// 8. Removables, partitions of one device grouped.
	for _, it := range c.groupRemovables(buckets[tierRemovable]) {
		emit(it, SectionRemovable)
	}

	// 9. Archives, MTP and zip mounts in backing order.
	others := buckets[tierOther]
	sort.SliceStable(others, func(i, j int) bool {
		return others[i].originalOrder < others[j].originalOrder
	})
	for _, v := range others {
		emit(v, SectionRemovable)
	}

	// 10. Add new service.
	if in.AddService != nil {
		emit(in.AddService, SectionCloud)
	}

	return out
}

func setSection(it Item, s Section) {
	switch it := it.(type) {
	case *Volume:
		it.setSection(s)
	case *Shortcut:
		it.setSection(s)
	case *VirtualGroup:
		it.setSection(s)
	case *FakeRoot:
		it.setSection(s)
	}
}

// My files child order.
func myFilesRank(it Item) int {
	switch it := it.(type) {
	case *Volume:
		switch it.VolumeType() {
		case volumes.TypeDownloads:
			return 0
		case volumes.TypeAndroidFiles:
			return 1
		case volumes.TypeCrostini:
			return 2
		}
	case *FakeRoot:
		if it.Kind() == FakeLinuxFiles {
			return 2
		}
	}
	return 3
}

func isVolumeOfType(t volumes.VolumeType) func(Item) bool {
	return func(it Item) bool {
		v, ok := it.(*Volume)
		return ok && v.VolumeType() == t
	}
}

// syncChild makes current the only child of the slot matched by inSlot.
// A nil current empties the slot.
func syncChild(g *VirtualGroup, inSlot func(Item) bool, current Item) {
	g.RemoveWhere(func(it Item) bool {
		return inSlot(it) && (current == nil || it != current)
	})
	if current != nil {
		g.Add(current)
	}
}

func (c *Compiler) nestMyFiles(in Input, downloads, android, crostini *Volume) *VirtualGroup {
	if c.myFiles == nil {
		c.myFiles = &VirtualGroup{
			base: newBase(c.opts.MyFilesLabel, myFilesKey),
			kind: GroupMyFiles,
		}
	}
	g := c.myFiles

	if in.CompactMyFiles {
		// Downloads backs the group itself instead of being its child.
		g.backing = downloads
		syncChild(g, isVolumeOfType(volumes.TypeDownloads), nil)
	} else {
		g.backing = nil
		syncChild(g, isVolumeOfType(volumes.TypeDownloads), itemOrNil(downloads))
	}

	syncChild(g, isVolumeOfType(volumes.TypeAndroidFiles), itemOrNil(android))

	// The Linux slot holds the Crostini volume when mounted, else the
	// placeholder when one was supplied.
	isLinuxFake := func(it Item) bool {
		f, ok := it.(*FakeRoot)
		return ok && f.Kind() == FakeLinuxFiles
	}
	if crostini != nil {
		syncChild(g, isLinuxFake, nil)
		syncChild(g, isVolumeOfType(volumes.TypeCrostini), crostini)
	} else {
		syncChild(g, isVolumeOfType(volumes.TypeCrostini), nil)
		syncChild(g, isLinuxFake, fakeOrNil(in.LinuxFiles))
	}

	sort.SliceStable(g.children, func(i, j int) bool {
		return myFilesRank(g.children[i]) < myFilesRank(g.children[j])
	})
	for _, child := range g.children {
		setSection(child, SectionMyFiles)
	}
	return g
}

// itemOrNil avoids storing a typed nil pointer in an Item interface.
func itemOrNil(v *Volume) Item {
	if v == nil {
		return nil
	}
	return v
}

func fakeOrNil(f *FakeRoot) Item {
	if f == nil {
		return nil
	}
	return f
}

// removableKey groups partitions of one physical device: they share device
// path and drive label.
func removableKey(info volumes.Info) Key {
	return Key("group:removable:" + info.DevicePath + "/" + info.DriveLabel)
}

// groupRemovables returns the removable entries in first-appearance order of
// their device. A device with a single partition is returned as the volume
// itself. Group instances are reused by key; groups not needed this pass are
// dropped from the store and emptied.
func (c *Compiler) groupRemovables(removables []*Volume) []Item {
	var order []Key
	partitions := make(map[Key][]*Volume)
	for _, v := range removables {
		k := removableKey(v.Info())
		if _, seen := partitions[k]; !seen {
			order = append(order, k)
		}
		partitions[k] = append(partitions[k], v)
	}

	var items []Item
	groups := make(map[Key]*VirtualGroup, len(order))
	for _, k := range order {
		parts := partitions[k]
		if len(parts) == 1 {
			items = append(items, parts[0])
			continue
		}

		g, ok := c.removable[k]
		if !ok {
			label := parts[0].Info().DriveLabel
			if label == "" {
				label = c.opts.RemovableFallbackLabel
			}
			g = &VirtualGroup{
				base:       newBase(label, k),
				kind:       GroupRemovable,
				devicePath: parts[0].Info().DevicePath,
			}
			c.logger.Debug().Str("device_path", g.devicePath).Int("partitions", len(parts)).Msg("removable group created")
		}

		g.RemoveWhere(func(Item) bool { return true })
		for _, p := range parts {
			g.Add(p)
			p.setSection(SectionRemovable)
		}
		groups[k] = g
		items = append(items, g)
	}

	for k, g := range c.removable {
		if _, kept := groups[k]; !kept {
			g.RemoveWhere(func(Item) bool { return true })
		}
	}
	c.removable = groups
	return items
}
