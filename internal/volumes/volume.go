// Package volumes models the mount subsystem the navigation model consumes:
// volume records, an in-memory volume list that reports mount changes as
// permutations, and display root resolution.
package volumes

import (
	"context"
	"time"
)

// VolumeType is the mount kind reported by the mount subsystem.
type VolumeType string

const (
	TypeDownloads         VolumeType = "downloads"
	TypeCrostini          VolumeType = "crostini"      // Linux files container
	TypeAndroidFiles      VolumeType = "android_files" // Play files
	TypeProvided          VolumeType = "provided"      // File System Provider
	TypeRemovable         VolumeType = "removable"
	TypeArchive           VolumeType = "archive"
	TypeMTP               VolumeType = "mtp"
	TypeDrive             VolumeType = "drive"
	TypeMediaView         VolumeType = "media_view" // Images, Videos, Audio
	TypeDocumentsProvider VolumeType = "documents_provider"
)

var knownTypes = map[VolumeType]bool{
	TypeDownloads:         true,
	TypeCrostini:          true,
	TypeAndroidFiles:      true,
	TypeProvided:          true,
	TypeRemovable:         true,
	TypeArchive:           true,
	TypeMTP:               true,
	TypeDrive:             true,
	TypeMediaView:         true,
	TypeDocumentsProvider: true,
}

// Known reports whether t is one of the mount kinds above.
func (t VolumeType) Known() bool {
	return knownTypes[t]
}

// Info is the raw record for one mounted volume.
type Info struct {
	VolumeID   string     // Stable id assigned by the mount subsystem
	Type       VolumeType // Mount kind
	Label      string     // Display label
	DevicePath string     // Physical device, shared by partitions of one disk
	DriveLabel string     // Label of the physical drive
	MountPath  string     // Local directory the volume is mounted at
}

// DisplayRoot is the resolved root directory of a volume.
type DisplayRoot struct {
	Path           string
	AvailableBytes int64
	ResolvedAt     time.Time
}

// Resolver resolves the display root of a volume. Implementations may block;
// callers run them off the mutation path.
type Resolver interface {
	ResolveDisplayRoot(ctx context.Context, info Info) (DisplayRoot, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, info Info) (DisplayRoot, error)

func (f ResolverFunc) ResolveDisplayRoot(ctx context.Context, info Info) (DisplayRoot, error) {
	return f(ctx, info)
}
