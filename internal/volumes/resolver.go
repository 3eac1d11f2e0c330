package volumes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rescale/navlist/internal/diskspace"
	"github.com/rescale/navlist/internal/localfs"
)

// ErrNoMountPath is returned for volumes that are not backed by a local directory.
var ErrNoMountPath = errors.New("volume has no mount path")

// LocalResolver resolves display roots from the local filesystem. The mount
// path is expanded and its symlinks resolved, it must name a directory, and
// the free space of its filesystem is recorded.
type LocalResolver struct {
	now func() time.Time
}

// NewLocalResolver creates a LocalResolver.
func NewLocalResolver() *LocalResolver {
	return &LocalResolver{now: time.Now}
}

// ResolveDisplayRoot implements Resolver.
func (r *LocalResolver) ResolveDisplayRoot(ctx context.Context, info Info) (DisplayRoot, error) {
	if info.MountPath == "" {
		return DisplayRoot{}, fmt.Errorf("%s: %w", info.VolumeID, ErrNoMountPath)
	}
	if err := ctx.Err(); err != nil {
		return DisplayRoot{}, err
	}

	path, err := localfs.ResolvePath(info.MountPath)
	if err != nil {
		return DisplayRoot{}, fmt.Errorf("resolve %s: %w", info.VolumeID, err)
	}
	entry, err := localfs.StatDir(path)
	if err != nil {
		return DisplayRoot{}, fmt.Errorf("resolve %s: %w", info.VolumeID, err)
	}

	// Free space is informational; a failed probe leaves it at zero.
	avail, err := diskspace.Available(entry.Path)
	if err != nil {
		avail = 0
	}

	return DisplayRoot{
		Path:           entry.Path,
		AvailableBytes: avail,
		ResolvedAt:     r.now(),
	}, nil
}
