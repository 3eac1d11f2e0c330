package navigation

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rescale/navlist/internal/constants"
	"github.com/rescale/navlist/internal/logging"
	"github.com/rescale/navlist/internal/shortcuts"
	"github.com/rescale/navlist/internal/volumes"
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Resolver resolves volume display roots. Nil disables resolution.
	Resolver volumes.Resolver

	// MaxConcurrent bounds parallel resolutions. Default: 4
	MaxConcurrent int

	// Timeout bounds a single resolution. Default: 5s
	Timeout time.Duration

	Logger *logging.Logger
}

// Registry constructs items from backing records. Constructing a volume
// starts a best-effort display root resolution in the background; its
// failure is logged and otherwise ignored.
type Registry struct {
	resolver volumes.Resolver
	sem      *semaphore.Weighted
	timeout  time.Duration
	logger   *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a Registry.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = constants.DefaultResolverConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultResolveTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		resolver: opts.Resolver,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		timeout:  opts.Timeout,
		logger:   opts.Logger.Component("registry"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// NewVolume creates the item for a volume record and starts resolving its
// display root.
func (r *Registry) NewVolume(info volumes.Info) *Volume {
	v := newVolume(info)
	if r.resolver != nil {
		r.wg.Add(1)
		go r.resolve(v, info)
	}
	return v
}

// NewShortcut creates the item for a shortcut record.
func (r *Registry) NewShortcut(e shortcuts.Entry) *Shortcut {
	return newShortcut(e)
}

func (r *Registry) resolve(v *Volume, info volumes.Info) {
	defer r.wg.Done()

	if err := r.sem.Acquire(r.ctx, 1); err != nil {
		return // registry closed
	}
	defer r.sem.Release(1)

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	root, err := r.resolver.ResolveDisplayRoot(ctx, info)
	if err != nil {
		r.logger.Debug().Err(err).Str("volume_id", info.VolumeID).Msg("display root not resolved")
		return
	}
	v.setDisplayRoot(root)
	r.logger.Debug().Str("volume_id", info.VolumeID).Str("root", root.Path).Msg("display root resolved")
}

// Wait blocks until every started resolution has finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}

// Close cancels outstanding resolutions and waits for them to return.
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()
}
