package navigation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/rescale/navlist/internal/volumes"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRegistry_ResolvesDisplayRoot(t *testing.T) {
	r := NewRegistry(RegistryOptions{
		Resolver: volumes.ResolverFunc(func(ctx context.Context, info volumes.Info) (volumes.DisplayRoot, error) {
			return volumes.DisplayRoot{Path: info.MountPath, AvailableBytes: 42}, nil
		}),
	})
	defer r.Close()

	v := r.NewVolume(volumes.Info{VolumeID: "dl", Type: volumes.TypeDownloads, MountPath: "/home/user/Downloads"})
	r.Wait()

	root, ok := v.DisplayRoot()
	if !ok {
		t.Fatal("display root not resolved")
	}
	if root.Path != "/home/user/Downloads" || root.AvailableBytes != 42 {
		t.Errorf("root = %+v", root)
	}
}

func TestRegistry_FailureIsAbsorbed(t *testing.T) {
	r := NewRegistry(RegistryOptions{
		Resolver: volumes.ResolverFunc(func(context.Context, volumes.Info) (volumes.DisplayRoot, error) {
			return volumes.DisplayRoot{}, errors.New("mount handle gone")
		}),
	})
	defer r.Close()

	v := r.NewVolume(volumes.Info{VolumeID: "usb", Type: volumes.TypeRemovable})
	r.Wait()

	if v.DisplayRootResolved() {
		t.Error("failed resolution left a display root")
	}
	if v.Key() != "volume:removable:usb" {
		t.Errorf("volume unusable after failure: key %q", v.Key())
	}
}

func TestRegistry_NoResolver(t *testing.T) {
	r := NewRegistry(RegistryOptions{})
	defer r.Close()

	v := r.NewVolume(volumes.Info{VolumeID: "a", Type: volumes.TypeArchive})
	r.Wait()
	if v.DisplayRootResolved() {
		t.Error("display root resolved without a resolver")
	}
}

func TestRegistry_BoundsConcurrency(t *testing.T) {
	var inflight, peak atomic.Int32
	r := NewRegistry(RegistryOptions{
		MaxConcurrent: 2,
		Resolver: volumes.ResolverFunc(func(context.Context, volumes.Info) (volumes.DisplayRoot, error) {
			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inflight.Add(-1)
			return volumes.DisplayRoot{Path: "/"}, nil
		}),
	})
	defer r.Close()

	var vs []*Volume
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		vs = append(vs, r.NewVolume(volumes.Info{VolumeID: id, Type: volumes.TypeMTP}))
	}
	r.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrent resolutions = %d, want <= 2", got)
	}
	for _, v := range vs {
		if !v.DisplayRootResolved() {
			t.Errorf("%s not resolved", v.Key())
		}
	}
}

func TestRegistry_Timeout(t *testing.T) {
	r := NewRegistry(RegistryOptions{
		Timeout: 10 * time.Millisecond,
		Resolver: volumes.ResolverFunc(func(ctx context.Context, _ volumes.Info) (volumes.DisplayRoot, error) {
			<-ctx.Done()
			return volumes.DisplayRoot{}, ctx.Err()
		}),
	})
	defer r.Close()

	v := r.NewVolume(volumes.Info{VolumeID: "slow", Type: volumes.TypeProvided})
	r.Wait()
	if v.DisplayRootResolved() {
		t.Error("timed out resolution left a display root")
	}
}

func TestRegistry_CloseCancelsPending(t *testing.T) {
	started := make(chan struct{}, 1)
	r := NewRegistry(RegistryOptions{
		MaxConcurrent: 1,
		Timeout:       time.Minute,
		Resolver: volumes.ResolverFunc(func(ctx context.Context, _ volumes.Info) (volumes.DisplayRoot, error) {
			select {
			case started <- struct{}{}:
			default:
			}
			<-ctx.Done()
			return volumes.DisplayRoot{}, ctx.Err()
		}),
	})

	first := r.NewVolume(volumes.Info{VolumeID: "one", Type: volumes.TypeDrive})
	queued := r.NewVolume(volumes.Info{VolumeID: "two", Type: volumes.TypeDrive})
	<-started

	done := make(chan struct{})
	go func() {
		r.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	if first.DisplayRootResolved() || queued.DisplayRootResolved() {
		t.Error("cancelled resolutions left display roots")
	}
}
