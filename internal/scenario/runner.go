package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rescale/navlist/internal/config"
	"github.com/rescale/navlist/internal/events"
	"github.com/rescale/navlist/internal/logging"
	"github.com/rescale/navlist/internal/navigation"
	"github.com/rescale/navlist/internal/shortcuts"
	"github.com/rescale/navlist/internal/volumes"
)

// ErrUnknownShortcut is returned by a not_found step naming no shortcut.
var ErrUnknownShortcut = errors.New("no shortcut with that url")

// StepResult is what the model did in response to one step.
type StepResult struct {
	Index    int // -1 for the initial state
	Action   string
	Events   []events.PermutedEvent
	Problems []string
	Tree     string
	Err      error
}

// Result is a completed replay.
type Result struct {
	Initial StepResult
	Steps   []StepResult
}

// Failed reports whether any step returned an error.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Config *config.Config

	// Resolver resolves display roots. Nil skips resolution.
	Resolver volumes.Resolver

	// Render turns the current list into text after every step.
	Render func([]navigation.Item) string

	Logger *logging.Logger
}

// Runner replays scenario files.
type Runner struct {
	opts   RunnerOptions
	logger *logging.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOptions) *Runner {
	if opts.Config == nil {
		opts.Config = config.NewConfig()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Render == nil {
		opts.Render = func([]navigation.Item) string { return "" }
	}
	return &Runner{opts: opts, logger: opts.Logger.Component("scenario")}
}

type session struct {
	mounts   *volumes.Manager
	store    *shortcuts.Store
	registry *navigation.Registry
	model    *navigation.Model

	events   []events.PermutedEvent
	problems []string
}

// Run replays f. Step errors are recorded on their StepResult and do not stop
// the replay; setup errors and cancellation do.
func (r *Runner) Run(ctx context.Context, f *File) (*Result, error) {
	s, err := r.setup(f)
	if err != nil {
		return nil, err
	}
	defer s.model.Close()
	defer s.registry.Close()

	res := &Result{Initial: r.snapshot(s, -1, "initial", nil)}
	for i, step := range f.Steps {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("replay cancelled at step %d: %w", i, err)
		}
		err := r.apply(s, step)
		if err != nil {
			r.logger.Warn().Err(err).Int("step", i).Str("action", step.Action()).Msg("step failed")
		}
		res.Steps = append(res.Steps, r.snapshot(s, i, step.Action(), err))
	}
	return res, nil
}

func (r *Runner) setup(f *File) (*session, error) {
	cfg := r.opts.Config

	var infos []volumes.Info
	for _, v := range f.Volumes {
		infos = append(infos, v.Info())
	}
	mounts, err := volumes.NewManager(infos...)
	if err != nil {
		return nil, fmt.Errorf("initial volumes: %w", err)
	}

	var entries []shortcuts.Entry
	for _, sc := range f.Shortcuts {
		entries = append(entries, sc.Entry())
	}
	store, err := shortcuts.NewStore(r.opts.Logger, entries...)
	if err != nil {
		return nil, fmt.Errorf("initial shortcuts: %w", err)
	}

	registry := navigation.NewRegistry(navigation.RegistryOptions{
		Resolver:      r.opts.Resolver,
		MaxConcurrent: cfg.Resolver.MaxConcurrent,
		Timeout:       cfg.ResolveTimeout(),
		Logger:        r.opts.Logger,
	})

	compact := f.CompactMyFiles || cfg.Layout.CompactMyFiles
	model, err := navigation.New(mounts, store, navigation.Options{
		Registry: registry,
		Compiler: navigation.CompilerOptions{
			MyFilesLabel:           cfg.Layout.MyFilesLabel,
			RemovableFallbackLabel: cfg.RemovableLabel(),
			ZipProviderID:          cfg.Layout.ZipProviderID,
		},
		CompactMyFiles: func() bool { return compact },
		Recent:         fakeOrNil(navigation.FakeRecent, f.FakeRoots.Recent),
		LinuxFiles:     fakeOrNil(navigation.FakeLinuxFiles, f.FakeRoots.LinuxFiles),
		FakeDrive:      fakeOrNil(navigation.FakeDrive, f.FakeRoots.FakeDrive),
		AddService:     fakeOrNil(navigation.FakeAddService, f.FakeRoots.AddService),
		Logger:         r.opts.Logger,
	})
	if err != nil {
		registry.Close()
		return nil, err
	}

	s := &session{mounts: mounts, store: store, registry: registry, model: model}
	model.Subscribe(func(e events.PermutedEvent) {
		s.events = append(s.events, e)
	})
	model.Bus().Subscribe(events.EventLayoutProblem, func(e events.Event) {
		if p, ok := e.(*events.LayoutProblemEvent); ok {
			s.problems = append(s.problems, p.Error.Error())
		}
	})
	return s, nil
}

func fakeOrNil(kind navigation.FakeKind, label string) *navigation.FakeRoot {
	if label == "" {
		return nil
	}
	return navigation.NewFakeRoot(kind, label)
}

func (r *Runner) snapshot(s *session, index int, action string, err error) StepResult {
	// Display roots resolve in the background; let them land before rendering.
	waitFor(s.registry, r.opts.Config.ResolveTimeout())

	res := StepResult{
		Index:    index,
		Action:   action,
		Events:   s.events,
		Problems: s.problems,
		Tree:     r.opts.Render(s.model.Items()),
		Err:      err,
	}
	s.events = nil
	s.problems = nil
	return res
}

func waitFor(reg *navigation.Registry, limit time.Duration) {
	done := make(chan struct{})
	go func() {
		reg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(limit):
	}
}

func (r *Runner) apply(s *session, step Step) error {
	switch {
	case step.Mount != nil:
		return s.mounts.Mount(step.Mount.Info())
	case step.Unmount != "":
		return s.mounts.Unmount(step.Unmount)
	case step.Update != nil:
		return s.mounts.Update(step.Update.Info())
	case step.AddShortcut != nil:
		return s.store.Add(step.AddShortcut.Entry())
	case step.RemoveShortcut != "":
		return s.store.Remove(step.RemoveShortcut)
	case step.NotFound != "":
		for _, sc := range s.model.Shortcuts() {
			if sc.Entry().URL == step.NotFound {
				s.model.OnItemNotFound(sc)
				return nil
			}
		}
		return fmt.Errorf("%s: %w", step.NotFound, ErrUnknownShortcut)
	case step.SetFake != nil:
		kind, err := ParseFakeKind(step.SetFake.Kind)
		if err != nil {
			return err
		}
		return setFake(s.model, kind, navigation.NewFakeRoot(kind, step.SetFake.Label))
	case step.ClearFake != "":
		kind, err := ParseFakeKind(step.ClearFake)
		if err != nil {
			return err
		}
		return setFake(s.model, kind, nil)
	}
	return ErrEmptyStep
}

func setFake(m *navigation.Model, kind navigation.FakeKind, root *navigation.FakeRoot) error {
	switch kind {
	case navigation.FakeRecent:
		return m.SetRecent(root)
	case navigation.FakeLinuxFiles:
		return m.SetLinuxFiles(root)
	case navigation.FakeDrive:
		return m.SetFakeDrive(root)
	case navigation.FakeAddService:
		return m.SetAddService(root)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFake, kind)
}
