// Package scenario loads YAML scenario files and replays them against a
// navigation model, one collaborator call per step.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rescale/navlist/internal/navigation"
	"github.com/rescale/navlist/internal/shortcuts"
	"github.com/rescale/navlist/internal/volumes"
)

var (
	ErrEmptyStep     = errors.New("step has no action")
	ErrMultipleStep  = errors.New("step has more than one action")
	ErrUnknownFake   = errors.New("unknown fake root kind")
	ErrMissingVolume = errors.New("volume id is required")
)

// File is a parsed scenario.
type File struct {
	CompactMyFiles bool       `yaml:"compact_my_files"`
	FakeRoots      FakeRoots  `yaml:"fake_roots"`
	Volumes        []Volume   `yaml:"volumes"`
	Shortcuts      []Shortcut `yaml:"shortcuts"`
	Steps          []Step     `yaml:"steps"`
}

// FakeRoots holds the labels of placeholders present from the start. An
// empty label leaves the slot unset.
type FakeRoots struct {
	Recent     string `yaml:"recent"`
	LinuxFiles string `yaml:"linux_files"`
	FakeDrive  string `yaml:"fake_drive"`
	AddService string `yaml:"add_service"`
}

// Volume is a volume record as written in a scenario.
type Volume struct {
	ID         string `yaml:"id"`
	Type       string `yaml:"type"`
	Label      string `yaml:"label"`
	DevicePath string `yaml:"device_path"`
	DriveLabel string `yaml:"drive_label"`
	MountPath  string `yaml:"mount_path"`
}

// Info converts v to a mount subsystem record.
func (v Volume) Info() volumes.Info {
	label := v.Label
	if label == "" {
		label = v.ID
	}
	return volumes.Info{
		VolumeID:   v.ID,
		Type:       volumes.VolumeType(v.Type),
		Label:      label,
		DevicePath: v.DevicePath,
		DriveLabel: v.DriveLabel,
		MountPath:  v.MountPath,
	}
}

// Shortcut is a shortcut record as written in a scenario.
type Shortcut struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Entry converts s to a shortcut store record.
func (s Shortcut) Entry() shortcuts.Entry {
	return shortcuts.Entry{Name: s.Name, URL: s.URL}
}

// FakeAssignment places a placeholder.
type FakeAssignment struct {
	Kind  string `yaml:"kind"`
	Label string `yaml:"label"`
}

// Step is one collaborator call. Exactly one field is set.
type Step struct {
	Mount          *Volume         `yaml:"mount,omitempty"`
	Unmount        string          `yaml:"unmount,omitempty"`
	Update         *Volume         `yaml:"update,omitempty"`
	AddShortcut    *Shortcut       `yaml:"add_shortcut,omitempty"`
	RemoveShortcut string          `yaml:"remove_shortcut,omitempty"`
	NotFound       string          `yaml:"not_found,omitempty"`
	SetFake        *FakeAssignment `yaml:"set_fake,omitempty"`
	ClearFake      string          `yaml:"clear_fake,omitempty"`
}

// Action names the step's action, or "" when none is set.
func (s Step) Action() string {
	names := s.actions()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func (s Step) actions() []string {
	var names []string
	if s.Mount != nil {
		names = append(names, "mount")
	}
	if s.Unmount != "" {
		names = append(names, "unmount")
	}
	if s.Update != nil {
		names = append(names, "update")
	}
	if s.AddShortcut != nil {
		names = append(names, "add_shortcut")
	}
	if s.RemoveShortcut != "" {
		names = append(names, "remove_shortcut")
	}
	if s.NotFound != "" {
		names = append(names, "not_found")
	}
	if s.SetFake != nil {
		names = append(names, "set_fake")
	}
	if s.ClearFake != "" {
		names = append(names, "clear_fake")
	}
	return names
}

// Validate checks that exactly one action is set and its arguments are usable.
func (s Step) Validate() error {
	names := s.actions()
	switch {
	case len(names) == 0:
		return ErrEmptyStep
	case len(names) > 1:
		return fmt.Errorf("%w: %v", ErrMultipleStep, names)
	}
	switch {
	case s.Mount != nil && s.Mount.ID == "":
		return ErrMissingVolume
	case s.Update != nil && s.Update.ID == "":
		return ErrMissingVolume
	case s.SetFake != nil:
		if _, err := ParseFakeKind(s.SetFake.Kind); err != nil {
			return err
		}
	case s.ClearFake != "":
		if _, err := ParseFakeKind(s.ClearFake); err != nil {
			return err
		}
	}
	return nil
}

// ParseFakeKind maps a scenario name to a placeholder kind.
func ParseFakeKind(s string) (navigation.FakeKind, error) {
	switch k := navigation.FakeKind(s); k {
	case navigation.FakeRecent, navigation.FakeLinuxFiles, navigation.FakeDrive, navigation.FakeAddService:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFake, s)
}

// Load reads and validates a scenario file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates scenario YAML. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	for i, v := range f.Volumes {
		if v.ID == "" {
			return nil, fmt.Errorf("volume %d: %w", i, ErrMissingVolume)
		}
	}
	for i, s := range f.Steps {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return &f, nil
}

// Marshal encodes f as YAML.
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
