package volumes

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rescale/navlist/internal/events"
)

func TestManagerMountUnmount(t *testing.T) {
	m, err := NewManager(
		Info{VolumeID: "downloads", Type: TypeDownloads, Label: "Downloads"},
		Info{VolumeID: "drive", Type: TypeDrive, Label: "Google Drive"},
	)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	var got []events.Permutation
	m.Subscribe(func(p events.Permutation) { got = append(got, p) })

	if err := m.Mount(Info{VolumeID: "usb", Type: TypeRemovable}); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if err := m.Unmount("downloads"); err != nil {
		t.Fatalf("Unmount failed: %v", err)
	}

	want := []events.Permutation{
		{NewLength: 3, Permutation: []int{0, 1}},
		{NewLength: 2, Permutation: []int{-1, 0, 1}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("permutations = %+v, want %+v", got, want)
	}

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if m.At(0).VolumeID != "drive" || m.At(1).VolumeID != "usb" {
		t.Errorf("List() = %+v", m.List())
	}
}

func TestManagerErrors(t *testing.T) {
	m, _ := NewManager(Info{VolumeID: "a", Type: TypeArchive})

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"empty id", func() error { return m.Mount(Info{Type: TypeMTP}) }, ErrInvalidVolume},
		{"duplicate", func() error { return m.Mount(Info{VolumeID: "a", Type: TypeMTP}) }, ErrDuplicateVolume},
		{"unmount missing", func() error { return m.Unmount("b") }, ErrVolumeNotFound},
		{"update missing", func() error { return m.Update(Info{VolumeID: "b"}) }, ErrVolumeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := NewManager(Info{VolumeID: "x"}, Info{VolumeID: "x"}); !errors.Is(err, ErrDuplicateVolume) {
		t.Errorf("NewManager duplicate error = %v", err)
	}
}

func TestManagerUpdateKeepsTypeAndSlot(t *testing.T) {
	m, _ := NewManager(
		Info{VolumeID: "p1", Type: TypeRemovable, DriveLabel: "OLD"},
		Info{VolumeID: "p2", Type: TypeRemovable},
	)
	var got events.Permutation
	m.Subscribe(func(p events.Permutation) { got = p })

	if err := m.Update(Info{VolumeID: "p1", Type: TypeMTP, DriveLabel: "NEW"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	info, ok := m.Find("p1")
	if !ok {
		t.Fatal("p1 not found")
	}
	if info.Type != TypeRemovable {
		t.Errorf("Type = %q, want %q", info.Type, TypeRemovable)
	}
	if info.DriveLabel != "NEW" {
		t.Errorf("DriveLabel = %q, want NEW", info.DriveLabel)
	}
	if !reflect.DeepEqual(got, events.Identity(2)) {
		t.Errorf("permutation = %+v, want identity", got)
	}
}

func TestManagerUnsubscribe(t *testing.T) {
	m, _ := NewManager()
	calls := 0
	cancel := m.Subscribe(func(events.Permutation) { calls++ })

	_ = m.Mount(Info{VolumeID: "a"})
	cancel()
	_ = m.Mount(Info{VolumeID: "b"})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestVolumeTypeKnown(t *testing.T) {
	for _, vt := range []VolumeType{TypeDownloads, TypeCrostini, TypeAndroidFiles, TypeProvided, TypeRemovable, TypeArchive, TypeMTP, TypeDrive, TypeMediaView, TypeDocumentsProvider} {
		if !vt.Known() {
			t.Errorf("%q should be known", vt)
		}
	}
	if VolumeType("smb").Known() {
		t.Error(`"smb" should not be known`)
	}
}
