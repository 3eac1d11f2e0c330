package navigation

import (
	"errors"
	"fmt"

	"github.com/rescale/navlist/internal/volumes"
)

var (
	// ErrPrecondition marks caller-supplied data that would corrupt identity
	// invariants: a malformed volume permutation or unsorted shortcuts.
	ErrPrecondition = errors.New("precondition violation")

	// ErrUnknownVolumeType marks a volume the layout compiler has no tier for.
	ErrUnknownVolumeType = errors.New("unknown volume type")

	// ErrFakeKindMismatch is returned when a fake root is assigned to the wrong slot.
	ErrFakeKindMismatch = errors.New("fake root kind does not match slot")

	// ErrModelClosed is returned by mutation entry points after Close.
	ErrModelClosed = errors.New("navigation model closed")
)

// PreconditionError describes rejected input to a reconciler.
type PreconditionError struct {
	List   string // "volumes" or "shortcuts"
	Index  int    // offending position, or -1
	Reason string
}

func (e *PreconditionError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s list at index %d: %s", ErrPrecondition, e.List, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s: %s list: %s", ErrPrecondition, e.List, e.Reason)
}

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }

// UnknownVolumeTypeError reports a volume excluded from layout.
type UnknownVolumeTypeError struct {
	VolumeID string
	Type     volumes.VolumeType
}

func (e *UnknownVolumeTypeError) Error() string {
	return fmt.Sprintf("%s %q for volume %s", ErrUnknownVolumeType, e.Type, e.VolumeID)
}

func (e *UnknownVolumeTypeError) Is(target error) bool { return target == ErrUnknownVolumeType }
