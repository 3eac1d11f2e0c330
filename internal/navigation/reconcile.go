package navigation

import (
	"fmt"

	"github.com/rescale/navlist/internal/events"
	"github.com/rescale/navlist/internal/shortcuts"
	"github.com/rescale/navlist/internal/volumes"
)

// ReconcileVolumes rebuilds the volume list after a mount change.
//
// change is the permutation reported by the mount subsystem over prev and
// records is the volume list it now holds. Every volume that moved keeps its
// *Volume instance (refreshed in place from its new record); slots nothing
// moved into get a volume from build. The returned list's permutation is
// change itself.
func ReconcileVolumes(prev []*Volume, change events.Permutation, records []volumes.Info, build func(volumes.Info) *Volume) ([]*Volume, error) {
	if len(change.Permutation) != len(prev) {
		return nil, &PreconditionError{List: "volumes", Index: -1,
			Reason: fmt.Sprintf("permutation has %d entries for %d volumes", len(change.Permutation), len(prev))}
	}
	if change.NewLength != len(records) {
		return nil, &PreconditionError{List: "volumes", Index: -1,
			Reason: fmt.Sprintf("new length %d but source holds %d volumes", change.NewLength, len(records))}
	}

	next := make([]*Volume, change.NewLength)
	for i, target := range change.Permutation {
		if target < 0 {
			if target != -1 {
				return nil, &PreconditionError{List: "volumes", Index: i, Reason: fmt.Sprintf("invalid target %d", target)}
			}
			continue
		}
		if target >= change.NewLength {
			return nil, &PreconditionError{List: "volumes", Index: i, Reason: fmt.Sprintf("target %d out of range", target)}
		}
		if next[target] != nil {
			return nil, &PreconditionError{List: "volumes", Index: i, Reason: fmt.Sprintf("target %d used twice", target)}
		}
		if VolumeKey(records[target]) != prev[i].Key() {
			return nil, &PreconditionError{List: "volumes", Index: i,
				Reason: fmt.Sprintf("%s moved to slot %d holding %s", prev[i].Key(), target, VolumeKey(records[target]))}
		}
		next[target] = prev[i]
	}

	// Validation is complete; only now touch instances.
	for i, v := range next {
		if v != nil {
			v.refresh(records[i])
			continue
		}
		next[i] = build(records[i])
	}
	return next, nil
}

// ReconcileShortcuts rebuilds the shortcut list from the store's current
// entries. Both prev and next must be strictly increasing under compare;
// next is checked and rejected otherwise. The returned permutation maps prev
// indexes onto the new list.
func ReconcileShortcuts(prev []*Shortcut, next []shortcuts.Entry, compare func(a, b shortcuts.Entry) int, build func(shortcuts.Entry) *Shortcut) ([]*Shortcut, events.Permutation, error) {
	for i := 1; i < len(next); i++ {
		if compare(next[i-1], next[i]) >= 0 {
			return nil, events.Permutation{}, &PreconditionError{List: "shortcuts", Index: i,
				Reason: fmt.Sprintf("%q is not ordered after %q", next[i].URL, next[i-1].URL)}
		}
	}

	out := make([]*Shortcut, 0, len(next))
	perm := make([]int, 0, len(prev))
	type match struct {
		item  *Shortcut
		entry shortcuts.Entry
	}
	var matched []match

	newIdx, oldIdx := 0, 0
	for newIdx < len(next) && oldIdx < len(prev) {
		cmp := compare(next[newIdx], prev[oldIdx].Entry())
		switch {
		case cmp > 0:
			// prev[oldIdx] was removed.
			perm = append(perm, -1)
			oldIdx++
		case cmp == 0:
			perm = append(perm, len(out))
			out = append(out, prev[oldIdx])
			matched = append(matched, match{prev[oldIdx], next[newIdx]})
			oldIdx++
			newIdx++
		default:
			out = append(out, build(next[newIdx]))
			newIdx++
		}
	}
	for ; newIdx < len(next); newIdx++ {
		out = append(out, build(next[newIdx]))
	}
	for ; oldIdx < len(prev); oldIdx++ {
		perm = append(perm, -1)
	}

	for _, m := range matched {
		m.item.refresh(m.entry)
	}
	return out, events.Permutation{NewLength: len(out), Permutation: perm}, nil
}
