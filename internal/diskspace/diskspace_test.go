package diskspace

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAvailable(t *testing.T) {
	t.Run("temp dir", func(t *testing.T) {
		n, err := Available(t.TempDir())
		if err != nil {
			t.Fatalf("Available failed: %v", err)
		}
		if n < 0 {
			t.Errorf("Available = %d, want >= 0", n)
		}
	})

	t.Run("missing dir", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "does", "not", "exist")
		_, err := Available(missing)
		var probeErr *ProbeError
		if !errors.As(err, &probeErr) {
			t.Fatalf("Available(missing) error = %v, want *ProbeError", err)
		}
		if probeErr.Path != missing {
			t.Errorf("ProbeError.Path = %q, want %q", probeErr.Path, missing)
		}
	})
}
