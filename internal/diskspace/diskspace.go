// Package diskspace reports free space on the filesystem backing a mounted
// volume. The value is recorded on a volume's resolved display root.
package diskspace

import "fmt"

// ProbeError wraps a failed filesystem query.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("disk space probe failed for %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Available returns the bytes available to the current user on the
// filesystem containing dir. dir must exist.
func Available(dir string) (int64, error) {
	n, err := available(dir)
	if err != nil {
		return 0, &ProbeError{Path: dir, Err: err}
	}
	return n, nil
}
