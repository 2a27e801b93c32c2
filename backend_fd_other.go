//go:build !unix

package stdio

import (
	"errors"
	"fmt"
)

var errNoDescriptors = errors.New("descriptor streams are not supported on this platform")

func openPath(path string, _ openMode) (Backend, error) {
	return nil, fmt.Errorf("open %s: %w", path, errNoDescriptors)
}

func adoptFD(fd int, _ openMode) (Backend, error) {
	return nil, fmt.Errorf("fdopen %d: %w", fd, errNoDescriptors)
}

// Fileno reports false: this platform has no descriptor backend.
func (s *Stream) Fileno() (int, bool) { return -1, false }

func stdBackend(int) Backend { return nil }
