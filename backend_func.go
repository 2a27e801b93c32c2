package stdio

import (
	"fmt"
	"io"
)

// maxEmptyReads bounds how many (0, nil) results a pull function may return
// in a row before the read fails with io.ErrNoProgress.
const maxEmptyReads = 100

// funcBackend adapts a pull function, a push function, or both. It has no
// notion of position.
type funcBackend struct {
	pull func(p []byte) (int, error)
	push func(p []byte) (int, error)
}

func (b *funcBackend) kind() string { return "funcs" }

func (b *funcBackend) Caps() Caps {
	return Caps{Read: b.pull != nil, Write: b.push != nil, Binary: true}
}

func (b *funcBackend) Read(p []byte) (int, error) {
	if b.pull == nil {
		return 0, ErrNotReadable
	}
	for range maxEmptyReads {
		n, err := b.pull(p)
		if n > 0 {
			return n, nil
		}
		if err != nil {
			return 0, err
		}
	}
	return 0, io.ErrNoProgress
}

func (b *funcBackend) Write(p []byte) (int, error) {
	if b.push == nil {
		return 0, ErrNotWritable
	}
	return b.push(p)
}

func (b *funcBackend) Seek(int64, int) (int64, error) {
	return -1, fmt.Errorf("%w: function stream", ErrNotSeekable)
}

func (b *funcBackend) Close() error { return nil }
