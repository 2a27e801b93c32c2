package stdio

import (
	"fmt"
	"io"
)

// CookieFuncs are the callbacks of a cookie stream. Each receives the cookie
// passed to [Registry.OpenCookie].
//
// Read follows the fopencookie contract rather than io.Reader: a result of
// (0, nil) is end of input, the same as io.EOF. A nil Read makes reads
// report end of input. A nil Write discards output.
// A nil Seek makes the stream unseekable. A nil Close is a no-op.
type CookieFuncs struct {
	Read  func(cookie any, p []byte) (int, error)
	Write func(cookie any, p []byte) (int, error)
	Seek  func(cookie any, offset int64, whence int) (int64, error)
	Close func(cookie any) error
}

type cookieBackend struct {
	cookie any
	fns    CookieFuncs
	caps   Caps
}

func (b *cookieBackend) kind() string { return "cookie" }

func (b *cookieBackend) Caps() Caps { return b.caps }

func (b *cookieBackend) Read(p []byte) (int, error) {
	if b.fns.Read == nil {
		return 0, io.EOF
	}
	n, err := b.fns.Read(b.cookie, p)
	if n > 0 {
		return n, nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

func (b *cookieBackend) Write(p []byte) (int, error) {
	if b.fns.Write == nil {
		return len(p), nil
	}
	return b.fns.Write(b.cookie, p)
}

func (b *cookieBackend) Seek(offset int64, whence int) (int64, error) {
	if b.fns.Seek == nil {
		return -1, fmt.Errorf("%w: cookie stream", ErrNotSeekable)
	}
	return b.fns.Seek(b.cookie, offset, whence)
}

func (b *cookieBackend) Close() error {
	if b.fns.Close == nil {
		return nil
	}
	return b.fns.Close(b.cookie)
}
