//go:build unix

package stdio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// fdBackend moves bytes through a raw file descriptor.
type fdBackend struct {
	fd   int
	caps Caps
	own  bool
}

func (b *fdBackend) kind() string { return "fd" }

func (b *fdBackend) Caps() Caps { return b.caps }

func (b *fdBackend) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(b.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("read fd %d: %w", b.fd, err)
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (b *fdBackend) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(b.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			if n < 0 {
				n = 0
			}
			return n, fmt.Errorf("write fd %d: %w", b.fd, err)
		}
		return n, nil
	}
}

func (b *fdBackend) Seek(offset int64, whence int) (int64, error) {
	off, err := unix.Seek(b.fd, offset, whence)
	switch {
	case err == unix.ESPIPE:
		return -1, fmt.Errorf("%w: fd %d", ErrNotSeekable, b.fd)
	case err == unix.EINVAL:
		return -1, fmt.Errorf("%w: seek fd %d to %d", ErrInvalidArgument, b.fd, offset)
	case err != nil:
		return -1, fmt.Errorf("seek fd %d: %w", b.fd, err)
	}
	return off, nil
}

func (b *fdBackend) Close() error {
	if !b.own {
		return nil
	}
	if err := unix.Close(b.fd); err != nil {
		return fmt.Errorf("close fd %d: %w", b.fd, err)
	}
	return nil
}

func (b *fdBackend) stat() (statInfo, error) {
	var st unix.Stat_t
	for {
		err := unix.Fstat(b.fd, &st)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return statInfo{}, err
		}
		break
	}
	info := statInfo{
		blksize: int(st.Blksize),
		size:    st.Size,
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		info.regular = true
	case unix.S_IFCHR:
		info.tty = isatty(b.fd)
	}
	return info, nil
}

// openPath opens path with the access implied by m.
func openPath(path string, m openMode) (Backend, error) {
	oflags := unix.O_CLOEXEC
	switch {
	case m.read && m.write:
		oflags |= unix.O_RDWR
	case m.write:
		oflags |= unix.O_WRONLY
	default:
		oflags |= unix.O_RDONLY
	}
	if m.create {
		oflags |= unix.O_CREAT
	}
	if m.trunc {
		oflags |= unix.O_TRUNC
	}
	if m.append {
		oflags |= unix.O_APPEND
	}
	if m.excl {
		oflags |= unix.O_EXCL
	}

	var fd int
	for {
		var err error
		fd, err = unix.Open(path, oflags, 0o666)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, &os.PathError{Op: "open", Path: path, Err: err}
		}
		break
	}
	return newFDBackend(fd, m, true), nil
}

// adoptFD binds an already open descriptor after checking that its access
// mode permits m.
func adoptFD(fd int, m openMode) (Backend, error) {
	fl, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return nil, fmt.Errorf("fdopen %d: %w", fd, err)
	}
	acc := fl & unix.O_ACCMODE
	switch {
	case acc == unix.O_RDWR:
	case m.read && m.write:
		return nil, fmt.Errorf("%w: fd %d is not open for update", ErrInvalidMode, fd)
	case m.read && acc != unix.O_RDONLY:
		return nil, fmt.Errorf("%w: fd %d is not readable", ErrInvalidMode, fd)
	case m.write && acc != unix.O_WRONLY:
		return nil, fmt.Errorf("%w: fd %d is not writable", ErrInvalidMode, fd)
	}
	b := newFDBackend(fd, m, true)
	b.caps.Append = fl&unix.O_APPEND != 0
	return b, nil
}

func newFDBackend(fd int, m openMode, own bool) *fdBackend {
	b := &fdBackend{
		fd:  fd,
		own: own,
		caps: Caps{
			Read:   m.read,
			Write:  m.write,
			Append: m.append,
			Binary: true,
		},
	}
	_, err := unix.Seek(fd, 0, unix.SEEK_CUR)
	b.caps.Seek = !errors.Is(err, unix.ESPIPE)
	return b
}

// Fileno returns the descriptor of a stream opened over one.
func (s *Stream) Fileno() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.backend.(*fdBackend); ok {
		return b.fd, true
	}
	return -1, false
}

func stdBackend(fd int) Backend {
	m := openMode{read: fd == 0, write: fd != 0}
	return newFDBackend(fd, m, false)
}
