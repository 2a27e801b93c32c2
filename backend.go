package stdio

// Caps describes what a backend supports.
type Caps struct {
	Read   bool
	Write  bool
	Seek   bool
	Append bool
	Binary bool
}

// Backend is the byte source or sink bound to a Stream.
//
// The set of backends is closed: descriptors ([Registry.OpenFile],
// [Registry.OpenFD]), fixed memory regions ([Registry.OpenMemory]), growable
// memory ([Registry.OpenMemstream]), pull/push function pairs
// ([Registry.OpenFuncs]) and cookie quadruples ([Registry.OpenCookie]). The
// kind is chosen when the stream is opened and never changes.
//
// Read returns (0, io.EOF) at end of input. Write may return a short count
// with a nil error; the stream retries the remainder. Seek returns
// [ErrNotSeekable] when the medium has no position. Close is called at most
// once. A backend must not retain p beyond a single Read or Write call.
type Backend interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Close() error
	Caps() Caps

	kind() string
}

// statInfo is the fstat metadata a backend may expose.
type statInfo struct {
	blksize int
	size    int64
	regular bool
	tty     bool
}

// stater is implemented by backends backed by a real file.
type stater interface {
	stat() (statInfo, error)
}
