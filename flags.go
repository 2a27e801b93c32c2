package stdio

// flag is the Stream state bitset.
//
// A stream is open iff its flags are non-zero. Read-only streams carry
// flagRD, write-only streams flagWR. Streams opened for update carry flagRW
// plus at most one of flagRD/flagWR naming the current direction.
type flag uint32

const (
	flagLBF flag = 1 << iota // line buffered
	flagNBF                  // unbuffered
	flagRD                   // ok to read / reading
	flagWR                   // ok to write / writing
	flagRW                   // open for reading and writing
	flagEOF                  // end of input seen
	flagERR                  // error seen
	flagMBF                  // buffer owned by the stream
	flagAPP                  // append mode
	flagSTR                  // string target, no backend
	flagOPT                  // seek optimisation allowed
	flagNPT                  // never optimise seeks
	flagOFF                  // cached offset is valid
	flagALC                  // string target grows on demand

	// flagClaimed marks a slot handed out by the registry before the opener
	// binds real mode flags.
	flagClaimed flag = 1 << 31
)

func (f flag) has(bits flag) bool { return f&bits == bits }

func (f flag) any(bits flag) bool { return f&bits != 0 }

// BufferMode selects the buffering discipline of a stream.
type BufferMode int

const (
	FullyBuffered BufferMode = iota
	LineBuffered
	Unbuffered
)

// String returns the mode name.
func (m BufferMode) String() string {
	switch m {
	case FullyBuffered:
		return "full"
	case LineBuffered:
		return "line"
	case Unbuffered:
		return "none"
	default:
		return "unknown"
	}
}

// Whence values for [Stream.Seek]; identical to the io package constants.
const (
	SeekStart   = 0
	SeekCurrent = 1
	SeekEnd     = 2
)
