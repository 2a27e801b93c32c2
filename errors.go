package stdio

import "errors"

// Sentinel errors for programmatic error handling.
//
// End of input is reported with [io.EOF]; it is not an error condition and
// is tracked separately from the sticky error flag (see [Stream.AtEOF] and
// [Stream.HasError]).
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidMode      = errors.New("invalid mode")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrNotSeekable      = errors.New("stream not seekable")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrClosed           = errors.New("stream closed")
	ErrNotReadable      = errors.New("stream not open for reading")
	ErrNotWritable      = errors.New("stream not open for writing")
	ErrAllocation       = errors.New("allocation failed")
	ErrBufferInUse      = errors.New("buffer already in use")
)

// EOF is the sentinel returned by the int-valued byte functions ([Stream.Getc],
// [Stream.Putc], [Stream.Ungetc]) on both end of input and failure. Callers
// disambiguate with [Stream.AtEOF] and [Stream.HasError].
const EOF = -1
