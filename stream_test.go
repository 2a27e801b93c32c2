package stdio_test

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bjaus/stdio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Fixtures
// ============================================================

func newRegistry(t *testing.T, opts ...stdio.Option) *stdio.Registry {
	t.Helper()
	reg, err := stdio.NewRegistry(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.CloseAll() })
	return reg
}

// recorder is a cookie sink that remembers every backend write.
type recorder struct {
	buf    bytes.Buffer
	writes int
}

var recorderFuncs = stdio.CookieFuncs{
	Write: func(c any, p []byte) (int, error) {
		r := c.(*recorder)
		r.writes++
		return r.buf.Write(p)
	},
}

func openRecorder(t *testing.T, reg *stdio.Registry, mode stdio.BufferMode) (*stdio.Stream, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := reg.OpenCookie(rec, recorderFuncs, "w")
	require.NoError(t, err)
	require.NoError(t, s.SetBuffer(nil, mode))
	return s, rec
}

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + i%26)
		if i%61 == 60 {
			b[i] = '\n'
		}
	}
	return b
}

func writeTemp(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

type failReader struct{ err error }

func (f failReader) Read([]byte) (int, error) { return 0, f.err }

// ============================================================
// Round trips
// ============================================================

func TestRoundTripAcrossBufferBoundaries(t *testing.T) {
	t.Parallel()
	size := stdio.DefaultConfig().BufferSize
	tests := map[string]int{
		"empty":       0,
		"one":         1,
		"cap minus 1": size - 1,
		"cap":         size,
		"cap plus 1":  size + 1,
		"several":     3*size + 17,
	}
	for name, n := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			reg := newRegistry(t)
			data := payload(n)

			w, mb, err := reg.OpenMemstream()
			require.NoError(t, err)
			for rest := data; len(rest) > 0; {
				k := min(len(rest), 7)
				got, err := w.Write(rest[:k])
				require.NoError(t, err)
				require.Equal(t, k, got)
				rest = rest[k:]
			}
			require.NoError(t, w.Close())
			assert.Equal(t, string(data), mb.String())

			r, err := reg.OpenReader(bytes.NewReader(data))
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, string(data), string(got))
			assert.True(t, r.AtEOF())
			require.NoError(t, r.Close())

			r, err = reg.OpenReader(bytes.NewReader(data))
			require.NoError(t, err)
			var byByte []byte
			for {
				c := r.Getc()
				if c == stdio.EOF {
					break
				}
				byByte = append(byByte, byte(c))
			}
			assert.Equal(t, string(data), string(byByte))
			assert.False(t, r.HasError())
		})
	}
}

func TestReadLargerThanBufferReadsDirect(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	data := payload(5000)
	r, err := reg.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)

	head := make([]byte, 10)
	_, err = r.Read(head)
	require.NoError(t, err)
	rest := make([]byte, 4990)
	n, err := r.Read(rest)
	require.NoError(t, err)
	assert.Equal(t, 4990, n)
	assert.Equal(t, string(data), string(head)+string(rest))
}

// ============================================================
// Buffering modes
// ============================================================

func TestBufferingModesProduceSameBytes(t *testing.T) {
	t.Parallel()
	want := "alpha\nbeta gamma\n" + strings.Repeat("z", 3000) + "\nx=7 tail"
	tests := map[string]stdio.BufferMode{
		"full": stdio.FullyBuffered,
		"line": stdio.LineBuffered,
		"none": stdio.Unbuffered,
	}
	for name, mode := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			reg := newRegistry(t)
			s, rec := openRecorder(t, reg, mode)
			assert.Equal(t, mode, s.Mode())

			_, err := s.WriteString("alpha\n")
			require.NoError(t, err)
			_, err = s.Writev([]byte("beta "), []byte("gamma\n"))
			require.NoError(t, err)
			_, err = s.Write(bytes.Repeat([]byte("z"), 3000))
			require.NoError(t, err)
			require.NoError(t, s.WriteByte('\n'))
			_, err = s.Printf("x=%d %s", 7, "tail")
			require.NoError(t, err)
			require.NoError(t, s.Close())

			assert.Equal(t, want, rec.buf.String())
		})
	}
}

func TestLineBufferedFlushesAtNewline(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, rec := openRecorder(t, reg, stdio.LineBuffered)

	_, err := s.WriteString("abc\nde")
	require.NoError(t, err)
	assert.Equal(t, "abc\n", rec.buf.String())

	require.NoError(t, s.WriteByte('f'))
	assert.Equal(t, "abc\n", rec.buf.String())
	require.NoError(t, s.WriteByte('\n'))
	assert.Equal(t, "abc\ndef\n", rec.buf.String())
}

func TestFullyBufferedHoldsUntilFlush(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, rec := openRecorder(t, reg, stdio.FullyBuffered)

	_, err := s.WriteString("one\ntwo\n")
	require.NoError(t, err)
	assert.Empty(t, rec.buf.String())
	assert.Equal(t, 8, s.Info().Pending)

	require.NoError(t, s.Flush())
	assert.Equal(t, "one\ntwo\n", rec.buf.String())
	assert.Equal(t, 1, rec.writes)
}

func TestUnbufferedPrintfIssuesOneWrite(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, rec := openRecorder(t, reg, stdio.Unbuffered)

	_, err := s.Printf("%s-%d-%s\n", "a", 1, "b")
	require.NoError(t, err)
	assert.Equal(t, "a-1-b\n", rec.buf.String())
	assert.Equal(t, 1, rec.writes)
	assert.Equal(t, int64(1), s.Info().Writes)
}

func TestSetBufferUserBuffer(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	rec := &recorder{}
	s, err := reg.OpenCookie(rec, recorderFuncs, "w")
	require.NoError(t, err)
	require.NoError(t, s.SetBuffer(make([]byte, 4), stdio.FullyBuffered))

	_, err = s.WriteString("abcdef")
	require.NoError(t, err)
	assert.Equal(t, "abcd", rec.buf.String())
	assert.Equal(t, 4, s.Info().BufSize)
}

func TestSetBufferAfterIOFails(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, _ := openRecorder(t, reg, stdio.FullyBuffered)
	_, err := s.WriteString("x")
	require.NoError(t, err)
	assert.ErrorIs(t, s.SetBuffer(nil, stdio.LineBuffered), stdio.ErrBufferInUse)
	assert.ErrorIs(t, s.SetBuffer(nil, stdio.BufferMode(9)), stdio.ErrInvalidArgument)
}

func TestBufferModeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "full", stdio.FullyBuffered.String())
	assert.Equal(t, "line", stdio.LineBuffered.String())
	assert.Equal(t, "none", stdio.Unbuffered.String())
	assert.Equal(t, "unknown", stdio.BufferMode(42).String())
}

func TestPurgeDropsPendingOutput(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, rec := openRecorder(t, reg, stdio.FullyBuffered)
	_, err := s.WriteString("discard me")
	require.NoError(t, err)
	require.NoError(t, s.Purge())
	_, err = s.WriteString("keep")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, "keep", rec.buf.String())
}

// ============================================================
// Fixed memory
// ============================================================

func TestMemoryCapacity(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		mode string
		want string
	}{
		"write only keeps terminator": {mode: "w", want: "abcdefg\x00"},
		"update fills region":         {mode: "w+", want: "abcdefgh"},
		"binary fills region":         {mode: "wb", want: "abcdefgh"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			reg := newRegistry(t)
			buf := make([]byte, 8)
			s, err := reg.OpenMemory(buf, tt.mode)
			require.NoError(t, err)

			n, err := s.WriteString("abcdefghij")
			require.NoError(t, err)
			assert.Equal(t, 10, n)

			err = s.Flush()
			assert.ErrorIs(t, err, stdio.ErrCapacityExceeded)
			assert.True(t, s.HasError())
			assert.Equal(t, tt.want, string(buf))
			_ = s.Close()
		})
	}
}

func TestMemoryTerminatesShortWrites(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	buf := []byte("xxxxxxxx")
	s, err := reg.OpenMemory(buf, "w")
	require.NoError(t, err)
	_, err = s.Printf("%d", 42)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, "42\x00xxxxx", string(buf))
}

func TestMemoryAppendStartsAtNUL(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	buf := []byte("ab\x00\x00\x00\x00\x00\x00")
	s, err := reg.OpenMemory(buf, "a")
	require.NoError(t, err)
	_, err = s.WriteString("cd")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, "abcd\x00", string(buf[:5]))
}

func TestMemoryReadAndSeek(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, err := reg.OpenMemory([]byte("hello world"), "r")
	require.NoError(t, err)

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))

	pos, err := s.Seek(6, stdio.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)
	assert.False(t, s.AtEOF())
	line, err := s.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "world", string(line))
}

func TestMemoryZeroSize(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	_, err := reg.OpenMemory(nil, "r")
	assert.ErrorIs(t, err, stdio.ErrInvalidArgument)
	assert.Equal(t, 0, reg.Len())
}

// ============================================================
// Memstream
// ============================================================

func TestMemstreamSeekPastEndZeroFills(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, mb, err := reg.OpenMemstream()
	require.NoError(t, err)

	_, err = s.WriteString("ab")
	require.NoError(t, err)
	_, err = s.Seek(4, stdio.SeekStart)
	require.NoError(t, err)
	_, err = s.WriteString("cd")
	require.NoError(t, err)
	require.NoError(t, s.Flush())

	assert.Equal(t, "ab\x00\x00cd", mb.String())
	assert.Equal(t, 6, mb.Len())
	assert.GreaterOrEqual(t, mb.Reallocs(), 1)
}

func TestMemstreamSizeOverflow(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, _, err := reg.OpenMemstream()
	require.NoError(t, err)

	_, err = s.Seek(math.MaxInt64-1, stdio.SeekStart)
	require.NoError(t, err)
	_, err = s.WriteString("abc")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Flush(), stdio.ErrAllocation)
	assert.True(t, s.HasError())
}

func TestMemstreamVisibleAfterFlush(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, mb, err := reg.OpenMemstream()
	require.NoError(t, err)
	_, err = s.Printf("%s=%d", "n", 3)
	require.NoError(t, err)
	assert.Equal(t, "", mb.String())
	require.NoError(t, s.Flush())
	assert.Equal(t, "n=3", mb.String())
}

// ============================================================
// Pushback
// ============================================================

func TestUngetcOrder(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, err := reg.OpenReader(strings.NewReader("abc"))
	require.NoError(t, err)

	assert.Equal(t, int('a'), s.Getc())
	assert.Equal(t, int('x'), s.Ungetc('x'))
	assert.Equal(t, int('y'), s.Ungetc('y'))
	assert.Equal(t, 2, s.Info().Pushback)

	var got []byte
	for c := s.Getc(); c != stdio.EOF; c = s.Getc() {
		got = append(got, byte(c))
	}
	assert.Equal(t, "yxbc", string(got))
}

func TestUngetcSameByteStepsBack(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, err := reg.OpenReader(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, int('a'), s.Getc())
	assert.Equal(t, int('a'), s.Ungetc('a'))
	assert.Equal(t, 0, s.Info().Pushback)
	line, err := s.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(line))
}

func TestUngetcEOF(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, err := reg.OpenReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, stdio.EOF, s.Getc())
	assert.True(t, s.AtEOF())
	assert.Equal(t, stdio.EOF, s.Ungetc(stdio.EOF))

	assert.Equal(t, int('q'), s.Ungetc('q'))
	assert.False(t, s.AtEOF())
	assert.Equal(t, int('q'), s.Getc())
}

func TestUngetcOnWriteOnlyFails(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, _ := openRecorder(t, reg, stdio.FullyBuffered)
	assert.Equal(t, stdio.EOF, s.Ungetc('a'))
	assert.True(t, s.HasError())
}

func TestSeekDiscardsPushback(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, err := reg.OpenFile(writeTemp(t, "0123456789"), "r")
	require.NoError(t, err)

	assert.Equal(t, int('0'), s.Getc())
	assert.Equal(t, int('z'), s.Ungetc('z'))
	_, err = s.Seek(0, stdio.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Info().Pushback)
	assert.Equal(t, int('0'), s.Getc())
}

// ============================================================
// End of input and errors
// ============================================================

func TestEOFIsSticky(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	chunks := []string{"ab", "", "cd"}
	s, err := reg.OpenFuncs(func(p []byte) (int, error) {
		if len(chunks) == 0 {
			return 0, io.EOF
		}
		c := chunks[0]
		chunks = chunks[1:]
		if c == "" {
			return 0, io.EOF
		}
		return copy(p, c), nil
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int('a'), s.Getc())
	assert.Equal(t, int('b'), s.Getc())
	assert.Equal(t, stdio.EOF, s.Getc())
	assert.True(t, s.AtEOF())
	assert.Equal(t, stdio.EOF, s.Getc())

	s.ClearErr()
	assert.False(t, s.AtEOF())
	assert.Equal(t, int('c'), s.Getc())
}

func TestEmptyPullsAreRetried(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)

	empties, sent := 5, false
	s, err := reg.OpenFuncs(func(p []byte) (int, error) {
		switch {
		case empties > 0:
			empties--
			return 0, nil
		case sent:
			return 0, io.EOF
		}
		sent = true
		return copy(p, "ok"), nil
	}, nil)
	require.NoError(t, err)
	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.False(t, s.HasError())

	stuck, err := reg.OpenFuncs(func([]byte) (int, error) { return 0, nil }, nil)
	require.NoError(t, err)
	_, err = stuck.ReadByte()
	assert.ErrorIs(t, err, io.ErrNoProgress)
	assert.True(t, stuck.HasError())
	assert.False(t, stuck.AtEOF())
}

func TestCookieEmptyReadIsEndOfInput(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, err := reg.OpenCookie(nil, stdio.CookieFuncs{
		Read: func(any, []byte) (int, error) { return 0, nil },
	}, "r")
	require.NoError(t, err)
	assert.Equal(t, stdio.EOF, s.Getc())
	assert.True(t, s.AtEOF())
	assert.False(t, s.HasError())
}

func TestReadErrorSetsErrorFlag(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	boom := errors.New("boom")
	s, err := reg.OpenReader(failReader{err: boom})
	require.NoError(t, err)

	_, err = s.ReadByte()
	assert.ErrorIs(t, err, boom)
	assert.True(t, s.HasError())
	assert.False(t, s.AtEOF())
	s.ClearErr()
	assert.False(t, s.HasError())
}

func TestDirectionErrors(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)

	r, err := reg.OpenReader(strings.NewReader("x"))
	require.NoError(t, err)
	_, err = r.WriteString("y")
	assert.ErrorIs(t, err, stdio.ErrNotWritable)
	assert.Equal(t, stdio.EOF, r.Putc('y'))

	w, _ := openRecorder(t, reg, stdio.FullyBuffered)
	_, err = w.ReadByte()
	assert.ErrorIs(t, err, stdio.ErrNotReadable)
}

func TestClosedStream(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, _ := openRecorder(t, reg, stdio.FullyBuffered)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.WriteString("x")
	assert.ErrorIs(t, err, stdio.ErrClosed)
	assert.ErrorIs(t, s.WriteByte('x'), stdio.ErrClosed)
	assert.Equal(t, stdio.EOF, s.Putc('y'))
	assert.False(t, s.HasError())
	assert.ErrorIs(t, s.Flush(), stdio.ErrClosed)
	assert.ErrorIs(t, s.Purge(), stdio.ErrClosed)
	_, err = s.Tell()
	assert.ErrorIs(t, err, stdio.ErrClosed)
	_, err = s.Seek(0, stdio.SeekStart)
	assert.ErrorIs(t, err, stdio.ErrClosed)
	_, err = s.ReadByte()
	assert.ErrorIs(t, err, stdio.ErrClosed)
	assert.Contains(t, s.String(), "closed")
}

// ============================================================
// Seeking
// ============================================================

func TestSeekWithinBufferIsIdempotent(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, err := reg.OpenFile(writeTemp(t, "0123456789abcdefghijklmnopqrstuvwxyz"), "r")
	require.NoError(t, err)

	assert.Equal(t, int('0'), s.Getc())
	pos, err := s.Seek(5, stdio.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pos)
	seeks := s.Info().Seeks

	for range 3 {
		pos, err = s.Seek(10, stdio.SeekStart)
		require.NoError(t, err)
		assert.Equal(t, int64(10), pos)
		assert.Equal(t, int('a'), s.Getc())
	}
	pos, err = s.Seek(-2, stdio.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(9), pos)
	assert.Equal(t, int('9'), s.Getc())

	assert.Equal(t, seeks, s.Info().Seeks)
	tell, err := s.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(10), tell)
}

func TestSeekToConsumedBufferEndSkipsBackend(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, err := reg.OpenFile(writeTemp(t, "0123456789"), "r")
	require.NoError(t, err)

	_, err = s.Seek(0, stdio.SeekStart)
	require.NoError(t, err)
	for range 10 {
		require.NotEqual(t, stdio.EOF, s.Getc())
	}
	before := s.Info()
	tell, err := s.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(10), tell)
	pos, err := s.Seek(tell, stdio.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos)
	assert.Equal(t, before.Seeks, s.Info().Seeks)
	assert.Equal(t, before.Reads, s.Info().Reads)

	assert.Equal(t, stdio.EOF, s.Getc())
	assert.True(t, s.AtEOF())
	assert.False(t, s.HasError())
}

func TestSeekEndAndRewind(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, err := reg.OpenFile(writeTemp(t, "hello"), "r")
	require.NoError(t, err)

	pos, err := s.Seek(-2, stdio.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pos)
	assert.Equal(t, int('l'), s.Getc())

	_, err = io.ReadAll(s)
	require.NoError(t, err)
	assert.True(t, s.AtEOF())
	require.NoError(t, s.Rewind())
	assert.False(t, s.AtEOF())
	assert.Equal(t, int('h'), s.Getc())
}

func TestSeekInvalid(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	s, err := reg.OpenFile(writeTemp(t, "abc"), "r")
	require.NoError(t, err)
	_, err = s.Seek(-1, stdio.SeekStart)
	assert.ErrorIs(t, err, stdio.ErrInvalidArgument)
	_, err = s.Seek(0, 7)
	assert.ErrorIs(t, err, stdio.ErrInvalidArgument)

	f, err := reg.OpenReader(strings.NewReader("abc"))
	require.NoError(t, err)
	_, err = f.Seek(0, stdio.SeekStart)
	assert.ErrorIs(t, err, stdio.ErrNotSeekable)
}

func TestUpdateModeSwitchesDirection(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	path := writeTemp(t, "abcdef")
	s, err := reg.OpenFile(path, "r+")
	require.NoError(t, err)

	assert.Equal(t, int('a'), s.Getc())
	assert.Equal(t, "reading", s.Info().Direction)
	_, err = s.Seek(0, stdio.SeekCurrent)
	require.NoError(t, err)
	_, err = s.WriteString("XY")
	require.NoError(t, err)
	assert.Equal(t, "writing", s.Info().Direction)
	_, err = s.Seek(0, stdio.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int('d'), s.Getc())
	require.NoError(t, s.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "aXYdef", string(got))
}

func TestAppendModeWritesAtEnd(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	path := writeTemp(t, "head\n")
	s, err := reg.OpenFile(path, "a")
	require.NoError(t, err)
	_, err = s.Printf("%s\n", "tail")
	require.NoError(t, err)
	assert.Equal(t, "wa", s.Info().Access)
	require.NoError(t, s.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "head\ntail\n", string(got))
}

// ============================================================
// Lines
// ============================================================

func TestReadLine(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	long := strings.Repeat("q", 2500)
	s, err := reg.OpenReader(strings.NewReader("one\n" + long + "\nlast"))
	require.NoError(t, err)

	var lines []string
	for {
		line, err := s.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		lines = append(lines, string(line))
	}
	assert.Equal(t, []string{"one\n", long + "\n", "last"}, lines)
}

// ============================================================
// Files and reopen
// ============================================================

func TestOpenFileModes(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	s, err := reg.OpenFile(path, "wx")
	require.NoError(t, err)
	_, err = s.WriteString("first")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = reg.OpenFile(path, "wx")
	assert.ErrorIs(t, err, os.ErrExist)

	_, err = reg.OpenFile(filepath.Join(dir, "missing"), "r")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = reg.OpenFile(path, "rw")
	assert.ErrorIs(t, err, stdio.ErrInvalidMode)
	assert.Equal(t, 0, reg.Len())
}

func TestReopen(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := writeTemp(t, "from b")

	s, err := reg.OpenFile(first, "w")
	require.NoError(t, err)
	slot := s.Info().Slot
	_, err = s.WriteString("pending")
	require.NoError(t, err)

	require.NoError(t, s.Reopen(second, "r"))
	assert.Equal(t, slot, s.Info().Slot)
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "from b", string(got))

	written, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "pending", string(written))

	err = s.Reopen(filepath.Join(dir, "nope", "x"), "r")
	require.Error(t, err)
	assert.ErrorIs(t, s.Flush(), stdio.ErrClosed)
}
