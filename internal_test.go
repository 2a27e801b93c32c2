package stdio

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		mode  string
		want  openMode
		flags flag
	}{
		"r":   {mode: "r", want: openMode{read: true}, flags: flagRD},
		"w":   {mode: "w", want: openMode{write: true, create: true, trunc: true}, flags: flagWR},
		"a":   {mode: "a", want: openMode{write: true, create: true, append: true}, flags: flagWR | flagAPP},
		"r+":  {mode: "r+", want: openMode{read: true, write: true}, flags: flagRW},
		"w+b": {mode: "w+b", want: openMode{read: true, write: true, create: true, trunc: true, binary: true}, flags: flagRW},
		"a+":  {mode: "a+", want: openMode{read: true, write: true, create: true, append: true}, flags: flagRW | flagAPP},
		"wxe": {mode: "wxe", want: openMode{write: true, create: true, trunc: true, excl: true}, flags: flagWR},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := parseMode(tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.flags, got.streamFlags())
		})
	}
}

func TestParseDirective(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		format string
		want   directive
	}{
		"plain": {
			format: "%d",
			want:   directive{prec: -1, widthArg: -1, precArg: -1, conv: 'd', end: 2},
		},
		"everything": {
			format: "%2$-+ 0#'12.5lld",
			want: directive{
				argn: 2, flags: pLeft | pPlus | pSpace | pZero | pAlt | pGroup,
				width: 12, widthArg: -1, prec: 5, precArg: -1, size: lenLL, conv: 'd', end: 16,
			},
		},
		"stars": {
			format: "%*.*f",
			want:   directive{prec: -1, widthArg: 0, precArg: 0, conv: 'f', end: 5},
		},
		"positional stars": {
			format: "%3$*1$.*2$f",
			want:   directive{argn: 3, prec: -1, widthArg: 1, precArg: 2, conv: 'f', end: 11},
		},
		"empty precision": {
			format: "%.f",
			want:   directive{prec: 0, widthArg: -1, precArg: -1, conv: 'f', end: 3},
		},
		"hh": {
			format: "%hhx",
			want:   directive{prec: -1, widthArg: -1, precArg: -1, size: lenHH, conv: 'x', end: 4},
		},
		"unterminated": {
			format: "%5",
			want:   directive{width: 5, prec: -1, widthArg: -1, precArg: -1, end: 2},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := parseDirective(tt.format, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDirectiveOverflow(t *testing.T) {
	t.Parallel()
	_, err := parseDirective("%99999999999d", 1)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = parseDirective("%*0$d", 1)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestGroup(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		body string
		end  int
		want string
	}{
		"short":    {body: "123", end: 3, want: "123"},
		"four":     {body: "1234", end: 4, want: "1,234"},
		"seven":    {body: "1234567", end: 7, want: "1,234,567"},
		"fraction": {body: "12345.678", end: 5, want: "12,345.678"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(group([]byte(tt.body), tt.end, ",")))
		})
	}
}

func TestSignExtendAndTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(-1), signExtend(0xff, 8))
	assert.Equal(t, int64(127), signExtend(0x7f, 8))
	assert.Equal(t, int64(-2), signExtend(^uint64(1), 64))
	assert.Equal(t, uint64(0xff), truncate(^uint64(0), 8))
	assert.Equal(t, ^uint64(0), truncate(^uint64(0), 64))
}

func TestFloatHelpers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1.5", string(trimFraction([]byte("1.50000"))))
	assert.Equal(t, "2", string(trimFraction([]byte("2.000"))))
	assert.Equal(t, "1e-05", string(trimFraction([]byte("1.00000e-05"))))
	assert.Equal(t, "1.p+0", string(ensurePoint([]byte("1p+0"), 'p')))
	assert.Equal(t, "1p+10", string(shortExponent([]byte("1p+10"))))
	assert.Equal(t, "1p-3", string(shortExponent([]byte("1p-03"))))
	assert.Equal(t, -4, exponent([]byte("1.2e-04")))
}

func TestGrowingTargetReallocatesLogarithmically(t *testing.T) {
	t.Parallel()
	const n = 200_000
	s := newGrowingTarget()
	for i := range n {
		require.NoError(t, s.putc(byte('a'+i%26)))
	}
	assert.Equal(t, n, s.p)
	assert.Equal(t, byte('a'), s.buf[0])
	assert.Equal(t, byte('a'+(n-1)%26), s.buf[n-1])

	// Growth by half again from 128 bytes needs about log1.5(n/128) steps.
	limit := 2 * bits.Len(uint(n/asprintfInitial))
	assert.Positive(t, s.stats.reallocs)
	assert.LessOrEqual(t, s.stats.reallocs, limit)
}

func TestStringTargetCountsOverflow(t *testing.T) {
	t.Parallel()
	dst := make([]byte, 4)
	s := newStringTarget(dst)
	n, err := s.doprnt("%s", []any{"abcdefgh"})
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, 3, s.p)
	assert.Equal(t, "abc", string(dst[:3]))
}

func TestArgTableScan(t *testing.T) {
	t.Parallel()
	tbl := argTable{args: []any{1, "x"}}
	require.NoError(t, tbl.scan("%2$s %1$d %1$*1$d"))
	assert.True(t, tbl.scanned)

	tbl = argTable{args: []any{1}}
	assert.ErrorIs(t, tbl.scan("%1$d %1$f"), ErrInvalidFormat)
}

func TestUnbufferedPrintfKeepsStreamState(t *testing.T) {
	t.Parallel()
	reg, err := NewRegistry()
	require.NoError(t, err)
	var sink []byte
	s, err := reg.OpenFuncs(nil, func(p []byte) (int, error) {
		sink = append(sink, p...)
		return len(p), nil
	})
	require.NoError(t, err)
	require.NoError(t, s.SetBuffer(nil, Unbuffered))

	_, err = s.Printf("%d-%d", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "1-2", string(sink))
	assert.True(t, s.flags.has(flagNBF))
	assert.Equal(t, 0, s.p)
	assert.False(t, s.flags.has(flagOFF))
}

func TestFlushReturnsReadAhead(t *testing.T) {
	t.Parallel()
	reg, err := NewRegistry()
	require.NoError(t, err)
	mem := []byte("0123456789")
	s, err := reg.OpenMemory(mem, "r")
	require.NoError(t, err)

	c, err := s.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('0'), c)
	require.NoError(t, s.ungetc('z'))

	require.NoError(t, s.Flush())
	assert.Equal(t, 0, s.r)
	assert.Equal(t, []byte{'z'}, s.ub)
	b := s.backend.(*memBackend)
	assert.Equal(t, int64(1), b.off)
}
