package stdio

import (
	"fmt"
	"io"
	"reflect"
	"unicode/utf8"
)

// scanner tracks one formatted read.
type scanner struct {
	s     *Stream
	nread int
	err   error
	point byte
}

// get consumes one byte. It reports false at end of input or on a read
// error, which is remembered.
func (sc *scanner) get() (byte, bool) {
	c, err := sc.s.getc()
	if err != nil {
		if err != io.EOF && sc.err == nil {
			sc.err = err
		}
		return 0, false
	}
	sc.nread++
	return c, true
}

// unget returns consumed bytes to the stream so the next get sees b[0].
func (sc *scanner) unget(b ...byte) {
	for i := len(b) - 1; i >= 0; i-- {
		_ = sc.s.ungetc(b[i])
		sc.nread--
	}
}

// skipSpace consumes white space.
func (sc *scanner) skipSpace() {
	for {
		c, ok := sc.get()
		if !ok {
			return
		}
		if !isSpace(c) {
			sc.unget(c)
			return
		}
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// scanFailure distinguishes the ways a conversion can stop.
type scanFailure int

const (
	scanOK scanFailure = iota
	scanInput
	scanMatch
)

// Scanf reads input according to format and stores converted values through
// the pointers in args. It returns the number of values assigned.
//
// If input ends before the first conversion completes, Scanf returns
// (0, io.EOF). A mismatch stops the scan and leaves the offending byte
// unread. Suppressed conversions (%*d) and %n are not counted. Integer
// targets may be any integer pointer; the value is truncated to fit.
func (s *Stream) Scanf(format string, args ...any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rsetup(); err != nil {
		return 0, err
	}
	return s.doscan(format, args)
}

// Sscanf scans str according to format.
func Sscanf(str, format string, args ...any) (int, error) {
	s := &Stream{flags: flagRD | flagSTR, buf: []byte(str), r: len(str)}
	return s.doscan(format, args)
}

func (s *Stream) doscan(format string, args []any) (int, error) {
	sc := scanner{s: s, point: '.'}
	if s.cfg != nil && len(s.cfg.DecimalPoint) == 1 {
		sc.point = s.cfg.DecimalPoint[0]
	}
	nassigned, nconversions, next := 0, 0, 0

	fail := func(f scanFailure) (int, error) {
		if sc.err != nil {
			return nassigned, sc.err
		}
		if f == scanInput && nconversions == 0 {
			return 0, io.EOF
		}
		return nassigned, nil
	}

	for i := 0; i < len(format); {
		c := format[i]
		i++
		if isSpace(c) {
			sc.skipSpace()
			continue
		}
		if c != '%' {
			if f := sc.literal(c); f != scanOK {
				return fail(f)
			}
			continue
		}

		suppress := false
		if i < len(format) && format[i] == '*' {
			suppress = true
			i++
		}
		width, j, err := atoi(format, i)
		if err != nil {
			return nassigned, err
		}
		i = j
		for i < len(format) && isLengthMod(format[i]) {
			i++
		}
		wide := i > 0 && format[i-1] == 'l'
		if i >= len(format) {
			return nassigned, fmt.Errorf("%w: incomplete conversion", ErrInvalidFormat)
		}
		conv := format[i]
		i++

		var dst any
		if !suppress && conv != '%' {
			if next >= len(args) {
				return nassigned, fmt.Errorf("%w: missing argument %d", ErrInvalidArgument, next+1)
			}
			dst = args[next]
			next++
		}

		var f scanFailure
		switch conv {
		case '%':
			f = sc.literal('%')
			if f != scanOK {
				return fail(f)
			}
			continue
		case 'n':
			if !suppress {
				if err := storeInt(dst, uint64(sc.nread)); err != nil {
					return nassigned, err
				}
			}
			continue
		case 'c', 'C':
			if width == 0 {
				width = 1
			}
			f, err = sc.scanChars(width, wide || conv == 'C', dst)
		case 's', 'S':
			sc.skipSpace()
			f, err = sc.scanString(width, wide || conv == 'S', dst)
		case '[':
			var set *scanset
			set, i, err = parseScanset(format, i)
			if err != nil {
				return nassigned, err
			}
			f, err = sc.scanSet(set, width, wide, dst)
		case 'd', 'u':
			sc.skipSpace()
			f, err = sc.scanInt(10, conv == 'd', width, dst)
		case 'i':
			sc.skipSpace()
			f, err = sc.scanInt(0, true, width, dst)
		case 'o':
			sc.skipSpace()
			f, err = sc.scanInt(8, false, width, dst)
		case 'x', 'X', 'p':
			sc.skipSpace()
			f, err = sc.scanInt(16, false, width, dst)
		case 'e', 'E', 'f', 'F', 'g', 'G', 'a', 'A':
			sc.skipSpace()
			f, err = sc.scanFloat(width, dst)
		default:
			return nassigned, fmt.Errorf("%w: unknown conversion %%%c", ErrInvalidFormat, conv)
		}
		if err != nil {
			return nassigned, err
		}
		if f != scanOK {
			return fail(f)
		}
		nconversions++
		if !suppress {
			nassigned++
		}
	}
	return nassigned, sc.err
}

func isLengthMod(c byte) bool {
	switch c {
	case 'h', 'l', 'q', 'j', 't', 'z', 'L':
		return true
	}
	return false
}

// literal matches one ordinary format byte against the input.
func (sc *scanner) literal(want byte) scanFailure {
	c, ok := sc.get()
	if !ok {
		return scanInput
	}
	if c != want {
		sc.unget(c)
		return scanMatch
	}
	return scanOK
}

// scanChars reads exactly width bytes, or width characters when wide,
// without skipping white space. A short read at end of input stores what
// was read.
func (sc *scanner) scanChars(width int, wide bool, dst any) (scanFailure, error) {
	if wide {
		var runes []rune
		for len(runes) < width {
			r, ok := sc.getRune()
			if !ok {
				break
			}
			runes = append(runes, r)
		}
		if len(runes) == 0 {
			return scanInput, nil
		}
		return scanOK, storeRunes(dst, runes)
	}
	var buf []byte
	for len(buf) < width {
		c, ok := sc.get()
		if !ok {
			break
		}
		buf = append(buf, c)
	}
	if len(buf) == 0 {
		return scanInput, nil
	}
	return scanOK, storeBytes(dst, buf)
}

// scanString reads a run of non-space bytes.
func (sc *scanner) scanString(width int, wide bool, dst any) (scanFailure, error) {
	var buf []byte
	for width == 0 || len(buf) < width {
		c, ok := sc.get()
		if !ok {
			break
		}
		if isSpace(c) {
			sc.unget(c)
			break
		}
		buf = append(buf, c)
	}
	if len(buf) == 0 {
		return scanInput, nil
	}
	if wide {
		return scanOK, storeRunes(dst, []rune(string(buf)))
	}
	return scanOK, storeBytes(dst, buf)
}

// scanset is the byte class of a %[ conversion.
type scanset struct {
	member [256]bool
}

// parseScanset parses the class after "%[" and returns the index just past
// the closing bracket. A ']' first in the class, after an optional '^', is
// a member; a '-' between two bytes is a range.
func parseScanset(format string, i int) (*scanset, int, error) {
	set := &scanset{}
	negate := false
	if i < len(format) && format[i] == '^' {
		negate = true
		i++
	}
	start := i
	for ; i < len(format); i++ {
		c := format[i]
		if c == ']' && i > start {
			break
		}
		if c == '-' && i > start && i+1 < len(format) && format[i+1] != ']' {
			lo, hi := format[i-1], format[i+1]
			if lo <= hi {
				for b := int(lo); b <= int(hi); b++ {
					set.member[b] = true
				}
			} else {
				set.member['-'] = true
				set.member[hi] = true
			}
			i++
			continue
		}
		set.member[c] = true
	}
	if i >= len(format) {
		return nil, i, fmt.Errorf("%w: unterminated scanset", ErrInvalidFormat)
	}
	if negate {
		for b := range set.member {
			set.member[b] = !set.member[b]
		}
	}
	return set, i + 1, nil
}

// scanSet reads the longest run of bytes in set. An empty match is a
// matching failure.
func (sc *scanner) scanSet(set *scanset, width int, wide bool, dst any) (scanFailure, error) {
	var buf []byte
	for width == 0 || len(buf) < width {
		c, ok := sc.get()
		if !ok {
			break
		}
		if !set.member[c] {
			sc.unget(c)
			break
		}
		buf = append(buf, c)
	}
	if len(buf) == 0 {
		if sc.s.flags.has(flagEOF) {
			return scanInput, nil
		}
		return scanMatch, nil
	}
	if wide {
		return scanOK, storeRunes(dst, []rune(string(buf)))
	}
	return scanOK, storeBytes(dst, buf)
}

// getRune consumes one UTF-8 encoded character. Invalid sequences yield
// utf8.RuneError for their first byte.
func (sc *scanner) getRune() (rune, bool) {
	c, ok := sc.get()
	if !ok {
		return 0, false
	}
	if c < utf8.RuneSelf {
		return rune(c), true
	}
	buf := []byte{c}
	for !utf8.FullRune(buf) {
		c, ok := sc.get()
		if !ok {
			break
		}
		buf = append(buf, c)
	}
	r, size := utf8.DecodeRune(buf)
	sc.unget(buf[size:]...)
	return r, true
}

// storeBytes assigns scanned bytes to a *string, *[]byte, *byte or a []byte
// that is filled in place.
func storeBytes(dst any, b []byte) error {
	switch d := dst.(type) {
	case nil:
		return nil
	case *string:
		*d = string(b)
	case *[]byte:
		*d = append((*d)[:0], b...)
	case *byte:
		*d = b[0]
	case []byte:
		if len(d) < len(b) {
			return fmt.Errorf("%w: destination holds %d bytes, need %d", ErrInvalidArgument, len(d), len(b))
		}
		copy(d, b)
	default:
		return fmt.Errorf("%w: cannot store text in %T", ErrInvalidArgument, dst)
	}
	return nil
}

// storeRunes assigns scanned characters to a *string, *[]rune or *rune.
func storeRunes(dst any, r []rune) error {
	switch d := dst.(type) {
	case nil:
		return nil
	case *string:
		*d = string(r)
	case *[]rune:
		*d = append((*d)[:0], r...)
	case *rune:
		*d = r[0]
	default:
		return fmt.Errorf("%w: cannot store characters in %T", ErrInvalidArgument, dst)
	}
	return nil
}

// storeFloat assigns through a float pointer.
func storeFloat(dst any, v float64) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: need non-nil float pointer, got %T", ErrInvalidArgument, dst)
	}
	switch rv.Elem().Kind() {
	case reflect.Float32, reflect.Float64:
		rv.Elem().SetFloat(v)
		return nil
	}
	return fmt.Errorf("%w: need float pointer, got %T", ErrInvalidArgument, dst)
}
