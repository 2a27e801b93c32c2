package stdio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxField bounds literal and argument-supplied widths and precisions.
const maxField = math.MaxInt32

// pflags are the flags of one conversion.
type pflags uint8

const (
	pAlt   pflags = 1 << iota // #
	pLeft                     // -
	pPlus                     // +
	pSpace                    // ' '
	pZero                     // 0
	pGroup                    // '
)

// lengthMod is a parsed length modifier.
type lengthMod uint8

const (
	lenNone lengthMod = iota
	lenHH
	lenH
	lenL
	lenLL
	lenJ
	lenT
	lenZ
	lenBigL
)

// directive is one parsed %-conversion.
type directive struct {
	argn     int // positional index, 0 when sequential
	flags    pflags
	width    int
	widthArg int // -1 literal, 0 next argument, n positional
	prec     int // -1 when absent
	precArg  int
	size     lengthMod
	conv     byte // 0 when the format ended inside the directive
	end      int  // index just past the conversion letter
}

// atoi parses a run of decimal digits starting at format[i].
func atoi(format string, i int) (n, end int, err error) {
	for end = i; end < len(format) && isDigit(format[end]); end++ {
		n = n*10 + int(format[end]-'0')
		if n > maxField {
			return 0, end, fmt.Errorf("%w: field width overflows", ErrInvalidFormat)
		}
	}
	return n, end, nil
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// starRef parses the optional N$ that may follow '*'. It returns the
// positional index, or 0 for the next sequential argument.
func starRef(format string, i int) (pos, end int, err error) {
	n, j, err := atoi(format, i)
	if err != nil {
		return 0, i, err
	}
	if j > i && j < len(format) && format[j] == '$' {
		if n == 0 {
			return 0, i, fmt.Errorf("%w: argument index 0", ErrInvalidFormat)
		}
		return n, j + 1, nil
	}
	return 0, i, nil
}

// parseDirective parses the conversion whose '%' precedes format[i].
func parseDirective(format string, i int) (directive, error) {
	d := directive{prec: -1, widthArg: -1, precArg: -1}

	if n, j, err := atoi(format, i); err != nil {
		return d, err
	} else if j > i && j < len(format) && format[j] == '$' {
		if n == 0 {
			return d, fmt.Errorf("%w: argument index 0", ErrInvalidFormat)
		}
		d.argn = n
		i = j + 1
	}

flags:
	for ; i < len(format); i++ {
		switch format[i] {
		case '#':
			d.flags |= pAlt
		case '-':
			d.flags |= pLeft
		case '+':
			d.flags |= pPlus
		case ' ':
			d.flags |= pSpace
		case '0':
			d.flags |= pZero
		case '\'':
			d.flags |= pGroup
		default:
			break flags
		}
	}

	if i < len(format) && format[i] == '*' {
		pos, j, err := starRef(format, i+1)
		if err != nil {
			return d, err
		}
		d.widthArg, i = pos, j
	} else {
		n, j, err := atoi(format, i)
		if err != nil {
			return d, err
		}
		d.width, i = n, j
	}

	if i < len(format) && format[i] == '.' {
		i++
		if i < len(format) && format[i] == '*' {
			pos, j, err := starRef(format, i+1)
			if err != nil {
				return d, err
			}
			d.precArg, i = pos, j
		} else {
			n, j, err := atoi(format, i)
			if err != nil {
				return d, err
			}
			d.prec, i = n, j
		}
	}

	for ; i < len(format); i++ {
		switch format[i] {
		case 'h':
			if d.size == lenH {
				d.size = lenHH
			} else {
				d.size = lenH
			}
			continue
		case 'l':
			if d.size == lenL {
				d.size = lenLL
			} else {
				d.size = lenL
			}
			continue
		case 'q':
			d.size = lenLL
			continue
		case 'j':
			d.size = lenJ
			continue
		case 't':
			d.size = lenT
			continue
		case 'z':
			d.size = lenZ
			continue
		case 'L':
			d.size = lenBigL
			continue
		}
		break
	}

	if i < len(format) {
		d.conv = format[i]
		i++
	}
	d.end = i
	return d, nil
}

var (
	blanks = []byte("                ")
	zeroes = []byte("0000000000000000")

	signMinus = []byte("-")
	signPlus  = []byte("+")
	signSpace = []byte(" ")

	prefixOctal    = []byte("0")
	prefixHexLower = []byte("0x")
	prefixHexUpper = []byte("0X")
)

// printer carries the state of one formatted write.
type printer struct {
	s       *Stream
	args    argTable
	iov     [8][]byte
	niov    int
	ret     int
	err     error
	sep     string
	point   string
	numbuf  [68]byte
	charbuf [4]byte
}

// print queues b for output. The queue is written out whenever it fills.
func (pr *printer) print(b []byte) {
	if len(b) == 0 || pr.err != nil {
		return
	}
	pr.iov[pr.niov] = b
	pr.niov++
	pr.ret += len(b)
	if pr.niov == len(pr.iov) {
		pr.flush()
	}
}

// pad queues n copies of the fill byte held by with.
func (pr *printer) pad(n int, with []byte) {
	for n > 0 {
		k := min(n, len(with))
		pr.print(with[:k])
		n -= k
	}
}

// flush writes the queued spans through the stream.
func (pr *printer) flush() {
	if pr.niov == 0 {
		return
	}
	if pr.err == nil {
		if _, err := pr.s.writev(pr.iov[:pr.niov]); err != nil {
			pr.err = err
		}
	}
	clear(pr.iov[:pr.niov])
	pr.niov = 0
}

// fail delivers what was queued before the failing directive and records err.
func (pr *printer) fail(err error) {
	pr.flush()
	if pr.err == nil {
		pr.err = err
	}
}

// field emits one padded conversion: sign, prefix, leading zeros and body,
// justified within the directive's width.
func (pr *printer) field(d *directive, sign, prefix []byte, zeros int, body []byte) {
	size := len(sign) + len(prefix) + max(zeros, 0) + len(body)
	fill := d.width - size
	if d.flags&(pLeft|pZero) == 0 {
		pr.pad(fill, blanks)
	}
	pr.print(sign)
	pr.print(prefix)
	if d.flags&(pLeft|pZero) == pZero {
		pr.pad(fill, zeroes)
	}
	pr.pad(zeros, zeroes)
	pr.print(body)
	if d.flags&pLeft != 0 {
		pr.pad(fill, blanks)
	}
}

func (pr *printer) signFor(neg bool, f pflags) []byte {
	switch {
	case neg:
		return signMinus
	case f&pPlus != 0:
		return signPlus
	case f&pSpace != 0:
		return signSpace
	}
	return nil
}

// Printf writes args to the stream according to format and returns the
// number of bytes produced.
//
// The format grammar is %[N$][flags][width][.precision][length]conversion
// with flags from "#-+ 0'", widths and precisions given literally or as *
// or *N$, length modifiers hh h l ll j t z q L and conversions
// d i o u x X e E f F g G a A c C s S p n %. Integer conversions render the
// Go argument at its own width unless hh or h narrow it. An unknown
// conversion letter is printed as itself.
func (s *Stream) Printf(format string, args ...any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.printf(format, args)
}

func (s *Stream) printf(format string, args []any) (int, error) {
	if err := s.wsetup(); err != nil {
		return 0, err
	}
	if s.flags.has(flagNBF) && !s.flags.has(flagSTR) {
		return s.printfUnbuffered(format, args)
	}
	return s.doprnt(format, args)
}

// printfUnbuffered formats through a shadow stream with a private buffer so
// an unbuffered destination sees one backend write per buffer rather than
// one per fragment. Only the error indicator is carried back.
func (s *Stream) printfUnbuffered(format string, args []any) (int, error) {
	var local [1024]byte
	shadow := Stream{
		cfg:     s.cfg,
		slot:    s.slot,
		flags:   s.flags&(flagRW|flagAPP) | flagWR,
		backend: s.backend,
		buf:     local[:],
	}
	n, err := shadow.doprnt(format, args)
	if ferr := shadow.flush(); ferr != nil && err == nil {
		err = ferr
	}
	if shadow.flags.has(flagERR) {
		s.flags |= flagERR
	}
	s.flags &^= flagOFF
	s.stats.writes += shadow.stats.writes
	s.stats.seeks += shadow.stats.seeks
	return n, err
}

// doprnt runs the format interpreter against an already writable stream.
func (s *Stream) doprnt(format string, args []any) (int, error) {
	pr := printer{s: s, args: argTable{args: args}, point: "."}
	if s.cfg != nil {
		pr.sep, pr.point = s.cfg.ThousandsSep, s.cfg.DecimalPoint
	}
	lit := []byte(format)

	for i := 0; i < len(format) && pr.err == nil; {
		j := strings.IndexByte(format[i:], '%')
		if j < 0 {
			pr.print(lit[i:])
			break
		}
		pr.print(lit[i : i+j])
		i += j

		d, err := parseDirective(format, i+1)
		if err != nil {
			pr.fail(err)
			break
		}
		if d.conv == 0 {
			break
		}
		if !pr.args.scanned && (d.argn > 0 || d.widthArg > 0 || d.precArg > 0) {
			if err := pr.args.scan(format); err != nil {
				pr.fail(err)
				break
			}
		}
		if err := pr.convert(&d); err != nil {
			pr.fail(err)
		}
		pr.flush()
		i = d.end
	}
	pr.flush()
	return pr.ret, pr.err
}

// convert resolves the directive's arguments and emits it.
func (pr *printer) convert(d *directive) error {
	if d.widthArg >= 0 {
		w, err := pr.args.starArg(d.widthArg)
		if err != nil {
			return err
		}
		if w < 0 {
			d.flags |= pLeft
			w = -w
		}
		d.width = w
	}
	if d.precArg >= 0 {
		p, err := pr.args.starArg(d.precArg)
		if err != nil {
			return err
		}
		d.prec = max(p, -1)
	}

	switch d.conv {
	case 'd', 'i', 'o', 'u', 'x', 'X':
		v, err := pr.args.get(d.argn)
		if err != nil {
			return err
		}
		return pr.fmtInteger(d, v)
	case 'p':
		v, err := pr.args.get(d.argn)
		if err != nil {
			return err
		}
		addr, ok := pointerValue(v)
		if !ok {
			return fmt.Errorf("%w: %%p needs a pointer, got %T", ErrInvalidArgument, v)
		}
		pr.fmtUnsigned(d, addr, 16, false, prefixHexLower)
		return nil
	case 'e', 'E', 'f', 'F', 'g', 'G', 'a', 'A':
		v, err := pr.args.get(d.argn)
		if err != nil {
			return err
		}
		return pr.fmtFloat(d, v)
	case 'c', 'C':
		v, err := pr.args.get(d.argn)
		if err != nil {
			return err
		}
		return pr.fmtChar(d, v)
	case 's', 'S':
		v, err := pr.args.get(d.argn)
		if err != nil {
			return err
		}
		if d.conv == 'S' || d.size == lenL {
			return pr.fmtWide(d, v)
		}
		return pr.fmtString(d, v)
	case 'n':
		v, err := pr.args.get(d.argn)
		if err != nil {
			return err
		}
		bits := uint64(pr.ret)
		switch d.size {
		case lenHH:
			bits = truncate(bits, 8)
		case lenH:
			bits = truncate(bits, 16)
		}
		return storeInt(v, bits)
	default:
		pr.charbuf[0] = d.conv
		pr.field(d, nil, nil, 0, pr.charbuf[:1])
		return nil
	}
}

// fmtInteger renders d i o u x X.
func (pr *printer) fmtInteger(d *directive, v any) error {
	bits, size, ok := intValue(v)
	if !ok {
		return fmt.Errorf("%w: %%%c needs an integer, got %T", ErrInvalidArgument, d.conv, v)
	}
	switch d.size {
	case lenHH:
		size = 8
	case lenH:
		size = 16
	}
	switch d.conv {
	case 'd', 'i':
		n := signExtend(bits, size)
		mag := uint64(n)
		if n < 0 {
			mag = -mag
		}
		pr.fmtSigned(d, mag, n < 0)
	case 'o':
		pr.fmtUnsigned(d, truncate(bits, size), 8, false, nil)
	case 'u':
		pr.fmtUnsigned(d, truncate(bits, size), 10, false, nil)
	case 'x':
		pr.fmtUnsigned(d, truncate(bits, size), 16, false, nil)
	case 'X':
		pr.fmtUnsigned(d, truncate(bits, size), 16, true, nil)
	}
	return nil
}

func (pr *printer) fmtSigned(d *directive, mag uint64, neg bool) {
	body, zeros := pr.digits(d, mag, 10, false)
	pr.field(d, pr.signFor(neg, d.flags), nil, zeros, body)
}

// fmtUnsigned renders an unsigned conversion. A non-nil prefix is always
// emitted, as %p does; otherwise # selects the base's alternate form.
func (pr *printer) fmtUnsigned(d *directive, mag uint64, base int, upper bool, prefix []byte) {
	body, zeros := pr.digits(d, mag, base, upper)
	if prefix == nil && d.flags&pAlt != 0 {
		switch {
		case base == 8 && zeros <= 0 && (len(body) == 0 || body[0] != '0'):
			prefix = prefixOctal
		case base == 16 && mag != 0 && upper:
			prefix = prefixHexUpper
		case base == 16 && mag != 0:
			prefix = prefixHexLower
		}
	}
	pr.field(d, nil, prefix, zeros, body)
}

// digits renders mag and returns the body plus the number of zeros the
// precision asks for in front of it. A precision disables the 0 flag, and a
// zero value with zero precision has no digits.
func (pr *printer) digits(d *directive, mag uint64, base int, upper bool) ([]byte, int) {
	if d.prec >= 0 {
		d.flags &^= pZero
		if d.prec == 0 && mag == 0 {
			return nil, 0
		}
	}
	body := strconv.AppendUint(pr.numbuf[:0], mag, base)
	if upper {
		for i, c := range body {
			if 'a' <= c && c <= 'f' {
				body[i] = c - 'a' + 'A'
			}
		}
	}
	if base == 10 && d.flags&pGroup != 0 && pr.sep != "" {
		body = group(body, len(body), pr.sep)
	}
	zeros := 0
	if d.prec > len(body) {
		zeros = d.prec - len(body)
	}
	return body, zeros
}

// group inserts sep between each run of three digits in body[:end].
func group(body []byte, end int, sep string) []byte {
	if end <= 3 {
		return body
	}
	out := make([]byte, 0, len(body)+(end-1)/3*len(sep))
	for i := 0; i < end; i++ {
		if i > 0 && (end-i)%3 == 0 {
			out = append(out, sep...)
		}
		out = append(out, body[i])
	}
	return append(out, body[end:]...)
}
