package stdio

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// maxNumber caps the characters one numeric conversion may consume.
const maxNumber = 512

func digitValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	}
	return 99
}

// scanInt reads an integer in base, or in the base its prefix selects when
// base is 0. Bytes read past the longest valid number are pushed back, so
// "0xg" yields 0 and leaves "xg" unread.
func (sc *scanner) scanInt(base int, signed bool, width int, dst any) (scanFailure, error) {
	if width == 0 || width > maxNumber {
		width = maxNumber
	}
	orig := base
	var tok []byte
	commit, ndigits := 0, 0
	prefixOK := false
	for len(tok) < width {
		c, ok := sc.get()
		if !ok {
			break
		}
		if (c == '+' || c == '-') && len(tok) == 0 {
			tok = append(tok, c)
			continue
		}
		if (c == 'x' || c == 'X') && prefixOK {
			prefixOK = false
			base = 16
			tok = append(tok, c)
			continue
		}
		d := digitValue(c)
		if base == 0 {
			switch {
			case c == '0':
				base = 8
			case d < 10:
				base = 10
			}
		}
		if d >= base {
			sc.unget(c)
			break
		}
		prefixOK = ndigits == 0 && c == '0' && (orig == 0 || orig == 16)
		ndigits++
		tok = append(tok, c)
		commit = len(tok)
	}
	if commit == 0 {
		sc.unget(tok...)
		if len(tok) == 0 && sc.s.flags.has(flagEOF) {
			return scanInput, nil
		}
		return scanMatch, nil
	}
	sc.unget(tok[commit:]...)
	tok = tok[:commit]
	if dst == nil {
		return scanOK, nil
	}

	neg := tok[0] == '-'
	body := strings.TrimLeft(string(tok), "+-")
	if base == 16 && len(body) > 1 && body[0] == '0' && body[1]|0x20 == 'x' {
		body = body[2:]
	}
	u, err := strconv.ParseUint(body, base, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return scanMatch, nil
	}

	var bits uint64
	switch {
	case signed && neg && u > 1<<63:
		bits = 1 << 63
	case signed && !neg && u > math.MaxInt64:
		bits = math.MaxInt64
	case neg:
		bits = -u
	default:
		bits = u
	}
	return scanOK, storeInt(dst, bits)
}

// float scanning states
const (
	fFirst = iota
	fZero
	fInt
	fFrac
	fExp
	fExpSign
	fExpDigits
	fInf
	fNan
	fNanParen
)

// scanFloat reads a decimal or hexadecimal floating point number, an
// infinity or a NaN. Only the longest valid prefix is consumed; an
// exponent marker with no digits after it is pushed back.
func (sc *scanner) scanFloat(width int, dst any) (scanFailure, error) {
	if width == 0 || width > maxNumber {
		width = maxNumber
	}
	var tok []byte
	if c, ok := sc.get(); ok {
		if c == '+' || c == '-' {
			tok = append(tok, c)
		} else {
			sc.unget(c)
		}
	}
	signLen := len(tok)

	commit := 0
	hex := false
	mant := false
	st := fFirst
	isMant := func(c byte) bool {
		if hex {
			return digitValue(c) < 16
		}
		return isDigit(c)
	}
	expMark := func(c byte) bool {
		if hex {
			return c|0x20 == 'p'
		}
		return c|0x20 == 'e'
	}

	var c byte
	redo := false
scan:
	for {
		if !redo {
			if len(tok) >= width {
				break
			}
			var ok bool
			if c, ok = sc.get(); !ok {
				break
			}
		}
		redo = false
		lc := c | 0x20

		switch st {
		case fFirst:
			switch {
			case lc == 'i':
				st = fInf
			case lc == 'n':
				st = fNan
			case c == '0':
				st, mant = fZero, true
				tok = append(tok, c)
				commit = len(tok)
				continue
			case isDigit(c):
				st, mant = fInt, true
				tok = append(tok, c)
				commit = len(tok)
				continue
			case c == sc.point:
				st = fFrac
			default:
				sc.unget(c)
				break scan
			}
			tok = append(tok, c)
		case fZero:
			if lc == 'x' {
				hex = true
				st = fInt
				tok = append(tok, c)
				continue
			}
			st, redo = fInt, true
		case fInt, fFrac:
			switch {
			case isMant(c):
				mant = true
				tok = append(tok, c)
				commit = len(tok)
			case c == sc.point && st == fInt:
				st = fFrac
				tok = append(tok, c)
				if mant {
					commit = len(tok)
				}
			case expMark(c) && mant:
				st = fExp
				tok = append(tok, c)
			default:
				sc.unget(c)
				break scan
			}
		case fExp, fExpSign, fExpDigits:
			switch {
			case isDigit(c):
				st = fExpDigits
				tok = append(tok, c)
				commit = len(tok)
			case (c == '+' || c == '-') && st == fExp:
				st = fExpSign
				tok = append(tok, c)
			default:
				sc.unget(c)
				break scan
			}
		case fInf:
			const word = "infinity"
			pos := len(tok) - signLen
			if pos >= len(word) || lc != word[pos] {
				sc.unget(c)
				break scan
			}
			tok = append(tok, c)
			if pos+1 == 3 || pos+1 == len(word) {
				commit = len(tok)
			}
		case fNan:
			const word = "nan"
			pos := len(tok) - signLen
			switch {
			case pos < len(word) && lc == word[pos]:
				tok = append(tok, c)
				if pos+1 == len(word) {
					commit = len(tok)
				}
			case pos == len(word) && c == '(':
				st = fNanParen
				tok = append(tok, c)
			default:
				sc.unget(c)
				break scan
			}
		case fNanParen:
			switch {
			case c == ')':
				tok = append(tok, c)
				commit = len(tok)
				break scan
			case isDigit(c) || ('a' <= lc && lc <= 'z') || c == '_':
				tok = append(tok, c)
			default:
				sc.unget(c)
				break scan
			}
		}
	}

	if commit == 0 {
		sc.unget(tok...)
		if len(tok) == 0 && sc.s.flags.has(flagEOF) {
			return scanInput, nil
		}
		return scanMatch, nil
	}
	sc.unget(tok[commit:]...)
	tok = tok[:commit]
	if dst == nil {
		return scanOK, nil
	}

	text := string(tok)
	if i := strings.IndexByte(text, '('); i >= 0 {
		text = text[:i]
	}
	if sc.point != '.' {
		text = strings.Replace(text, string(sc.point), ".", 1)
	}
	if hex && !strings.ContainsAny(text, "pP") {
		text += "p0"
	}
	bitSize := 64
	if _, ok := dst.(*float32); ok {
		bitSize = 32
	}
	v, err := strconv.ParseFloat(text, bitSize)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return scanMatch, nil
	}
	return scanOK, storeFloat(dst, v)
}
