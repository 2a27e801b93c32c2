package stdio

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

var (
	infLower = []byte("inf")
	infUpper = []byte("INF")
	nanLower = []byte("nan")
	nanUpper = []byte("NAN")
)

// fmtFloat renders e E f F g G a A. Digits come from strconv, which rounds
// correctly; this layer only arranges them.
func (pr *printer) fmtFloat(d *directive, v any) error {
	f, ok := floatValue(v)
	if !ok {
		return fmt.Errorf("%w: %%%c needs a float, got %T", ErrInvalidArgument, d.conv, v)
	}
	upper := d.conv >= 'A' && d.conv <= 'Z'
	sign := pr.signFor(math.Signbit(f), d.flags)

	if math.IsInf(f, 0) || math.IsNaN(f) {
		word := infLower
		switch {
		case math.IsNaN(f) && upper:
			word = nanUpper
		case math.IsNaN(f):
			word = nanLower
		case upper:
			word = infUpper
		}
		d.flags &^= pZero
		pr.field(d, sign, nil, 0, word)
		return nil
	}

	f = math.Abs(f)
	alt := d.flags&pAlt != 0
	var body, prefix []byte
	fixed := false

	switch d.conv | 0x20 {
	case 'f':
		prec := d.prec
		if prec < 0 {
			prec = 6
		}
		body = strconv.AppendFloat(pr.numbuf[:0], f, 'f', prec, 64)
		if alt && prec == 0 {
			body = append(body, '.')
		}
		fixed = true
	case 'e':
		prec := d.prec
		if prec < 0 {
			prec = 6
		}
		body = strconv.AppendFloat(pr.numbuf[:0], f, 'e', prec, 64)
		if alt && prec == 0 {
			body = insertByte(body, 1, '.')
		}
	case 'g':
		prec := d.prec
		switch {
		case prec < 0:
			prec = 6
		case prec == 0:
			prec = 1
		}
		body = strconv.AppendFloat(pr.numbuf[:0], f, 'e', prec-1, 64)
		if x := exponent(body); x >= -4 && x < prec {
			body = strconv.AppendFloat(pr.numbuf[:0], f, 'f', prec-1-x, 64)
			fixed = true
		}
		if alt {
			body = ensurePoint(body, 'e')
		} else {
			body = trimFraction(body)
		}
	case 'a':
		body = strconv.AppendFloat(pr.numbuf[:0], f, 'x', d.prec, 64)
		body = shortExponent(body[2:])
		if alt {
			body = ensurePoint(body, 'p')
		}
		prefix = prefixHexLower
		if upper {
			prefix = prefixHexUpper
		}
	}

	if upper {
		body = bytes.ToUpper(body)
	}
	dot := bytes.IndexByte(body, '.')
	if dot >= 0 && pr.point != "." {
		body = bytes.Join([][]byte{body[:dot], body[dot+1:]}, []byte(pr.point))
	}
	if fixed && d.flags&pGroup != 0 && pr.sep != "" {
		if dot < 0 {
			dot = len(body)
		}
		body = group(body, dot, pr.sep)
	}
	pr.field(d, sign, prefix, 0, body)
	return nil
}

// exponent returns the decimal exponent of an 'e' formatted number.
func exponent(body []byte) int {
	i := bytes.IndexByte(body, 'e')
	if i < 0 {
		return 0
	}
	x, _ := strconv.Atoi(string(body[i+1:]))
	return x
}

// trimFraction drops trailing fraction zeros, and the point if nothing is
// left after it, keeping any exponent suffix.
func trimFraction(body []byte) []byte {
	dot := bytes.IndexByte(body, '.')
	if dot < 0 {
		return body
	}
	e := bytes.IndexByte(body, 'e')
	if e < 0 {
		e = len(body)
	}
	end := e
	for end > dot+1 && body[end-1] == '0' {
		end--
	}
	if end == dot+1 {
		end = dot
	}
	return append(body[:end], body[e:]...)
}

// ensurePoint inserts a radix point before the exponent marker when the
// mantissa has none.
func ensurePoint(body []byte, marker byte) []byte {
	if bytes.IndexByte(body, '.') >= 0 {
		return body
	}
	i := bytes.IndexByte(body, marker)
	if i < 0 {
		i = len(body)
	}
	return insertByte(body, i, '.')
}

// shortExponent removes the leading zero strconv pads binary exponents
// with, so 1p+00 becomes 1p+0.
func shortExponent(body []byte) []byte {
	i := bytes.IndexByte(body, 'p')
	if i < 0 || len(body)-i < 4 || body[i+2] != '0' {
		return body
	}
	return append(body[:i+2], body[i+3:]...)
}

func insertByte(b []byte, i int, c byte) []byte {
	b = append(b, 0)
	copy(b[i+1:], b[i:])
	b[i] = c
	return b
}
