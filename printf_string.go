package stdio

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var nullString = []byte("(null)")

// fmtString renders %s. Output stops at the first NUL byte or after
// precision bytes.
func (pr *printer) fmtString(d *directive, v any) error {
	var body []byte
	switch x := v.(type) {
	case nil:
		body = nullString
	case string:
		body = []byte(cutString(x, d.prec))
	case []byte:
		body = cutBytes(x, d.prec)
	case error:
		body = []byte(cutString(x.Error(), d.prec))
	case fmt.Stringer:
		body = []byte(cutString(x.String(), d.prec))
	default:
		return fmt.Errorf("%w: %%s needs a string, got %T", ErrInvalidArgument, v)
	}
	if v == nil && d.prec >= 0 && d.prec < len(body) {
		body = body[:d.prec]
	}
	pr.field(d, nil, nil, 0, body)
	return nil
}

func cutString(s string, prec int) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if prec >= 0 && len(s) > prec {
		s = s[:prec]
	}
	return s
}

func cutBytes(b []byte, prec int) []byte {
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	if prec >= 0 && len(b) > prec {
		b = b[:prec]
	}
	return b
}

// fmtWide renders %ls and %S. Characters are encoded as UTF-8 and the
// precision counts bytes of that encoding; a character that would straddle
// the limit is left out.
func (pr *printer) fmtWide(d *directive, v any) error {
	var runes []rune
	switch x := v.(type) {
	case nil:
		pr.field(d, nil, nil, 0, nullString)
		return nil
	case []rune:
		runes = x
	case string:
		runes = []rune(x)
	default:
		return fmt.Errorf("%w: %%ls needs []rune or string, got %T", ErrInvalidArgument, v)
	}
	var body []byte
	for _, r := range runes {
		if r == 0 {
			break
		}
		n := utf8.RuneLen(r)
		if n < 0 {
			n = utf8.RuneLen(utf8.RuneError)
		}
		if d.prec >= 0 && len(body)+n > d.prec {
			break
		}
		body = utf8.AppendRune(body, r)
	}
	pr.field(d, nil, nil, 0, body)
	return nil
}

// fmtChar renders %c and, with the l modifier or as %C, a wide character
// encoded as UTF-8.
func (pr *printer) fmtChar(d *directive, v any) error {
	bits, size, ok := intValue(v)
	if !ok {
		return fmt.Errorf("%w: %%c needs an integer, got %T", ErrInvalidArgument, v)
	}
	body := pr.charbuf[:1]
	if d.conv == 'C' || d.size == lenL {
		body = utf8.AppendRune(pr.charbuf[:0], rune(signExtend(bits, size)))
	} else {
		body[0] = byte(bits)
	}
	pr.field(d, nil, nil, 0, body)
	return nil
}
