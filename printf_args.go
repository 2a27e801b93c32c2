package stdio

import (
	"fmt"
	"reflect"
)

// argKind classifies how a conversion consumes its argument. Two uses of the
// same positional slot must agree on kind.
type argKind uint8

const (
	kindNone argKind = iota
	kindInt
	kindFloat
	kindString
	kindWide
	kindPointer
	kindCount
)

func (k argKind) String() string {
	switch k {
	case kindInt:
		return "integer"
	case kindFloat:
		return "float"
	case kindString:
		return "string"
	case kindWide:
		return "wide string"
	case kindPointer:
		return "pointer"
	case kindCount:
		return "count pointer"
	default:
		return "none"
	}
}

// convKind returns the argument kind consumed by a conversion letter.
func convKind(conv byte, size lengthMod) argKind {
	switch conv {
	case 'd', 'i', 'o', 'u', 'x', 'X', 'c', 'C':
		return kindInt
	case 'e', 'E', 'f', 'F', 'g', 'G', 'a', 'A':
		return kindFloat
	case 's':
		if size == lenL {
			return kindWide
		}
		return kindString
	case 'S':
		return kindWide
	case 'p':
		return kindPointer
	case 'n':
		return kindCount
	}
	return kindNone
}

// argTable resolves conversion arguments. Sequential conversions take the
// next unused argument in order; positional ones index the argument list
// directly. The first positional reference triggers a scan of the whole
// format that checks every referenced slot exists and is used consistently.
type argTable struct {
	args    []any
	next    int
	scanned bool
}

// get returns the argument for pos, the 1-based positional index, or the
// next sequential argument when pos is 0.
func (t *argTable) get(pos int) (any, error) {
	if pos == 0 {
		if t.next >= len(t.args) {
			return nil, fmt.Errorf("%w: missing argument %d", ErrInvalidArgument, t.next+1)
		}
		t.next++
		return t.args[t.next-1], nil
	}
	if pos > len(t.args) {
		return nil, fmt.Errorf("%w: missing argument %d", ErrInvalidArgument, pos)
	}
	return t.args[pos-1], nil
}

// scan walks the format once and validates positional references.
func (t *argTable) scan(format string) error {
	t.scanned = true
	kinds := map[int]argKind{}
	maxPos := 0
	use := func(pos int, k argKind) error {
		if pos <= 0 || k == kindNone {
			return nil
		}
		if prev, ok := kinds[pos]; ok && prev != k {
			return fmt.Errorf("%w: argument %d used as %s and %s", ErrInvalidFormat, pos, prev, k)
		}
		kinds[pos] = k
		maxPos = max(maxPos, pos)
		return nil
	}
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		d, err := parseDirective(format, i+1)
		if err != nil {
			return err
		}
		if err := use(d.widthArg, kindInt); err != nil {
			return err
		}
		if err := use(d.precArg, kindInt); err != nil {
			return err
		}
		if err := use(d.argn, convKind(d.conv, d.size)); err != nil {
			return err
		}
		if d.conv == 0 {
			break
		}
		i = d.end - 1
	}
	if maxPos > len(t.args) {
		return fmt.Errorf("%w: format references argument %d of %d", ErrInvalidArgument, maxPos, len(t.args))
	}
	return nil
}

// intValue returns the bits of an integer argument, sign extended to 64
// bits, together with the width of its Go type.
func intValue(v any) (bits uint64, size int, ok bool) {
	switch x := v.(type) {
	case int:
		return uint64(x), 64, true
	case int8:
		return uint64(x), 8, true
	case int16:
		return uint64(x), 16, true
	case int32:
		return uint64(x), 32, true
	case int64:
		return uint64(x), 64, true
	case uint:
		return uint64(x), 64, true
	case uint8:
		return uint64(x), 8, true
	case uint16:
		return uint64(x), 16, true
	case uint32:
		return uint64(x), 32, true
	case uint64:
		return x, 64, true
	case uintptr:
		return uint64(x), 64, true
	case bool:
		if x {
			return 1, 32, true
		}
		return 0, 32, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(rv.Int()), int(rv.Type().Size()) * 8, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), int(rv.Type().Size()) * 8, true
	}
	return 0, 0, false
}

// floatValue returns a floating point argument as float64.
func floatValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// pointerValue returns the address held by a pointer-like argument.
func pointerValue(v any) (uint64, bool) {
	if v == nil {
		return 0, true
	}
	if p, ok := v.(uintptr); ok {
		return uint64(p), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Slice:
		return uint64(rv.Pointer()), true
	}
	return 0, false
}

// storeInt writes bits through an integer pointer, truncating to the
// pointee's width.
func storeInt(dst any, bits uint64) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: need non-nil integer pointer, got %T", ErrInvalidArgument, dst)
	}
	e := rv.Elem()
	switch e.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.SetInt(int64(bits))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.SetUint(bits)
	default:
		return fmt.Errorf("%w: need integer pointer, got %T", ErrInvalidArgument, dst)
	}
	return nil
}

// starArg resolves a width or precision taken from the argument list.
func (t *argTable) starArg(pos int) (int, error) {
	v, err := t.get(pos)
	if err != nil {
		return 0, err
	}
	bits, size, ok := intValue(v)
	if !ok {
		return 0, fmt.Errorf("%w: width or precision must be an integer, got %T", ErrInvalidArgument, v)
	}
	n := signExtend(bits, size)
	if n > maxField || n < -maxField {
		return 0, fmt.Errorf("%w: width or precision %d out of range", ErrInvalidArgument, n)
	}
	return int(n), nil
}

func signExtend(bits uint64, size int) int64 {
	if size >= 64 {
		return int64(bits)
	}
	shift := 64 - size
	return int64(bits<<shift) >> shift
}

func truncate(bits uint64, size int) uint64 {
	if size >= 64 {
		return bits
	}
	return bits & (1<<size - 1)
}
