package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/bjaus/stdio"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Format represents an output format.
type Format string

const (
	JSON     Format = "json"
	YAML     Format = "yaml"
	CSV      Format = "csv"
	TSV      Format = "tsv"
	Table    Format = "table"
	Markdown Format = "markdown"
	Plain    Format = "plain"
)

var formats = []Format{JSON, YAML, CSV, TSV, Table, Markdown, Plain}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Formats returns all supported format names.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// BorderStyle controls table border characters.
type BorderStyle int

const (
	BorderRounded BorderStyle = iota // ╭─╮╰╯│┬┴├┤┼
	BorderNone                       // No borders, space-separated columns
	BorderASCII                      // +-+|
)

// Alignment controls column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

type options struct {
	border BorderStyle
	title  string
}

// Option adjusts table rendering. Other formats ignore options.
type Option func(*options)

// WithBorder sets the table border style. Default: BorderRounded.
func WithBorder(b BorderStyle) Option {
	return func(o *options) { o.border = b }
}

// WithTitle renders a title above the table.
func WithTitle(t string) Option {
	return func(o *options) { o.title = t }
}

// Write renders the stream snapshots to w.
func Write(w io.Writer, f Format, infos []stdio.StreamInfo, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	switch f {
	case JSON:
		return writeJSON(w, infos)
	case YAML:
		return writeYAML(w, infos)
	case CSV:
		return writeDelimited(w, ',', infos)
	case TSV:
		return writeDelimited(w, '\t', infos)
	case Table:
		return writeTable(w, infos, o)
	case Markdown:
		return writeMarkdown(w, infos)
	case Plain:
		return writePlain(w, infos)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Marshal renders the snapshots and returns the bytes.
func Marshal(f Format, infos []stdio.StreamInfo, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, infos, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// header names the columns of the row-oriented formats.
var header = []string{
	"slot", "backend", "access", "direction", "buffering", "buf_size",
	"pending", "pushback", "eof", "err", "reads", "writes", "seeks", "reallocs",
}

// aligns right-justifies the numeric columns.
var aligns = []Alignment{
	AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight,
	AlignRight, AlignRight, AlignCenter, AlignCenter, AlignRight, AlignRight, AlignRight, AlignRight,
}

func row(in stdio.StreamInfo) []string {
	return []string{
		strconv.Itoa(in.Slot),
		in.Backend,
		in.Access,
		in.Direction,
		in.Buffering,
		strconv.Itoa(in.BufSize),
		strconv.Itoa(in.Pending),
		strconv.Itoa(in.Pushback),
		strconv.FormatBool(in.EOF),
		strconv.FormatBool(in.Err),
		strconv.FormatInt(in.Reads, 10),
		strconv.FormatInt(in.Writes, 10),
		strconv.FormatInt(in.Seeks, 10),
		strconv.Itoa(in.Reallocs),
	}
}

func rows(infos []stdio.StreamInfo) [][]string {
	out := make([][]string, len(infos))
	for i, in := range infos {
		out[i] = row(in)
	}
	return out
}
