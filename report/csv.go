package report

import (
	"encoding/csv"
	"io"

	"github.com/bjaus/stdio"
)

func writeDelimited(w io.Writer, comma rune, infos []stdio.StreamInfo) error {
	if len(infos) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, in := range infos {
		if err := cw.Write(row(in)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
