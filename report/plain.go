package report

import (
	"io"

	"github.com/bjaus/stdio"
)

// plainLine lays out one stream per line.
const plainLine = "%3d %-9s %-3s %-7s %-4s %6d %6d%s%s r=%d w=%d s=%d\n"

func writePlain(w io.Writer, infos []stdio.StreamInfo) error {
	for _, in := range infos {
		eof, errFlag := "", ""
		if in.EOF {
			eof = " eof"
		}
		if in.Err {
			errFlag = " err"
		}
		line, err := stdio.Sprintf(plainLine,
			in.Slot, in.Backend, in.Access, in.Direction, in.Buffering,
			in.BufSize, in.Pending, eof, errFlag, in.Reads, in.Writes, in.Seeks)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
