package report

import (
	"encoding/json"
	"io"

	"github.com/bjaus/stdio"
)

func writeJSON(w io.Writer, infos []stdio.StreamInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if infos == nil {
		infos = []stdio.StreamInfo{}
	}
	return enc.Encode(infos)
}
