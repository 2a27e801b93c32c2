package report

import (
	"io"

	"github.com/bjaus/stdio"
	"gopkg.in/yaml.v3"
)

func writeYAML(w io.Writer, infos []stdio.StreamInfo) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if infos == nil {
		infos = []stdio.StreamInfo{}
	}
	if err := enc.Encode(infos); err != nil {
		return err
	}
	return enc.Close()
}
