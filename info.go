package stdio

// StreamInfo describes one open stream at a point in time.
type StreamInfo struct {
	Slot      int    `json:"slot" yaml:"slot"`
	Backend   string `json:"backend" yaml:"backend"`
	Access    string `json:"access" yaml:"access"`
	Direction string `json:"direction" yaml:"direction"`
	Buffering string `json:"buffering" yaml:"buffering"`
	BufSize   int    `json:"buf_size" yaml:"buf_size"`
	Pending   int    `json:"pending" yaml:"pending"`
	Pushback  int    `json:"pushback" yaml:"pushback"`
	EOF       bool   `json:"eof" yaml:"eof"`
	Err       bool   `json:"err" yaml:"err"`
	Reads     int64  `json:"reads" yaml:"reads"`
	Writes    int64  `json:"writes" yaml:"writes"`
	Seeks     int64  `json:"seeks" yaml:"seeks"`
	Reallocs  int    `json:"reallocs" yaml:"reallocs"`
}

// Info returns the stream's current state and backend call counts.
func (s *Stream) Info() StreamInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info()
}

func (s *Stream) info() StreamInfo {
	in := StreamInfo{
		Slot:      s.slot,
		Backend:   "string",
		Buffering: s.mode().String(),
		BufSize:   len(s.buf),
		Pushback:  len(s.ub),
		EOF:       s.flags.has(flagEOF),
		Err:       s.flags.has(flagERR),
		Reads:     s.stats.reads,
		Writes:    s.stats.writes,
		Seeks:     s.stats.seeks,
		Reallocs:  s.stats.reallocs,
	}
	if s.backend != nil {
		in.Backend = s.backend.kind()
	}
	switch {
	case s.flags.has(flagRW):
		in.Access = "rw"
	case s.flags.has(flagWR):
		in.Access = "w"
	default:
		in.Access = "r"
	}
	if s.flags.has(flagAPP) {
		in.Access += "a"
	}
	switch {
	case s.flags.has(flagRD):
		in.Direction = "reading"
		in.Pending = s.r
	case s.flags.has(flagWR):
		in.Direction = "writing"
		in.Pending = s.p
	default:
		in.Direction = "idle"
	}
	return in
}

// Snapshot returns the state of every open stream in slot order.
func (r *Registry) Snapshot() []StreamInfo {
	var out []StreamInfo
	for _, s := range r.streams() {
		s.mu.Lock()
		if s.flags != 0 && s.flags != flagClaimed {
			out = append(out, s.info())
		}
		s.mu.Unlock()
	}
	return out
}
