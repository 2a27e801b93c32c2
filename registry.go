package stdio

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Registry owns the set of open streams. It hands out slots to openers and
// walks them for FlushAll, CloseAll and the flush of line-buffered output
// that precedes interactive reads.
//
// The registry mutex covers only slot claims and table growth; it is never
// held across backend I/O.
type Registry struct {
	mu     sync.Mutex
	cfg    Config
	log    *slog.Logger
	chunks atomic.Pointer[[]*chunk]

	stdOnce sync.Once
	std     [3]*Stream
}

// chunk is a fixed-size run of slots. Chunks are only ever appended.
type chunk struct {
	base  int
	slots []atomic.Pointer[Stream]
}

// Option configures a Registry.
type Option func(*Registry)

// WithConfig sets the registry configuration.
func WithConfig(cfg Config) Option {
	return func(r *Registry) { r.cfg = cfg }
}

// WithLogger sets the logger for registry events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{cfg: DefaultConfig(), log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	empty := []*chunk{}
	r.chunks.Store(&empty)
	return r, nil
}

// Config returns the registry configuration.
func (r *Registry) Config() Config { return r.cfg }

// claim reserves a free slot and returns its fresh stream, growing the table
// by one chunk when every slot is taken.
func (r *Registry) claim() *Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	chunks := *r.chunks.Load()
	for _, c := range chunks {
		for i := range c.slots {
			if c.slots[i].Load() == nil {
				return r.install(c, i)
			}
		}
	}
	c := &chunk{base: len(chunks) * r.cfg.RegistryChunk, slots: make([]atomic.Pointer[Stream], r.cfg.RegistryChunk)}
	grown := append(chunks[:len(chunks):len(chunks)], c)
	r.chunks.Store(&grown)
	r.log.Debug("stream registry grown", "chunks", len(grown), "slots", len(grown)*r.cfg.RegistryChunk)
	return r.install(c, 0)
}

func (r *Registry) install(c *chunk, i int) *Stream {
	s := &Stream{reg: r, slot: c.base + i, cfg: &r.cfg, flags: flagClaimed}
	c.slots[i].Store(s)
	return s
}

// release frees the slot held by s.
func (r *Registry) release(s *Stream) {
	for _, c := range *r.chunks.Load() {
		if s.slot >= c.base && s.slot < c.base+len(c.slots) {
			c.slots[s.slot-c.base].CompareAndSwap(s, nil)
			return
		}
	}
}

// streams returns the streams currently holding slots.
func (r *Registry) streams() []*Stream {
	var out []*Stream
	for _, c := range *r.chunks.Load() {
		for i := range c.slots {
			if s := c.slots[i].Load(); s != nil {
				out = append(out, s)
			}
		}
	}
	return out
}

// Len returns the number of open streams.
func (r *Registry) Len() int { return len(r.streams()) }

// flushLineBuffered flushes every line-buffered output stream other than
// self. Streams locked by another caller are skipped rather than waited for.
func (r *Registry) flushLineBuffered(self *Stream) {
	for _, s := range r.streams() {
		if s == self || !s.mu.TryLock() {
			continue
		}
		if s.flags.has(flagLBF | flagWR) {
			if err := s.flush(); err != nil {
				r.log.Debug("line flush failed", "slot", s.slot, "error", err)
			}
		}
		s.mu.Unlock()
	}
}

// FlushAll flushes every open output stream and returns the joined errors.
func (r *Registry) FlushAll() error {
	var errs []error
	for _, s := range r.streams() {
		s.mu.Lock()
		if s.flags.has(flagWR) {
			if err := s.flush(); err != nil {
				r.log.Warn("flush failed", "slot", s.slot, "error", err)
				errs = append(errs, err)
			}
		}
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

// CloseAll closes every open stream and returns the joined errors.
func (r *Registry) CloseAll() error {
	var errs []error
	for _, s := range r.streams() {
		if err := s.Close(); err != nil {
			r.log.Warn("close failed", "slot", s.slot, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
