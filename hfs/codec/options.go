package codec

import (
	"github.com/sirupsen/logrus"

	"github.com/HeliosSoftware/hfs-sub000/log"
)

// DefaultMaxDepth bounds nesting of composites, extensions and resources when
// no limit is configured.
const DefaultMaxDepth = 512

// Options tune one Decoder or Encoder.
type Options struct {
	// MaxDepth bounds nesting; zero or less means DefaultMaxDepth.
	MaxDepth int
	// AllowUnknownMembers drops members the schema does not declare instead
	// of failing. Dropped members are logged at warning level.
	AllowUnknownMembers bool
	// Logger defaults to log.Codec.
	Logger logrus.FieldLogger
}

// Option modifies Options.
type Option func(*Options)

// WithMaxDepth sets Options.MaxDepth.
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithUnknownMembers sets Options.AllowUnknownMembers.
func WithUnknownMembers(allow bool) Option {
	return func(o *Options) { o.AllowUnknownMembers = allow }
}

// WithLogger sets Options.Logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) { o.Logger = l }
}

func newOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Logger == nil {
		o.Logger = log.Codec
	}
	return o
}

// state is the per-call bookkeeping. A fresh one is made for every top-level
// Decode or Encode, so codecs themselves stay immutable and shareable.
type state struct {
	opts   *Options
	depth  int
	encode bool
}

func newState(opts *Options, encode bool) *state {
	return &state{opts: opts, encode: encode}
}

func (s *state) enter(at *loc) error {
	s.depth++
	if s.depth <= s.opts.MaxDepth {
		return nil
	}
	if s.encode {
		return &EncodeError{Path: at.path(), Reason: "nesting exceeds the depth limit, the value may contain a cycle"}
	}
	return &RecursionLimitExceededError{Path: at.path(), Limit: s.opts.MaxDepth}
}

func (s *state) leave() {
	s.depth--
}

// unknown handles a member no schema entry claimed.
func (s *state) unknown(at *loc, key string) error {
	if s.opts.AllowUnknownMembers {
		s.opts.Logger.WithField("path", at.child(key).String()).Warn("dropping unrecognized member")
		return nil
	}
	return &UnrecognizedMemberError{Path: at.child(key).path(), Member: key}
}
