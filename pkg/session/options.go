package session

import (
	"log/slog"
	"time"

	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/ports"
	"github.com/aretw0/gmboard/pkg/segment"
	"github.com/aretw0/gmboard/pkg/turn"
)

// DefaultLatchTTL bounds how long a crashed holder can keep a distributed
// latch. It also caps each generation so no request outlives its latch.
const DefaultLatchTTL = 5 * time.Minute

// Option configures a Session.
type Option func(*Session)

// WithLatch replaces the in-process latch (e.g. with the Redis adapter).
func WithLatch(latch ports.Latch) Option {
	return func(s *Session) {
		if latch != nil {
			s.latch = latch
		}
	}
}

// WithLatchTTL sets the TTL passed to the latch and the deadline of each
// generation.
func WithLatchTTL(ttl time.Duration) Option {
	return func(s *Session) {
		if ttl > 0 {
			s.latchTTL = ttl
		}
	}
}

// WithLogger sets the session logger. The run ID is attached to every record.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithSegmenter replaces the default step segmenter.
func WithSegmenter(seg *segment.Segmenter) Option {
	return func(s *Session) {
		if seg != nil {
			s.seg = seg
		}
	}
}

// WithResolverOptions forwards options to the turn resolver.
func WithResolverOptions(opts ...turn.Option) Option {
	return func(s *Session) {
		s.resolverOpts = append(s.resolverOpts, opts...)
	}
}

// WithClocks replaces the default clocks.
func WithClocks(clocks ...domain.Clock) Option {
	return func(s *Session) {
		s.clocks = clocks
	}
}

// WithRunID forces the run ID instead of generating a UUID.
func WithRunID(id string) Option {
	return func(s *Session) {
		s.runID = id
	}
}

// WithNow overrides the time source used for history timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDie overrides the die used by RollDie. roll must return a value in [0, n).
func WithDie(roll func(n int) int) Option {
	return func(s *Session) {
		if roll != nil {
			s.roll = roll
		}
	}
}

// WithMaxInputSize cuts player input to n bytes. Zero disables the cut.
func WithMaxInputSize(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.maxInput = n
		}
	}
}
