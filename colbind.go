// Package colbind marshals tabular, columnar data to and from a SQL
// client's row-oriented wire protocol. It encodes columnar batches into
// protocol parameter buffers for bulk insert, and materializes protocol
// result rows into growable, strongly-typed columnar buffers for fetch,
// handling null indicators and timestamp/date codec conversions along the
// way.
//
// The package sits on top of an already-connected client library exposed
// through the Conn/Statement/Cursor interfaces; a PostgreSQL
// implementation backed by pgx is included.
package colbind

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBatchSize is the number of rows bound and executed together
	// against a prepared statement on the write path.
	DefaultBatchSize = 1024

	// DefaultFetchCapacity is the initial result buffer capacity when the
	// requested row count is unbounded.
	DefaultFetchCapacity = 100
)

// Session carries the configuration shared by insert and fetch
// operations: batch size, the timestamp codec's reference timezone, text
// transcoding, and the warning logger. A Session holds no per-operation
// state and may be reused across independent calls.
type Session struct {
	batchSize  int
	fetchCap   int
	codec      *TimestampCodec
	transcoder *Transcoder
	logger     logrus.FieldLogger
}

// Option configures a Session.
type Option func(*Session)

// WithBatchSize sets the write-path batch size. Values below 1 are
// ignored.
func WithBatchSize(n int) Option {
	return func(s *Session) {
		if n >= 1 {
			s.batchSize = n
		}
	}
}

// WithFetchCapacity sets the initial result buffer capacity used when
// fetching an unbounded row count.
func WithFetchCapacity(n int) Option {
	return func(s *Session) {
		if n >= 1 {
			s.fetchCap = n
		}
	}
}

// WithLocation sets the reference timezone used by the timestamp codec in
// both directions. Defaults to the process-local timezone.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) {
		s.codec = NewTimestampCodec(loc)
	}
}

// WithTranscoder sets the wire text transcoder. Defaults to identity
// (UTF-8 wire text).
func WithTranscoder(t *Transcoder) Option {
	return func(s *Session) {
		s.transcoder = t
	}
}

// WithLogger sets the logger used for non-fatal warnings.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a Session with the given options applied over the
// defaults.
func NewSession(opts ...Option) *Session {
	s := &Session{
		batchSize: DefaultBatchSize,
		fetchCap:  DefaultFetchCapacity,
		codec:     NewTimestampCodec(nil),
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Codec returns the session's timestamp codec.
func (s *Session) Codec() *TimestampCodec {
	return s.codec
}
