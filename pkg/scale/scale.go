package scale

import (
	"errors"
	"time"
)

// Reading is one raw sample from the scale's digitizer. The timestamp is
// taken at receipt on the host, not on the MCU, so it carries arrival-order
// semantics only.
type Reading struct {
	Timestamp time.Time
	Raw       float64
}

// ErrNotConnected is returned when an operation requires an open scale.
var ErrNotConnected = errors.New("scale is not connected")

// Scale defines the interface for sample stream sources (real or mocked).
type Scale interface {
	Connect() error
	Close() error
	Readings() <-chan Reading
	IsConnected() bool
}

// Ensure Scale implementations satisfy the interface.
var _ Scale = (*Serial)(nil)
var _ Scale = (*Mock)(nil)
