package client

import (
	"math"
	"time"

	"github.com/lthibault/jitterbug/v2"
)

const (
	// DefaultPollInterval is the delay between two status polls of a running job.
	DefaultPollInterval = 5 * time.Second
	// MinPollDelay is the shortest wait AwaitJob accepts from a Backoff.
	MinPollDelay = 10 * time.Millisecond
)

// Backoff chooses how long to wait before the next poll. attempt is the
// number of polls already issued, starting at 1.
type Backoff interface {
	Next(attempt int) time.Duration
}

// ConstantBackoff waits the same interval between every poll.
type ConstantBackoff time.Duration

func (b ConstantBackoff) Next(int) time.Duration {
	return time.Duration(b)
}

// ExponentialBackoff multiplies Initial by Multiplier for every poll, capped at Max.
type ExponentialBackoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// A zero Initial starts at DefaultPollInterval. Without Max the delay saturates
// at the largest time.Duration.
func (b ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := b.Initial
	if initial <= 0 {
		initial = DefaultPollInterval
	}
	multiplier := b.Multiplier
	if multiplier < 1 {
		multiplier = 2
	}
	d := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if b.Max > 0 && d > float64(b.Max) {
		return b.Max
	}
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// JitterBackoff perturbs the delay of another strategy, so that many clients
// started together do not poll in lockstep.
type JitterBackoff struct {
	Backoff Backoff
	Jitter  jitterbug.Jitter
}

// NewNormJitterBackoff jitters base with a normal distribution of the given
// standard deviation.
func NewNormJitterBackoff(base Backoff, stdev time.Duration) JitterBackoff {
	return JitterBackoff{
		Backoff: base,
		Jitter:  &jitterbug.Norm{Stdev: stdev, Mean: 0},
	}
}

func (b JitterBackoff) Next(attempt int) time.Duration {
	d := b.Backoff.Next(attempt)
	if b.Jitter == nil {
		return d
	}
	if jittered := b.Jitter.Jitter(d); jittered > 0 {
		return jittered
	}
	return 0
}
