package retry

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = time.Second
)

// Policy controls Do. The zero value makes a single attempt; DefaultPolicy
// retries twice starting at one second.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Classify defaults to the package classifier.
	Classify func(error) *Error
	// Timer overrides the wall clock wait between attempts.
	Timer backoff.Timer
	// OnRetry is called before each wait with the classified failure.
	OnRetry func(err *Error, attempt int, delay time.Duration)
}

// DefaultPolicy retries twice with 1s, 2s waits.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

func (p Policy) normalized() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.Classify == nil {
		p.Classify = Classify
	}
	return p
}

// backOff waits BaseDelay * 2^n before retry n (0-based), without jitter.
func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := &backoff.ExponentialBackOff{
		InitialInterval:     p.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         p.BaseDelay * time.Duration(math.Pow(2, float64(p.MaxRetries))),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxRetries)), ctx)
}

// Do runs op up to 1+MaxRetries times. Failures are classified; a
// non-retryable failure or the last failure is returned as *Error.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalized()

	attempt := 0
	var operation backoff.OperationWithData[T] = func() (T, error) {
		attempt++
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		classified := p.Classify(err)
		if !classified.Retryable {
			return res, backoff.Permanent(classified)
		}
		return res, classified
	}

	var notify backoff.Notify
	if p.OnRetry != nil {
		notify = func(err error, delay time.Duration) {
			p.OnRetry(p.Classify(err), attempt, delay)
		}
	}

	res, err := backoff.RetryNotifyWithTimerAndData[T](operation, p.backOff(ctx), notify, p.Timer)
	if err != nil {
		return res, p.Classify(err)
	}
	return res, nil
}
