package engine

import "time"

// Backoff decides the delay before a retry attempt. Attempt numbering starts
// at 1 for the first retry.
//
// The default is NoDelay: retries fire immediately, which keeps unit tests
// deterministic. Production configurations typically swap in Exponential.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// NoDelay retries immediately.
type NoDelay struct{}

// Delay implements Backoff.
func (NoDelay) Delay(int) time.Duration { return 0 }

// Exponential doubles the base delay per retry attempt, capped at Max.
type Exponential struct {
	// Base is the delay before the first retry.
	Base time.Duration
	// Max caps the delay. Zero means no cap.
	Max time.Duration
}

// Delay implements Backoff.
func (e Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := e.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if e.Max > 0 && d >= e.Max {
			return e.Max
		}
	}
	if e.Max > 0 && d > e.Max {
		return e.Max
	}
	return d
}
