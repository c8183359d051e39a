package syncer

import "time"

// maxBackoff caps the exponential growth so long batches with low limits do
// not stall for minutes on a single item.
const maxBackoff = 30 * time.Second

// backoffDelay returns the wait before the given retry. The first retry waits
// the base delay; each further retry doubles it, capped at maxBackoff.
func backoffDelay(base time.Duration, retry int) time.Duration {
	if base <= 0 {
		base = time.Millisecond
	}
	if retry < 1 {
		retry = 1
	}
	delay := base
	for i := 1; i < retry; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}
