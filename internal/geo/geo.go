// Package geo provides the geolocation capability used at capture time.
package geo

import (
	"context"
	"errors"
	"time"
)

// AccuracyThreshold is the worst fix accuracy (in the provider's units)
// a capture will accept.
const AccuracyThreshold = 50.0

// DefaultTimeout bounds how long a capture waits for an acceptable fix.
const DefaultTimeout = 10 * time.Second

// ErrNoFix is returned when no sufficiently accurate fix arrives in time.
var ErrNoFix = errors.New("no location fix within timeout")

// Fix is a single position report from the location provider.
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Locator streams position fixes. Watch runs until ctx is cancelled; the
// returned channel is closed when the watch ends.
type Locator interface {
	Watch(ctx context.Context) (<-chan Fix, error)
}

// FirstAccurateFix starts a watch and returns the first fix whose accuracy
// beats AccuracyThreshold, cancelling the watch once it has one. The fix
// channel races a timeout; there is no polling.
func FirstAccurateFix(ctx context.Context, l Locator, timeout time.Duration) (*Fix, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fixes, err := l.Watch(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case fix, ok := <-fixes:
			if !ok {
				return nil, ErrNoFix
			}
			if fix.Accuracy < AccuracyThreshold {
				return &fix, nil
			}
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrNoFix
			}
			return nil, ctx.Err()
		}
	}
}

// StaticLocator reports one fixed position, for CLI invocations where the
// coordinates come from flags rather than a live provider.
type StaticLocator struct {
	Fix Fix
}

// Watch emits the static fix once and then idles until cancellation.
func (s StaticLocator) Watch(ctx context.Context) (<-chan Fix, error) {
	ch := make(chan Fix, 1)
	ch <- s.Fix
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
