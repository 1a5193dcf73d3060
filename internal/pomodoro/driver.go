package pomodoro

import (
	"context"
	"time"
)

// Drive calls m.Tick every interval until ctx is done.
func Drive(ctx context.Context, m *Machine, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Tick()
		}
	}
}
