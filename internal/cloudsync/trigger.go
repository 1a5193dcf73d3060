package cloudsync

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

const DefaultInterval = 30 * time.Second

// Puller is the operation every trigger fires.
type Puller interface {
	LoadFromRemote(ctx context.Context) error
}

// Trigger decides when to pull outside of pushes: on sign-in, when the app
// becomes visible or regains focus, and periodically while visible. All
// triggers require a credential. They are independent; two of them firing
// for the same gesture pull twice.
type Trigger struct {
	pull     Puller
	creds    TokenSource
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	hidden bool

	inflight sync.WaitGroup
}

type TriggerOption func(*Trigger)

func WithInterval(d time.Duration) TriggerOption {
	return func(t *Trigger) { t.interval = d }
}

func WithTriggerLogger(l *slog.Logger) TriggerOption {
	return func(t *Trigger) { t.logger = l }
}

func NewTrigger(p Puller, creds TokenSource, opts ...TriggerOption) *Trigger {
	t := &Trigger{
		pull:     p,
		creds:    creds,
		interval: DefaultInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CredentialAcquired pulls once after sign-in or session restore.
func (t *Trigger) CredentialAcquired(ctx context.Context) error {
	return t.fire(ctx, "credential")
}

// VisibilityChanged records whether the app is hidden and pulls once on a
// hidden to visible transition.
func (t *Trigger) VisibilityChanged(ctx context.Context, hidden bool) error {
	t.mu.Lock()
	wasHidden := t.hidden
	t.hidden = hidden
	t.mu.Unlock()

	if wasHidden && !hidden {
		return t.fire(ctx, "visible")
	}
	return nil
}

// FocusGained pulls once when the app regains input focus.
func (t *Trigger) FocusGained(ctx context.Context) error {
	return t.fire(ctx, "focus")
}

func (t *Trigger) Hidden() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hidden
}

// Run fires the periodic pull until ctx is done, then waits for pulls it
// started. Ticks are skipped while hidden or signed out. A slow pull does
// not hold back the next tick.
func (t *Trigger) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	defer t.inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.Hidden() {
				continue
			}
			if _, ok := t.creds.Token(); !ok {
				continue
			}
			t.inflight.Add(1)
			go func() {
				defer t.inflight.Done()
				t.fire(ctx, "interval")
			}()
		}
	}
}

func (t *Trigger) fire(ctx context.Context, reason string) error {
	if _, ok := t.creds.Token(); !ok {
		t.logger.Debug("sync trigger inert: no credential", "trigger", reason)
		return nil
	}
	t.logger.Debug("sync triggered", "trigger", reason)
	return t.pull.LoadFromRemote(ctx)
}
