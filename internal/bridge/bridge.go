package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/revisit-app/revisit-agent/internal/model"
)

// Message actions exchanged with the page-resident script.
const (
	ActionPing                     = "ping"
	ActionInject                   = "injectContentScript"
	ActionScrapeAndShowOverlay     = "scrapeAndShowOverlay"
	ActionInjectOverlayWithResults = "injectOverlayWithAIResults"
	ActionShowNotification         = "showNotification"
)

type Message struct {
	Action       string          `json:"action"`
	BookmarkID   string          `json:"bookmarkId,omitempty"`
	BookmarkData *model.Bookmark `json:"bookmarkData,omitempty"`
	Message      string          `json:"message,omitempty"`
	Type         string          `json:"type,omitempty"`
}

// Messenger delivers one message to a page-resident script and returns its
// reply. Implementations decide the transport; the bridge only owns
// liveness and retry policy.
type Messenger interface {
	Send(ctx context.Context, target string, msg Message) (json.RawMessage, error)
	Inject(ctx context.Context, target string) error
}

// State is the lifecycle of a page-resident script as observed from here.
// The bridge is its only mutator.
type State string

const (
	StateUnknown     State = "unknown"
	StateInjecting   State = "injecting"
	StateVerified    State = "verified"
	StateUnreachable State = "unreachable"
)

// DeliveryError is raised after SendWithRetry exhausts its attempts.
type DeliveryError struct {
	Attempts int
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to send message after %d attempts: %v", e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

var ErrNotResponding = errors.New("content script is not responding to ping, refresh the page and try again")

const (
	baseDelay   = 100 * time.Millisecond
	maxDelay    = time.Second
	settleDelay = 500 * time.Millisecond

	DefaultMaxAttempts = 3
)

type Bridge struct {
	messenger Messenger
	logger    *zap.SugaredLogger

	// waits are fields so tests can collapse them
	baseDelay   time.Duration
	maxDelay    time.Duration
	settleDelay time.Duration

	mu     sync.Mutex
	states map[string]State
}

func New(messenger Messenger, l *zap.SugaredLogger) *Bridge {
	return &Bridge{
		messenger:   messenger,
		logger:      l,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		settleDelay: settleDelay,
		states:      map[string]State{},
	}
}

func (b *Bridge) State(target string) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.states[target]; ok {
		return s
	}
	return StateUnknown
}

func (b *Bridge) setState(target string, s State) {
	b.mu.Lock()
	b.states[target] = s
	b.mu.Unlock()
}

// VerifyAlive pings the target. Failure to respond means "not alive", never
// an error: liveness is a question, not an exceptional condition.
func (b *Bridge) VerifyAlive(ctx context.Context, target string) bool {
	_, err := b.messenger.Send(ctx, target, Message{Action: ActionPing})
	if err != nil {
		b.logger.Debugw("ping failed, content script not ready", "target", target, "err", err)
		b.setState(target, StateUnreachable)
		return false
	}
	b.setState(target, StateVerified)
	return true
}

// EnsureReady guarantees a live script before substantive work is sent:
// verify, inject if needed, allow a settle period, verify again. Substantive
// messages never go to an unverified target.
func (b *Bridge) EnsureReady(ctx context.Context, target string) error {
	if b.VerifyAlive(ctx, target) {
		return nil
	}

	b.setState(target, StateInjecting)
	b.logger.Debugw("injecting content script", "target", target)
	if err := b.messenger.Inject(ctx, target); err != nil {
		b.setState(target, StateUnreachable)
		return errors.Wrap(err, "content script injection failed")
	}

	if err := b.wait(ctx, b.settleDelay); err != nil {
		return err
	}

	if !b.VerifyAlive(ctx, target) {
		return ErrNotResponding
	}
	return nil
}

// SendWithRetry delivers a message with bounded exponential backoff:
// attempt i waits min(base*2^i, max) before sending, the first included, so
// a freshly injected script has time to settle. Deterministic, not
// jittered: the target is a local process, not a remote service.
func (b *Bridge) SendWithRetry(ctx context.Context, target string, msg Message, maxAttempts int) (json.RawMessage, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		delay := b.baseDelay << uint(i)
		if delay > b.maxDelay {
			delay = b.maxDelay
		}
		if err := b.wait(ctx, delay); err != nil {
			return nil, err
		}

		resp, err := b.messenger.Send(ctx, target, msg)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		b.logger.Warnw("message send attempt failed",
			"target", target, "action", msg.Action, "attempt", i+1, "err", err)
	}

	b.setState(target, StateUnreachable)
	return nil, &DeliveryError{Attempts: maxAttempts, Err: lastErr}
}

// Notify shows a status toast on the page. Best-effort: a page that cannot
// display a notification must not fail the surrounding operation.
func (b *Bridge) Notify(ctx context.Context, target, message, notifType string) {
	_, err := b.messenger.Send(ctx, target, Message{
		Action:  ActionShowNotification,
		Message: message,
		Type:    notifType,
	})
	if err != nil {
		b.logger.Warnw("could not show notification", "target", target, "message", message, "err", err)
	}
}

func (b *Bridge) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
