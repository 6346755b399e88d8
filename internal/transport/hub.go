package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/revisit-app/revisit-agent/internal/bridge"
)

const (
	defaultSendTimeout = 10 * time.Second
	defaultPollWait    = 25 * time.Second
)

// Envelope wraps one outbound message with a correlation id the script
// echoes back in its reply.
type Envelope struct {
	ID      string         `json:"id"`
	Message bridge.Message `json:"message"`
}

// MessageHub carries the orchestrator-to-script direction over long
// polling: the page-resident script holds a GET open, the hub hands it the
// next pending envelope, and the script posts the reply back under the
// envelope id. Satisfies bridge.Messenger.
type MessageHub struct {
	logger *zap.SugaredLogger

	// timeouts are fields so tests can collapse them
	sendTimeout time.Duration
	pollWait    time.Duration

	mu       sync.Mutex
	queues   map[string]chan Envelope
	replies  map[string]chan json.RawMessage
	pollers  map[string]int
	lastSeen map[string]time.Time
}

func NewMessageHub(l *zap.SugaredLogger) *MessageHub {
	return &MessageHub{
		logger:      l,
		sendTimeout: defaultSendTimeout,
		pollWait:    defaultPollWait,
		queues:      map[string]chan Envelope{},
		replies:     map[string]chan json.RawMessage{},
		pollers:     map[string]int{},
		lastSeen:    map[string]time.Time{},
	}
}

func (h *MessageHub) queue(target string) chan Envelope {
	h.mu.Lock()
	defer h.mu.Unlock()
	q, ok := h.queues[target]
	if !ok {
		q = make(chan Envelope, 16)
		h.queues[target] = q
	}
	return q
}

// Send enqueues a message for the target and blocks until the script
// replies or the timeout passes. An undelivered or unanswered message is an
// error; the bridge decides whether to retry.
func (h *MessageHub) Send(ctx context.Context, target string, msg bridge.Message) (json.RawMessage, error) {
	env := Envelope{ID: uuid.New().String(), Message: msg}

	replyCh := make(chan json.RawMessage, 1)
	h.mu.Lock()
	h.replies[env.ID] = replyCh
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.replies, env.ID)
		h.mu.Unlock()
	}()

	timer := time.NewTimer(h.sendTimeout)
	defer timer.Stop()

	select {
	case h.queue(target) <- env:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, errors.Errorf("no content script polling for target %s", target)
	}

	select {
	case payload := <-replyCh:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, errors.Errorf("content script did not reply to %s", msg.Action)
	}
}

// Inject cannot install a script into a remote page; all the hub can do is
// confirm a script is listening so a retried ping has a chance.
func (h *MessageHub) Inject(_ context.Context, target string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pollers[target] > 0 {
		return nil
	}
	if seen, ok := h.lastSeen[target]; ok && time.Since(seen) < h.pollWait {
		return nil
	}
	return errors.Errorf("no content script connected for target %s", target)
}

// Dequeue hands the next pending envelope to a polling script, waiting up
// to the poll window. Returns nil when nothing arrived in time.
func (h *MessageHub) Dequeue(ctx context.Context, target string) (*Envelope, error) {
	h.mu.Lock()
	h.pollers[target]++
	h.lastSeen[target] = time.Now()
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.pollers[target]--
		h.lastSeen[target] = time.Now()
		h.mu.Unlock()
	}()

	timer := time.NewTimer(h.pollWait)
	defer timer.Stop()

	select {
	case env := <-h.queue(target):
		return &env, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	}
}

// Reply routes a script's answer back to the Send call waiting on the
// envelope id.
func (h *MessageHub) Reply(id string, payload json.RawMessage) error {
	h.mu.Lock()
	ch, ok := h.replies[id]
	h.mu.Unlock()
	if !ok {
		return errors.Errorf("no pending message with id %s", id)
	}
	select {
	case ch <- payload:
		return nil
	default:
		return errors.Errorf("message %s already answered", id)
	}
}
