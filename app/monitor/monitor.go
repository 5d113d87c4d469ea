package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

type State string

const (
	Idle      State = "idle"
	Streaming State = "streaming"
	// Errored is reported to subscribers when a session fails and is
	// immediately followed by Idle.
	Errored State = "errored"
)

const subscriberBuffer = 128

var (
	errStreamEnded = errors.New("progress stream ended before completion")
	errSuperseded  = errors.New("session superseded")
)

// Refresher re-runs the collection fetch once generation completes.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Update is pushed to subscribers on every change. Entry is set when a log
// entry was appended; Done marks the completion step; Refreshed is sent after
// the follow-up collection fetch returned.
type Update struct {
	Session   uint64
	State     State
	Entry     string
	Err       string
	Done      bool
	Refreshed bool
}

type Snapshot struct {
	Session uint64
	State   State
	Log     []string
	Err     string
}

// Monitor consumes the generation progress stream. At most one session is
// active at a time; starting a new one tears the previous one down first.
type Monitor struct {
	streamURL  string
	httpClient *http.Client
	refresher  Refresher
	userAgent  string

	startMu sync.Mutex

	mu      sync.Mutex
	gen     uint64
	state   State
	log     []string
	lastErr string
	cancel  context.CancelFunc
	done    chan struct{}
	subs    map[int]chan Update
	nextSub int
}

func New(streamURL string, httpClient *http.Client, refresher Refresher, userAgent string) *Monitor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Monitor{
		streamURL:  streamURL,
		httpClient: httpClient,
		refresher:  refresher,
		userAgent:  userAgent,
		state:      Idle,
		subs:       make(map[int]chan Update),
	}
}

// Start opens a new session and returns its number. The session outlives
// ctx's cancellation; use Stop to end it.
func (m *Monitor) Start(ctx context.Context) uint64 {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.teardown()

	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.state = Streaming
	m.log = nil
	m.lastErr = ""
	m.cancel = cancel
	m.done = done
	m.notifyLocked(Update{Session: gen, State: Streaming})
	m.mu.Unlock()

	slog.Info("Progress session started", "session", gen, "url", m.streamURL)
	go m.run(sessionCtx, gen, done)

	return gen
}

// Stop tears down the active session, if any. Nothing from the old session
// can reach the log or trigger a refresh afterwards.
func (m *Monitor) Stop() {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.teardown()

	m.mu.Lock()
	defer m.mu.Unlock()
	// Followers of the stopped session see Idle under its own number.
	if m.state != Idle {
		m.state = Idle
		m.notifyLocked(Update{Session: m.gen, State: Idle})
	}
	m.gen++
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe returns the current snapshot together with a channel of the
// updates that follow it. Slow subscribers lose updates rather than block
// the stream. The returned func unsubscribes and closes the channel.
func (m *Monitor) Subscribe() (Snapshot, <-chan Update, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Update, subscriberBuffer)
	m.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}

	return m.snapshotLocked(), ch, unsubscribe
}

func (m *Monitor) snapshotLocked() Snapshot {
	log := make([]string, len(m.log))
	copy(log, m.log)
	return Snapshot{Session: m.gen, State: m.state, Log: log, Err: m.lastErr}
}

func (m *Monitor) notifyLocked(u Update) {
	for id, ch := range m.subs {
		select {
		case ch <- u:
		default:
			slog.Debug("Dropping progress update for slow subscriber", "subscriber", id, "session", u.Session)
		}
	}
}

func (m *Monitor) teardown() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	err := m.consume(ctx, gen)
	switch {
	case err == nil:
	case errors.Is(err, errSuperseded), ctx.Err() != nil:
		slog.Debug("Progress session closed", "session", gen)
	default:
		m.fail(gen, err)
	}
}

func (m *Monitor) consume(ctx context.Context, gen uint64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open progress stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("progress stream returned HTTP status %d", resp.StatusCode)
	}

	reader := NewEventReader(resp.Body)
	for {
		msg, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errStreamEnded
			}
			return fmt.Errorf("failed to read progress stream: %w", err)
		}

		// Named events are not progress messages.
		if msg.Event != "" && msg.Event != "message" {
			continue
		}

		entry, isStep := parseMessage(msg.Data)
		if entry == "" {
			continue
		}

		completed, ok := m.appendEntry(gen, entry, isStep)
		if !ok {
			return errSuperseded
		}
		if completed {
			m.complete(ctx, gen)
			return nil
		}
	}
}

// parseMessage returns the log entry for one message payload. JSON payloads
// contribute their step field and nothing when it is absent; anything that is
// not JSON is logged verbatim.
func parseMessage(data string) (string, bool) {
	if !json.Valid([]byte(data)) {
		return data, false
	}

	var msg struct {
		Step string `json:"step"`
	}
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return "", false
	}
	return msg.Step, msg.Step != ""
}

func isCompletion(step string) bool {
	return strings.Contains(strings.ToLower(step), "done")
}

func (m *Monitor) appendEntry(gen uint64, entry string, isStep bool) (completed bool, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen || m.state != Streaming {
		return false, false
	}

	m.log = append(m.log, entry)
	completed = isStep && isCompletion(entry)
	if completed {
		m.state = Idle
	}

	m.notifyLocked(Update{Session: gen, State: m.state, Entry: entry, Done: completed})
	slog.Debug("Progress step", "session", gen, "step", entry)

	return completed, true
}

func (m *Monitor) complete(ctx context.Context, gen uint64) {
	slog.Info("Progress session completed", "session", gen)

	err := m.refresher.Refresh(ctx)
	if err != nil {
		slog.Error("Failed to refresh posts after generation", "session", gen, "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	u := Update{Session: gen, State: m.state, Refreshed: err == nil}
	if err != nil {
		u.Err = err.Error()
	}
	m.notifyLocked(u)
}

func (m *Monitor) fail(gen uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return
	}

	slog.Error("Progress stream failed", "session", gen, "error", err)

	m.lastErr = err.Error()
	m.state = Errored
	m.notifyLocked(Update{Session: gen, State: Errored, Err: m.lastErr})

	m.state = Idle
	m.notifyLocked(Update{Session: gen, State: Idle, Err: m.lastErr})
}
