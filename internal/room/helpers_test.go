package room

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) armed(d time.Duration) []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if t.d == d {
			out = append(out, t)
		}
	}
	return out
}

type fakeTicker struct {
	c       chan time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.stopped = true }

type fakeTickers struct {
	created []*fakeTicker
}

func (f *fakeTickers) NewTicker(time.Duration) Ticker {
	t := &fakeTicker{c: make(chan time.Time)}
	f.created = append(f.created, t)
	return t
}

type testRoom struct {
	*Room
	sched   *fakeScheduler
	tickers *fakeTickers
	clients map[string]*Client
	emptied int
}

// newTestRoom builds a room without starting its actor; tests call the
// handlers directly, which is exactly what Run would do.
func newTestRoom(t *testing.T, seekerIndex int, names ...string) *testRoom {
	t.Helper()
	require.NotEmpty(t, names)

	tr := &testRoom{
		sched:   &fakeScheduler{},
		tickers: &fakeTickers{},
		clients: make(map[string]*Client),
	}
	opts := Options{
		Scheduler: tr.sched,
		Ticker:    tr.tickers,
		Intn:      func(n int) int { return seekerIndex % n },
	}

	host := NewClient(nil, nil)
	tr.Room = NewRoom("ABC123", "host-id", names[0], host, opts, func(*Room) { tr.emptied++ })
	host.bind("host-id", "ABC123")
	tr.clients[names[0]] = host
	tr.announceCreated()

	for _, name := range names[1:] {
		c := NewClient(nil, nil)
		res := tr.handleJoin(c, name)
		require.NoError(t, res.err)
		tr.clients[name] = c
	}
	tr.drainAll()
	return tr
}

func (tr *testRoom) id(name string) string {
	return tr.memberByName(name).ID
}

func (tr *testRoom) intent(name string, msg InboundMessage) {
	msg.RoomCode = tr.Code
	tr.handleIntent(tr.clients[name], msg)
}

func (tr *testRoom) readyAll(msgType string) {
	for _, m := range tr.members {
		tr.handleIntent(m.client, InboundMessage{Type: msgType, RoomCode: tr.Code})
	}
}

func (tr *testRoom) seekerName() string {
	for _, m := range tr.members {
		if tr.roles[m.ID] == RoleSeeker {
			return m.Name
		}
	}
	return ""
}

func (tr *testRoom) drainAll() {
	for _, c := range tr.clients {
		drain(c)
	}
}

// fire runs a fake timer callback and feeds the resulting event to the room,
// as the actor loop would.
func (tr *testRoom) fire(t *testing.T, timer *fakeTimer) {
	t.Helper()
	timer.f()
	select {
	case ev := <-tr.timers:
		tr.handleTimer(ev)
	default:
		t.Fatal("timer callback did not deliver an event")
	}
}

type wireMsg struct {
	Type string
	Raw  json.RawMessage
}

func parseWire(data []byte) wireMsg {
	var head struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(data, &head)
	return wireMsg{Type: head.Type, Raw: data}
}

func drain(c *Client) []wireMsg {
	var out []wireMsg
	for {
		select {
		case data := <-c.send:
			out = append(out, parseWire(data))
		default:
			return out
		}
	}
}

func ofType(msgs []wireMsg, msgType string) []wireMsg {
	var out []wireMsg
	for _, m := range msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func decode[T any](t *testing.T, m wireMsg) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(m.Raw, &v))
	return v
}
