package room

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sakshamg567/chase/logger"
)

const (
	MaxPlayers = 5
	MinPlayers = 2
)

type member struct {
	ID     string
	Name   string
	client *Client
}

func (m *member) live() bool {
	return m.client != nil
}

type joinRequest struct {
	client *Client
	name   string
	reply  chan joinResult
}

type joinResult struct {
	playerID string
	phase    Phase
	err      error
}

type inbound struct {
	client *Client
	msg    InboundMessage
}

// Options carries the room's injectable collaborators. Zero values fall back
// to the wall clock and math/rand.
type Options struct {
	Scheduler Scheduler
	Ticker    TickerSource
	Intn      func(n int) int
}

func (o Options) withDefaults() Options {
	if o.Scheduler == nil {
		o.Scheduler = SystemClock
	}
	if o.Ticker == nil {
		o.Ticker = SystemClock
	}
	if o.Intn == nil {
		o.Intn = rand.Intn
	}
	return o
}

// RoomSummary is a read-only snapshot published after every event the room
// processes, so other goroutines never touch actor state.
type RoomSummary struct {
	RoomCode string `json:"roomCode"`
	Phase    Phase  `json:"phase"`
	Players  int    `json:"players"`
	Live     int    `json:"live"`
	Round    int    `json:"round"`
	Score    Score  `json:"score"`
}

// Room is one game instance. Every field below the channel block is owned by
// the Run goroutine; nothing else reads or writes it.
type Room struct {
	Code string

	register   chan joinRequest
	inbox      chan inbound
	unregister chan *Client
	timers     chan timerEvent
	stop       chan struct{}
	stopOnce   sync.Once
	done       chan struct{}
	summary    atomic.Pointer[RoomSummary]

	opts    Options
	onEmpty func(*Room)

	members    []*member
	hostID     string
	phase      Phase
	roles      map[string]Role
	sim        map[string]*SimPlayer
	timeLeft   float64
	score      Score
	round      int
	ready      map[string]struct{}
	lastResult *RoundResult

	catchLatched bool
	catch        pendingTimer
	reconnect    pendingTimer
	loop         Ticker
	destroyed    bool
}

func NewRoom(code, hostID, hostName string, host *Client, opts Options, onEmpty func(*Room)) *Room {
	r := &Room{
		Code:       code,
		register:   make(chan joinRequest),
		inbox:      make(chan inbound, 256),
		unregister: make(chan *Client, 16),
		timers:     make(chan timerEvent, 4),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		opts:       opts.withDefaults(),
		onEmpty:    onEmpty,
		hostID:     hostID,
		phase:      PhaseLobby,
		roles:      make(map[string]Role),
		ready:      make(map[string]struct{}),
	}
	r.members = append(r.members, &member{ID: hostID, Name: hostName, client: host})
	r.publishSummary()
	return r
}

// announceCreated greets the host. Called by the registry before Run starts.
func (r *Room) announceCreated() {
	host := r.member(r.hostID)
	r.sendTo(host, RoomCreatedMsg{Type: TypeRoomCreated, RoomCode: r.Code, PlayerID: r.hostID})
	r.broadcastLobby()
}

func (r *Room) Run() {
	defer close(r.done)

	for {
		var tickC <-chan time.Time
		if r.loop != nil {
			tickC = r.loop.C()
		}

		select {
		case req := <-r.register:
			req.reply <- r.handleJoin(req.client, req.name)

		case in := <-r.inbox:
			r.handleIntent(in.client, in.msg)

		case c := <-r.unregister:
			r.handleDisconnect(c)

		case ev := <-r.timers:
			r.handleTimer(ev)

		case <-tickC:
			r.tick()

		case <-r.stop:
			r.teardown()
			return
		}

		r.publishSummary()
		if r.destroyed {
			return
		}
	}
}

// Shutdown stops the actor without waiting for players to leave.
func (r *Room) Shutdown() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) Summary() RoomSummary {
	return *r.summary.Load()
}

// Join asks the actor to admit or reconnect a player by display name.
func (r *Room) Join(ctx context.Context, c *Client, name string) (string, Phase, error) {
	req := joinRequest{client: c, name: name, reply: make(chan joinResult, 1)}
	select {
	case r.register <- req:
	case <-r.done:
		return "", 0, ErrRoomNotFound
	case <-ctx.Done():
		return "", 0, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res.playerID, res.phase, res.err
	case <-ctx.Done():
		return "", 0, ctx.Err()
	}
}

// Submit queues an intent for the actor. It blocks only while this room's inbox is full.
func (r *Room) Submit(c *Client, msg InboundMessage) {
	select {
	case r.inbox <- inbound{client: c, msg: msg}:
	case <-r.done:
	}
}

func (r *Room) Leave(c *Client) {
	select {
	case r.unregister <- c:
	case <-r.done:
	}
}

func (r *Room) handleIntent(c *Client, msg InboundMessage) {
	m := r.memberByClient(c)
	if m == nil {
		return
	}

	switch msg.Type {
	case TypePlayerReady:
		r.lobbyReady(m)
	case TypePlayerReadyRound:
		r.roundReady(m)
	case TypeStartGame:
		r.hostStart(m)
	case TypeMove:
		r.move(m.ID, msg.DX, msg.DY)
	case TypeDash:
		r.dash(m.ID)
	}
}

func (r *Room) handleTimer(ev timerEvent) {
	switch ev.kind {
	case timerCatch:
		if r.catch.matches(ev) {
			r.endRound(WinnerChasers, ReasonCaught)
		}
	case timerReconnect:
		if r.reconnect.matches(ev) {
			r.reconnectExpired()
		}
	}
}

func (r *Room) arm(slot *pendingTimer, kind timerKind, d time.Duration) {
	slot.cancel()
	ev := timerEvent{kind: kind, gen: slot.gen}
	slot.timer = r.opts.Scheduler.AfterFunc(d, func() {
		select {
		case r.timers <- ev:
		case <-r.done:
		}
	})
}

// teardown cancels every timer and the game loop. Safe to call more than once.
func (r *Room) teardown() {
	r.stopLoop()
	r.catch.cancel()
	r.reconnect.cancel()
}

func (r *Room) member(id string) *member {
	for _, m := range r.members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *Room) memberByName(name string) *member {
	for _, m := range r.members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (r *Room) memberByClient(c *Client) *member {
	if c == nil {
		return nil
	}
	for _, m := range r.members {
		if m.client == c {
			return m
		}
	}
	return nil
}

func (r *Room) liveCount() int {
	n := 0
	for _, m := range r.members {
		if m.live() {
			n++
		}
	}
	return n
}

func (r *Room) memberIDs() []string {
	ids := make([]string, len(r.members))
	for i, m := range r.members {
		ids[i] = m.ID
	}
	return ids
}

// readyList returns ready ids in membership order.
func (r *Room) readyList() []string {
	out := make([]string, 0, len(r.ready))
	for _, m := range r.members {
		if _, ok := r.ready[m.ID]; ok {
			out = append(out, m.ID)
		}
	}
	return out
}

func (r *Room) sendTo(m *member, v any) {
	if m == nil || m.client == nil {
		return
	}
	m.client.SendJSON(v)
}

func (r *Room) broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("room %s: marshal broadcast: %v", r.Code, err)
		return
	}
	for _, m := range r.members {
		if m.client != nil {
			m.client.Send(data)
		}
	}
}

func (r *Room) broadcastLobby() {
	players := make([]LobbyPlayer, len(r.members))
	for i, m := range r.members {
		players[i] = LobbyPlayer{
			ID:     m.ID,
			Name:   m.Name,
			Active: m.live(),
			Host:   m.ID == r.hostID,
		}
	}
	r.broadcast(LobbyUpdateMsg{Type: TypeLobbyUpdate, Players: players})
}

func (r *Room) broadcastReady() {
	r.broadcast(ReadyUpdateMsg{
		Type:         TypeReadyUpdate,
		ReadyPlayers: r.readyList(),
		TotalPlayers: len(r.members),
	})
}

func (r *Room) publishSummary() {
	r.summary.Store(&RoomSummary{
		RoomCode: r.Code,
		Phase:    r.phase,
		Players:  len(r.members),
		Live:     r.liveCount(),
		Round:    r.round,
		Score:    r.score,
	})
}
