package room

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, h *Handler, c *Client, msg map[string]any) {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	h.HandleMessage(c, raw)
}

func TestHandlerDropsMalformedFrames(t *testing.T) {
	h := NewHandler(newTestManager(t))
	c := NewClient(nil, nil)

	assert.NotPanics(t, func() {
		h.HandleMessage(c, []byte("{not json"))
		h.HandleMessage(c, []byte(`{"type":"teleport"}`))
		h.HandleMessage(c, nil)
	})
	assert.Empty(t, drain(c))
}

func TestHandlerCheckRoomExists(t *testing.T) {
	rm := newTestManager(t)
	h := NewHandler(rm)
	code, _, err := rm.CreateRoom(NewClient(nil, nil), "ana")
	require.NoError(t, err)

	c := NewClient(nil, nil)
	send(t, h, c, map[string]any{"type": TypeCheckRoomExists, "roomCode": strings.ToLower(code)})
	send(t, h, c, map[string]any{"type": TypeCheckRoomExists, "roomCode": "ZZZZZZ"})

	msgs := drain(c)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoomExistsMsg{Type: TypeRoomExists, RoomCode: code, Exists: true}, decode[RoomExistsMsg](t, msgs[0]))
	assert.Equal(t, RoomExistsMsg{Type: TypeRoomExists, RoomCode: "ZZZZZZ", Exists: false}, decode[RoomExistsMsg](t, msgs[1]))
}

func TestHandlerReportsJoinErrors(t *testing.T) {
	h := NewHandler(newTestManager(t))
	c := NewClient(nil, nil)

	send(t, h, c, map[string]any{"type": TypeJoinRoom, "roomCode": "NOPE00", "playerName": "ben"})
	send(t, h, c, map[string]any{"type": TypeCreateRoom, "playerName": " "})

	msgs := drain(c)
	require.Len(t, msgs, 2)
	assert.Equal(t, ErrRoomNotFound.Error(), decode[ErrorMsg](t, msgs[0]).Message)
	assert.Equal(t, ErrInvalidName.Error(), decode[ErrorMsg](t, msgs[1]).Message)
	pid, _ := c.Binding()
	assert.Empty(t, pid)
}

func TestHandlerOnlyForwardsIntentsForBoundRoom(t *testing.T) {
	rm := newTestManager(t)
	h := NewHandler(rm)

	host, ben, stranger := NewClient(nil, nil), NewClient(nil, nil), NewClient(nil, nil)
	send(t, h, host, map[string]any{"type": TypeCreateRoom, "playerName": "ana"})
	created := decode[RoomCreatedMsg](t, waitFor(t, host, TypeRoomCreated))
	send(t, h, ben, map[string]any{"type": TypeJoinRoom, "roomCode": created.RoomCode, "playerName": "ben"})
	waitFor(t, ben, TypeRoomJoined)

	send(t, h, ben, map[string]any{"type": TypePlayerReady, "roomCode": "ZZZZZZ"})
	send(t, h, stranger, map[string]any{"type": TypePlayerReady, "roomCode": created.RoomCode})
	send(t, h, host, map[string]any{"type": TypePlayerReady, "roomCode": created.RoomCode})

	update := decode[ReadyUpdateMsg](t, waitFor(t, ben, TypeReadyUpdate))
	assert.Equal(t, []string{created.PlayerID}, update.ReadyPlayers)
	assert.Equal(t, 2, update.TotalPlayers)

	send(t, h, ben, map[string]any{"type": TypePlayerReady, "roomCode": strings.ToLower(created.RoomCode)})
	start := decode[GameStartMsg](t, waitFor(t, ben, TypeGameStart))
	assert.Len(t, start.Players, 2)
	waitFor(t, host, TypeGameStart)
}

func TestHandlerCloseReleasesSeat(t *testing.T) {
	rm := newTestManager(t)
	h := NewHandler(rm)

	host, ben := NewClient(nil, nil), NewClient(nil, nil)
	send(t, h, host, map[string]any{"type": TypeCreateRoom, "playerName": "ana"})
	created := decode[RoomCreatedMsg](t, waitFor(t, host, TypeRoomCreated))
	send(t, h, ben, map[string]any{"type": TypeJoinRoom, "roomCode": created.RoomCode, "playerName": "ben"})
	waitFor(t, ben, TypeRoomJoined)
	drain(ben)

	h.HandleClose(host)

	lobby := decode[LobbyUpdateMsg](t, waitFor(t, ben, TypeLobbyUpdate))
	require.Len(t, lobby.Players, 2)
	assert.False(t, lobby.Players[0].Active)
	assert.True(t, lobby.Players[1].Host)
	_, ok := rm.Client(created.PlayerID)
	assert.False(t, ok)

	h.HandleClose(ben)
	require.Eventually(t, func() bool { return !rm.RoomExists(created.RoomCode) }, time.Second, 5*time.Millisecond)

	assert.NotPanics(t, func() { h.HandleClose(NewClient(nil, nil)) })
}

func TestHandlerCreateLeavesPreviousRoom(t *testing.T) {
	rm := newTestManager(t)
	h := NewHandler(rm)

	host, ben := NewClient(nil, nil), NewClient(nil, nil)
	send(t, h, host, map[string]any{"type": TypeCreateRoom, "playerName": "ana"})
	first := decode[RoomCreatedMsg](t, waitFor(t, host, TypeRoomCreated))
	send(t, h, ben, map[string]any{"type": TypeJoinRoom, "roomCode": first.RoomCode, "playerName": "ben"})
	waitFor(t, ben, TypeRoomJoined)
	drain(host)

	send(t, h, ben, map[string]any{"type": TypeCreateRoom, "playerName": "ben"})
	second := decode[RoomCreatedMsg](t, waitFor(t, ben, TypeRoomCreated))
	assert.NotEqual(t, first.RoomCode, second.RoomCode)

	lobby := decode[LobbyUpdateMsg](t, waitFor(t, host, TypeLobbyUpdate))
	require.Len(t, lobby.Players, 2)
	assert.False(t, lobby.Players[1].Active)

	_, code := ben.Binding()
	assert.Equal(t, second.RoomCode, code)
}

func TestHandlerNameSwitchRebindsRegistry(t *testing.T) {
	rm := newTestManager(t)
	h := NewHandler(rm)

	host, ben := NewClient(nil, nil), NewClient(nil, nil)
	send(t, h, host, map[string]any{"type": TypeCreateRoom, "playerName": "ana"})
	created := decode[RoomCreatedMsg](t, waitFor(t, host, TypeRoomCreated))
	send(t, h, ben, map[string]any{"type": TypeJoinRoom, "roomCode": created.RoomCode, "playerName": "ben"})
	first := decode[RoomJoinedMsg](t, waitFor(t, ben, TypeRoomJoined))

	send(t, h, ben, map[string]any{"type": TypeJoinRoom, "roomCode": created.RoomCode, "playerName": "bob"})
	second := decode[RoomJoinedMsg](t, waitFor(t, ben, TypeRoomJoined))
	require.NotEqual(t, first.PlayerID, second.PlayerID)

	_, ok := rm.Client(first.PlayerID)
	assert.False(t, ok, "abandoned seat keeps no connection")
	bound, ok := rm.Client(second.PlayerID)
	require.True(t, ok)
	assert.Same(t, ben, bound)
	pid, _ := ben.Binding()
	assert.Equal(t, second.PlayerID, pid)
}
