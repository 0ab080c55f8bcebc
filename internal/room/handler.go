package room

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sakshamg567/chase/logger"
)

const joinTimeout = 5 * time.Second

// Handler turns raw client frames into registry and room operations.
type Handler struct {
	rooms *RoomManager
}

func NewHandler(rooms *RoomManager) *Handler {
	return &Handler{rooms: rooms}
}

func (h *Handler) HandleMessage(c *Client, raw []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Warn("invalid ws message: %v, raw message: %.200s", err, raw)
		return
	}

	switch msg.Type {
	case TypeCreateRoom:
		h.createRoom(c, msg)

	case TypeJoinRoom:
		h.joinRoom(c, msg)

	case TypeCheckRoomExists:
		code := normalizeCode(msg.RoomCode)
		c.SendJSON(RoomExistsMsg{
			Type:     TypeRoomExists,
			RoomCode: code,
			Exists:   h.rooms.RoomExists(code),
		})

	case TypePlayerReady, TypePlayerReadyRound, TypeStartGame, TypeMove, TypeDash:
		code := normalizeCode(msg.RoomCode)
		if _, bound := c.Binding(); bound == "" || bound != code {
			return
		}
		r, ok := h.rooms.GetRoom(code)
		if !ok {
			return
		}
		r.Submit(c, msg)

	default:
		logger.Debug("ignoring message type %q", msg.Type)
	}
}

func (h *Handler) createRoom(c *Client, msg InboundMessage) {
	h.detach(c, "")
	if _, _, err := h.rooms.CreateRoom(c, msg.PlayerName); err != nil {
		sendError(c, err)
	}
}

func (h *Handler) joinRoom(c *Client, msg InboundMessage) {
	code := normalizeCode(msg.RoomCode)
	h.detach(c, code)
	prevID, _ := c.Binding()

	ctx, cancel := context.WithTimeout(c.ctx, joinTimeout)
	defer cancel()

	pid, _, err := h.rooms.JoinRoom(ctx, c, code, msg.PlayerName)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("join %s aborted: %v", code, err)
			return
		}
		sendError(c, err)
		return
	}
	if prevID != "" && prevID != pid {
		// switched seats inside the same room
		h.rooms.Unbind(prevID, c)
	}
}

// detach releases c's seat in any room other than keep before it binds elsewhere.
func (h *Handler) detach(c *Client, keep string) {
	pid, code := c.Binding()
	if pid == "" || code == keep {
		return
	}
	h.rooms.Unbind(pid, c)
	if r, ok := h.rooms.GetRoom(code); ok {
		r.Leave(c)
	}
	c.bind("", "")
}

func (h *Handler) HandleClose(c *Client) {
	pid, code := c.Binding()
	if pid == "" {
		return
	}
	h.rooms.Unbind(pid, c)
	if r, ok := h.rooms.GetRoom(code); ok {
		r.Leave(c)
	}
}

func sendError(c *Client, err error) {
	c.SendJSON(ErrorMsg{Type: TypeError, Message: err.Error()})
}
