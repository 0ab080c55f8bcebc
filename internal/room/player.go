package room

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"golang.org/x/time/rate"

	"github.com/sakshamg567/chase/logger"
)

const (
	sendBufferSize = 256
	pingInterval   = 54 * time.Second
	writeWait      = 10 * time.Second
)

// Socket is the subset of a websocket connection a Client needs.
// *websocket.Conn from gofiber/contrib/websocket satisfies it.
type Socket interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// MessageHandler consumes what a Client reads off the wire.
type MessageHandler interface {
	HandleMessage(c *Client, raw []byte)
	HandleClose(c *Client)
}

// Client is one live connection. It is bound to a player and room after a
// successful create or join; a reconnect binds a fresh Client to the same player.
type Client struct {
	socket  Socket
	send    chan []byte
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
	limiter *rate.Limiter

	mu       sync.RWMutex
	playerID string
	roomCode string
}

func NewClient(socket Socket, limiter *rate.Limiter) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		socket:  socket,
		send:    make(chan []byte, sendBufferSize),
		ctx:     ctx,
		cancel:  cancel,
		limiter: limiter,
	}
}

func (c *Client) bind(playerID, roomCode string) {
	c.mu.Lock()
	c.playerID = playerID
	c.roomCode = roomCode
	c.mu.Unlock()
}

// Binding returns the player and room this connection speaks for, empty if unbound.
func (c *Client) Binding() (playerID, roomCode string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID, c.roomCode
}

func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Client) Alive() bool {
	return c.ctx.Err() == nil
}

// Send queues msg without blocking. A full or closed queue drops the message.
func (c *Client) Send(msg []byte) bool {
	if !c.Alive() {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		pid, _ := c.Binding()
		logger.Warn("client %s send queue full, dropping message", pid)
		return false
	}
}

func (c *Client) SendJSON(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("marshal outbound message: %v", err)
		return false
	}
	return c.Send(data)
}

// Close ends the connection. WritePump notices, says goodbye and closes the
// socket, which in turn unblocks ReadPump.
func (c *Client) Close() {
	c.once.Do(c.cancel)
}

func (c *Client) ReadPump(h MessageHandler) {
	defer func() {
		if recovered := recover(); recovered != nil {
			pid, _ := c.Binding()
			logger.Error("client %s readPump panic: %v", pid, recovered)
		}
		c.Close()
		h.HandleClose(c)
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			_, msg, err := c.socket.ReadMessage()
			if err != nil {
				pid, _ := c.Binding()
				logger.Debug("read error for player %s: %v", pid, err)
				return
			}

			if c.limiter != nil && !c.limiter.Allow() {
				pid, _ := c.Binding()
				logger.Debug("player %s over inbound rate, dropping message", pid)
				continue
			}

			h.HandleMessage(c, msg)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
		c.socket.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			c.socket.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, msg); err != nil {
				pid, _ := c.Binding()
				logger.Debug("write error for player %s: %v", pid, err)
				return
			}

		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				pid, _ := c.Binding()
				logger.Debug("ping error for player %s: %v", pid, err)
				return
			}
		}
	}
}
