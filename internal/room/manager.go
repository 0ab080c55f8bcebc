package room

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sakshamg567/chase/logger"
	"github.com/sakshamg567/chase/pkg/utils"
)

const (
	maxNameLength   = 20
	maxCodeAttempts = 64
)

var errCodeSpaceExhausted = errors.New("could not allocate a free room code")

// RoomManager is the registry: room code -> Room and player id -> live connection.
type RoomManager struct {
	sync.RWMutex
	rooms   map[string]*Room
	clients map[string]*Client

	opts    Options
	genCode func() string
}

func NewRoomManager(opts Options) *RoomManager {
	return &RoomManager{
		rooms:   make(map[string]*Room),
		clients: make(map[string]*Client),
		opts:    opts,
		genCode: utils.GenRoomCode,
	}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom opens a room with c's player as its host and only member.
func (rm *RoomManager) CreateRoom(c *Client, hostName string) (string, string, error) {
	name, err := normalizeName(hostName)
	if err != nil {
		return "", "", err
	}

	rm.Lock()
	code := ""
	for i := 0; i < maxCodeAttempts; i++ {
		candidate := rm.genCode()
		if candidate == "" {
			continue
		}
		if _, taken := rm.rooms[candidate]; !taken {
			code = candidate
			break
		}
	}
	if code == "" {
		rm.Unlock()
		return "", "", errCodeSpaceExhausted
	}

	playerID := utils.GenPlayerID()
	r := NewRoom(code, playerID, name, c, rm.opts, rm.remove)
	rm.rooms[code] = r
	rm.clients[playerID] = c
	rm.Unlock()

	c.bind(playerID, code)
	r.announceCreated()
	go r.Run()

	logger.Info("room %s created by %s", code, name)
	return code, playerID, nil
}

// JoinRoom admits a new member or reconnects an existing one with the same name.
func (rm *RoomManager) JoinRoom(ctx context.Context, c *Client, code, name string) (string, Phase, error) {
	name, err := normalizeName(name)
	if err != nil {
		return "", 0, err
	}
	r, ok := rm.GetRoom(normalizeCode(code))
	if !ok {
		return "", 0, ErrRoomNotFound
	}

	playerID, phase, err := r.Join(ctx, c, name)
	if err != nil {
		return "", 0, err
	}
	rm.Bind(playerID, c)
	return playerID, phase, nil
}

func (rm *RoomManager) GetRoom(code string) (*Room, bool) {
	rm.RLock()
	defer rm.RUnlock()
	r, ok := rm.rooms[code]
	return r, ok
}

func (rm *RoomManager) RoomExists(code string) bool {
	_, ok := rm.GetRoom(normalizeCode(code))
	return ok
}

func (rm *RoomManager) Bind(playerID string, c *Client) {
	rm.Lock()
	rm.clients[playerID] = c
	rm.Unlock()
}

// Unbind forgets playerID's connection, unless a reconnect already replaced it.
func (rm *RoomManager) Unbind(playerID string, c *Client) {
	rm.Lock()
	if cur, ok := rm.clients[playerID]; ok && cur == c {
		delete(rm.clients, playerID)
	}
	rm.Unlock()
}

func (rm *RoomManager) Client(playerID string) (*Client, bool) {
	rm.RLock()
	defer rm.RUnlock()
	c, ok := rm.clients[playerID]
	return c, ok
}

func (rm *RoomManager) remove(r *Room) {
	rm.Lock()
	if cur, ok := rm.rooms[r.Code]; ok && cur == r {
		delete(rm.rooms, r.Code)
	}
	rm.Unlock()
}

func (rm *RoomManager) Rooms() []RoomSummary {
	rm.RLock()
	out := make([]RoomSummary, 0, len(rm.rooms))
	for _, r := range rm.rooms {
		out = append(out, r.Summary())
	}
	rm.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].RoomCode < out[j].RoomCode })
	return out
}

func (rm *RoomManager) MarshalRooms() ([]byte, error) {
	return json.Marshal(rm.Rooms())
}

// Shutdown stops every room actor and empties the registry.
func (rm *RoomManager) Shutdown() {
	rm.Lock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, r := range rm.rooms {
		rooms = append(rooms, r)
	}
	rm.rooms = make(map[string]*Room)
	rm.clients = make(map[string]*Client)
	rm.Unlock()

	for _, r := range rooms {
		r.Shutdown()
	}
}
