package room

import (
	"fmt"
	"time"

	"github.com/sakshamg567/chase/logger"
	"github.com/sakshamg567/chase/pkg/utils"
)

const ReconnectGrace = 10 * time.Second

func (r *Room) handleJoin(c *Client, name string) joinResult {
	existing := r.memberByName(name)
	if existing == nil {
		if r.phase != PhaseLobby {
			return joinResult{err: ErrGameAlreadyStarted}
		}
		if len(r.members) >= MaxPlayers {
			return joinResult{err: ErrRoomFull}
		}
	}

	// the connection is taking a different seat, so its current one goes offline
	prev := r.memberByClient(c)
	if prev != nil && prev != existing {
		prev.client = nil
	} else {
		prev = nil
	}

	if existing != nil {
		r.rejoin(existing, c)
		r.vacated(prev)
		return joinResult{playerID: existing.ID, phase: r.phase}
	}

	m := &member{ID: utils.GenPlayerID(), Name: name, client: c}
	r.members = append(r.members, m)
	c.bind(m.ID, r.Code)

	r.sendTo(m, RoomJoinedMsg{Type: TypeRoomJoined, RoomCode: r.Code, PlayerID: m.ID, GameState: r.phase})
	r.broadcastLobby()
	logger.Info("room %s: %s joined (%d players)", r.Code, name, len(r.members))
	r.vacated(prev)
	return joinResult{playerID: m.ID, phase: r.phase}
}

// rejoin re-binds a member to a new connection, keeping its id, role and position.
func (r *Room) rejoin(m *member, c *Client) {
	if old := m.client; old != nil && old != c {
		old.Close()
	}
	m.client = c
	c.bind(m.ID, r.Code)

	r.sendTo(m, RoomJoinedMsg{Type: TypeRoomJoined, RoomCode: r.Code, PlayerID: m.ID, GameState: r.phase})

	switch r.phase {
	case PhaseLobby:
		r.broadcastLobby()
	case PhasePlaying:
		r.sendTo(m, GameStartMsg{
			Type:    TypeGameStart,
			Roles:   ProjectRoles(r.roles, m.ID),
			Players: Project(r.sim, m.ID, r.roles[m.ID]),
		})
		if r.roles[m.ID] == RoleSeeker && r.reconnect.active() {
			r.reconnect.cancel()
			logger.Info("room %s: seeker %s is back, round continues", r.Code, m.Name)
		}
	case PhaseRoundEnded:
		r.sendTo(m, r.roundEndedFor(m))
	}
	logger.Info("room %s: %s reconnected during %s", r.Code, m.Name, r.phase)
}

func (r *Room) handleDisconnect(c *Client) {
	m := r.memberByClient(c)
	if m == nil {
		// already superseded by a reconnect
		return
	}
	m.client = nil
	r.vacated(m)
}

// vacated runs after m lost its connection: room teardown, host handoff and
// the phase-specific follow-up. A nil m is a no-op.
func (r *Room) vacated(m *member) {
	if m == nil {
		return
	}
	logger.Info("room %s: %s disconnected, keeping seat", r.Code, m.Name)

	if r.liveCount() == 0 {
		r.destroy()
		return
	}

	if m.ID == r.hostID {
		for _, other := range r.members {
			if other.live() {
				r.hostID = other.ID
				logger.Info("room %s: host passed to %s", r.Code, other.Name)
				break
			}
		}
	}

	switch r.phase {
	case PhaseLobby:
		r.broadcastLobby()
	case PhasePlaying:
		if r.roles[m.ID] == RoleSeeker {
			r.seekerOffline()
		}
	case PhaseRoundEnded:
	}
}

// seekerOffline starts the grace period unless one is already running or the
// seeker still has a live connection.
func (r *Room) seekerOffline() {
	if r.phase != PhasePlaying || r.reconnect.active() {
		return
	}
	for _, m := range r.members {
		if r.roles[m.ID] == RoleSeeker && m.live() {
			return
		}
	}
	r.arm(&r.reconnect, timerReconnect, ReconnectGrace)
	r.broadcast(PlayerDisconnectedMsg{
		Type:    TypePlayerDisconnected,
		Message: fmt.Sprintf("The seeker disconnected! They have %d seconds to reconnect.", int(ReconnectGrace.Seconds())),
	})
	logger.Info("room %s: seeker offline, grace period started", r.Code)
}

func (r *Room) reconnectExpired() {
	for _, m := range r.members {
		if r.roles[m.ID] == RoleSeeker && m.live() {
			return
		}
	}
	r.endRound(WinnerChasers, ReasonDisconnected)
}

// destroy tears the room down once nobody is connected.
func (r *Room) destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.teardown()
	if r.onEmpty != nil {
		r.onEmpty(r)
	}
	logger.Info("room %s: deleted, no active players", r.Code)
}
