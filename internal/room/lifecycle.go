package room

import (
	"github.com/sakshamg567/chase/logger"
)

const GameDuration = 120.0 // seconds

var spawnPoints = []Vec{
	{X: 400, Y: 300},
	{X: 100, Y: 100},
	{X: 700, Y: 100},
	{X: 100, Y: 500},
	{X: 700, Y: 500},
}

const (
	SeekerSpeed = 4.2
	ChaserSpeed = 3.0
)

// setPhase applies one step of lobby -> playing -> roundEnded -> playing -> ...
// and refuses anything else.
func (r *Room) setPhase(next Phase) bool {
	var ok bool
	switch r.phase {
	case PhaseLobby:
		ok = next == PhasePlaying
	case PhasePlaying:
		ok = next == PhaseRoundEnded
	case PhaseRoundEnded:
		ok = next == PhasePlaying
	}
	if !ok {
		logger.Warn("room %s: refused phase change %s -> %s", r.Code, r.phase, next)
		return false
	}
	r.phase = next
	return true
}

// allReady is the ready-gate: the ready set must equal the full membership.
func (r *Room) allReady() bool {
	if len(r.ready) != len(r.members) {
		return false
	}
	for _, m := range r.members {
		if _, ok := r.ready[m.ID]; !ok {
			return false
		}
	}
	return true
}

func (r *Room) markReady(id string) bool {
	if _, ok := r.ready[id]; ok {
		return false
	}
	r.ready[id] = struct{}{}
	return true
}

func (r *Room) clearReady() {
	r.ready = make(map[string]struct{})
}

func (r *Room) lobbyReady(m *member) {
	if r.phase != PhaseLobby {
		return
	}
	if !r.markReady(m.ID) {
		return
	}
	if r.allReady() && len(r.members) >= MinPlayers {
		r.startRound()
		return
	}
	r.broadcastReady()
}

func (r *Room) roundReady(m *member) {
	if r.phase != PhaseRoundEnded {
		return
	}
	if !r.markReady(m.ID) {
		return
	}
	if r.allReady() {
		r.startRound()
		return
	}
	r.broadcastReady()
}

// hostStart is the older host-only start button; it skips the ready gate.
func (r *Room) hostStart(m *member) {
	if r.phase != PhaseLobby || m.ID != r.hostID {
		return
	}
	if len(r.members) < MinPlayers {
		return
	}
	r.startRound()
}

func (r *Room) startRound() {
	first := r.phase == PhaseLobby
	if !r.setPhase(PhasePlaying) {
		return
	}

	r.catch.cancel()
	r.reconnect.cancel()
	r.catchLatched = false
	r.clearReady()
	r.round++
	r.timeLeft = GameDuration

	seeker := r.opts.Intn(len(r.members))
	r.roles = make(map[string]Role, len(r.members))
	r.sim = make(map[string]*SimPlayer, len(r.members))
	for i, m := range r.members {
		role, speed := RoleChaser, ChaserSpeed
		if i == seeker {
			role, speed = RoleSeeker, SeekerSpeed
		}
		spawn := spawnPoints[i%len(spawnPoints)]
		r.roles[m.ID] = role
		r.sim[m.ID] = &SimPlayer{
			X:     spawn.X,
			Y:     spawn.Y,
			Role:  role,
			Speed: speed,
			Name:  m.Name,
		}
	}

	for _, m := range r.members {
		if !m.live() {
			continue
		}
		roles := ProjectRoles(r.roles, m.ID)
		players := Project(r.sim, m.ID, r.roles[m.ID])
		if first {
			r.sendTo(m, GameStartMsg{Type: TypeGameStart, Roles: roles, Players: players})
			continue
		}
		r.sendTo(m, NewRoundMsg{
			Type:        TypeNewRound,
			Roles:       roles,
			Players:     players,
			Score:       r.score,
			RoundNumber: r.round,
		})
	}

	r.startLoop()
	// a member who readied and then dropped may have drawn the seeker role
	r.seekerOffline()
	logger.Info("room %s: round %d started, seeker %s", r.Code, r.round, r.members[seeker].Name)
}

// endRound records exactly one result per round; calls outside Playing are absorbed.
func (r *Room) endRound(winner Winner, reason string) {
	if r.phase != PhasePlaying {
		return
	}
	r.setPhase(PhaseRoundEnded)

	r.stopLoop()
	r.catch.cancel()
	r.reconnect.cancel()

	switch winner {
	case WinnerSeeker:
		r.score.SeekerWins++
	case WinnerChasers:
		r.score.ChaserWins++
	}
	r.lastResult = &RoundResult{Winner: winner, Reason: reason}
	r.clearReady()
	r.sim = nil

	for _, m := range r.members {
		r.sendTo(m, r.roundEndedFor(m))
	}
	logger.Info("room %s: round %d ended, winner=%s reason=%s score=%d:%d",
		r.Code, r.round, winner, reason, r.score.SeekerWins, r.score.ChaserWins)
}

func (r *Room) roundEndedFor(m *member) RoundEndedMsg {
	roles := make(map[string]Role, len(r.roles))
	for id, role := range r.roles {
		roles[id] = role
	}
	msg := RoundEndedMsg{
		Type:         TypeRoundEnded,
		Roles:        roles,
		MyRole:       r.roles[m.ID],
		MyID:         m.ID,
		Score:        r.score,
		RoundNumber:  r.round,
		ReadyPlayers: r.readyList(),
		TotalPlayers: len(r.members),
	}
	if r.lastResult != nil {
		msg.Winner = r.lastResult.Winner
		msg.Reason = r.lastResult.Reason
	}
	return msg
}
