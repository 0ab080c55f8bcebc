package room

import "time"

const (
	TickRate     = 60
	tickInterval = time.Second / TickRate
	tickSeconds  = 1.0 / TickRate

	DashDistance = 60.0
	DashCooldown = 3.0 // seconds
	CatchDelay   = 1500 * time.Millisecond
)

var defaultDashDir = Vec{X: 1, Y: 0}

func (r *Room) startLoop() {
	r.stopLoop()
	r.loop = r.opts.Ticker.NewTicker(tickInterval)
}

func (r *Room) stopLoop() {
	if r.loop != nil {
		r.loop.Stop()
		r.loop = nil
	}
}

// tick advances the round by one step: countdown, catch detection, dash
// cooldowns, then a personalised snapshot to every connected member.
func (r *Room) tick() {
	if r.phase != PhasePlaying {
		r.stopLoop()
		return
	}

	r.timeLeft -= tickSeconds
	if r.timeLeft <= 0 {
		r.timeLeft = 0
		r.endRound(WinnerSeeker, ReasonTimeout)
		return
	}

	r.detectCatch()

	for _, p := range r.sim {
		if p.DashCooldown > 0 {
			p.DashCooldown -= tickSeconds
			if p.DashCooldown < 0 {
				p.DashCooldown = 0
			}
		}
	}

	r.broadcastGameState()
}

func (r *Room) seeker() (string, *SimPlayer) {
	for id, p := range r.sim {
		if p.Role == RoleSeeker {
			return id, p
		}
	}
	return "", nil
}

func (r *Room) detectCatch() {
	_, seeker := r.seeker()
	if seeker == nil || r.catchLatched {
		return
	}
	// membership order keeps the reported collision point deterministic
	for _, m := range r.members {
		p, ok := r.sim[m.ID]
		if !ok || p.Role != RoleChaser {
			continue
		}
		if !Collide(p.Pos(), seeker.Pos(), PlayerRadius) {
			continue
		}
		r.catchLatched = true
		r.broadcast(CollisionMsg{Type: TypeCollision, X: p.X, Y: p.Y})
		r.arm(&r.catch, timerCatch, CatchDelay)
		return
	}
}

func (r *Room) broadcastGameState() {
	timeLeft := ceilSeconds(r.timeLeft)
	for _, m := range r.members {
		if !m.live() {
			continue
		}
		role := r.roles[m.ID]
		r.sendTo(m, GameStateMsg{
			Type:     TypeGameState,
			Players:  Project(r.sim, m.ID, role),
			TimeLeft: timeLeft,
			MyRole:   role,
		})
	}
}

func (r *Room) move(id string, dx, dy float64) {
	if r.phase != PhasePlaying {
		return
	}
	p, ok := r.sim[id]
	if !ok {
		return
	}
	dir, ok := Normalize(dx, dy)
	if !ok {
		return
	}
	p.lastDir, p.hasDir = dir, true

	if next, ok := Displace(p.Pos(), dir, p.Speed); ok {
		p.X, p.Y = next.X, next.Y
	}
}

func (r *Room) dash(id string) {
	if r.phase != PhasePlaying {
		return
	}
	p, ok := r.sim[id]
	if !ok || p.Role != RoleSeeker || p.DashCooldown != 0 {
		return
	}
	dir := defaultDashDir
	if p.hasDir {
		dir = p.lastDir
	}
	// a blocked dash keeps the cooldown free
	if next, ok := Displace(p.Pos(), dir, DashDistance); ok {
		p.X, p.Y = next.X, next.Y
		p.DashCooldown = DashCooldown
	}
}
