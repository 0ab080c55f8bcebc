package room

import "math"

type SimPlayer struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Role         Role    `json:"role"`
	Speed        float64 `json:"speed"`
	Name         string  `json:"name"`
	DashCooldown float64 `json:"dashCooldown"`

	lastDir Vec
	hasDir  bool
}

func (p *SimPlayer) Pos() Vec {
	return Vec{X: p.X, Y: p.Y}
}

// PlayerView is what one viewer is allowed to know about one player.
type PlayerView struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Role         Role    `json:"role"`
	Speed        float64 `json:"speed"`
	Name         string  `json:"name"`
	DashCooldown float64 `json:"dashCooldown"`
}

// Project builds the personalised view of the simulation for viewerID.
// A seeker sees everybody as they are. A chaser sees only name and position
// of every other player: role reads unknown, speed and dash cooldown read 0,
// so no field tells the seeker apart.
func Project(sim map[string]*SimPlayer, viewerID string, viewerRole Role) map[string]PlayerView {
	out := make(map[string]PlayerView, len(sim))
	for id, p := range sim {
		v := PlayerView{
			X:            p.X,
			Y:            p.Y,
			Role:         p.Role,
			Speed:        p.Speed,
			Name:         p.Name,
			DashCooldown: p.DashCooldown,
		}
		if id != viewerID && viewerRole != RoleSeeker {
			v.Role = RoleUnknown
			v.Speed = 0
			v.DashCooldown = 0
		}
		out[id] = v
	}
	return out
}

// ProjectRoles applies the same masking rule to the role table.
func ProjectRoles(roles map[string]Role, viewerID string) map[string]Role {
	viewerRole := roles[viewerID]
	out := make(map[string]Role, len(roles))
	for id, r := range roles {
		if id != viewerID && viewerRole != RoleSeeker {
			r = RoleUnknown
		}
		out[id] = r
	}
	return out
}

func ceilSeconds(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Ceil(v))
}
