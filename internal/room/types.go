package room

import (
	"encoding/json"
	"fmt"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhasePlaying
	PhaseRoundEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhasePlaying:
		return "playing"
	case PhaseRoundEnded:
		return "roundEnded"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

type Role string

const (
	RoleSeeker  Role = "seeker"
	RoleChaser  Role = "chaser"
	RoleUnknown Role = "unknown"
)

type Winner string

const (
	WinnerSeeker  Winner = "seeker"
	WinnerChasers Winner = "chasers"
)

const (
	ReasonTimeout      = "timeout"
	ReasonCaught       = "caught"
	ReasonDisconnected = "disconnected"
)

type Score struct {
	SeekerWins int `json:"seekerWins"`
	ChaserWins int `json:"chaserWins"`
}

type RoundResult struct {
	Winner Winner
	Reason string
}

// InboundMessage is every client intent flattened into one shape; Type picks the fields that matter.
type InboundMessage struct {
	Type       string  `json:"type"`
	PlayerName string  `json:"playerName"`
	RoomCode   string  `json:"roomCode"`
	DX         float64 `json:"dx"`
	DY         float64 `json:"dy"`
}

const (
	TypeCreateRoom       = "createRoom"
	TypeJoinRoom         = "joinRoom"
	TypeCheckRoomExists  = "checkRoomExists"
	TypePlayerReady      = "playerReady"
	TypePlayerReadyRound = "playerReadyRound"
	TypeStartGame        = "startGame"
	TypeMove             = "move"
	TypeDash             = "dash"

	TypeRoomCreated        = "roomCreated"
	TypeRoomJoined         = "roomJoined"
	TypeLobbyUpdate        = "lobbyUpdate"
	TypeReadyUpdate        = "readyUpdate"
	TypeGameStart          = "gameStart"
	TypeNewRound           = "newRound"
	TypeGameState          = "gameState"
	TypeCollision          = "collision"
	TypeRoundEnded         = "roundEnded"
	TypePlayerDisconnected = "playerDisconnected"
	TypeError              = "error"
	TypeRoomExists         = "roomExists"
)

type RoomCreatedMsg struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type RoomJoinedMsg struct {
	Type      string `json:"type"`
	RoomCode  string `json:"roomCode"`
	PlayerID  string `json:"playerId"`
	GameState Phase  `json:"gameState"`
}

type LobbyPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Host   bool   `json:"host"`
}

type LobbyUpdateMsg struct {
	Type    string        `json:"type"`
	Players []LobbyPlayer `json:"players"`
}

type ReadyUpdateMsg struct {
	Type         string   `json:"type"`
	ReadyPlayers []string `json:"readyPlayers"`
	TotalPlayers int      `json:"totalPlayers"`
}

type GameStartMsg struct {
	Type    string                `json:"type"`
	Roles   map[string]Role       `json:"roles"`
	Players map[string]PlayerView `json:"players"`
}

type NewRoundMsg struct {
	Type        string                `json:"type"`
	Roles       map[string]Role       `json:"roles"`
	Players     map[string]PlayerView `json:"players"`
	Score       Score                 `json:"score"`
	RoundNumber int                   `json:"roundNumber"`
}

type GameStateMsg struct {
	Type     string                `json:"type"`
	Players  map[string]PlayerView `json:"players"`
	TimeLeft int                   `json:"timeLeft"`
	MyRole   Role                  `json:"myRole"`
}

type CollisionMsg struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type RoundEndedMsg struct {
	Type         string          `json:"type"`
	Winner       Winner          `json:"winner"`
	Reason       string          `json:"reason"`
	Roles        map[string]Role `json:"roles"`
	MyRole       Role            `json:"myRole"`
	MyID         string          `json:"myId"`
	Score        Score           `json:"score"`
	RoundNumber  int             `json:"roundNumber"`
	ReadyPlayers []string        `json:"readyPlayers"`
	TotalPlayers int             `json:"totalPlayers"`
}

type PlayerDisconnectedMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RoomExistsMsg struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	Exists   bool   `json:"exists"`
}
