package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type outbound struct {
	Type       string  `json:"type"`
	PlayerName string  `json:"playerName,omitempty"`
	RoomCode   string  `json:"roomCode,omitempty"`
	DX         float64 `json:"dx,omitempty"`
	DY         float64 `json:"dy,omitempty"`
}

type inbound struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Message  string `json:"message"`
	Winner   string `json:"winner"`
	Reason   string `json:"reason"`
}

func main() {
	wsURL := flag.String("url", "ws://localhost:3001/ws", "server websocket url")
	bots := flag.Int("bots", 3, "number of bots (2-5)")
	code := flag.String("room", "", "join an existing room instead of creating one")
	duration := flag.Duration("for", 2*time.Minute, "how long to keep playing")
	flag.Parse()

	if *bots < 1 {
		log.Fatal("need at least one bot")
	}

	roomCode := strings.ToUpper(*code)
	start := 0
	var wg sync.WaitGroup
	if roomCode == "" {
		host, created := dial(*wsURL, "bot0")
		send(host, outbound{Type: "createRoom", PlayerName: "bot0"})
		roomCode = waitFor(created, "roomCreated").RoomCode
		fmt.Println("Created room:", roomCode)
		wg.Add(1)
		go func() {
			defer wg.Done()
			play(host, "bot0", roomCode, created, *duration)
		}()
		start = 1
	} else {
		fmt.Println("Using existing room:", roomCode)
	}

	for i := start; i < *bots; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			conn, msgs := dial(*wsURL, name)
			send(conn, outbound{Type: "joinRoom", PlayerName: name, RoomCode: roomCode})
			play(conn, name, roomCode, msgs, *duration)
		}(fmt.Sprintf("bot%d", i))
	}
	wg.Wait()
}

func dial(url, name string) (*websocket.Conn, chan inbound) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("%s: ws connect error: %v", name, err)
	}
	msgs := make(chan inbound, 512)
	go func() {
		defer close(msgs)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg inbound
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			select {
			case msgs <- msg:
			default:
			}
		}
	}()
	return conn, msgs
}

func waitFor(msgs <-chan inbound, msgType string) inbound {
	for msg := range msgs {
		if msg.Type == msgType {
			return msg
		}
	}
	log.Fatalf("connection closed while waiting for %s", msgType)
	return inbound{}
}

func send(conn *websocket.Conn, msg outbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("write error: %v", err)
	}
}

// play readies up, then wanders and dashes until the deadline, readying again after every round.
func play(conn *websocket.Conn, name, roomCode string, msgs <-chan inbound, d time.Duration) {
	defer conn.Close()
	send(conn, outbound{Type: "playerReady", RoomCode: roomCode})

	move := time.NewTicker(time.Second / 30)
	defer move.Stop()
	deadline := time.After(d)
	dx, dy := rand.Float64()*2-1, rand.Float64()*2-1

	for {
		select {
		case <-deadline:
			fmt.Printf("%s finished\n", name)
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			switch msg.Type {
			case "roundEnded":
				fmt.Printf("%s: round over, %s won (%s)\n", name, msg.Winner, msg.Reason)
				send(conn, outbound{Type: "playerReadyRound", RoomCode: roomCode})
			case "error":
				fmt.Printf("%s: server error: %s\n", name, msg.Message)
			}
		case <-move.C:
			if rand.Intn(20) == 0 {
				dx, dy = rand.Float64()*2-1, rand.Float64()*2-1
			}
			send(conn, outbound{Type: "move", RoomCode: roomCode, DX: dx, DY: dy})
			if rand.Intn(90) == 0 {
				send(conn, outbound{Type: "dash", RoomCode: roomCode})
			}
		}
	}
}
