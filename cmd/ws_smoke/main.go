// ws_smoke connects two players to a running server and plays a full Nim
// match, printing every message. Useful for poking at a deployment by hand:
//
//	JWT_SECRET=... go run ./cmd/ws_smoke -addr localhost:8080
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"game_arcade/internal/service"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	flag.Parse()

	service.InitJWT()

	a := dial(*addr, 9001)
	defer a.Close()
	b := dial(*addr, 9002)
	defer b.Close()

	waitFor(a, "ready")
	waitFor(b, "ready")

	send(a, "create", map[string]any{"game_type": "nim"})
	created := waitFor(a, "game_update")

	var snap struct {
		ID    string `json:"id"`
		State struct {
			Status    string `json:"status"`
			Remaining int    `json:"remaining"`
			Turn      int64  `json:"turn"`
		} `json:"state"`
	}
	mustUnmarshal(created.Payload, &snap)
	fmt.Println("session:", snap.ID)

	send(b, "join", map[string]any{"session_id": snap.ID})
	waitFor(a, "game_update")

	conns := map[int64]*websocket.Conn{9001: a, 9002: b}
	for {
		mustUnmarshal(latest(a).Payload, &snap)
		if snap.State.Status != "in_progress" {
			break
		}
		take := 3
		if snap.State.Remaining < take {
			take = snap.State.Remaining
		}
		fmt.Printf("player %d takes %d (remaining %d)\n", snap.State.Turn, take, snap.State.Remaining)
		send(conns[snap.State.Turn], "move", map[string]any{"session_id": snap.ID, "value": take})
		waitFor(a, "game_update")
		waitFor(b, "game_update")
	}

	fmt.Println("final status:", snap.State.Status)
}

var lastUpdate = map[*websocket.Conn]message{}

func dial(addr string, playerID int64) *websocket.Conn {
	token, err := service.GenerateJWT(playerID)
	if err != nil {
		fatal("generate token: %v", err)
	}
	url := fmt.Sprintf("ws://%s/ws?token=%s", addr, token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fatal("dial %s: %v", url, err)
	}
	return conn
}

func send(c *websocket.Conn, msgType string, payload any) {
	raw, _ := json.Marshal(payload)
	data, _ := json.Marshal(message{Type: msgType, Payload: raw})
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		fatal("write: %v", err)
	}
}

func waitFor(c *websocket.Conn, msgType string) message {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = c.SetReadDeadline(deadline)
		_, raw, err := c.ReadMessage()
		if err != nil {
			fatal("read: %v", err)
		}
		var msg message
		mustUnmarshal(raw, &msg)
		fmt.Printf("  <- %s\n", raw)
		if msg.Type == "game_update" {
			lastUpdate[c] = msg
		}
		if msg.Type == msgType {
			return msg
		}
	}
	fatal("timed out waiting for %q", msgType)
	return message{}
}

func latest(c *websocket.Conn) message {
	return lastUpdate[c]
}

func mustUnmarshal(data []byte, v any) {
	if err := json.Unmarshal(data, v); err != nil {
		fatal("unmarshal %s: %v", data, err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
