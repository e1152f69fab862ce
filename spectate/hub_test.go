package spectate

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
)

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return msg
}

func TestViewerReceivesConfigThenFrames(t *testing.T) {
	cfg := config.Default()
	cfg.Spectate.EveryTicks = 2
	hub := NewHub(cfg, nil)
	defer hub.Close()

	conn := dial(t, hub)

	hello := readMessage(t, conn)
	if hello.Type != "config" || hello.Config == nil {
		t.Fatalf("first message = %+v, want config", hello)
	}
	if hello.Config.Width != 500 || hello.Config.GroundY != 730 {
		t.Errorf("config = %+v", hello.Config)
	}

	observe := hub.Observer()
	for tick := 1; tick <= 4; tick++ {
		observe(game.Frame{Tick: tick, State: game.Running})
	}
	observe(game.Frame{Tick: 5, State: game.Extinct})

	for _, want := range []int{2, 4, 5} {
		msg := readMessage(t, conn)
		if msg.Type != "frame" || msg.Frame == nil {
			t.Fatalf("message = %+v, want frame", msg)
		}
		if msg.Frame.Tick != want {
			t.Errorf("frame tick = %d, want %d", msg.Frame.Tick, want)
		}
	}
}

func TestFramesFromEpisodeReachViewer(t *testing.T) {
	cfg := config.Default()
	cfg.Episode.MaxTicks = 6
	cfg.Spectate.EveryTicks = 3
	hub := NewHub(cfg, nil)
	defer hub.Close()

	conn := dial(t, hub)
	readMessage(t, conn)

	sink := game.DeciderFunc(func(components.Observation) (float64, error) { return 0, nil })
	res, err := game.RunEpisode(context.Background(), cfg, nil, []game.Decider{sink, sink}, 1, game.Options{Observer: hub.Observer()})
	if err != nil {
		t.Fatal(err)
	}
	if res.State != game.Capped {
		t.Fatalf("state = %v, want capped", res.State)
	}

	for _, want := range []int{3, 6} {
		msg := readMessage(t, conn)
		if msg.Frame == nil || msg.Frame.Tick != want {
			t.Fatalf("message = %+v, want frame at tick %d", msg, want)
		}
		if len(msg.Frame.Birds) != 2 || len(msg.Frame.Pipes) == 0 {
			t.Errorf("tick %d: %d birds, %d pipes", want, len(msg.Frame.Birds), len(msg.Frame.Pipes))
		}
	}
}

func TestSlowViewerDropsFrames(t *testing.T) {
	cfg := config.Default()
	cfg.Spectate.Buffer = 1
	hub := NewHub(cfg, nil)
	defer hub.Close()

	c := &client{send: make(chan []byte, 1)}
	if !hub.register(c) {
		t.Fatal("register refused")
	}

	for tick := 1; tick <= 5; tick++ {
		hub.Publish(game.Frame{Tick: tick})
	}
	if got := hub.Dropped(); got != 4 {
		t.Errorf("dropped = %d, want 4", got)
	}

	hub.Close()
	if hub.Clients() != 0 {
		t.Errorf("clients after close = %d", hub.Clients())
	}
	if hub.register(&client{send: make(chan []byte, 1)}) {
		t.Error("closed hub accepted a viewer")
	}
}
