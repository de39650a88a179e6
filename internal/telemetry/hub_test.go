package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akmonengine/buoyancy"
	"github.com/akmonengine/buoyancy/actor"
	"github.com/akmonengine/buoyancy/floater"
	"github.com/akmonengine/buoyancy/water"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
)

func createWorld(t *testing.T) *buoyancy.World {
	t.Helper()

	world := buoyancy.NewWorld(mgl64.Vec3{0, -9.81, 0}, 4)
	world.AddVolume(water.NewPool("pool", mgl64.Vec2{0, 0}, 0, mgl64.Vec3{5, 2, 5}))

	crate := actor.NewRigidBody(
		actor.NewTransformAt(mgl64.Vec3{0, 0, 0}),
		&actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		actor.BodyTypeDynamic,
		1.0,
	)
	crate.Name = "crate"
	f, err := floater.NewCollaboratingSurface(crate, world, floater.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	world.AddFloater(f)

	return world
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket server: %v", err)
	}
	return conn
}

func waitClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", want, hub.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// =============================================================================
// Snapshot
// =============================================================================

func TestCapture(t *testing.T) {
	world := createWorld(t)
	for range 3 {
		world.Step(1.0 / 60.0)
	}

	snapshot := Capture(world)

	if snapshot.Step != 3 {
		t.Errorf("Step = %d, want 3", snapshot.Step)
	}
	if len(snapshot.Bodies) != 1 || len(snapshot.Volumes) != 1 {
		t.Fatalf("expected 1 body and 1 volume, got %d and %d", len(snapshot.Bodies), len(snapshot.Volumes))
	}

	body := snapshot.Bodies[0]
	if body.Name != "crate" || body.Kind != string(floater.KindCollaboratingSurface) {
		t.Errorf("unexpected body %+v", body)
	}
	if !body.InWater {
		t.Errorf("crate should be in water after 3 steps")
	}
	if body.Force <= 0 {
		t.Errorf("crate should be pushed up, force %f", body.Force)
	}

	volume := snapshot.Volumes[0]
	if volume.Name != "pool" || volume.Surface != 0 || volume.Max[1] != 0 {
		t.Errorf("unexpected volume %+v", volume)
	}
}

// =============================================================================
// Hub
// =============================================================================

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(nil)
	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Close()

	first := dial(t, server)
	defer first.Close()
	second := dial(t, server)
	defer second.Close()
	waitClients(t, hub, 2)

	world := createWorld(t)
	world.Step(1.0 / 60.0)
	if err := hub.Broadcast(Capture(world)); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

		var snapshot Snapshot
		if err := conn.ReadJSON(&snapshot); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if snapshot.Step != 1 || len(snapshot.Bodies) != 1 || snapshot.Bodies[0].Name != "crate" {
			t.Errorf("unexpected snapshot %+v", snapshot)
		}
	}
}

func TestHub_ClientDisconnects(t *testing.T) {
	hub := NewHub(nil)
	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Close()

	conn := dial(t, server)
	waitClients(t, hub, 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitClients(t, hub, 0)
	if err := hub.Broadcast(Snapshot{}); err != nil {
		t.Errorf("Broadcast without clients should not fail: %v", err)
	}
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(nil)
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	waitClients(t, hub, 1)

	hub.Close()
	if hub.Clients() != 0 {
		t.Errorf("expected no client after Close, got %d", hub.Clients())
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Errorf("expected the connection to be closed")
	}

	late := dial(t, server)
	defer late.Close()
	_ = late.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Errorf("expected a late client to be refused")
	}
	if hub.Clients() != 0 {
		t.Errorf("a closed hub should not register clients")
	}
}
