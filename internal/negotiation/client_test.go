package negotiation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dronefleet-sim/internal/fleet"
	"dronefleet-sim/internal/world"
)

var upgrader = websocket.Upgrader{}

// newRoutingService starts a fake routing service whose connection handler
// runs in its own goroutine.
func newRoutingService(t *testing.T, handle func(*websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func connectedClient(t *testing.T, url string) *Client {
	t.Helper()
	c := NewClient(url, 50*time.Millisecond, nil)
	c.Connect()
	t.Cleanup(c.Close)
	waitFor(t, func() bool { return c.State() == StateConnected }, "client never connected")
	return c
}

func TestRequestRouteNotConnected(t *testing.T) {
	c := NewClient("ws://127.0.0.1:0/ws", time.Second, nil)
	defer c.Close()
	if _, err := c.RequestRoute(fleet.RouteRequest{DroneID: "d1"}); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestRequestRouteRoundTrip(t *testing.T) {
	requests := make(chan routeRequestMsg, 1)
	_, url := newRoutingService(t, func(conn *websocket.Conn) {
		var req routeRequestMsg
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		requests <- req
		alt := 40.0
		x, y, z := 100.0, 40.0, 5.0
		resp := routeResponseMsg{
			Type:    "route_response",
			DroneID: req.DroneID,
			Status:  "success",
			Route: []wireWaypoint{
				{X: &x, Y: &y, Z: &z, Altitude: &alt, Description: "Via corridor"},
			},
		}
		conn.WriteJSON(resp)
		conn.ReadMessage() // hold the connection open
	})

	c := connectedClient(t, url)
	pending, err := c.RequestRoute(fleet.RouteRequest{
		DroneID:    "d1",
		Model:      "Light Quadcopter",
		Start:      world.Vec3{X: 1, Y: 2, Z: 3},
		End:        world.Vec3{X: 4, Y: 5, Z: 6},
		BatteryPct: 100,
		MaxSpeed:   20,
		MaxRange:   25000,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	req := <-requests
	if req.Type != "request_route" || req.DroneID != "d1" {
		t.Errorf("unexpected request envelope %+v", req)
	}
	// The wire frame is z-up: the simulation's Y and Z swap on the way out.
	if req.StartPosition != (wirePosition{X: 1, Y: 3, Z: 2}) {
		t.Errorf("unexpected start position %+v", req.StartPosition)
	}
	if req.EndPosition != (wirePosition{X: 4, Y: 6, Z: 5}) {
		t.Errorf("unexpected end position %+v", req.EndPosition)
	}

	var route fleet.Route
	waitFor(t, func() bool {
		r, ok := pending.Poll()
		route = r
		return ok
	}, "route response never resolved")
	if len(route) != 1 {
		t.Fatalf("expected 1 waypoint, got %d", len(route))
	}
	wp := route[0]
	if wp.Position != (world.Vec3{X: 100, Y: 40, Z: 5}) {
		t.Errorf("unexpected waypoint position %+v", wp.Position)
	}
	if wp.Speed != 0.8*20 {
		t.Errorf("missing speed should default to 0.8*max, got %v", wp.Speed)
	}
	if wp.Description != "Via corridor" {
		t.Errorf("unexpected description %q", wp.Description)
	}
}

func TestNoPathResolvesEmptyRoute(t *testing.T) {
	_, url := newRoutingService(t, func(conn *websocket.Conn) {
		var req routeRequestMsg
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		conn.WriteJSON(routeResponseMsg{
			Type:    "route_response",
			DroneID: req.DroneID,
			Status:  "no_path",
			Message: "no corridor available",
		})
		conn.ReadMessage()
	})

	c := connectedClient(t, url)
	pending, err := c.RequestRoute(fleet.RouteRequest{DroneID: "d1", MaxSpeed: 20})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var route fleet.Route
	waitFor(t, func() bool {
		r, ok := pending.Poll()
		route = r
		return ok
	}, "no_path response never resolved")
	if len(route) != 0 {
		t.Errorf("no_path should resolve to an empty route, got %d waypoints", len(route))
	}
}

func TestCancelledRequestDropsLateResponse(t *testing.T) {
	release := make(chan struct{})
	_, url := newRoutingService(t, func(conn *websocket.Conn) {
		var req routeRequestMsg
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		<-release
		conn.WriteJSON(routeResponseMsg{
			Type:    "route_response",
			DroneID: req.DroneID,
			Status:  "success",
			Route:   []wireWaypoint{{}},
		})
		conn.ReadMessage()
	})

	c := connectedClient(t, url)
	pending, err := c.RequestRoute(fleet.RouteRequest{DroneID: "d1", MaxSpeed: 20})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	pending.Cancel()
	close(release)

	// The late response must be dropped: the slot never resolves.
	time.Sleep(100 * time.Millisecond)
	if _, ok := pending.Poll(); ok {
		t.Error("cancelled request should never resolve")
	}
}

func TestUncorrelatedResponseIgnored(t *testing.T) {
	_, url := newRoutingService(t, func(conn *websocket.Conn) {
		conn.WriteJSON(routeResponseMsg{
			Type:    "route_response",
			DroneID: "ghost",
			Status:  "success",
		})
		conn.ReadMessage()
	})

	c := connectedClient(t, url)
	// No request was ever issued for "ghost"; the client just drops it and
	// the connection stays usable.
	time.Sleep(50 * time.Millisecond)
	if c.State() != StateConnected {
		t.Errorf("expected connected state, got %v", c.State())
	}
}
