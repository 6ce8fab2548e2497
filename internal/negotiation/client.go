package negotiation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dronefleet-sim/internal/fleet"
)

// ErrNotConnected is returned when a route request is attempted without a
// live connection to the routing service.
var ErrNotConnected = errors.New("negotiation: not connected to routing service")

// ConnState is the transport connection state.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "disconnected"
}

const writeTimeout = 5 * time.Second

// Client maintains a persistent websocket connection to the routing service
// and correlates each route response to exactly one outstanding request by
// drone identifier.
type Client struct {
	endpoint  string
	reconnect time.Duration
	log       *slog.Logger
	dialer    *websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	state   ConnState
	pending map[string]*pendingRoute
	closed  bool
}

// NewClient creates a client for the given ws:// endpoint. reconnect is the
// fixed interval between dial attempts after a failure or disconnect.
func NewClient(endpoint string, reconnect time.Duration, log *slog.Logger) *Client {
	if reconnect <= 0 {
		reconnect = 3 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		endpoint:  endpoint,
		reconnect: reconnect,
		log:       log,
		dialer:    websocket.DefaultDialer,
		pending:   make(map[string]*pendingRoute),
	}
}

// Connect starts the dial loop. It never blocks: connection failures are
// retried on the reconnect interval until Close is called.
func (c *Client) Connect() {
	go c.dialLoop()
}

func (c *Client) dialLoop() {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.state = StateConnecting
		c.mu.Unlock()

		conn, _, err := c.dialer.Dial(c.endpoint, nil)
		if err != nil {
			c.mu.Lock()
			c.state = StateDisconnected
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			c.log.Warn("routing service dial failed, will retry",
				"endpoint", c.endpoint, "retry_in", c.reconnect, "err", err)
			time.Sleep(c.reconnect)
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.state = StateConnected
		c.mu.Unlock()
		c.log.Info("connected to routing service", "endpoint", c.endpoint)

		c.readPump(conn)

		c.mu.Lock()
		c.conn = nil
		c.state = StateDisconnected
		closed := c.closed
		c.mu.Unlock()
		conn.Close()
		if closed {
			return
		}
		c.log.Warn("routing service connection lost, will reconnect",
			"retry_in", c.reconnect)
		time.Sleep(c.reconnect)
	}
}

func (c *Client) readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg routeResponseMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.Debug("dropping non-JSON message from routing service", "err", err)
		return
	}
	if msg.Type != "route_response" || msg.DroneID == "" {
		c.log.Debug("dropping unexpected message", "type", msg.Type)
		return
	}

	c.mu.Lock()
	p := c.pending[msg.DroneID]
	delete(c.pending, msg.DroneID)
	c.mu.Unlock()

	if p == nil {
		// Late or unsolicited: the requester already moved on.
		c.log.Debug("dropping uncorrelated route response", "drone_id", msg.DroneID)
		return
	}
	p.resolve(msg.toRoute(p.maxSpeed))
}

// RequestRoute registers a pending slot for the drone and sends the request.
// It fails with ErrNotConnected when the transport is not connected.
func (c *Client) RequestRoute(req fleet.RouteRequest) (fleet.PendingRoute, error) {
	c.mu.Lock()
	if c.state != StateConnected || c.conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	conn := c.conn
	p := &pendingRoute{
		ch:       make(chan fleet.Route, 1),
		client:   c,
		droneID:  req.DroneID,
		maxSpeed: req.MaxSpeed,
	}
	c.pending[req.DroneID] = p
	c.mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(newRouteRequestMsg(req)); err != nil {
		c.cancel(req.DroneID)
		return nil, err
	}
	return p, nil
}

func (c *Client) cancel(droneID string) {
	c.mu.Lock()
	delete(c.pending, droneID)
	c.mu.Unlock()
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close tears down the connection and stops reconnecting.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// pendingRoute is the per-request correlation slot. The read pump resolves
// it with at most one response; the owning drone polls it each tick.
type pendingRoute struct {
	ch       chan fleet.Route
	client   *Client
	droneID  string
	maxSpeed float64
}

func (p *pendingRoute) resolve(route fleet.Route) {
	select {
	case p.ch <- route:
	default:
	}
}

// Poll returns the negotiated route once resolved.
func (p *pendingRoute) Poll() (fleet.Route, bool) {
	select {
	case route := <-p.ch:
		return route, true
	default:
		return nil, false
	}
}

// Cancel discards the slot so a late response is dropped by the transport.
func (p *pendingRoute) Cancel() {
	p.client.cancel(p.droneID)
}
