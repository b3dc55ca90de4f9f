// Package reactor is the central event loop (spec §4.6): it owns the
// Registry and every live Client exclusively, and is the only goroutine
// that ever touches their fields. It is grounded directly on the
// teacher's pkg/websocket Hub.Run() — a select loop over register/
// unregister/broadcast channels — generalized from "one channel of byte
// messages to broadcast" to three channels of connection lifecycle and
// inbound-data events, since the combat protocol needs line framing and
// per-client state dispatch rather than pure fan-out.
//
// Go's runtime netpoller is the actual readiness multiplexer (spec
// §4.6 step 2's "block on readiness of all sockets"); each accepted
// connection gets its own blocking-read goroutine (the I/O pump) that
// never touches Client state directly — it only posts raw chunks and
// closure notifications back to this loop over channels. That keeps
// every mutation of Client/Registry on one goroutine, satisfying spec
// §5's "no locks are required" by construction.
package reactor

import (
	"io"
	"log"
	"net"
	"sync/atomic"

	"arenad/internal/client"
	"arenad/internal/engine"
	"arenad/internal/eventbus"
	"arenad/internal/matcher"
	"arenad/internal/metrics"
	"arenad/internal/protocol"
	"arenad/internal/registry"
)

const readChunkSize = 512

type connectedEvent struct {
	conn net.Conn
}

type dataEvent struct {
	handle uint64
	chunk  []byte
}

type closedEvent struct {
	handle uint64
	err    error
}

// Reactor is the single-owner event loop described above.
type Reactor struct {
	registry *registry.Registry
	matcher  *matcher.Matcher
	engine   *engine.Engine
	metrics  *metrics.Metrics
	bus      *eventbus.Bus
	logger   *log.Logger

	nextHandle uint64 // atomic; bumped only by handleConnected, on the reactor goroutine

	connected chan connectedEvent
	data      chan dataEvent
	closed    chan closedEvent
	done      chan struct{}
}

// New builds a Reactor. The registry's disconnect hook is wired here so
// the forfeit rule, arena departure broadcast, and ambient observers
// fire together as the single choke point spec §5 requires.
func New(eng *engine.Engine, m *matcher.Matcher, metricsInstance *metrics.Metrics, bus *eventbus.Bus, logger *log.Logger) *Reactor {
	r := &Reactor{
		matcher:   m,
		engine:    eng,
		metrics:   metricsInstance,
		bus:       bus,
		logger:    logger,
		connected: make(chan connectedEvent, 64),
		data:      make(chan dataEvent, 256),
		closed:    make(chan closedEvent, 64),
		done:      make(chan struct{}),
	}
	r.registry = registry.New(r.onRemove)
	return r
}

// Accept is the handoff point from internal/acceptor: it is safe to call
// from the acceptor's own goroutine. It only enqueues the connection;
// all registration happens on the reactor goroutine.
func (r *Reactor) Accept(conn net.Conn) {
	select {
	case r.connected <- connectedEvent{conn: conn}:
	case <-r.done:
		conn.Close()
	}
}

// Run is the event loop (spec §4.6). It returns when Stop is called.
func (r *Reactor) Run() {
	for {
		select {
		case <-r.done:
			r.registry.ForEach(func(c *client.Client) {
				if c.Conn != nil {
					c.Conn.Close()
				}
			})
			return
		case ev := <-r.connected:
			r.handleConnected(ev.conn)
		case ev := <-r.data:
			r.handleData(ev.handle, ev.chunk)
		case ev := <-r.closed:
			r.handleClosed(ev.handle, ev.err)
		}
	}
}

// Stop ends Run; Run closes every live connection on its own goroutine
// before returning. Stop does not wait for that to finish.
func (r *Reactor) Stop() {
	close(r.done)
}

func (r *Reactor) handleConnected(conn net.Conn) {
	handle := atomic.AddUint64(&r.nextHandle, 1)
	c := client.New(handle, conn)
	r.registry.Insert(c)

	r.metrics.ConnectionAccepted()
	r.bus.ClientConnected(handle, c.RemoteAddr)

	c.Send(protocol.NamePrompt())

	go r.pump(c)
}

// pump is the per-connection I/O goroutine: it only ever calls conn.Read
// and posts the result back to the reactor. It holds no Client state.
func (r *Reactor) pump(c *client.Client) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := c.Conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case r.data <- dataEvent{handle: c.Handle, chunk: chunk}:
			case <-r.done:
				return
			}
		}
		if err != nil {
			select {
			case r.closed <- closedEvent{handle: c.Handle, err: err}:
			case <-r.done:
			}
			return
		}
	}
}

func (r *Reactor) handleData(handle uint64, chunk []byte) {
	c, ok := r.registry.Find(handle)
	if !ok {
		return
	}

	lines, overflow := c.Framer.Feed(chunk)
	if overflow && !c.Named {
		c.Send(protocol.NameTooLong())
	}

	rematchCheck := false
	for _, line := range lines {
		if !c.Named {
			r.handleNameLine(c, line)
			rematchCheck = true
			continue
		}
		r.engine.HandleCommand(c)(line)
	}

	if rematchCheck {
		r.matcher.Run(r.registry)
	}
}

func (r *Reactor) handleNameLine(c *client.Client, name string) {
	if name == "" {
		return
	}
	if len(name) > client.MaxName {
		c.Send(protocol.NameTooLong())
		return
	}
	c.Name = name
	c.Named = true
	c.Framer.SetLimit(client.ChatLimit)

	c.Send(protocol.Welcome(name))

	entry := protocol.ArenaEntry(name)
	r.registry.ForEach(func(other *client.Client) {
		if other.Handle != c.Handle && other.Named {
			other.Send(entry)
		}
	})
}

func (r *Reactor) handleClosed(handle uint64, err error) {
	if err != nil && err != io.EOF {
		r.metrics.ConnectionError()
	}
	r.registry.Remove(handle)
	r.logger.Printf("[reactor] connection %d closed; %d active", handle, r.registry.Len())
	r.matcher.Run(r.registry)
}

// onRemove is the registry's disconnect hook: forfeit the departing
// client's match (if any), announce their departure to the rest of the
// arena (if they had named themselves), and drive the ambient observers.
// It runs synchronously, before the registry frees the Client's storage,
// so Opponent/LastOpponent pointers are always resolved against live
// state (spec §5's weak-reference resolution).
func (r *Reactor) onRemove(c *client.Client) {
	r.engine.Forfeit(c)

	if c.Named {
		departure := protocol.Departure(c.Name)
		r.registry.ForEach(func(other *client.Client) {
			if other.Handle != c.Handle {
				other.Send(departure)
			}
		})
	}

	r.metrics.ConnectionClosed()
	r.bus.ClientDisconnected(c.Handle, c.Name)

	if c.Conn != nil {
		c.Conn.Close()
	}
}
