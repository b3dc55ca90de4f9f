// Package acceptor owns the listening socket and admits new connections
// (spec §4.1), handing each accepted net.Conn to the reactor. Grounded
// on the teacher's go-server-2/server.go Start() — a plain net.Listen
// plus an accept loop in its own goroutine — stripped of the HTTP
// upgrade (this protocol is raw line TCP, not websocket) and of the
// custom socket tuning in pkg/websocket/netpoll.go's
// CreateOptimizedListener. That file's SO_REUSEPORT/TCP_FASTOPEN/
// TCP_DEFER_ACCEPT options exist to load-balance across multiple
// listener processes sharing one port; this server runs a single
// listener, so only the TCP_NODELAY setting (kept below, applied
// per-connection) still applies.
package acceptor

import (
	"errors"
	"fmt"
	"log"
	"net"
)

// Acceptor wraps a net.Listener and feeds every accepted connection to
// a handler, retrying on transient errors and stopping on fatal ones
// (spec §4.1: "fatal errors on accept abort the process; transient
// errors are logged and skipped").
type Acceptor struct {
	listener net.Listener
	logger   *log.Logger
}

// Listen binds addr and returns an Acceptor. A bind/listen failure here
// is the one fatal-startup error this package can produce (spec §7.1).
func Listen(addr string, logger *log.Logger) (*Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("acceptor: listen %s: %w", addr, err)
	}
	return &Acceptor{listener: ln, logger: logger}, nil
}

// Addr returns the bound address, useful when addr was "host:0".
func (a *Acceptor) Addr() net.Addr {
	return a.listener.Addr()
}

// Serve accepts connections in a loop, passing each to handle. It
// returns only when the listener is closed (via Close), at which point
// the error is swallowed — that's the expected shutdown path, not a
// fault. Any other non-timeout accept error exits the process.
func (a *Acceptor) Serve(handle func(net.Conn)) {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				a.logger.Printf("[acceptor] transient accept error: %v", err)
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				a.logger.Printf("[acceptor] listener closed: %v", err)
				return
			}
			a.logger.Fatalf("[acceptor] fatal accept error: %v", err)
		}
		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.SetNoDelay(true)
		}
		handle(conn)
	}
}

// Close stops the listener, unblocking Serve.
func (a *Acceptor) Close() error {
	return a.listener.Close()
}
