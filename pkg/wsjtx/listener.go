package wsjtx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dougsko/rigsync/pkg/logging"
)

// Handler processes one received datagram. buf is only valid for the
// duration of the call.
type Handler interface {
	HandleDatagram(ctx context.Context, buf []byte, src net.Addr) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, buf []byte, src net.Addr) error

func (f HandlerFunc) HandleDatagram(ctx context.Context, buf []byte, src net.Addr) error {
	return f(ctx, buf, src)
}

// Listener receives broadcast datagrams on a single UDP socket
type Listener struct {
	conn       net.PacketConn
	handler    Handler
	errTimeout time.Duration
	closeOnce  sync.Once
}

// Listen binds a UDP socket on addr
func Listen(addr string, handler Handler, errTimeout time.Duration) (*Listener, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return NewListener(conn, handler, errTimeout), nil
}

// NewListener wraps an already bound socket
func NewListener(conn net.PacketConn, handler Handler, errTimeout time.Duration) *Listener {
	return &Listener{
		conn:       conn,
		handler:    handler,
		errTimeout: errTimeout,
	}
}

// Addr returns the bound local address
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Serve runs the receive loop until ctx is cancelled or the listener is
// closed. Datagrams are handled one at a time in arrival order.
func (l *Listener) Serve(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-stop:
		}
	}()

	logging.Info("wsjtx", "listening for broadcasts", logging.Fields{"addr": l.Addr().String()})

	buf := make([]byte, MaxDatagramSize)
	for {
		n, src, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			logging.Error("wsjtx", "receive failed", logging.Fields{
				"error": err.Error(),
				"retry": l.errTimeout.String(),
			})
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.errTimeout):
			}
			continue
		}

		if err := l.handler.HandleDatagram(ctx, buf[:n], src); err != nil {
			logging.Warn("wsjtx", "datagram handling failed", logging.Fields{
				"error": err.Error(),
				"from":  src.String(),
			})
		}
	}
}

// Close releases the socket
func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = l.conn.Close()
	})
	return err
}
