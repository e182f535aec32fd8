package websocket

import (
	"net"
	"time"
)

// fakeConn is a Connection that never carries data.
type fakeConn struct{}

func (fakeConn) WriteMessage(int, []byte) error { return nil }

func (fakeConn) ReadMessage() (int, []byte, error) { return 0, nil, net.ErrClosed }

func (fakeConn) Close() error { return nil }

func (fakeConn) SetReadDeadline(time.Time) error { return nil }

func (fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (fakeConn) SetReadLimit(int64) {}

func (fakeConn) SetPongHandler(func(string) error) {}

func (fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}
}
