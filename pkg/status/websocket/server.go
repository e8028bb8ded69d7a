// Package websocket broadcasts keyboard status to browsers.
package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/splitkbd/pkg/framework"
	"github.com/robotalks/splitkbd/pkg/status"
)

// Server sends snapshots as JSON to every connected client. A client
// receives the latest snapshot when connected.
type Server struct {
	Addr string

	lock    sync.Mutex
	latest  *status.Snapshot
	clients map[*websocket.Conn]struct{}
	handler http.Handler
}

// NewServer creates a Server listening on addr when run.
func NewServer(addr string) *Server {
	s := &Server{Addr: addr, clients: make(map[*websocket.Conn]struct{})}
	s.handler = websocket.Handler(s.serveConn)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Publish implements status.Publisher.
func (s *Server) Publish(ctx context.Context, snapshot *status.Snapshot) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.latest = snapshot
	for conn := range s.clients {
		if err := websocket.JSON.Send(conn, snapshot); err != nil {
			glog.V(2).Infof("websocket %s: %v", conn.Request().RemoteAddr, err)
			delete(s.clients, conn)
			conn.Close()
		}
	}
	return nil
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	glog.Infof("status websocket listening on %s", ln.Addr())
	server := &http.Server{Handler: s}
	return fx.RunWithContextCloser(ctx, server, func() error {
		return server.Serve(ln)
	})
}

func (s *Server) serveConn(conn *websocket.Conn) {
	s.lock.Lock()
	if s.latest != nil {
		if err := websocket.JSON.Send(conn, s.latest); err != nil {
			s.lock.Unlock()
			return
		}
	}
	s.clients[conn] = struct{}{}
	s.lock.Unlock()

	// clients don't send anything, reading detects the close.
	var msg []byte
	for websocket.Message.Receive(conn, &msg) == nil {
	}

	s.lock.Lock()
	delete(s.clients, conn)
	s.lock.Unlock()
}

// Receive reads a snapshot from a client connection.
func Receive(conn *websocket.Conn) (*status.Snapshot, error) {
	snapshot := &status.Snapshot{}
	if err := websocket.JSON.Receive(conn, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}
