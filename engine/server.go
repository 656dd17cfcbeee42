package engine

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/pkg/errors"
)

// Resolver maps a namespace id to the engine serving it.
type Resolver func(namespace string) (Engine, error)

// Server answers protocol requests on a listener, one goroutine per connection.
type Server struct {
	resolve Resolver
	wg      sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func NewServer(resolve Resolver) *Server {
	return &Server{resolve: resolve, conns: make(map[net.Conn]struct{})}
}

// Serve accepts connections until l is closed. It then closes every open
// connection, idle or not, and waits for their goroutines to exit. It returns
// nil after a close and the Accept error otherwise.
func (s *Server) Serve(l net.Listener) error {
	defer s.wg.Wait()
	defer s.closeConns()
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return errors.Wrap(err, "engine: accept")
		}
		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

// closeConns unblocks handlers waiting on idle clients.
func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.untrack(conn)
	defer conn.Close()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			return
		}
		if err := enc.Encode(s.handle(req)); err != nil {
			return
		}
	}
}

func (s *Server) handle(req Request) Response {
	e, err := s.resolve(req.Namespace)
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	switch req.Op {
	case OpGet:
		v, ok, err := e.GetString(req.Key)
		if err != nil {
			return Response{OK: false, Error: err.Error()}
		}
		return Response{OK: true, Found: ok, Value: v}
	case OpSet:
		err = e.Set(req.Key, req.Value)
	case OpDelete:
		err = e.Delete(req.Key)
	case OpClear:
		err = e.ClearAll()
	default:
		return Response{OK: false, Error: "unknown op"}
	}
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	return Response{OK: true}
}
