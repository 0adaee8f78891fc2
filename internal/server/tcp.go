// Package server provides the TCP accept loop shared by the auth and
// game channels. Each accepted connection is handled on its own
// goroutine; a slow or silent peer never stalls the accept loop.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// ConnHandler processes a single accepted connection. The handler owns
// the connection and must close it before returning.
type ConnHandler func(ctx context.Context, conn net.Conn)

// TCPServer accepts connections on one port and dispatches each to a
// handler goroutine.
type TCPServer struct {
	name    string
	addr    string
	handler ConnHandler
	logger  *slog.Logger

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	closed bool

	wg sync.WaitGroup
}

// NewTCP creates a TCP server for the given address.
func NewTCP(name, addr string, handler ConnHandler, logger *slog.Logger) *TCPServer {
	return &TCPServer{
		name:    name,
		addr:    addr,
		handler: handler,
		logger:  logger.With(slog.String("server", name)),
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen binds the listening socket. Call before Serve; Addr is valid
// once Listen returns.
func (s *TCPServer) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.logger.Info("listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Serve runs the accept loop until Shutdown closes the listener.
func (s *TCPServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("serve called before listen")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.forget(conn)
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("connection handler panic",
						slog.Any("panic", r),
						slog.String("remote", conn.RemoteAddr().String()))
					_ = conn.Close()
				}
			}()
			s.handler(ctx, conn)
		}()
	}
}

// Addr returns the bound listen address, or nil before Listen.
func (s *TCPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown closes the listener and all active connections, then waits
// for handlers to return or ctx to expire.
func (s *TCPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln := s.ln
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown %s: %w", s.name, ctx.Err())
	}
}

func (s *TCPServer) forget(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}
