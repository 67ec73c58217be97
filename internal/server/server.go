package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wirecache/wirecache/internal/command"
	"github.com/wirecache/wirecache/internal/proto"
	"github.com/wirecache/wirecache/internal/storage"
	"github.com/wirecache/wirecache/internal/telemetry/logger"
	"github.com/wirecache/wirecache/internal/telemetry/metric"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// MaxConns caps concurrently open client connections. Zero means
	// no cap.
	MaxConns int
	// ReadTimeout is the timeout for reading the rest of a started
	// command (default: 30s). Helps prevent slowloris attacks.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a response (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is the timeout for idle connections (default: 5m).
	IdleTimeout time.Duration
	// RateLimitPerSecond is the sustained commands-per-second allowance
	// per client IP. Zero disables rate limiting.
	RateLimitPerSecond float64
	// RateLimitBurst is the instantaneous allowance per client IP.
	RateLimitBurst int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
	}
}

// Server is the wire-protocol TCP server.
type Server struct {
	cfg     *Config
	handler *Handler
	logger  *slog.Logger
	metrics *metric.Metrics
	limiter *limiterRegistry

	ln        net.Listener
	running   atomic.Bool
	connCount atomic.Int64
	wg        sync.WaitGroup
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics wires Prometheus metrics into the server.
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a new server on top of engine.
func New(cfg *Config, engine storage.Engine, logger *slog.Logger, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	if cfg.RateLimitPerSecond > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = int(cfg.RateLimitPerSecond)
		}
		s.limiter = newLimiterRegistry(cfg.RateLimitPerSecond, burst)
	}

	s.handler = NewHandler(engine, s.metrics)

	return s
}

// Start begins listening and accepting connections. It does not block;
// accept errors after startup are logged.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)

	s.logger.Info("server started", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("accept loop error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, useful when the configured
// port was 0.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			firstErr = err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("server stopped")
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		if s.cfg.MaxConns > 0 && s.connCount.Load() >= int64(s.cfg.MaxConns) {
			s.rejectConn(c)
			continue
		}

		if s.metrics != nil {
			s.metrics.ConnectionsTotal.Inc()
			s.metrics.ConnectionsActive.Inc()
		}
		s.connCount.Add(1)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				s.connCount.Add(-1)
				if s.metrics != nil {
					s.metrics.ConnectionsActive.Dec()
				}
			}()
			s.serveConn(ctx, newConn(c))
		}()
	}
}

// rejectConn turns away a connection over the MaxConns cap.
func (s *Server) rejectConn(c net.Conn) {
	s.logger.Warn("connection limit reached, rejecting",
		"remote", c.RemoteAddr())
	deadline := time.Now().Add(s.writeTimeout())
	_ = c.SetWriteDeadline(deadline)
	_, _ = c.Write(proto.Encode(proto.ErrorString("ERR max number of clients reached")))
	_ = c.Close()
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer c.Close()

	// Downstream layers pull the connection-scoped logger and id back
	// out of the context.
	ctx = logger.WithLogger(ctx, s.logger.With("remote", c.RemoteAddr().String()))
	ctx = logger.WithConnID(ctx, c.ID())

	log := logger.L(ctx)
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	chunk := make([]byte, 4096)

	for {
		// Drain every complete frame already buffered before reading
		// more, so pipelined commands are answered in one pass.
		for len(c.buf) > 0 {
			value, rest, err := proto.Decode(c.buf)
			if err != nil {
				if errors.Is(err, proto.ErrIncomplete) {
					break
				}
				// Framing is unrecoverable after a malformed prefix.
				if s.metrics != nil {
					s.metrics.DecodeErrors.Inc()
				}
				log.Warn("protocol error", "error", err)
				s.writeReply(c, proto.ErrorString("ERR protocol error: "+err.Error()))
				s.flush(c)
				return
			}

			n := copy(c.buf, rest)
			c.buf = c.buf[:n]

			keepOpen := s.dispatch(ctx, c, log, value)
			if !keepOpen {
				s.flush(c)
				return
			}
		}

		if err := s.flush(c); err != nil {
			return
		}

		// Idle deadline between commands, tighter read deadline once a
		// command has started arriving.
		deadline := s.idleTimeout()
		if len(c.buf) > 0 {
			deadline = s.readTimeout()
		}
		if err := c.netConn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
			return
		}

		n, err := c.netConn.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
		}
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Debug("connection timed out")
			}
			return
		}
	}
}

// dispatch interprets one decoded frame and writes its reply. It
// reports whether the connection should stay open.
func (s *Server) dispatch(ctx context.Context, c *Conn, log *slog.Logger, value proto.Value) bool {
	// Connection-level commands bypass the command layer.
	switch name, args := connCommand(value); name {
	case "ping":
		if len(args) == 1 {
			s.writeReply(c, args[0])
		} else {
			s.writeReply(c, proto.SimpleString("PONG"))
		}
		return true
	case "quit":
		s.writeReply(c, proto.SimpleString("OK"))
		return false
	}

	if s.limiter != nil && !s.limiter.Allow(c.remoteIP()) {
		if s.metrics != nil {
			s.metrics.RateLimited.Inc()
		}
		s.writeReply(c, proto.ErrorString("ERR rate limit exceeded"))
		return true
	}

	cmd, err := command.Parse(value)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ParseErrors.Inc()
		}
		log.Debug("rejected command", "error", err)
		s.writeReply(c, proto.ErrorString(formatWireError(err)))
		return true
	}

	s.writeReply(c, s.handler.Execute(ctx, cmd))
	return true
}

// formatWireError converts a command interpretation error to a wire
// error message.
func formatWireError(err error) string {
	var (
		argErr     *command.ArgCountError
		unknownCmd *command.UnknownCommandError
		unknownOpt *command.UnknownOptionError
	)
	switch {
	case errors.As(err, &unknownCmd):
		return fmt.Sprintf("ERR unknown command %q", unknownCmd.Name)
	case errors.As(err, &argErr):
		return fmt.Sprintf("ERR wrong number of arguments: requires at least %d, got %d", argErr.Required, argErr.Provided)
	case errors.As(err, &unknownOpt):
		return fmt.Sprintf("ERR syntax error near %q", unknownOpt.Option)
	case errors.Is(err, command.ErrInvalidExpiry):
		return "ERR invalid expire time"
	case errors.Is(err, command.ErrNullValue), errors.Is(err, command.ErrWrongValueType):
		return "ERR invalid value"
	default:
		return "ERR " + err.Error()
	}
}

// connCommand extracts the name of a connection-level command, plus its
// arguments. Returns an empty name for anything else.
func connCommand(v proto.Value) (string, []proto.Value) {
	elems, err := v.Elements()
	if err != nil {
		return "", nil
	}
	name, err := elems[0].Text()
	if err != nil {
		return "", nil
	}
	switch name {
	case "ping", "quit":
		return name, elems[1:]
	}
	return "", nil
}

func (s *Server) writeReply(c *Conn, v proto.Value) {
	_ = proto.WriteValue(c.bw, v)
}

func (s *Server) flush(c *Conn) error {
	if c.bw.Buffered() == 0 {
		return nil
	}
	if err := c.netConn.SetWriteDeadline(time.Now().Add(s.writeTimeout())); err != nil {
		return err
	}
	return c.bw.Flush()
}

func (s *Server) readTimeout() time.Duration {
	if s.cfg.ReadTimeout > 0 {
		return s.cfg.ReadTimeout
	}
	return 30 * time.Second
}

func (s *Server) writeTimeout() time.Duration {
	if s.cfg.WriteTimeout > 0 {
		return s.cfg.WriteTimeout
	}
	return 30 * time.Second
}

func (s *Server) idleTimeout() time.Duration {
	if s.cfg.IdleTimeout > 0 {
		return s.cfg.IdleTimeout
	}
	return 5 * time.Minute
}
