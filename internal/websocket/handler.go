package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/nature-translator/domain/entities"
	"github.com/satriahrh/nature-translator/internal/metrics"
)

// Session close reasons, as reported in logs and metrics
const (
	reasonClientClosed     = "client_closed"
	reasonTransportError   = "transport_error"
	reasonUnsupportedFrame = "unsupported_frame"
	reasonDecodeError      = "decode_error"
	reasonAnalysisError    = "analysis_error"
	reasonServerShutdown   = "server_shutdown"
)

// ErrHandlerClosed is returned by Shutdown when called twice
var ErrHandlerClosed = errors.New("websocket handler already shut down")

// Analyzer produces the result for one streaming request
type Analyzer interface {
	AnalyzeStream(ctx context.Context, req entities.AnalysisRequest) (*entities.ClassificationResult, error)
}

// Options tunes connection handling
type Options struct {
	// Time allowed to write a message to the peer.
	WriteWait time.Duration

	// Time allowed to read the next message or pong from the peer.
	PongWait time.Duration

	// Send pings to peer with this period. Must be less than PongWait.
	PingPeriod time.Duration

	// Maximum message size allowed from peer.
	MaxMessageSize int64

	// Outbound queue length per connection.
	SendBuffer int
}

// DefaultOptions returns the standard connection settings
func DefaultOptions() Options {
	return Options{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 512 * 1024,
		SendBuffer:     256,
	}
}

// Handler upgrades HTTP requests to streaming sessions. Each session runs
// on its own pair of goroutines and shares nothing with other sessions.
type Handler struct {
	analyzer Analyzer
	opts     Options
	metrics  *metrics.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	closed   bool
	shutdown chan struct{}
	sessions sync.WaitGroup
}

// NewHandler creates a new streaming handler
func NewHandler(analyzer Analyzer, opts Options, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		opts:     opts,
		metrics:  m,
		logger:   logger,
		upgrader: websocket.Upgrader{
			// Any origin may connect
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		shutdown: make(chan struct{}),
	}
}

// HandleWebSocket handles websocket requests from the peer.
func (h *Handler) HandleWebSocket(c echo.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error":   "shutting_down",
			"message": "Server is shutting down",
		})
	}
	// Both pumps are counted before the lock is released so Shutdown
	// never waits on a group that is still growing.
	h.sessions.Add(2)
	h.mu.Unlock()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.sessions.Add(-2)
		// The upgrader has already replied with an HTTP error
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("remoteAddr", c.RealIP()),
			zap.Error(err))
		return nil
	}

	client := &Client{
		handler:    h,
		conn:       conn,
		send:       make(chan []byte, h.opts.SendBuffer),
		writerDone: make(chan struct{}),
		logger:     h.logger.With(zap.String("remoteAddr", conn.RemoteAddr().String())),
		state:      StateAccepted,
	}

	h.metrics.ActiveConnections.Inc()
	client.logger.Info("WebSocket connection accepted")

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// Shutdown closes every open session and waits for them to finish or for
// ctx to expire. New connections are refused afterwards.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHandlerClosed
	}
	h.closed = true
	close(h.shutdown)
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("All WebSocket sessions closed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) shuttingDown() bool {
	select {
	case <-h.shutdown:
		return true
	default:
		return false
	}
}

// Client is one streaming session.
type Client struct {
	handler *Handler

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of encoded results, in the order they were produced.
	send chan []byte

	// Closed when writePump exits.
	writerDone chan struct{}

	logger *zap.Logger

	// Only read and written by readPump after the handshake.
	state State
}

// readPump reads requests one at a time and queues a result for each.
// Requests are handled strictly in arrival order.
func (c *Client) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	reason := reasonClientClosed

	defer func() {
		cancel()
		// writePump flushes what is queued, sends a close frame and
		// closes the connection.
		close(c.send)
		c.handler.metrics.ActiveConnections.Dec()
		c.handler.metrics.SessionsClosed.WithLabelValues(reason).Inc()
		c.logger.Info("WebSocket connection closed",
			zap.String("reason", reason),
			zap.Stringer("lastState", c.state))
		c.state = StateClosed
		c.handler.sessions.Done()
	}()

	c.conn.SetReadLimit(c.handler.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.handler.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.handler.opts.PongWait))
		return nil
	})

	for {
		c.state = StateReceiving
		messageType, payload, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case c.handler.shuttingDown():
				reason = reasonServerShutdown
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
				reason = reasonClientClosed
			default:
				reason = reasonTransportError
				c.state = StateFailed
				c.logger.Warn("WebSocket read failed", zap.Error(err))
			}
			return
		}

		c.conn.SetReadDeadline(time.Now().Add(c.handler.opts.PongWait))
		c.handler.metrics.MessagesTotal.WithLabelValues("inbound").Inc()

		if messageType != websocket.TextMessage {
			reason = reasonUnsupportedFrame
			c.state = StateFailed
			c.logger.Warn("Received non-text frame", zap.Int("type", messageType))
			return
		}

		c.state = StateResponding
		data, err := c.process(ctx, payload)
		if err != nil {
			if errors.Is(err, ErrInvalidRequest) {
				reason = reasonDecodeError
			} else {
				reason = reasonAnalysisError
			}
			c.state = StateFailed
			c.logger.Warn("Failed to process message", zap.Error(err))
			return
		}

		select {
		case c.send <- data:
		case <-c.writerDone:
			reason = reasonTransportError
			c.state = StateFailed
			return
		}
	}
}

func (c *Client) process(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := DecodeAnalysisRequest(payload)
	if err != nil {
		return nil, err
	}

	result, err := c.handler.analyzer.AnalyzeStream(ctx, req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Classified stream message",
		zap.String("id", result.ID),
		zap.String("animal", result.Animal),
		zap.String("location", result.Location))

	return json.Marshal(result)
}

// writePump pumps queued results to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.handler.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		close(c.writerDone)
		c.conn.Close()
		c.handler.sessions.Done()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.handler.opts.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("Failed to write message", zap.Error(err))
				return
			}
			c.handler.metrics.MessagesTotal.WithLabelValues("outbound").Inc()

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.handler.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.handler.shutdown:
			c.conn.SetWriteDeadline(time.Now().Add(c.handler.opts.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}
