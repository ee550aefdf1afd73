package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Syndicate/internal/app"
	"github.com/dkeye/Syndicate/internal/core"
	"github.com/dkeye/Syndicate/internal/metrics"
)

var ErrBackpressure = errors.New("backpressure")

// GameWSController upgrades connections and routes inbound envelopes to
// the orchestrator. One instance serves all rooms.
type GameWSController struct {
	Orch       *app.Orchestrator
	Limiter    *CreateRateLimiter
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewGameWSController(orch *app.Orchestrator, readLimit int64, pingPeriod time.Duration) *GameWSController {
	return &GameWSController{
		Orch:       orch,
		Limiter:    NewCreateRateLimiter(5, time.Minute),
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
	}
}

// nextConnID mints the opaque per-connection identifier the core keys on.
var nextConnID atomic.Uint64

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *GameWSController) HandleGame(ctx context.Context, c *gin.Context) {
	ct := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	id := core.ConnID(nextConnID.Add(1))
	log.Info().Str("module", "signal").Uint64("conn", uint64(id)).Str("ct", ct).Msg("new WS connection")

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	ctl.Orch.Registry.Bind(id, conn)
	metrics.ActiveConnections.Inc()

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, id, conn)
}
