package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/kiddieguard/sentinel/internal/core"
	"github.com/kiddieguard/sentinel/internal/hub"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// 30 log lines a second per connection is plenty for diagnostics.
const (
	remoteLogLimit  = 30
	remoteLogWindow = time.Second
)

// Controller upgrades HTTP requests into hub connections and pumps events
// between the socket and the relay router.
type Controller struct {
	Router    *hub.Router
	Broker    *Broker
	ReadLimit int64

	logLimiter *ConnRateLimiter
}

func NewController(router *hub.Router, broker *Broker, readLimit int64) *Controller {
	return &Controller{
		Router:     router,
		Broker:     broker,
		ReadLimit:  readLimit,
		logLimiter: NewConnRateLimiter(remoteLogLimit, remoteLogWindow),
	}
}

// Handle upgrades the request and starts the connection pumps. Each
// connection gets a fresh opaque id: two dashboards in one browser are two
// distinct connections.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	netConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Str("module", "adapters.ws").Err(err).Msg("ws upgrade failed")
		return
	}
	if ctl.ReadLimit > 0 {
		netConn.SetReadLimit(ctl.ReadLimit)
	}

	id := core.ConnID(uuid.NewString())
	conn := newConn(netConn)
	ctl.Broker.attach(id, conn)

	go conn.writePump(ctx)
	go ctl.readPump(ctx, id, conn)
}

// readPump drains the socket until it dies. On exit the hub sees a
// disconnect first, then the transport forgets the connection: presence
// transitions must resolve the session before it is gone.
func (ctl *Controller) readPump(ctx context.Context, id core.ConnID, c *conn) {
	defer func() {
		ctl.Router.HandleDisconnect(id)
		ctl.Broker.detach(id)
		ctl.logLimiter.Forget(id)
		c.close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, raw, err := c.netConn.ReadMessage()
			if err != nil {
				log.Debug().Str("module", "adapters.ws").Str("conn", string(id)).Err(err).Msg("read loop closed")
				return
			}
			ctl.dispatch(id, raw)
		}
	}
}

// dispatch decodes the envelope and hands each event to its handler.
// Handlers are invoked to completion before the next read, so one
// connection's events are processed in order without extra locking.
func (ctl *Controller) dispatch(id core.ConnID, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug().Str("module", "adapters.ws").Str("conn", string(id)).Err(err).Msg("bad envelope")
		return
	}

	switch env.Event {
	case core.EventJoin:
		var p hub.JoinPayload
		if !decode(id, env, &p) {
			return
		}
		ctl.Router.HandleJoin(id, p)
	case core.EventStreamFrame:
		var p hub.StreamFramePayload
		if !decode(id, env, &p) {
			return
		}
		ctl.Router.HandleStreamFrame(id, p)
	case core.EventCommand:
		var p map[string]any
		if !decode(id, env, &p) {
			return
		}
		ctl.Router.HandleCommand(id, p)
	case core.EventStateReport:
		ctl.Router.HandleStateReport(id, env.Data)
	case core.EventSnapshot, core.EventCryAlert:
		var p hub.SnapshotPayload
		if !decode(id, env, &p) {
			return
		}
		ctl.Router.HandleSnapshot(id, p)
	case core.EventRemoteLog:
		if !ctl.logLimiter.Allow(id) {
			return
		}
		var p hub.RemoteLogPayload
		if !decode(id, env, &p) {
			return
		}
		ctl.Router.HandleRemoteLog(p)
	default:
		log.Debug().Str("module", "adapters.ws").Str("event", env.Event).Msg("unknown event")
	}
}

func decode(id core.ConnID, env Envelope, out any) bool {
	if len(env.Data) == 0 {
		return false
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		log.Debug().Str("module", "adapters.ws").Str("conn", string(id)).Str("event", env.Event).Err(err).Msg("bad payload")
		return false
	}
	return true
}
