package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades HTTP requests into relay connections and runs the read
// pump. One goroutine per connection; the pump never reads the next frame
// until the relay has finished with the current one, so a slow
// persistence round trip stalls only its own connection.
type Handler struct {
	relay    *Relay
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates the websocket entry point.
func NewHandler(relay *Relay, hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{
		relay:  relay,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Session access control is out of scope; the share code is
			// the only admission token.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and blocks on the connection's pump.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newWSClient(conn)
	s := newSession(c)
	h.hub.add(s)
	h.logger.Info("connection opened", zap.String("conn", c.ID()))

	h.readPump(s, conn)
}

func (h *Handler) readPump(s *session, conn *websocket.Conn) {
	defer func() {
		h.relay.HandleClose(s)
		conn.Close()
		h.logger.Info("connection closed", zap.String("conn", s.client.ID()))
	}()

	ctx := context.Background()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("read failed", zap.String("conn", s.client.ID()), zap.Error(err))
			}
			return
		}
		h.relay.HandleMessage(ctx, s, data)
	}
}

// wsClient adapts a gorilla connection to the client interface. Writes
// are serialized by a mutex: the relay may fan out to a connection while
// its own pump is replying, and gorilla allows only one writer at a time.
type wsClient struct {
	id   string
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{id: uuid.New().String(), conn: conn}
}

func (c *wsClient) ID() string {
	return c.id
}

func (c *wsClient) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
