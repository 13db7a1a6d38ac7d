package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dotside-studios/rccard-agent/protocol"
)

// wsClient is a connected WebSocket consumer. Writes are serialized per
// connection since gorilla/websocket allows only one concurrent writer.
type wsClient struct {
	id    string
	conn  *websocket.Conn
	codec protocol.Codec
	mu    sync.Mutex
}

func newWSClient(conn *websocket.Conn, codec protocol.Codec) *wsClient {
	return &wsClient{
		id:    uuid.NewString(),
		conn:  conn,
		codec: codec,
	}
}

// send encodes call with the client's codec and writes it as one frame.
func (c *wsClient) send(call protocol.MethodCall) error {
	data, err := c.codec.Marshal(call)
	if err != nil {
		return err
	}
	messageType := websocket.TextMessage
	if c.codec.Binary() {
		messageType = websocket.BinaryMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
	c.conn.Close()
}

// ClientManager manages WebSocket client connections and broadcasting.
type ClientManager struct {
	clients map[string]*wsClient
	mu      sync.RWMutex
	logger  zerolog.Logger
}

// NewClientManager creates a new ClientManager instance.
func NewClientManager(logger zerolog.Logger) *ClientManager {
	return &ClientManager{
		clients: make(map[string]*wsClient),
		logger:  logger,
	}
}

func (cm *ClientManager) register(c *wsClient) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.clients[c.id] = c
}

func (cm *ClientManager) unregister(c *wsClient) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.clients, c.id)
}

// Count returns the number of connected clients.
func (cm *ClientManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// Broadcast sends call to every connected client. Clients that fail a write
// are closed and removed.
func (cm *ClientManager) Broadcast(call protocol.MethodCall) {
	cm.mu.RLock()
	clients := make([]*wsClient, 0, len(cm.clients))
	for _, c := range cm.clients {
		clients = append(clients, c)
	}
	cm.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(call); err != nil {
			cm.logger.Warn().Err(err).Str("client", c.id).Msg("websocket write failed, dropping client")
			c.conn.Close()
			cm.unregister(c)
		}
	}
}

// CloseAll closes all client connections.
func (cm *ClientManager) CloseAll() {
	cm.mu.Lock()
	clients := cm.clients
	cm.clients = make(map[string]*wsClient)
	cm.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
