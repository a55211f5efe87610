package plot

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/logger"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// WebSocketManager handles WebSocket connections
type WebSocketManager struct {
	sync.RWMutex
	clients       map[*websocket.Conn]string // map of connection to pair
	upgrader      websocket.Upgrader
	broadcastChan chan WebSocketMessage
	log           logger.Logger
	chart         *WebChart
}

// NewWebSocketManager creates a new WebSocket manager
func NewWebSocketManager(log logger.Logger, chart *WebChart) *WebSocketManager {
	manager := &WebSocketManager{
		clients: make(map[*websocket.Conn]string),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		broadcastChan: make(chan WebSocketMessage, 100),
		log:           log,
		chart:         chart,
	}

	// Start broadcast handler
	go manager.handleBroadcasts()

	return manager
}

// handleBroadcasts processes messages from the broadcast channel
func (m *WebSocketManager) handleBroadcasts() {
	for msg := range m.broadcastChan {
		m.RLock()
		for conn, pair := range m.clients {
			// If message has a specific pair, only send to clients subscribed to that pair
			if payload, ok := msg.Payload.(map[string]any); ok {
				if msgPair, ok := payload["pair"].(string); ok && msgPair != "" && pair != msgPair {
					continue
				}
			}

			err := conn.WriteJSON(msg)
			if err != nil {
				m.log.Error("Error sending WebSocket message: ", err)
				conn.Close()
				// The client handler removes the connection from the map
				// when it detects the closed connection
			}
		}
		m.RUnlock()
	}
}

// HandleWebSocket handles WebSocket connections
func (m *WebSocketManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Extract pair from query parameters
	pair := r.URL.Query().Get("pair")
	if pair == "" {
		http.Error(w, "Missing pair parameter", http.StatusBadRequest)
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Error("Failed to upgrade connection to WebSocket: ", err)
		return
	}

	// Register client
	m.Lock()
	m.clients[conn] = pair
	m.log.Info("New WebSocket client connected for pair: ", pair)
	clientCount := len(m.clients)
	m.Unlock()

	m.log.Info("Total WebSocket clients: ", clientCount)

	// Send initial data
	go m.sendInitialData(conn, pair)

	// Handle client messages
	go m.handleClient(conn)
}

// handleClient processes messages from a client
func (m *WebSocketManager) handleClient(conn *websocket.Conn) {
	defer func() {
		// Remove client on disconnect
		m.Lock()
		delete(m.clients, conn)
		m.log.Info("WebSocket client disconnected, remaining: ", len(m.clients))
		m.Unlock()
		conn.Close()
	}()

	// Keep connection alive with ping/pong
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte{}, time.Now().Add(10*time.Second))
	})

	// Read messages (we don't expect any, but need to handle disconnects)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.log.Error("WebSocket read error: ", err)
			}
			break
		}
	}
}

// sendInitialData sends initial chart data to a new client
func (m *WebSocketManager) sendInitialData(conn *websocket.Conn, pair string) {
	visible := m.chart.Engine().VisibleLogicalRange()

	response := map[string]any{
		"candles": m.chart.candlesByPair(pair),
		"visible_range": map[string]float64{
			"from": visible.From,
			"to":   visible.To,
		},
		"pair": pair,
	}

	msg := WebSocketMessage{
		Type:    "initialData",
		Payload: response,
	}

	err := conn.WriteJSON(msg)
	if err != nil {
		m.log.Error("Error sending initial data: ", err)
	}
}

// BroadcastCandle broadcasts a new candle to clients watching the pair
func (m *WebSocketManager) BroadcastCandle(candle Candle, pair string) {
	m.broadcastChan <- WebSocketMessage{
		Type: "newCandle",
		Payload: map[string]any{
			"candle": candle,
			"pair":   pair,
		},
	}
}

// BroadcastVisibleRange broadcasts a visible-range change to all clients
func (m *WebSocketManager) BroadcastVisibleRange(r core.VisibleRange) {
	m.broadcastChan <- WebSocketMessage{
		Type: "visibleRange",
		Payload: map[string]any{
			"from": r.From,
			"to":   r.To,
		},
	}
}
