package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer      = 64
	broadcastBuffer = 256
)

// Message is what a seller's browser receives. Data is free-form per Type.
type Message struct {
	SellerID int64  `json:"seller_id,omitempty"`
	Type     string `json:"type"`
	Channel  string `json:"channel,omitempty"`
	Data     any    `json:"data"`
}

// Hub fans messages out to every open connection of a seller.
type Hub struct {
	sellers map[int64]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Message

	upgrader websocket.Upgrader

	mu sync.RWMutex
}

type Connection struct {
	ws       *websocket.Conn
	sellerID int64
	send     chan *Message
	hub      *Hub
}

// NewHub accepts upgrades from allowedOrigins. No origins, or "*", allows any.
func NewHub(allowedOrigins ...string) *Hub {
	h := &Hub{
		sellers:    make(map[int64]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message, broadcastBuffer),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.RLock()
			var conns []*Connection
			for _, m := range h.sellers {
				for c := range m {
					conns = append(conns, c)
				}
			}
			h.mu.RUnlock()

			// closed outside the lock: the pumps unregister on error
			for _, c := range conns {
				_ = c.ws.Close()
			}
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.sellers[conn.sellerID] == nil {
				h.sellers[conn.sellerID] = make(map[*Connection]struct{})
			}
			h.sellers[conn.sellerID][conn] = struct{}{}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			h.remove(conn)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.sellers[message.SellerID] {
				select {
				case conn.send <- message:
				default:
					// slow reader
					h.remove(conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(conn *Connection) {
	conns, ok := h.sellers[conn.sellerID]
	if !ok {
		return
	}
	if _, exists := conns[conn]; !exists {
		return
	}
	delete(conns, conn)
	close(conn.send)
	if len(conns) == 0 {
		delete(h.sellers, conn.sellerID)
	}
}

// Connections reports how many sockets a seller has open.
func (h *Hub) Connections(sellerID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sellers[sellerID])
}

// Broadcast never blocks; messages are dropped when the hub is saturated.
func (h *Hub) Broadcast(sellerID int64, message *Message) {
	message.SellerID = sellerID
	select {
	case h.broadcast <- message:
	default:
		log.Printf("[WS] broadcast queue full, dropping %s for seller %d", message.Type, sellerID)
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, sellerID int64) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	conn := &Connection{
		ws:       ws,
		sellerID: sellerID,
		send:     make(chan *Message, sendBuffer),
		hub:      h,
	}

	h.register <- conn

	go conn.writePump()
	go conn.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.ws.Close()
	}()

	c.ws.SetReadLimit(1024)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] read error seller=%d: %v", c.sellerID, err)
			}
			return
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteJSON(message); err != nil {
				log.Printf("[WS] write error seller=%d: %v", c.sellerID, err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
