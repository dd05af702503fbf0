// Package notify pushes start-list and result events to websocket subscribers.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MessageHeatsGenerated    = "HEATS_GENERATED"
	MessageFlightsGenerated  = "FLIGHTS_GENERATED"
	MessageResultsSubmitted  = "RESULTS_SUBMITTED"
	MessageRanksRecalculated = "RANKS_RECALCULATED"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	EventID int         `json:"eventId"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	eventID int

	mu     sync.Mutex
	closed bool
}

// Hub держит комнаты подписчиков, по одной на соревнование (event).
type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[int]map[*Client]bool
	mu         sync.RWMutex
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[int]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run обслуживает регистрацию клиентов до отмены ctx.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.eventID]; !ok {
				h.rooms[client.eventID] = make(map[*Client]bool)
			}
			h.rooms[client.eventID][client] = true
			h.logger.Debug("websocket client registered",
				slog.Int("event_id", client.eventID), slog.Int("room_size", len(h.rooms[client.eventID])))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.eventID]; ok {
				if _, ok := room[client]; ok {
					client.close()
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.eventID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for eventID, room := range h.rooms {
		for client := range room {
			client.close()
		}
		delete(h.rooms, eventID)
	}
}

// Publish отправляет сообщение всем подписчикам события. Медленные клиенты пропускаются.
func (h *Hub) Publish(eventID int, msgType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[eventID]
	if !ok {
		return
	}

	data, err := json.Marshal(Message{Type: msgType, Payload: payload, EventID: eventID})
	if err != nil {
		h.logger.Error("failed to marshal websocket message",
			slog.Int("event_id", eventID), slog.String("type", msgType), slog.Any("error", err))
		return
	}

	for client := range room {
		client.mu.Lock()
		if !client.closed {
			select {
			case client.send <- data:
			default:
				h.logger.Warn("websocket client send buffer full, skipping", slog.Int("event_id", eventID))
			}
		}
		client.mu.Unlock()
	}
}

// RoomSize возвращает число подписчиков события.
func (h *Hub) RoomSize(eventID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}

// Attach регистрирует соединение и запускает его read/write циклы.
func (h *Hub) Attach(conn *websocket.Conn, eventID int) {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), eventID: eventID}
	select {
	case h.register <- client:
	case <-h.done:
		// hub остановлен
		conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket closed unexpectedly",
					slog.String("room", strconv.Itoa(c.eventID)), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Каждое сообщение - отдельный фрейм, иначе клиент получит склеенный JSON.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
