package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/api/metrics"
	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10
	feedSendBuffer = 8
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// feedMessage is one full catalog snapshot pushed to every subscriber.
// Clients replace their view wholesale; no deltas are sent.
type feedMessage struct {
	Items []domain.Design `json:"items"`
	Total int             `json:"total"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// FeedHub fans catalog snapshots out to websocket subscribers. It receives
// snapshots from the change-stream watcher and keeps the latest one to serve
// newly connected clients immediately.
type FeedHub struct {
	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	latest  []byte
	log     zerolog.Logger
}

func NewFeedHub(log zerolog.Logger) *FeedHub {
	return &FeedHub{
		clients: make(map[*feedClient]struct{}),
		log:     log.With().Str("component", "feed_hub").Logger(),
	}
}

// ReplaceSnapshot filters the snapshot down to published items, caches the
// encoded payload, and broadcasts it. A client whose send buffer is full is
// skipped; it will catch up on the next snapshot or on reconnect.
func (h *FeedHub) ReplaceSnapshot(items []domain.Design) {
	visible := make([]domain.Design, 0, len(items))
	for _, d := range items {
		if d.Visible() {
			visible = append(visible, d)
		}
	}

	payload, err := json.Marshal(feedMessage{Items: visible, Total: len(visible)})
	if err != nil {
		h.log.Error().Err(err).Msg("snapshot encode failed")
		return
	}
	metrics.CatalogVisibleItems.Set(float64(len(visible)))

	h.mu.Lock()
	h.latest = payload
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
		}
	}
	h.mu.Unlock()
}

// Subscribe upgrades the request to a websocket and streams catalog
// snapshots until the client disconnects.
//
// @Summary      Subscribe to live catalog updates
// @Tags         designs
// @Success      101  "switching protocols"
// @Router       /designs/feed [get]
func (h *FeedHub) Subscribe(c echo.Context) error {
	conn, err := feedUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &feedClient{conn: conn, send: make(chan []byte, feedSendBuffer)}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	if h.latest != nil {
		client.send <- h.latest
	}
	h.mu.Unlock()
	metrics.FeedClients.Inc()

	go h.writePump(client)
	go h.readPump(client)
	return nil
}

func (h *FeedHub) drop(client *feedClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		metrics.FeedClients.Dec()
	}
	h.mu.Unlock()
	_ = client.conn.Close()
}

// readPump discards inbound frames; the feed is one-way. Reading is still
// required to process control frames and notice a dropped peer.
func (h *FeedHub) readPump(client *feedClient) {
	defer h.drop(client)
	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *FeedHub) writePump(client *feedClient) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		h.drop(client)
	}()

	for {
		select {
		case payload, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
