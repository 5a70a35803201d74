package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/videoinsight/internal/events"
)

// relayedEvents lists the client event names forwarded to every connection.
// Anything else is dropped.
var relayedEvents = map[string]bool{
	"chat message":    true,
	"analysis result": true,
}

// WSHandler upgrades clients onto the shared event channel. Every relayed
// event reaches every connected client, the sender included.
type WSHandler struct {
	hub      *events.Hub
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *events.Hub, log *logrus.Logger, allowedOrigin string) *WSHandler {
	return &WSHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.PingMessage, nil)
}

func (h *WSHandler) Events(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	id, ch, cancel := h.hub.Subscribe()
	defer cancel()

	h.log.WithField("client_id", id).Debug("websocket client connected")
	defer h.log.WithField("client_id", id).Debug("websocket client disconnected")

	// reader: client events -> hub
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var ev events.Event
			if err := json.Unmarshal(data, &ev); err != nil || ev.Name == "" {
				_ = wc.writeText([]byte(`{"event":"error","data":"invalid event payload"}`))
				continue
			}
			if !relayedEvents[ev.Name] {
				h.log.WithField("event", ev.Name).Debug("ignoring unknown websocket event")
				continue
			}
			h.hub.Publish(ev)
		}
	}()

	// writer: hub -> ws, with keepalive pings
	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-readDone:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			b, merr := json.Marshal(ev)
			if merr != nil {
				continue
			}
			if werr := wc.writeText(b); werr != nil {
				return
			}
		case <-pingTicker.C:
			if perr := wc.ping(); perr != nil {
				return
			}
		}
	}
}
