package handlers

import (
	"net/http"
	"sync"
	"time"

	"investcontrol/internal/handlers/business"
	dbconfig "investcontrol/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS middleware in front of the router
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedClient is a single subscriber on the ledger feed
type feedClient struct {
	conn *websocket.Conn
	send chan business.LedgerEvent
	mu   sync.Mutex
}

// ledger feed subscribers, keyed by remote address
var feedClients sync.Map // map[string]*feedClient

// ServeLedgerFeed upgrades the connection and streams ledger events
// until the client disconnects
func ServeLedgerFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("Failed to upgrade websocket connection")
		return
	}

	client := &feedClient{
		conn: conn,
		send: make(chan business.LedgerEvent, 16),
	}
	key := conn.RemoteAddr().String()
	feedClients.Store(key, client)
	log.WithFields(log.Fields{
		"remote_addr": key,
	}).Info("Ledger feed subscriber connected")

	go client.writePump(key)
	client.readPump(key)
}

// readPump drains control frames; the feed is write-only for clients
func (cl *feedClient) readPump(key string) {
	defer func() {
		feedClients.Delete(key)
		cl.conn.Close()
		log.WithFields(log.Fields{
			"remote_addr": key,
		}).Info("Ledger feed subscriber disconnected")
	}()

	cl.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump pushes events and periodic pings to the subscriber
func (cl *feedClient) writePump(key string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case event, ok := <-cl.send:
			if !ok {
				return
			}
			cl.mu.Lock()
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := cl.conn.WriteJSON(event)
			cl.mu.Unlock()
			if err != nil {
				log.WithFields(log.Fields{
					"remote_addr": key,
					"error":       err.Error(),
				}).Debug("Failed to write ledger event, dropping subscriber")
				return
			}
		case <-ticker.C:
			cl.mu.Lock()
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := cl.conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// emitLedgerEvent fans a committed ledger mutation out to websocket
// subscribers and the RabbitMQ queue. Delivery is best effort: the
// database commit already happened, so failures here are logged and
// swallowed.
func emitLedgerEvent(event business.LedgerEvent) {
	feedClients.Range(func(key, value interface{}) bool {
		client := value.(*feedClient)
		select {
		case client.send <- event:
		default:
			// Slow subscriber, skip rather than block the request
			log.WithFields(log.Fields{
				"remote_addr": key,
			}).Warn("Ledger feed subscriber is slow, dropping event")
		}
		return true
	})

	if dbconfig.RabbitMQ == nil {
		return
	}
	if err := dbconfig.PublishMessage(dbconfig.LedgerEventsQueue, event); err != nil {
		log.WithFields(log.Fields{
			"event_type": event.Type,
			"project_id": event.ProjectID,
			"error":      err.Error(),
		}).Error("Failed to publish ledger event")
	}
}
