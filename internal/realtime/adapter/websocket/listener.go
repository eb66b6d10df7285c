// Package websocket streams change events to clients over a WebSocket.
package websocket

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"firebase-kit/internal/realtime/tree"
	"firebase-kit/internal/shared/eventbus"
	"firebase-kit/internal/shared/logger"
)

const (
	bufferSize   = 64
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Subscriber is the side of the event bus the listener needs
type Subscriber interface {
	Subscribe(eventType string, handler eventbus.Handler) (unsubscribe func())
}

// Listener forwards bus events whose path falls under the requested prefix.
//
//	GET /listen?path=rooms/r1&source=realtime
//
// source is optional and restricts events to one wrapper (docstore,
// realtime, auth, blobstore).
type Listener struct {
	bus Subscriber
	log logger.Logger
}

// NewListener creates a listener over bus
func NewListener(bus Subscriber, log logger.Logger) *Listener {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Listener{bus: bus, log: log.WithComponent("realtime.ws")}
}

// RegisterRoutes mounts /listen on router
func (l *Listener) RegisterRoutes(router fiber.Router) {
	router.Use("/listen", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/listen", websocket.New(l.handle))
}

// Filter selects the events one connection receives
type Filter struct {
	Prefix string
	Source string
}

// NewFilter canonicalizes prefix the way event paths are written
func NewFilter(prefix, source string) (Filter, error) {
	segments, err := tree.Split(prefix)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Prefix: tree.Join(segments), Source: source}, nil
}

// Match reports whether event lies at or below the prefix
func (f Filter) Match(event eventbus.Event) bool {
	if f.Source != "" && f.Source != event.Source {
		return false
	}
	if f.Prefix == "" {
		return true
	}
	return event.Path == f.Prefix || strings.HasPrefix(event.Path, f.Prefix+"/")
}

func (l *Listener) handle(conn *websocket.Conn) {
	subscriberID := uuid.NewString()
	log := l.log.WithFields(map[string]interface{}{"subscriber_id": subscriberID})

	filter, err := NewFilter(conn.Query("path"), conn.Query("source"))
	if err != nil {
		_ = conn.WriteJSON([2]any{false, err.Error()})
		_ = conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan eventbus.Event, bufferSize)
	unsubscribe := l.bus.Subscribe(eventbus.AllEvents, func(_ context.Context, event eventbus.Event) error {
		if !filter.Match(event) {
			return nil
		}
		select {
		case events <- event:
		case <-ctx.Done():
		default:
			log.Warnf("Dropping %s for slow listener", event.Type)
		}
		return nil
	})
	defer unsubscribe()

	log.Infof("Listener connected on %q", filter.Prefix)
	defer log.Info("Listener disconnected")

	// Reads only detect the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debugf("Read failed: %v", err)
				}
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	if err := conn.WriteJSON([2]any{true, map[string]string{"subscriberId": subscriberID, "path": filter.Prefix}}); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON([2]any{true, event}); err != nil {
				log.Debugf("Write failed: %v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
