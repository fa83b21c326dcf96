package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// The realtime channel is a stand-in for the vendor's push service: a
// greeting on connect and a ping/pong loop, no license state involved.

// RequireWebSocketUpgrade rejects plain HTTP requests on the ws route.
func RequireWebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleRealtime runs the mock push channel for one connection.
func HandleRealtime() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		greeting := map[string]interface{}{
			"event":   "connected",
			"status":  "ok",
			"message": "welcome",
		}
		if err := conn.WriteJSON(greeting); err != nil {
			return
		}

		for {
			var msg map[string]interface{}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			event, _ := msg["event"].(string)
			switch event {
			case "ping":
				err := conn.WriteJSON(map[string]interface{}{
					"event":     "pong",
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				if err != nil {
					return
				}
			default:
				zap.S().Debugw("unhandled realtime event", "event", event)
			}
		}
	})
}
