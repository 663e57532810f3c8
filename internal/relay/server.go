package relay

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Serve runs the read loop for one upgraded connection until it closes.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := h.Register(conn)
	defer func() {
		h.Unregister(c)
		_ = conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}
		h.Handle(context.Background(), c, raw)
	}
}

// NewApp mounts the relay on "/" with a plain health check beside it.
func NewApp(h *Hub) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "CultureChat Relay"})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "connections": h.Len()})
	})

	app.Use("/", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/", websocket.New(h.Serve))

	return app
}
