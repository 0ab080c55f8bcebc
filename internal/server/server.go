package server

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/time/rate"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sakshamg567/chase/config"
	"github.com/sakshamg567/chase/internal/room"
	"github.com/sakshamg567/chase/logger"
)

// New wires the HTTP surface: the websocket game endpoint plus a few JSON helpers.
func New(cfg config.Config, rm *room.RoomManager) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowedOrigins}))

	handler := room.NewHandler(rm)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		limiter := rate.NewLimiter(rate.Limit(cfg.InboundRate), cfg.InboundBurst)
		client := room.NewClient(c, limiter)
		logger.Debug("ws connection from %s", c.RemoteAddr())

		go client.ReadPump(handler)
		client.WritePump()
	}))

	app.Get("/room/:code", func(c *fiber.Ctx) error {
		code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
		return c.JSON(fiber.Map{
			"roomCode": code,
			"exists":   rm.RoomExists(code),
		})
	})

	admin := app.Group("/api")
	if cfg.AdminAuthEnabled() {
		admin.Use(jwtware.New(jwtware.Config{
			SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: cfg.AdminJWTSecret},
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
			},
		}))
	} else {
		logger.Warn("ADMIN_JWT_SECRET not set, /api/rooms is open")
	}
	admin.Get("/rooms", func(c *fiber.Ctx) error {
		if token, ok := c.Locals("user").(*jwt.Token); ok {
			sub, _ := token.Claims.GetSubject()
			logger.Debug("room listing requested by %q", sub)
		}
		return c.JSON(rm.Rooms())
	})

	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	return app
}
