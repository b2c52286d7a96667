package websocket

import (
	"fmt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"

	"github.com/thewired-org/wired-relay/lib/broadcast"
	"github.com/thewired-org/wired-relay/lib/signing"
	"github.com/thewired-org/wired-relay/lib/stores"
)

// BuildServer constructs the fiber app serving the nostr websocket
// endpoint, the NIP-11 information document and the health check.
func BuildServer(store stores.Store, bus *broadcast.Bus, identity *signing.RelayIdentity) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(relayInfoMiddleware(identity))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/", websocket.New(func(c *websocket.Conn) {
		handleConnection(c, store, bus, identity)
	}))

	return app
}

// StartServer blocks serving the app on the configured port.
func StartServer(app *fiber.App) error {
	return app.Listen(fmt.Sprintf(":%s", viper.GetString("port")))
}
