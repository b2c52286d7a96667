package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"

	"github.com/thewired-org/wired-relay/lib/signing"
	"github.com/thewired-org/wired-relay/lib/types"
)

// relayInfoMiddleware answers NIP-11 information document requests and
// passes everything else through.
func relayInfoMiddleware(identity *signing.RelayIdentity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == "GET" && c.Get("Accept") == "application/nostr+json" {
			c.Set("Access-Control-Allow-Origin", "*")
			return c.JSON(GetRelayInfo(identity))
		}
		return c.Next()
	}
}

// GetRelayInfo assembles the NIP-11 document from config and the relay
// identity.
func GetRelayInfo(identity *signing.RelayIdentity) types.RelayInfo {
	return types.RelayInfo{
		Name:          viper.GetString("relay_name"),
		Description:   viper.GetString("relay_description"),
		Pubkey:        identity.PublicKey,
		Contact:       viper.GetString("relay_contact"),
		SupportedNIPs: []int{1, 11, 29, 42, 50},
		Software:      "https://github.com/thewired-org/wired-relay",
		Version:       viper.GetString("relay_version"),
	}
}
