package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/thewired-org/wired-relay/lib/broadcast"
	"github.com/thewired-org/wired-relay/lib/config"
	"github.com/thewired-org/wired-relay/lib/logging"
	"github.com/thewired-org/wired-relay/lib/signing"
	"github.com/thewired-org/wired-relay/lib/stores"
	"github.com/thewired-org/wired-relay/lib/transports/websocket"

	lib_nostr "github.com/thewired-org/wired-relay/lib/handlers/nostr"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/filter"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/kind9000"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/kind9001"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/kind9007"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/kind9008"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/kind9021"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/kind9022"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/universal"

	stores_postgres "github.com/thewired-org/wired-relay/lib/stores/gorm/postgres"
)

func main() {
	if err := config.InitConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.InitLogger()

	identity, err := signing.NewRelayIdentity(viper.GetString("relay_secret_key"))
	if err != nil {
		logging.Fatalf("Failed to load relay identity: %v", err)
	}
	logging.Infof("Relay identity: %s", identity.PublicKey)

	store, err := stores_postgres.InitStore(viper.GetString("database_url"))
	if err != nil {
		logging.Fatalf("Failed to initialize store: %v", err)
	}

	bus := broadcast.New(broadcast.DefaultCapacity)

	registerHandlers(store, bus, identity)

	app := websocket.BuildServer(store, bus, identity)

	go func() {
		if err := websocket.StartServer(app); err != nil {
			logging.Fatalf("Failed to start server: %v", err)
		}
	}()

	logging.Infof("Relay listening on port %s", viper.GetString("port"))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logging.Info("Shutting down")
	bus.Close()
	if err := app.Shutdown(); err != nil {
		logging.Errorf("Error during shutdown: %v", err)
	}
}

func registerHandlers(store stores.Store, bus *broadcast.Bus, identity *signing.RelayIdentity) {
	lib_nostr.RegisterHandler("universal", universal.BuildUniversalHandler(store, bus))
	lib_nostr.RegisterHandler("filter", filter.BuildFilterHandler(store))

	lib_nostr.RegisterHandler("kind/9000", kind9000.BuildKind9000Handler(store, bus, identity))
	lib_nostr.RegisterHandler("kind/9001", kind9001.BuildKind9001Handler(store, bus, identity))
	lib_nostr.RegisterHandler("kind/9007", kind9007.BuildKind9007Handler(store, bus, identity))
	lib_nostr.RegisterHandler("kind/9008", kind9008.BuildKind9008Handler(store, bus, identity))
	lib_nostr.RegisterHandler("kind/9021", kind9021.BuildKind9021Handler(store, bus, identity))
	lib_nostr.RegisterHandler("kind/9022", kind9022.BuildKind9022Handler(store, bus, identity))
}
