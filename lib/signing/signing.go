package signing

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/nbd-wtf/go-nostr"

	"github.com/thewired-org/wired-relay/lib/logging"
)

// DecodeSecretKey accepts a 32-byte hex secret key or a bech32 nsec key
// and returns the raw key bytes.
func DecodeSecretKey(serializedKey string) ([]byte, error) {
	key := strings.TrimSpace(serializedKey)

	if strings.HasPrefix(key, "nsec") {
		_, bytesToBits, err := bech32.Decode(key)
		if err != nil {
			return nil, err
		}
		keyBytes, err := bech32.ConvertBits(bytesToBits, 5, 8, false)
		if err != nil {
			return nil, err
		}
		return keyBytes, nil
	}

	keyBytes, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("secret key is neither nsec nor hex: %w", err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("secret key must be 32 bytes, got %d", len(keyBytes))
	}

	return keyBytes, nil
}

// GeneratePrivateKey creates a fresh secp256k1 private key.
func GeneratePrivateKey() (*btcec.PrivateKey, error) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}

	return privateKey, nil
}

// RelayIdentity holds the relay's own keypair, used to sign the group
// metadata events (kind 39000/39001/39002). Immutable after startup.
type RelayIdentity struct {
	PublicKey string

	secretHex string
}

// NewRelayIdentity builds the relay identity from an optional secret key
// (hex or nsec). With no key configured an ephemeral one is generated and
// its hex is logged so it can be persisted; that mode is not meant for
// production.
func NewRelayIdentity(secretKey string) (*RelayIdentity, error) {
	var priv *btcec.PrivateKey

	if secretKey != "" {
		keyBytes, err := DecodeSecretKey(secretKey)
		if err != nil {
			return nil, fmt.Errorf("invalid relay secret key: %w", err)
		}
		priv, _ = btcec.PrivKeyFromBytes(keyBytes)
	} else {
		var err error
		priv, err = GeneratePrivateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate relay key: %w", err)
		}
		logging.Warnf("No relay secret key set. Generated ephemeral relay key: %s",
			hex.EncodeToString(priv.Serialize()))
	}

	identity := &RelayIdentity{
		PublicKey: hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey())),
		secretHex: hex.EncodeToString(priv.Serialize()),
	}

	logging.Infof("Relay identity pubkey: %s", identity.PublicKey)

	return identity, nil
}

// SignEvent builds and signs a complete event with the relay's identity.
// go-nostr computes the canonical id and signs it with fresh auxiliary
// randomness.
func (ri *RelayIdentity) SignEvent(kind int, tags nostr.Tags, content string) (*nostr.Event, error) {
	event := nostr.Event{
		PubKey:    ri.PublicKey,
		CreatedAt: nostr.Now(),
		Kind:      kind,
		Tags:      tags,
		Content:   content,
	}

	if err := event.Sign(ri.secretHex); err != nil {
		return nil, fmt.Errorf("failed to sign event: %w", err)
	}

	return &event, nil
}
