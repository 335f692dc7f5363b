// Package wallet turns a configured secret into a signing identity with a bech32 address.
package wallet

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// DefaultPrefix is the bech32 human-readable part of ZIGChain addresses.
const DefaultPrefix = "zig"

// DefaultHDPath is the Cosmos coin-type 118 derivation path.
const DefaultHDPath = "m/44'/118'/0'/0/0"

// mnemonicMinWords separates mnemonics from hex keys.
const mnemonicMinWords = 12

// ErrEmptySecret is returned for blank secrets.
var ErrEmptySecret = errors.New("wallet secret is empty")

// SecretKind tells how an identity was built.
type SecretKind string

const (
	KindPrivateKey SecretKind = "private_key"
	KindMnemonic   SecretKind = "mnemonic"
)

// Options controls address encoding and mnemonic derivation.
type Options struct {
	Prefix string
	HDPath string
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.HDPath == "" {
		o.HDPath = DefaultHDPath
	}
	return o
}

// Identity is an immutable signing credential and its derived address.
type Identity struct {
	key     *ecdsa.PrivateKey
	pubKey  []byte
	address string
	kind    SecretKind
}

// Parse builds an identity from a raw hex private key (optional 0x prefix)
// or from a mnemonic of at least twelve words.
func Parse(secret string, opts Options) (*Identity, error) {
	opts = opts.withDefaults()
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrEmptySecret
	}

	words := strings.Fields(secret)
	if len(words) >= mnemonicMinWords {
		return fromMnemonic(strings.Join(words, " "), opts)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(secret, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return newIdentity(key, KindPrivateKey, opts.Prefix)
}

func fromMnemonic(mnemonic string, opts Options) (*Identity, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("parse mnemonic: %w", err)
	}
	raw, err := DerivePath(seed, opts.HDPath)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", opts.HDPath, err)
	}
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("derived key: %w", err)
	}
	return newIdentity(key, KindMnemonic, opts.Prefix)
}

func newIdentity(key *ecdsa.PrivateKey, kind SecretKind, prefix string) (*Identity, error) {
	pub := crypto.CompressPubkey(&key.PublicKey)
	addr, err := AddressFromPubKey(prefix, pub)
	if err != nil {
		return nil, err
	}
	return &Identity{key: key, pubKey: pub, address: addr, kind: kind}, nil
}

// Address returns the bech32 account address.
func (id *Identity) Address() string { return id.address }

// PubKey returns the 33-byte compressed secp256k1 public key.
func (id *Identity) PubKey() []byte {
	out := make([]byte, len(id.pubKey))
	copy(out, id.pubKey)
	return out
}

// Kind reports whether the identity came from a raw key or a mnemonic.
func (id *Identity) Kind() SecretKind { return id.kind }

// Sign hashes msg with SHA-256 and returns the 64-byte r||s signature expected by Cosmos SDK chains.
func (id *Identity) Sign(msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	sig, err := crypto.Sign(digest[:], id.key)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig[:64], nil
}

// Short returns an abbreviated address for log lines.
func (id *Identity) Short() string {
	return ShortAddress(id.address)
}

// String never exposes key material.
func (id *Identity) String() string {
	return fmt.Sprintf("%s (%s)", id.address, id.kind)
}

// ShortAddress abbreviates a bech32 address as prefix…tail.
func ShortAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-4:]
}
