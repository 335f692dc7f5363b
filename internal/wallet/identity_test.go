package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestParse_PrivateKey(t *testing.T) {
	key := strings.Repeat("1", 64)
	id, err := Parse(key, Options{})
	require.NoError(t, err)
	assert.Equal(t, KindPrivateKey, id.Kind())
	assert.Equal(t, "zig1l3e9pgs3mmwuwrh95fecme0s0qtn2880gqhft3", id.Address())
	assert.Equal(t, "034f355bdcb7cc0af728ef3cceb9615d90684bb5b2ca5f859ab0f0b704075871aa", hex.EncodeToString(id.PubKey()))

	withPrefix, err := Parse("  0x"+key+"\n", Options{})
	require.NoError(t, err)
	assert.Equal(t, id.Address(), withPrefix.Address())
}

func TestParse_Mnemonic(t *testing.T) {
	id, err := Parse(testMnemonic, Options{})
	require.NoError(t, err)
	assert.Equal(t, KindMnemonic, id.Kind())
	assert.Equal(t, "zig19rl4cm2hmr8afy4kldpxz3fka4jguq0aa2g0aa", id.Address())

	cosmos, err := Parse(strings.ReplaceAll(testMnemonic, " ", "   "), Options{Prefix: "cosmos"})
	require.NoError(t, err)
	assert.Equal(t, "cosmos19rl4cm2hmr8afy4kldpxz3fka4jguq0auqdal4", cosmos.Address())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("   ", Options{})
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = Parse("not-hex", Options{})
	assert.Error(t, err)

	_, err = Parse(strings.Repeat("abandon ", 12), Options{})
	assert.Error(t, err, "checksum must be validated")

	_, err = Parse(testMnemonic, Options{HDPath: "44'/118'"})
	assert.Error(t, err)
}

func TestSign_VerifiesAgainstPubKey(t *testing.T) {
	id, err := Parse(strings.Repeat("1", 64), Options{})
	require.NoError(t, err)

	msg := []byte("sign doc bytes")
	sig, err := id.Sign(msg)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	digest := sha256.Sum256(msg)
	assert.True(t, crypto.VerifySignature(id.PubKey(), digest[:], sig))
}

func TestString_HidesSecret(t *testing.T) {
	key := strings.Repeat("1", 64)
	id, err := Parse(key, Options{})
	require.NoError(t, err)
	assert.NotContains(t, id.String(), key)
	assert.Equal(t, "zig1l3e9...hft3", id.Short())
}

func TestAddressFromPubKey_Decodes(t *testing.T) {
	id, err := Parse(testMnemonic, Options{})
	require.NoError(t, err)
	hrp, data, err := bech32.Decode(id.Address())
	require.NoError(t, err)
	assert.Equal(t, "zig", hrp)
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	require.NoError(t, err)
	assert.Len(t, raw, 20)
}
