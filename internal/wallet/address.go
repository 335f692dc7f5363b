package wallet

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/ripemd160"
)

// AddressFromPubKey encodes ripemd160(sha256(pubKey)) as a bech32 address with the given prefix.
func AddressFromPubKey(prefix string, pubKey []byte) (string, error) {
	sha := sha256.Sum256(pubKey)
	h := ripemd160.New()
	h.Write(sha[:])
	conv, err := bech32.ConvertBits(h.Sum(nil), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert address bits: %w", err)
	}
	addr, err := bech32.Encode(prefix, conv)
	if err != nil {
		return "", fmt.Errorf("encode address: %w", err)
	}
	return addr, nil
}
