package wallet

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
)

// DerivePath walks a BIP-32 path such as m/44'/118'/0'/0/0 from seed and returns the 32-byte private key.
func DerivePath(seed []byte, path string) ([]byte, error) {
	indexes, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	// Network params only affect serialization, never the derived key.
	ext, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	for _, idx := range indexes {
		ext, err = ext.Derive(idx)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
	}

	priv, err := ext.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	return priv.Serialize(), nil
}

// parsePath accepts absolute paths only; a bare "m" is the master key.
func parsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path == "m" {
		return nil, nil
	}
	if !strings.HasPrefix(path, "m/") {
		return nil, fmt.Errorf("hd path %q must start with m/", path)
	}
	dp, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("hd path %q: %w", path, err)
	}
	return []uint32(dp), nil
}
