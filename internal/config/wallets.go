package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Secret is one wallet secret found in the environment.
type Secret struct {
	Name  string
	Value string
}

// WalletSecrets resolves the wallet mode and collects secrets from environ ("KEY=value" pairs).
// Multi mode reads <prefix>_<n> ordered by n, skipping blanks; single mode reads <prefix>.
// Auto picks multi when any indexed secret is set.
func (c *Config) WalletSecrets(environ []string) (string, []Secret, error) {
	prefix := c.Wallets.EnvPrefix
	indexed := indexedSecrets(prefix, environ)

	mode := c.Wallets.Mode
	if mode == ModeAuto {
		mode = ModeSingle
		if len(indexed) > 0 {
			mode = ModeMulti
		}
	}

	switch mode {
	case ModeMulti:
		return mode, indexed, nil
	case ModeSingle:
		for _, kv := range environ {
			k, v, ok := strings.Cut(kv, "=")
			if ok && k == prefix && strings.TrimSpace(v) != "" {
				return mode, []Secret{{Name: k, Value: strings.TrimSpace(v)}}, nil
			}
		}
		return mode, nil, fmt.Errorf("%s not found in environment", prefix)
	default:
		return mode, nil, fmt.Errorf("unknown wallet mode %q", mode)
	}
}

func indexedSecrets(prefix string, environ []string) []Secret {
	type entry struct {
		n int
		s Secret
	}
	var entries []entry
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, prefix+"_") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(k, prefix+"_"))
		if err != nil || n < 0 {
			continue
		}
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		entries = append(entries, entry{n: n, s: Secret{Name: k, Value: v}})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].n != entries[j].n {
			return entries[i].n < entries[j].n
		}
		return entries[i].s.Name < entries[j].s.Name
	})

	out := make([]Secret, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.s)
	}
	return out
}
