package lifeline

import "strings"

// Key joins parts into a namespaced cache key, e.g.
// Key("user", "123", "steps") -> "user:123:steps". Empty parts are
// dropped.
func Key(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ":")
}
