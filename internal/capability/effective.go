package capability

import (
	"sort"
	"strings"
)

// Disposition marks an override row as Allow or Deny.
type Disposition int

const (
	// DispositionAllow grants a key regardless of the role.
	DispositionAllow Disposition = iota + 1
	// DispositionDeny removes a key, even when granted by role or allow.
	DispositionDeny
)

func (d Disposition) String() string {
	switch d {
	case DispositionAllow:
		return "allow"
	case DispositionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// ParseDisposition reads a WUsuarioPermiso.Tipo token.
func ParseDisposition(token string) (Disposition, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "permit", "allow", "a":
		return DispositionAllow, true
	case "deny", "block", "d":
		return DispositionDeny, true
	default:
		return 0, false
	}
}

// writeTokens lists the Tipo tokens tried in order when inserting an override.
func (d Disposition) writeTokens(kindLength int) []string {
	if kindLength == 1 || kindLength == 2 {
		if d == DispositionAllow {
			return []string{"A"}
		}

		return []string{"D"}
	}

	if d == DispositionAllow {
		return []string{"permit", "allow", "A", "a"}
	}

	return []string{"deny", "block", "D", "d"}
}

// EffectivePermissions computes (role ∪ allow) \ deny.
// Keys are compared case-insensitively; the result is sorted and keeps the
// first spelling seen.
func EffectivePermissions(role, allow, deny []string) []string {
	denied := make(map[string]struct{}, len(deny))
	for _, key := range deny {
		denied[strings.ToLower(strings.TrimSpace(key))] = struct{}{}
	}

	seen := make(map[string]struct{}, len(role)+len(allow))
	out := make([]string, 0, len(role)+len(allow))

	for _, keys := range [][]string{role, allow} {
		for _, key := range keys {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}

			folded := strings.ToLower(key)
			if _, ok := denied[folded]; ok {
				continue
			}
			if _, ok := seen[folded]; ok {
				continue
			}

			seen[folded] = struct{}{}
			out = append(out, key)
		}
	}

	sort.Strings(out)

	return out
}
