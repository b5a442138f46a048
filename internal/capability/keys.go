package capability

import (
	"sort"
	"strings"
)

const (
	maxPermissionKeyLength = 200
	maxRoleCodeLength      = 30
	defaultModule          = "general"
)

// NormalizePermissionKey trims and lowercases key and checks the module.action format.
func NormalizePermissionKey(key string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(key))

	switch {
	case value == "":
		return "", &ValidationError{Reason: "permission key is required"}
	case len(value) > maxPermissionKeyLength:
		return "", &ValidationError{Reason: "permission key exceeds 200 characters", Keys: []string{value}}
	}

	for _, ch := range value {
		if (ch < 'a' || ch > 'z') && (ch < '0' || ch > '9') && ch != '.' && ch != '_' {
			return "", &ValidationError{
				Reason: "permission key only allows a-z, 0-9, dot and underscore",
				Keys:   []string{value},
			}
		}
	}

	if !strings.Contains(value, ".") {
		return "", &ValidationError{Reason: "permission key must look like module.action", Keys: []string{value}}
	}

	return value, nil
}

// NormalizeRoleCode uppercases code and collapses anything outside A-Z, 0-9 and _ into a single _.
func NormalizeRoleCode(code string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(code))

	var b strings.Builder
	pending := false

	for _, ch := range upper {
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' {
			if pending {
				b.WriteByte('_')
				pending = false
			}
			b.WriteRune(ch)
			continue
		}
		pending = true
	}

	value := strings.Trim(b.String(), "_")
	if len(value) > maxRoleCodeLength {
		value = strings.TrimRight(value[:maxRoleCodeLength], "_")
	}

	if value == "" {
		return "", &ValidationError{Reason: "role code is required"}
	}

	return value, nil
}

// ModuleFromKey returns the text before the first dot, or "general".
func ModuleFromKey(key string) string {
	if idx := strings.IndexByte(key, '.'); idx > 0 {
		return key[:idx]
	}

	return defaultModule
}

// normalizeKeyList trims keys, drops blanks and removes case-insensitive duplicates.
// The first spelling of a key is kept.
func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))

	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		folded := strings.ToLower(key)
		if _, ok := seen[folded]; ok {
			continue
		}

		seen[folded] = struct{}{}
		out = append(out, key)
	}

	return out
}

// intersectFold returns the keys of a that also appear in b, sorted.
func intersectFold(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, key := range b {
		inB[strings.ToLower(key)] = struct{}{}
	}

	var out []string
	for _, key := range a {
		if _, ok := inB[strings.ToLower(key)]; ok {
			out = append(out, key)
		}
	}

	sort.Strings(out)

	return out
}

// missingFold returns the wanted keys absent from found, compared case-insensitively.
func missingFold(wanted []string, found map[string]any) []string {
	var out []string
	for _, key := range wanted {
		if _, ok := found[strings.ToLower(key)]; !ok {
			out = append(out, key)
		}
	}

	return out
}
