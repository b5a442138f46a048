package capability

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePermissions(t *testing.T) {
	testCases := []struct {
		name     string
		role     []string
		allow    []string
		deny     []string
		expected []string
	}{
		{
			name:     "empty",
			expected: []string{},
		},
		{
			name:     "role only",
			role:     []string{"usuarios.ver", "empresas.ver"},
			expected: []string{"empresas.ver", "usuarios.ver"},
		},
		{
			name:     "allow extends role",
			role:     []string{"usuarios.ver"},
			allow:    []string{"usuarios.crear"},
			expected: []string{"usuarios.crear", "usuarios.ver"},
		},
		{
			name:     "deny removes role grant",
			role:     []string{"usuarios.ver", "usuarios.crear"},
			deny:     []string{"usuarios.ver"},
			expected: []string{"usuarios.crear"},
		},
		{
			name:     "deny wins over allow",
			allow:    []string{"usuarios.ver"},
			deny:     []string{"usuarios.ver"},
			expected: []string{},
		},
		{
			name:     "deny ignores case",
			role:     []string{"Usuarios.Ver"},
			deny:     []string{"usuarios.ver"},
			expected: []string{},
		},
		{
			name:     "duplicates collapse keeping first spelling",
			role:     []string{"Cheques.Ver", "cheques.ver"},
			allow:    []string{"CHEQUES.VER"},
			expected: []string{"Cheques.Ver"},
		},
		{
			name:     "blank keys are dropped",
			role:     []string{" ", "proveedores.ver "},
			expected: []string{"proveedores.ver"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EffectivePermissions(tc.role, tc.allow, tc.deny))
		})
	}
}

func TestEffectivePermissionsSetAlgebra(t *testing.T) {
	universe := SeedKeys()
	rnd := rand.New(rand.NewSource(42)) //nolint:gosec

	pick := func() []string {
		var out []string
		for _, key := range universe {
			if rnd.Intn(3) == 0 {
				out = append(out, key)
			}
		}

		return out
	}

	for i := 0; i < 500; i++ {
		role, allow, deny := pick(), pick(), pick()

		denied := make(map[string]bool)
		for _, key := range deny {
			denied[key] = true
		}

		want := make(map[string]bool)
		for _, key := range append(append([]string{}, role...), allow...) {
			if !denied[key] {
				want[key] = true
			}
		}

		expected := make([]string, 0, len(want))
		for key := range want {
			expected = append(expected, key)
		}
		sort.Strings(expected)

		got := EffectivePermissions(role, allow, deny)
		require.Equal(t, expected, got, "role=%v allow=%v deny=%v", role, allow, deny)

		for _, key := range deny {
			require.NotContains(t, got, key)
		}
	}
}

func TestParseDisposition(t *testing.T) {
	testCases := []struct {
		token    string
		expected Disposition
		ok       bool
	}{
		{token: "permit", expected: DispositionAllow, ok: true},
		{token: "ALLOW", expected: DispositionAllow, ok: true},
		{token: " a ", expected: DispositionAllow, ok: true},
		{token: "Deny", expected: DispositionDeny, ok: true},
		{token: "block", expected: DispositionDeny, ok: true},
		{token: "D", expected: DispositionDeny, ok: true},
		{token: "x"},
		{token: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			d, ok := ParseDisposition(tc.token)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestWriteTokens(t *testing.T) {
	testCases := []struct {
		name        string
		disposition Disposition
		kindLength  int
		expected    []string
	}{
		{name: "allow in char(1)", disposition: DispositionAllow, kindLength: 1, expected: []string{"A"}},
		{name: "deny in char(2)", disposition: DispositionDeny, kindLength: 2, expected: []string{"D"}},
		{name: "allow in wide column", disposition: DispositionAllow, kindLength: 20, expected: []string{"permit", "allow", "A", "a"}},
		{name: "deny in wide column", disposition: DispositionDeny, kindLength: 10, expected: []string{"deny", "block", "D", "d"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := tc.disposition.writeTokens(tc.kindLength)
			assert.Equal(t, tc.expected, tokens)

			for _, token := range tokens {
				d, ok := ParseDisposition(token)
				require.True(t, ok, token)
				assert.Equal(t, tc.disposition, d, token)
			}
		})
	}

	assert.Equal(t, "allow", DispositionAllow.String())
	assert.Equal(t, "deny", strings.ToLower(DispositionDeny.String()))
}
