package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldSearchTerm(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Pétrole", "petrole"},
		{"  Dépôt Yopougon ", "depot yopougon"},
		{"CI-5540-AB", "ci-5540-ab"},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FoldSearchTerm(tc.in))
	}
}

func TestFiltersNormalize(t *testing.T) {
	f := ListFilters{Limit: 0, Offset: -3}
	f.Normalize()
	require.Equal(t, 50, f.Limit)
	require.Equal(t, 0, f.Offset)

	f = ListFilters{Limit: 10000}
	f.Normalize()
	require.Equal(t, 500, f.Limit)
}
