package storage

import "testing"

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		base, n int
		want    string
	}{
		{0, 3, "($1,$2,$3)"},
		{11, 2, "($12,$13)"},
		{0, 1, "($1)"},
	}
	for _, tc := range tests {
		if got := placeholders(tc.base, tc.n); got != tc.want {
			t.Errorf("placeholders(%d, %d) = %q; want %q", tc.base, tc.n, got, tc.want)
		}
	}
}
