package moniker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   Child
		want string
	}{
		{"static", StaticChild("db"), "db:0"},
		{"dynamic", DynamicChild("workers", "w1", 3), "workers:w1:3"},
		{"dynamic zero instance", DynamicChild("coll", "dyn1", 0), "coll:dyn1:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.String())
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, in := range []Child{
		StaticChild("a"),
		DynamicChild("coll", "dyn2", 1),
		DynamicChild("coll", "a", 7),
	} {
		got, err := Parse(in.String())
		require.NoError(t, err)
		require.Equal(t, in, got)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "a", "a:b:c:d", "a:x", ":0", "coll::1", ":name:1"} {
		_, err := Parse(s)
		require.Error(t, err, "input %q", s)
	}
}

func TestGenerationsAreDistinct(t *testing.T) {
	// Two dynamic children sharing a name are distinct identities.
	first := DynamicChild("coll", "worker", 1)
	second := DynamicChild("coll", "worker", 2)
	require.NotEqual(t, first, second)
	require.True(t, first.IsDynamic())
	require.False(t, StaticChild("worker").IsDynamic())
}
