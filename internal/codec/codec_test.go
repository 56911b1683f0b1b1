package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONCodec_RoundTrip(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	for _, c := range []Codec{JSONCodec{}, CompactJSONCodec{}} {
		data, err := c.Marshal(payload{Name: "a", Count: 2})
		require.NoError(t, err)

		var got payload
		require.NoError(t, c.Unmarshal(data, &got))
		require.Equal(t, payload{Name: "a", Count: 2}, got)
	}
}

func TestCompactJSONCodec_NoIndent(t *testing.T) {
	data, err := CompactJSONCodec{}.Marshal(map[string]int{"n": 1})
	require.NoError(t, err)
	require.Equal(t, `{"n":1}`, string(data))
}
