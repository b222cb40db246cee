package httpapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_Unmarshal(t *testing.T) {
	cases := map[string]float64{
		`12`:       12,
		`"750000"`: 750000,
		`" 1.5 "`:  1.5,
		`-3`:       -3,
	}
	for in, want := range cases {
		var n number
		require.NoError(t, json.Unmarshal([]byte(in), &n), in)
		assert.Equal(t, want, float64(n), in)
	}
	for _, in := range []string{`"abc"`, `"NaN"`, `"Inf"`, `true`} {
		var n number
		assert.Error(t, json.Unmarshal([]byte(in), &n), in)
	}
}

func TestNumber_IntPtr(t *testing.T) {
	n := number(7)
	got, err := n.intPtr()
	require.NoError(t, err)
	assert.Equal(t, 7, *got)

	var missing *number
	got, err = missing.intPtr()
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []number{1.5, 1e30, -1e30} {
		_, err := bad.intPtr()
		assert.Error(t, err, "%v", float64(bad))
	}
}
