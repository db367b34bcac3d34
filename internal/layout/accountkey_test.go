package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyth_index/internal/domain"
)

func TestAccountKeyValidity(t *testing.T) {
	assert.False(t, ZeroKey.IsValid())

	for i := 0; i < KeyBytes; i++ {
		var k AccountKey
		k[i] = 1
		assert.True(t, k.IsValid(), "byte %d set", i)
	}

	assert.True(t, testKey(0xFF).IsValid())
}

func TestAccountKeyText(t *testing.T) {
	k := testKey(0x42)
	k[0] = 0x01

	parsed, err := ParseAccountKey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)

	// all zero bytes encode as 32 leading '1's
	assert.Equal(t, "11111111111111111111111111111111", ZeroKey.String())

	b, err := json.Marshal(struct {
		Key AccountKey `json:"key"`
	}{k})
	require.NoError(t, err)

	var out struct {
		Key AccountKey `json:"key"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, k, out.Key)
}

func TestParseAccountKeyErrors(t *testing.T) {
	for _, s := range []string{"", "0OIl", "abc"} {
		_, err := ParseAccountKey(s)
		assert.ErrorIs(t, err, domain.ErrInvalidKey, "input %q", s)
	}

	assert.Panics(t, func() { MustParseAccountKey("not-base58!") })
}
