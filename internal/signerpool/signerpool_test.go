package signerpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// devMnemonic is the well-known Substrate development mnemonic. It derives a
// real, usable key pair without needing a live chain or a secret fixture.
const devMnemonic = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

func TestNew_EmptyKeysErrors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_InvalidKeyErrors(t *testing.T) {
	_, err := New([]string{"not a valid secret at all $$$"})
	assert.Error(t, err)
}

func TestNew_BuildsOneSignerPerKey(t *testing.T) {
	pool, err := New([]string{devMnemonic, devMnemonic})
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Size())
	assert.NotEmpty(t, pool.Address(0))
	assert.NotEmpty(t, pool.Address(1))
}

func TestSignerFor_OutOfRangePanics(t *testing.T) {
	pool, err := New([]string{devMnemonic})
	require.NoError(t, err)

	assert.Panics(t, func() {
		pool.SignerFor(5)
	})
	assert.Panics(t, func() {
		pool.SignerFor(-1)
	})
}
