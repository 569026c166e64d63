package hotstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCumulativeGateKey(t *testing.T) {
	key := CumulativeGateKey("user_1", "100.0000000000", "50.0000000000")
	assert.Equal(t, "user:user_1_main_balance:100.0000000000_app_balance:50.0000000000", key)
}

func TestUserCumulativeKeyPrefix(t *testing.T) {
	prefix := UserCumulativeKeyPrefix("user_1")
	assert.Equal(t, "user:user_1_main_balance:", prefix)

	key := CumulativeGateKey("user_1", "100.0000000000", "50.0000000000")
	assert.Contains(t, key, prefix)
}

func TestIsCumulativeGateKey(t *testing.T) {
	assert.True(t, IsCumulativeGateKey("user:user_1_main_balance:100_app_balance:50"))
	assert.False(t, IsCumulativeGateKey("apikey:deadbeef"))
	assert.False(t, IsCumulativeGateKey("user:user_1_without_balance_marker"))
}

func TestApiKeyCacheKey(t *testing.T) {
	assert.Equal(t, "apikey:deadbeef", apiKeyCacheKey("deadbeef"))
}

func TestOpen_Integration_SkipWithoutRedis(t *testing.T) {
	t.Skip("requires a live Redis instance; exercised in the integration environment")
}
