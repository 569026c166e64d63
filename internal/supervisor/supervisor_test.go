package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexLabel(t *testing.T) {
	assert.Equal(t, "0", indexLabel(0))
	assert.Equal(t, "7", indexLabel(7))
}

func TestSupervisor_Integration_SkipWithoutChainAndBackends(t *testing.T) {
	t.Skip("requires a live chain endpoint, PostgreSQL, and Redis; exercised in the integration environment")
}
