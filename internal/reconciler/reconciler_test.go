package reconciler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/availproject/turbo-gateway/internal/chainclient"
	"github.com/availproject/turbo-gateway/internal/creditengine"
)

func TestSubmitErrLabel(t *testing.T) {
	assert.Equal(t, "timeout", submitErrLabel(&chainclient.SubmitError{Kind: chainclient.ErrKindTimeout, Err: errors.New("x")}))
	assert.Equal(t, "chain_rejected:invalid", submitErrLabel(&chainclient.SubmitError{Kind: chainclient.ErrKindChainRejected, Reason: "invalid", Err: errors.New("x")}))
	assert.Equal(t, "rpc_transport", submitErrLabel(errors.New("unrelated")))
}

func TestCreditKindLabel(t *testing.T) {
	cases := []struct {
		kind creditengine.Kind
		want string
	}{
		{creditengine.KindInsufficientAccountCredits, "insufficient_account_credits"},
		{creditengine.KindInsufficientFallbackCredits, "insufficient_fallback_credits"},
		{creditengine.KindInsufficientTotalCredits, "insufficient_total_credits"},
		{creditengine.KindInvalidCreditSelection, "invalid_credit_selection"},
		{creditengine.KindCumulativeOverflow, "cumulative_overflow"},
		{creditengine.KindNone, "insufficient_credits"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, creditKindLabel(c.kind))
	}
}

func TestConfig_CarriesTunables(t *testing.T) {
	// Config has no behavior of its own beyond carrying tunables loaded from
	// environment in cmd/reconciler; this just pins the field set against
	// accidental renames breaking env-var wiring silently.
	cfg := Config{MaxRetries: 5, BatchSize: 50, Concurrency: 8}
	assert.Equal(t, int32(5), cfg.MaxRetries)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestReconciler_Integration_SkipWithoutChainAndBackends(t *testing.T) {
	t.Skip("requires a live chain endpoint, PostgreSQL, and Redis; exercised in the integration environment")
}
