package worker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/availproject/turbo-gateway/internal/chainclient"
	"github.com/availproject/turbo-gateway/internal/creditengine"
)

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

// TestSubmitErrLabel_Taxonomy maps each submit-failure kind onto the stable
// submission.error string this tree produces; the S1-S6 labels number the
// cases in table order. A context-deadline submit (S1) must render as
// exactly "timeout", never a generic bucket shared with transport or decode
// failures.
func TestSubmitErrLabel_Taxonomy(t *testing.T) {
	cases := []struct {
		scenario string
		err      error
		want     string
	}{
		{"S1", &chainclient.SubmitError{Kind: chainclient.ErrKindTimeout, Err: errors.New("context deadline exceeded")}, "timeout"},
		{"S2", &chainclient.SubmitError{Kind: chainclient.ErrKindRPCTransport, Err: errors.New("dial failed")}, "rpc_transport"},
		{"S3", &chainclient.SubmitError{Kind: chainclient.ErrKindRPCDecode, Err: errors.New("extrinsic not found in included block")}, "rpc_decode"},
		{"S4", &chainclient.SubmitError{Kind: chainclient.ErrKindChainRejected, Reason: "dropped", Err: errors.New("extrinsic dropped from pool")}, "chain_rejected:dropped"},
		{"S5", &chainclient.SubmitError{Kind: chainclient.ErrKindChainRejected, Reason: "invalid", Err: errors.New("extrinsic invalid")}, "chain_rejected:invalid"},
		{"S6", errors.New("some unrelated wrapped error with no SubmitError in its chain"), "rpc_transport"},
	}

	for _, tc := range cases {
		t.Run(tc.scenario, func(t *testing.T) {
			assert.Equal(t, tc.want, submitErrLabel(tc.err))
		})
	}
}

func TestWorker_Integration_SkipWithoutChainAndBackends(t *testing.T) {
	t.Skip("requires a live chain endpoint, PostgreSQL, and Redis; exercised in the integration environment")
}
