package chainclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmitError_Label(t *testing.T) {
	cases := []struct {
		name string
		err  *SubmitError
		want string
	}{
		{"timeout", &SubmitError{Kind: ErrKindTimeout, Err: errors.New("ctx done")}, "timeout"},
		{"rpc transport", &SubmitError{Kind: ErrKindRPCTransport, Err: errors.New("dial failed")}, "rpc_transport"},
		{"rpc decode", &SubmitError{Kind: ErrKindRPCDecode, Err: errors.New("bad hex")}, "rpc_decode"},
		{"chain rejected carries reason", &SubmitError{Kind: ErrKindChainRejected, Reason: "usurped", Err: errors.New("usurped")}, "chain_rejected:usurped"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Label())
		})
	}
}

func TestSubmitError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &SubmitError{Kind: ErrKindRPCTransport, Err: inner}
	assert.ErrorIs(t, err, inner)
}

func TestConnect_Integration_SkipWithoutRPCEndpoint(t *testing.T) {
	t.Skip("requires a live Avail RPC endpoint; exercised in the integration environment")
}

func TestSubmit_Integration_SkipWithoutRPCEndpoint(t *testing.T) {
	t.Skip("requires a live Avail RPC endpoint and a funded signer; exercised in the integration environment")
}
