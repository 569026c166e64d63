// Package chainclient talks to the Avail Data Availability chain: it builds,
// signs, and submits data_availability.submit_data extrinsics and watches
// for their inclusion. Every exported method is safe to call from multiple
// goroutines except Submit, whose caller must hold the nonce lock for the
// signer in use — internal/worker enforces that by giving each worker its
// own signer and therefore its own nonce stream.
package chainclient

import (
	"context"
	"fmt"
	"time"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/availproject/turbo-gateway/internal/ledgerstore"
)

// ErrKind classifies a Submit failure into the stable taxonomy internal/worker
// and internal/reconciler write into submission.error, so the reconciler can
// tell a transient failure (worth retrying) from a terminal one.
type ErrKind string

const (
	ErrKindTimeout       ErrKind = "timeout"
	ErrKindRPCTransport  ErrKind = "rpc_transport"
	ErrKindRPCDecode     ErrKind = "rpc_decode"
	ErrKindChainRejected ErrKind = "chain_rejected"
)

// SubmitError reports why a chain submit failed, along with enough detail to
// build the stable error-kind string written to submission.error.
type SubmitError struct {
	Kind   ErrKind
	Reason string // populated only for ErrKindChainRejected
	Err    error
}

func (e *SubmitError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Label renders the stable taxonomy string for submission.error:
// "chain_rejected:<reason>" when Reason is set, otherwise just the Kind.
func (e *SubmitError) Label() string {
	if e.Reason != "" {
		return string(e.Kind) + ":" + e.Reason
	}
	return string(e.Kind)
}

// Client wraps a connected substrate API instance plus the chain metadata
// and genesis/runtime info every extrinsic needs to be built.
type Client struct {
	api     *gsrpc.SubstrateAPI
	meta    *types.Metadata
	genesis types.Hash
	rv      *types.RuntimeVersion
	log     zerolog.Logger
}

// Connect dials endpoints in order, falling back to the next on failure,
// waiting 5 seconds between attempts. The first reachable endpoint wins for
// the lifetime of the client; reconnection on later failure is the caller's
// responsibility (internal/worker treats a submit-time RPC error as
// transient and retries through internal/reconciler rather than reconnecting
// inline).
func Connect(ctx context.Context, endpoints []string, logger zerolog.Logger) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("chainclient: no endpoints configured")
	}

	var lastErr error
	for _, endpoint := range endpoints {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		api, err := gsrpc.NewSubstrateAPI(endpoint)
		if err != nil {
			lastErr = err
			logger.Warn().Err(err).Str("endpoint", endpoint).Msg("chain endpoint unreachable, trying next")
			time.Sleep(5 * time.Second)
			continue
		}

		meta, err := api.RPC.State.GetMetadataLatest()
		if err != nil {
			lastErr = err
			time.Sleep(5 * time.Second)
			continue
		}

		genesis, err := api.RPC.Chain.GetBlockHash(0)
		if err != nil {
			lastErr = err
			time.Sleep(5 * time.Second)
			continue
		}

		rv, err := api.RPC.State.GetRuntimeVersionLatest()
		if err != nil {
			lastErr = err
			time.Sleep(5 * time.Second)
			continue
		}

		logger.Info().Str("endpoint", endpoint).Msg("connected to chain endpoint")
		return &Client{api: api, meta: meta, genesis: genesis, rv: rv, log: logger.With().Str("component", "chainclient").Logger()}, nil
	}

	return nil, fmt.Errorf("chainclient: all endpoints exhausted: %w", lastErr)
}

// EstimateFee quotes the fee for submitting a payload of length n bytes
// without broadcasting anything, used for CalculateCost's ratio. appID is
// threaded through so the fee quote reflects the same extrinsic shape
// Submit will actually broadcast.
func (c *Client) EstimateFee(ctx context.Context, signer signature.KeyringPair, n int, appID int32) (decimal.Decimal, error) {
	ext, err := c.buildExtrinsic(signer, make([]byte, n), 0, appID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("estimate fee: %w", err)
	}

	enc, err := types.EncodeToHexString(ext)
	if err != nil {
		return decimal.Zero, fmt.Errorf("estimate fee: encode: %w", err)
	}

	info, err := c.api.RPC.Payment.GetQueryInfo(enc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("estimate fee: query info: %w", err)
	}

	return decimal.NewFromBigInt(info.PartialFee.Int, 0), nil
}

// Submit signs and broadcasts payload as a data_availability.submit_data
// extrinsic, waiting up to the context deadline for block inclusion. It
// never waits for finality, only inclusion in a best block, matching
// spec.md's bounded-submit requirement.
func (c *Client) Submit(ctx context.Context, signer signature.KeyringPair, payload []byte, nonce uint32, appID int32) (*ledgerstore.Inclusion, error) {
	ext, err := c.buildExtrinsic(signer, payload, nonce, appID)
	if err != nil {
		return nil, &SubmitError{Kind: ErrKindRPCTransport, Err: fmt.Errorf("build extrinsic: %w", err)}
	}

	sub, err := c.api.RPC.Author.SubmitAndWatchExtrinsic(*ext)
	if err != nil {
		return nil, &SubmitError{Kind: ErrKindRPCTransport, Err: err}
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil, &SubmitError{Kind: ErrKindTimeout, Err: ctx.Err()}
		case status := <-sub.Chan():
			switch {
			case status.IsDropped:
				return nil, &SubmitError{Kind: ErrKindChainRejected, Reason: "dropped", Err: fmt.Errorf("extrinsic dropped from pool")}
			case status.IsInvalid:
				return nil, &SubmitError{Kind: ErrKindChainRejected, Reason: "invalid", Err: fmt.Errorf("extrinsic invalid")}
			case status.IsUsurped:
				return nil, &SubmitError{Kind: ErrKindChainRejected, Reason: "usurped", Err: fmt.Errorf("extrinsic usurped by another with the same nonce")}
			case status.IsInBlock:
				return c.readInclusion(ctx, status.AsInBlock, ext)
			}
		}
	}
}

// readInclusion reads back the block the extrinsic landed in and finds the
// extrinsic's index by matching its hex encoding against the block's
// extrinsics. No events are decoded: DataHash is set to the block hash,
// TxHash to the hex encoding of the signed extrinsic, and ChainFee to zero.
func (c *Client) readInclusion(ctx context.Context, blockHash types.Hash, ext *types.Extrinsic) (*ledgerstore.Inclusion, error) {
	block, err := c.api.RPC.Chain.GetBlock(blockHash)
	if err != nil {
		return nil, &SubmitError{Kind: ErrKindRPCTransport, Err: fmt.Errorf("read inclusion: get block: %w", err)}
	}

	extrinsicIndex := -1
	encodedExt, err := types.EncodeToHexString(ext)
	if err != nil {
		return nil, &SubmitError{Kind: ErrKindRPCDecode, Err: fmt.Errorf("read inclusion: encode extrinsic: %w", err)}
	}
	for i, be := range block.Block.Extrinsics {
		enc, encErr := types.EncodeToHexString(be)
		if encErr == nil && enc == encodedExt {
			extrinsicIndex = i
			break
		}
	}
	if extrinsicIndex < 0 {
		return nil, &SubmitError{Kind: ErrKindRPCDecode, Err: fmt.Errorf("read inclusion: extrinsic not found in included block")}
	}

	header, err := c.api.RPC.Chain.GetHeader(blockHash)
	if err != nil {
		return nil, &SubmitError{Kind: ErrKindRPCTransport, Err: fmt.Errorf("read inclusion: get header: %w", err)}
	}

	txHash, err := types.EncodeToHexString(ext)
	if err != nil {
		return nil, &SubmitError{Kind: ErrKindRPCDecode, Err: fmt.Errorf("read inclusion: tx hash: %w", err)}
	}

	return &ledgerstore.Inclusion{
		BlockNumber:    int64(header.Number),
		BlockHash:      blockHash.Hex(),
		TxHash:         txHash,
		DataHash:       blockHash.Hex(),
		ExtrinsicIndex: int64(extrinsicIndex),
		ChainFee:       decimal.Zero,
	}, nil
}

func (c *Client) buildExtrinsic(signer signature.KeyringPair, payload []byte, nonce uint32, appID int32) (*types.Extrinsic, error) {
	call, err := types.NewCall(c.meta, "DataAvailability.submit_data", types.NewBytes(payload))
	if err != nil {
		return nil, fmt.Errorf("build extrinsic: new call: %w", err)
	}

	ext := types.NewExtrinsic(call)

	o := types.SignatureOptions{
		BlockHash:          c.genesis,
		Era:                types.ExtrinsicEra{IsImmortalEra: true},
		GenesisHash:        c.genesis,
		Nonce:              types.NewUCompactFromUInt(uint64(nonce)),
		SpecVersion:        c.rv.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: c.rv.TransactionVersion,
		AppID:              types.NewUCompactFromUInt(uint64(appID)),
	}

	if err := ext.Sign(signer, o); err != nil {
		return nil, fmt.Errorf("build extrinsic: sign: %w", err)
	}

	return &ext, nil
}

// NextNonce reads the account's current nonce from chain state. A worker
// calls it once when it starts and thereafter tracks the nonce locally;
// internal/reconciler calls it before every retry submit.
func (c *Client) NextNonce(signer signature.KeyringPair) (uint32, error) {
	key, err := types.CreateStorageKey(c.meta, "System", "Account", signer.PublicKey)
	if err != nil {
		return 0, fmt.Errorf("next nonce: storage key: %w", err)
	}

	var accountInfo types.AccountInfo
	ok, err := c.api.RPC.State.GetStorageLatest(key, &accountInfo)
	if err != nil {
		return 0, fmt.Errorf("next nonce: get storage: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return uint32(accountInfo.Nonce), nil
}

func (c *Client) Close() {
	if c.api != nil && c.api.Client != nil {
		c.api.Client.Close()
	}
}
