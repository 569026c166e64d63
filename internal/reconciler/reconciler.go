// Package reconciler is the fallback path for submissions the worker pool
// could not finalize: chain submits that errored, and payloads that have sat
// Pending past a staleness threshold (the worker that owned them may have
// crashed before writing back). It runs as its own process, separate from
// the gateway, polling on a fixed interval.
package reconciler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/rs/zerolog"

	"github.com/availproject/turbo-gateway/internal/chainclient"
	"github.com/availproject/turbo-gateway/internal/creditengine"
	"github.com/availproject/turbo-gateway/internal/ledgerstore"
	"github.com/availproject/turbo-gateway/internal/metrics"
	"github.com/availproject/turbo-gateway/internal/signerpool"
)

// scanInterval is how often the reconciler polls for candidates.
const scanInterval = 60 * time.Second

// submitTimeout mirrors internal/worker's bound: a retry gets the same
// bounded window as a first attempt.
const submitTimeout = 120 * time.Second

// Config holds the reconciler's tunables, loaded from environment the way
// the gateway's own config is.
type Config struct {
	MaxRetries  int32
	BatchSize   int
	Concurrency int
}

// Reconciler retries stuck or failed submissions. Each candidate in a scan
// batch is assigned a signer by its position in the batch, round-robin over
// the pool, so a single scan spreads its chain traffic across every signer
// instead of serializing behind one.
type Reconciler struct {
	cfg     Config
	store   *ledgerstore.Store
	credit  *creditengine.Engine
	chain   *chainclient.Client
	signers *signerpool.Pool
	log     zerolog.Logger
}

func New(cfg Config, store *ledgerstore.Store, credit *creditengine.Engine, chain *chainclient.Client, signers *signerpool.Pool, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		cfg:     cfg,
		store:   store,
		credit:  credit,
		chain:   chain,
		signers: signers,
		log:     logger.With().Str("component", "reconciler").Logger(),
	}
}

// Run polls on scanInterval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.tick(ctx); err != nil {
				r.log.Error().Err(err).Msg("reconcile tick failed")
			}
		}
	}
}

func (r *Reconciler) tick(ctx context.Context) error {
	candidates, err := r.store.GetReconcileCandidates(ctx, r.cfg.MaxRetries, r.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	r.log.Info().Int("count", len(candidates)).Msg("reconciling candidates")

	sem := make(chan struct{}, r.cfg.Concurrency)
	var wg sync.WaitGroup
	for i, c := range candidates {
		c := c
		signer := r.signers.SignerFor(i % r.signers.Size())
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			r.processCandidate(ctx, c, signer)
		}()
	}
	wg.Wait()
	return nil
}

// processCandidate claims the candidate by incrementing its retry count
// before attempting anything else — even if the retry goes on to succeed,
// the count still reflects that an extra attempt was made — then runs the
// same admit/submit/write-back sequence a worker would, using the signer
// assigned to its position in this scan's batch.
func (r *Reconciler) processCandidate(ctx context.Context, c ledgerstore.ReconcileCandidate, signer signature.KeyringPair) {
	log := r.log.With().Str("submission_id", c.Submission.SubmissionID).Logger()

	_, claimed, err := r.store.IncrementRetryCount(ctx, c.Submission.SubmissionID, r.cfg.MaxRetries)
	if err != nil {
		log.Error().Err(err).Msg("retry count increment failed")
		return
	}
	if !claimed {
		log.Debug().Msg("candidate already claimed or at retry cap, skipping")
		return
	}

	if c.Submission.Payload == nil {
		// Already Finalized by another path, or purged; nothing left to retry.
		_ = r.store.SetError(ctx, c.Submission.SubmissionID, "no payload to retry")
		return
	}

	oneKiBFee, err := r.chain.EstimateFee(ctx, signer, 1024, c.Account.ChainAppID)
	if err != nil {
		log.Error().Err(err).Msg("fee estimate failed")
		_ = r.store.SetError(ctx, c.Submission.SubmissionID, "rpc_transport")
		return
	}
	payloadFee, err := r.chain.EstimateFee(ctx, signer, len(c.Submission.Payload), c.Account.ChainAppID)
	if err != nil {
		log.Error().Err(err).Msg("fee estimate failed")
		_ = r.store.SetError(ctx, c.Submission.SubmissionID, "rpc_transport")
		return
	}

	cost, err := creditengine.CalculateCost(oneKiBFee, payloadFee, len(c.Submission.Payload))
	if err != nil {
		log.Error().Err(err).Msg("cost calculation failed")
		_ = r.store.SetError(ctx, c.Submission.SubmissionID, "rpc_decode")
		return
	}

	if err := r.credit.Admit(ctx, &c.Account, &c.User, c.Submission.SubmissionID, cost); err != nil {
		var ce *creditengine.Error
		kind := "insufficient_credits"
		if errors.As(err, &ce) {
			kind = creditKindLabel(ce.Kind)
		}
		log.Warn().Err(err).Msg("retry rejected by admission check")
		_ = r.store.SetError(ctx, c.Submission.SubmissionID, kind)
		return
	}

	nonce, err := r.chain.NextNonce(signer)
	if err != nil {
		log.Error().Err(err).Msg("nonce lookup failed")
		return
	}

	submitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	inclusion, err := r.chain.Submit(submitCtx, signer, c.Submission.Payload, nonce, c.Account.ChainAppID)
	cancel()

	if err != nil {
		kind := submitErrLabel(err)
		log.Warn().Err(err).Str("error_kind", kind).Msg("retry submit failed, will retry again next tick if under cap")
		_ = r.store.SetError(ctx, c.Submission.SubmissionID, kind)
		metrics.ReconcilerRetries.WithLabelValues(kind).Inc()
		return
	}

	if err := r.store.Finalize(ctx, ledgerstore.FinalizeParams{
		SubmissionID: c.Submission.SubmissionID,
		AppAccountID: c.Account.AppAccountID,
		Inclusion:    *inclusion,
		ToAddress:    signer.Address,
		Cost:         cost,
	}); err != nil {
		log.Error().Err(err).Msg("finalize write-back failed after successful retry submit")
		_ = r.store.SetError(ctx, c.Submission.SubmissionID, "db_unavailable")
		metrics.ReconcilerRetries.WithLabelValues("db_unavailable").Inc()
		return
	}

	metrics.ReconcilerRetries.WithLabelValues("finalized").Inc()
	log.Info().Str("block_hash", inclusion.BlockHash).Msg("reconciled submission finalized")
}

// submitErrLabel mirrors internal/worker's mapping of a chain submit failure
// onto the stable error taxonomy written to submission.error.
func submitErrLabel(err error) string {
	var se *chainclient.SubmitError
	if errors.As(err, &se) {
		return se.Label()
	}
	return "rpc_transport"
}

func creditKindLabel(k creditengine.Kind) string {
	switch k {
	case creditengine.KindInsufficientAccountCredits:
		return "insufficient_account_credits"
	case creditengine.KindInsufficientFallbackCredits:
		return "insufficient_fallback_credits"
	case creditengine.KindInsufficientTotalCredits:
		return "insufficient_total_credits"
	case creditengine.KindInvalidCreditSelection:
		return "invalid_credit_selection"
	case creditengine.KindCumulativeOverflow:
		return "cumulative_overflow"
	default:
		return "insufficient_credits"
	}
}
